package stats

import (
	"context"

	"github.com/creatorden/backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository answers the aggregate queries the stats endpoint needs directly
// from SQL, keeping money arithmetic inside numeric columns.
type Repository interface {
	MonthlyRevenue(ctx context.Context, creatorID uuid.UUID) (decimal.Decimal, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// MonthlyRevenue sums the monthly price of every active subscription to the
// creator.
func (r *repository) MonthlyRevenue(ctx context.Context, creatorID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Select("COALESCE(SUM(tiers.price_monthly), 0)").
		Joins("JOIN tiers ON tiers.id = subscriptions.tier_id").
		Where("subscriptions.creator_id = ? AND subscriptions.active = ?", creatorID, true).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
