package ledger

import (
	"context"

	"github.com/creatorden/backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages persistence for token transactions. The log is
// append-only: there are deliberately no update or delete methods.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, record *models.TokenTransaction) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]models.TokenTransaction, error)
	SumTipsTo(ctx context.Context, accountID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, record *models.TokenTransaction) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]models.TokenTransaction, error) {
	var records []models.TokenTransaction
	query := r.db.WithContext(ctx).
		Where("from_account_id = ? OR to_account_id = ?", accountID, accountID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) SumTipsTo(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.TokenTransaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("to_account_id = ? AND kind = ?", accountID, "tip").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
