package subscriptions

import (
	"context"
	"time"

	"github.com/creatorden/backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, subscription *models.Subscription) error
	FindActive(ctx context.Context, userID, creatorID uuid.UUID) (*models.Subscription, error)
	DeactivatePair(ctx context.Context, userID, creatorID uuid.UUID) error
	MaxActiveLevel(ctx context.Context, userID, creatorID uuid.UUID) (*int, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Subscription, error)
	CountActiveByCreator(ctx context.Context, creatorID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, subscription *models.Subscription) error {
	return r.db.WithContext(ctx).Create(subscription).Error
}

func (r *repository) FindActive(ctx context.Context, userID, creatorID uuid.UUID) (*models.Subscription, error) {
	var subscription models.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND creator_id = ? AND active = ?", userID, creatorID, true).
		First(&subscription).Error
	if err != nil {
		return nil, err
	}
	return &subscription, nil
}

func (r *repository) DeactivatePair(ctx context.Context, userID, creatorID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("user_id = ? AND creator_id = ? AND active = ?", userID, creatorID, true).
		UpdateColumns(map[string]any{
			"active":     false,
			"updated_at": time.Now().UTC(),
		}).Error
}

// MaxActiveLevel returns the highest tier level across the user's active
// subscriptions to the creator, or nil when there are none.
func (r *repository) MaxActiveLevel(ctx context.Context, userID, creatorID uuid.UUID) (*int, error) {
	var level *int
	err := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Select("MAX(tiers.level)").
		Joins("JOIN tiers ON tiers.id = subscriptions.tier_id").
		Where("subscriptions.user_id = ? AND subscriptions.creator_id = ? AND subscriptions.active = ?",
			userID, creatorID, true).
		Scan(&level).Error
	if err != nil {
		return nil, err
	}
	return level, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Subscription, error) {
	var records []models.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) CountActiveByCreator(ctx context.Context, creatorID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("creator_id = ? AND active = ?", creatorID, true).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
