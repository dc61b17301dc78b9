package tiers

import (
	"context"

	"github.com/creatorden/backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, tier *models.Tier) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Tier, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]models.Tier, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
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

func (r *repository) Create(ctx context.Context, tier *models.Tier) error {
	return r.db.WithContext(ctx).Create(tier).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Tier, error) {
	var tier models.Tier
	if err := r.db.WithContext(ctx).First(&tier, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tier, nil
}

func (r *repository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]models.Tier, error) {
	var records []models.Tier
	err := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("level ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Tier{}).
		Where("id = ?", id).
		UpdateColumn("is_active", false).Error
}
