package creators

import (
	"context"

	"github.com/creatorden/backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, profile *models.CreatorProfile) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.CreatorProfile, error)
	FindByHandle(ctx context.Context, handle string) (*models.CreatorProfile, error)
	Update(ctx context.Context, profile *models.CreatorProfile) error
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

func (r *repository) Create(ctx context.Context, profile *models.CreatorProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.CreatorProfile, error) {
	var profile models.CreatorProfile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) FindByHandle(ctx context.Context, handle string) (*models.CreatorProfile, error) {
	var profile models.CreatorProfile
	if err := r.db.WithContext(ctx).First(&profile, "handle = ?", handle).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) Update(ctx context.Context, profile *models.CreatorProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}
