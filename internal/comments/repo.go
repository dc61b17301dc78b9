package comments

import (
	"context"

	"github.com/creatorden/backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, comment *models.Comment) error
	ListByPost(ctx context.Context, postID uuid.UUID, limit int) ([]models.Comment, error)
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

func (r *repository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *repository) ListByPost(ctx context.Context, postID uuid.UUID, limit int) ([]models.Comment, error) {
	query := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var records []models.Comment
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
