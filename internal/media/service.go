package media

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/creatorden/backend/pkg/db/models"
	"github.com/creatorden/backend/pkg/enums"
	pkgerrors "github.com/creatorden/backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateAssetInput registers a reference to externally hosted media.
type CreateAssetInput struct {
	CreatorID uuid.UUID
	URL       string
	MediaType enums.MediaType
	Title     *string
	SizeBytes *int64
}

type Service interface {
	Create(ctx context.Context, input CreateAssetInput) (*models.MediaAsset, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.MediaAsset, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]models.MediaAsset, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("media repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateAssetInput) (*models.MediaAsset, error) {
	if input.CreatorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "creator id required")
	}
	rawURL := strings.TrimSpace(input.URL)
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a valid absolute url is required")
	}
	if !input.MediaType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown media type")
	}
	if input.SizeBytes != nil && *input.SizeBytes < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "size cannot be negative")
	}

	asset := &models.MediaAsset{
		CreatorID: input.CreatorID,
		URL:       rawURL,
		MediaType: input.MediaType,
		Title:     input.Title,
		SizeBytes: input.SizeBytes,
	}
	if err := s.repo.Create(ctx, asset); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create media asset")
	}
	return asset, nil
}

func (s *service) FindByID(ctx context.Context, id uuid.UUID) (*models.MediaAsset, error) {
	asset, err := s.repo.FindByID(ctx, id)
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "media asset not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load media asset")
	}
	return asset, nil
}

func (s *service) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]models.MediaAsset, error) {
	records, err := s.repo.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list media assets")
	}
	return records, nil
}
