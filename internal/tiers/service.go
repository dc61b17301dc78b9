package tiers

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/creatorden/backend/pkg/db/models"
	pkgerrors "github.com/creatorden/backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	MinLevel = 1
	MaxLevel = 10
)

// CreateTierInput captures a new tier offering.
type CreateTierInput struct {
	CreatorID    uuid.UUID
	Name         string
	Description  *string
	PriceMonthly decimal.Decimal
	Level        int
}

type Service interface {
	Create(ctx context.Context, input CreateTierInput) (*models.Tier, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Tier, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]models.Tier, error)
	Deactivate(ctx context.Context, creatorID, tierID uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tier repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateTierInput) (*models.Tier, error) {
	if input.CreatorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "creator id required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tier name required")
	}
	if input.Level < MinLevel || input.Level > MaxLevel {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("level must be between %d and %d", MinLevel, MaxLevel))
	}
	if input.PriceMonthly.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}

	tier := &models.Tier{
		CreatorID:    input.CreatorID,
		Name:         name,
		Description:  input.Description,
		PriceMonthly: input.PriceMonthly,
		Level:        input.Level,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, tier); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create tier")
	}
	return tier, nil
}

func (s *service) FindByID(ctx context.Context, id uuid.UUID) (*models.Tier, error) {
	tier, err := s.repo.FindByID(ctx, id)
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tier not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tier")
	}
	return tier, nil
}

func (s *service) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]models.Tier, error) {
	records, err := s.repo.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tiers")
	}
	return records, nil
}

func (s *service) Deactivate(ctx context.Context, creatorID, tierID uuid.UUID) error {
	tier, err := s.FindByID(ctx, tierID)
	if err != nil {
		return err
	}
	if tier.CreatorID != creatorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "tier belongs to another creator")
	}
	if err := s.repo.Deactivate(ctx, tierID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate tier")
	}
	return nil
}
