package tiers

import (
	"context"
	"testing"

	"github.com/creatorden/backend/pkg/db/models"
	apperrors "github.com/creatorden/backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fakeRepository struct {
	tiers map[uuid.UUID]*models.Tier
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{tiers: make(map[uuid.UUID]*models.Tier)}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, tier *models.Tier) error {
	if tier.ID == uuid.Nil {
		tier.ID = uuid.New()
	}
	copied := *tier
	f.tiers[tier.ID] = &copied
	return nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Tier, error) {
	tier, ok := f.tiers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *tier
	return &copied, nil
}

func (f *fakeRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]models.Tier, error) {
	var out []models.Tier
	for _, tier := range f.tiers {
		if tier.CreatorID == creatorID {
			out = append(out, *tier)
		}
	}
	return out, nil
}

func (f *fakeRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	if tier, ok := f.tiers[id]; ok {
		tier.IsActive = false
	}
	return nil
}

func TestService_Create(t *testing.T) {
	repo := newFakeRepository()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	creatorID := uuid.New()
	tier, err := svc.Create(context.Background(), CreateTierInput{
		CreatorID:    creatorID,
		Name:         "  Premium ",
		PriceMonthly: decimal.RequireFromString("9.99"),
		Level:        3,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if tier.Name != "Premium" {
		t.Fatalf("name should be trimmed, got %q", tier.Name)
	}
	if !tier.IsActive {
		t.Fatal("new tiers start active")
	}
	if !tier.PriceMonthly.Equal(decimal.RequireFromString("9.99")) {
		t.Fatalf("price mismatch: %s", tier.PriceMonthly)
	}
}

func TestService_CreateValidation(t *testing.T) {
	repo := newFakeRepository()
	svc, _ := NewService(repo)

	creatorID := uuid.New()
	tests := []struct {
		name  string
		input CreateTierInput
	}{
		{
			name:  "missing creator",
			input: CreateTierInput{Name: "Basic", Level: 1, PriceMonthly: decimal.NewFromInt(5)},
		},
		{
			name:  "blank name",
			input: CreateTierInput{CreatorID: creatorID, Name: "   ", Level: 1, PriceMonthly: decimal.NewFromInt(5)},
		},
		{
			name:  "level zero",
			input: CreateTierInput{CreatorID: creatorID, Name: "Basic", Level: 0, PriceMonthly: decimal.NewFromInt(5)},
		},
		{
			name:  "level eleven",
			input: CreateTierInput{CreatorID: creatorID, Name: "Basic", Level: 11, PriceMonthly: decimal.NewFromInt(5)},
		},
		{
			name:  "negative price",
			input: CreateTierInput{CreatorID: creatorID, Name: "Basic", Level: 1, PriceMonthly: decimal.NewFromInt(-1)},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.input)
			appErr := apperrors.As(err)
			if appErr == nil || appErr.Code() != apperrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
	if len(repo.tiers) != 0 {
		t.Fatalf("rejected tiers must not persist, got %d", len(repo.tiers))
	}
}

func TestService_CreateBoundaryLevels(t *testing.T) {
	repo := newFakeRepository()
	svc, _ := NewService(repo)

	creatorID := uuid.New()
	for _, level := range []int{MinLevel, MaxLevel} {
		if _, err := svc.Create(context.Background(), CreateTierInput{
			CreatorID:    creatorID,
			Name:         "Edge",
			Level:        level,
			PriceMonthly: decimal.Zero,
		}); err != nil {
			t.Fatalf("level %d should be accepted: %v", level, err)
		}
	}
}

func TestService_DeactivateOwnership(t *testing.T) {
	repo := newFakeRepository()
	svc, _ := NewService(repo)

	owner := uuid.New()
	tier, err := svc.Create(context.Background(), CreateTierInput{
		CreatorID:    owner,
		Name:         "Basic",
		Level:        1,
		PriceMonthly: decimal.NewFromInt(5),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	err = svc.Deactivate(context.Background(), uuid.New(), tier.ID)
	appErr := apperrors.As(err)
	if appErr == nil || appErr.Code() != apperrors.CodeForbidden {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}

	if err := svc.Deactivate(context.Background(), owner, tier.ID); err != nil {
		t.Fatalf("owner deactivate: %v", err)
	}
	stored, _ := repo.FindByID(context.Background(), tier.ID)
	if stored.IsActive {
		t.Fatal("tier should be inactive after deactivate")
	}
}
