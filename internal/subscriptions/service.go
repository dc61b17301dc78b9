package subscriptions

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/creatorden/backend/pkg/db/models"
	pkgerrors "github.com/creatorden/backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type tierLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Tier, error)
}

type Service interface {
	Subscribe(ctx context.Context, userID, creatorID, tierID uuid.UUID) (*models.Subscription, error)
	Unsubscribe(ctx context.Context, userID, creatorID uuid.UUID) error
	FindActive(ctx context.Context, userID, creatorID uuid.UUID) (*models.Subscription, error)
	HasActive(ctx context.Context, userID, creatorID uuid.UUID) (bool, error)
	EffectiveLevel(ctx context.Context, userID, creatorID uuid.UUID) (*int, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Subscription, error)
	CountActiveByCreator(ctx context.Context, creatorID uuid.UUID) (int64, error)
}

type service struct {
	tx    txRunner
	repo  Repository
	tiers tierLoader
}

func NewService(tx txRunner, repo Repository, tiers tierLoader) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("subscription repository required")
	}
	if tiers == nil {
		return nil, fmt.Errorf("tier loader required")
	}
	return &service{tx: tx, repo: repo, tiers: tiers}, nil
}

// Subscribe puts the user on the given tier. Any previously active
// subscription for the same (user, creator) pair is deactivated in the same
// transaction, so a pair never holds two active rows.
func (s *service) Subscribe(ctx context.Context, userID, creatorID, tierID uuid.UUID) (*models.Subscription, error) {
	if userID == uuid.Nil || creatorID == uuid.Nil || tierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user, creator and tier ids are required")
	}
	if userID == creatorID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot subscribe to yourself")
	}

	tier, err := s.tiers.FindByID(ctx, tierID)
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tier not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tier")
	}
	if tier.CreatorID != creatorID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tier does not belong to this creator")
	}
	if !tier.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tier is no longer offered")
	}

	subscription := &models.Subscription{
		UserID:    userID,
		CreatorID: creatorID,
		TierID:    tierID,
		Active:    true,
		StartedAt: time.Now().UTC(),
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeactivatePair(ctx, userID, creatorID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate previous subscription")
		}
		if err := repo.Create(ctx, subscription); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create subscription")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return subscription, nil
}

func (s *service) Unsubscribe(ctx context.Context, userID, creatorID uuid.UUID) error {
	if _, err := s.FindActive(ctx, userID, creatorID); err != nil {
		return err
	}
	if err := s.repo.DeactivatePair(ctx, userID, creatorID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate subscription")
	}
	return nil
}

// FindActive reads straight from the database so a check issued after a
// subscribe commit always sees it.
func (s *service) FindActive(ctx context.Context, userID, creatorID uuid.UUID) (*models.Subscription, error) {
	subscription, err := s.repo.FindActive(ctx, userID, creatorID)
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active subscription")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find subscription")
	}
	return subscription, nil
}

func (s *service) HasActive(ctx context.Context, userID, creatorID uuid.UUID) (bool, error) {
	_, err := s.FindActive(ctx, userID, creatorID)
	if err != nil {
		if appErr := pkgerrors.As(err); appErr != nil && appErr.Code() == pkgerrors.CodeNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *service) EffectiveLevel(ctx context.Context, userID, creatorID uuid.UUID) (*int, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	level, err := s.repo.MaxActiveLevel(ctx, userID, creatorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "compute effective level")
	}
	return level, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Subscription, error) {
	records, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list subscriptions")
	}
	return records, nil
}

func (s *service) CountActiveByCreator(ctx context.Context, creatorID uuid.UUID) (int64, error) {
	count, err := s.repo.CountActiveByCreator(ctx, creatorID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count subscribers")
	}
	return count, nil
}
