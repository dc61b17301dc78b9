package stats

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/creatorden/backend/pkg/db/models"
	pkgerrors "github.com/creatorden/backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type subscriberCounter interface {
	CountActiveByCreator(ctx context.Context, creatorID uuid.UUID) (int64, error)
}

type postCounter interface {
	CountByCreator(ctx context.Context, creatorID uuid.UUID) (int64, error)
}

type tipSummer interface {
	SumTipsTo(ctx context.Context, accountID uuid.UUID) (int64, error)
}

type accountLookup interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Account, error)
}

// CreatorStats is the aggregate snapshot served by the stats endpoint.
type CreatorStats struct {
	CreatorID         uuid.UUID       `json:"creator_id"`
	ActiveSubscribers int64           `json:"active_subscribers"`
	TotalTipsReceived int64           `json:"total_tips_received"`
	PublishedPosts    int64           `json:"published_posts"`
	MonthlyRevenue    decimal.Decimal `json:"monthly_revenue"`
}

type Service interface {
	ForCreator(ctx context.Context, creatorID uuid.UUID) (*CreatorStats, error)
}

type service struct {
	repo        Repository
	subscribers subscriberCounter
	posts       postCounter
	tips        tipSummer
	accounts    accountLookup
}

func NewService(repo Repository, subscribers subscriberCounter, posts postCounter, tips tipSummer, accounts accountLookup) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stats repository required")
	}
	if subscribers == nil {
		return nil, fmt.Errorf("subscriber counter required")
	}
	if posts == nil {
		return nil, fmt.Errorf("post counter required")
	}
	if tips == nil {
		return nil, fmt.Errorf("tip summer required")
	}
	if accounts == nil {
		return nil, fmt.Errorf("account lookup required")
	}
	return &service{
		repo:        repo,
		subscribers: subscribers,
		posts:       posts,
		tips:        tips,
		accounts:    accounts,
	}, nil
}

func (s *service) ForCreator(ctx context.Context, creatorID uuid.UUID) (*CreatorStats, error) {
	if creatorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "creator id required")
	}

	subscribers, err := s.subscribers.CountActiveByCreator(ctx, creatorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count subscribers")
	}
	posts, err := s.posts.CountByCreator(ctx, creatorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count posts")
	}
	revenue, err := s.repo.MonthlyRevenue(ctx, creatorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "compute revenue")
	}

	// Creators without a token account simply have no tips yet.
	var tips int64
	account, err := s.accounts.GetByUserID(ctx, creatorID)
	if err == nil {
		tips, err = s.tips.SumTipsTo(ctx, account.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum tips")
		}
	} else if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load creator account")
	}

	return &CreatorStats{
		CreatorID:         creatorID,
		ActiveSubscribers: subscribers,
		TotalTipsReceived: tips,
		PublishedPosts:    posts,
		MonthlyRevenue:    revenue,
	}, nil
}
