package access

import (
	"context"
	"fmt"

	pkgerrors "github.com/creatorden/backend/pkg/errors"
	"github.com/google/uuid"
)

// Decision is the outcome of an access check, with the reason kept for
// logging and response details.
type Decision struct {
	Allowed bool
	Reason  string
}

const (
	ReasonDraft            = "draft"
	ReasonNoSubscription   = "no_subscription"
	ReasonInsufficientTier = "insufficient_tier"
	ReasonGranted          = "granted"
)

// CanView decides whether a viewer with the given effective tier level may
// see a post. viewerLevel is nil when the viewer holds no active
// subscription to the post's creator. Drafts are never visible through the
// gate, regardless of level.
func CanView(viewerLevel *int, requiredLevel int, isDraft bool) Decision {
	if isDraft {
		return Decision{Allowed: false, Reason: ReasonDraft}
	}
	if viewerLevel == nil {
		return Decision{Allowed: false, Reason: ReasonNoSubscription}
	}
	if *viewerLevel < requiredLevel {
		return Decision{Allowed: false, Reason: ReasonInsufficientTier}
	}
	return Decision{Allowed: true, Reason: ReasonGranted}
}

// ContentLookup resolves a post to its owner and draft flag.
type ContentLookup interface {
	OwnerAndDraft(ctx context.Context, postID uuid.UUID) (creatorID uuid.UUID, isDraft bool, err error)
}

// SubscriptionLookup reports whether a user holds an active subscription
// to a creator.
type SubscriptionLookup interface {
	HasActive(ctx context.Context, userID, creatorID uuid.UUID) (bool, error)
}

// Gate answers interaction checks that need storage lookups.
type Gate struct {
	content       ContentLookup
	subscriptions SubscriptionLookup
}

func NewGate(content ContentLookup, subscriptions SubscriptionLookup) (*Gate, error) {
	if content == nil {
		return nil, fmt.Errorf("content lookup required")
	}
	if subscriptions == nil {
		return nil, fmt.Errorf("subscription lookup required")
	}
	return &Gate{content: content, subscriptions: subscriptions}, nil
}

// CanComment allows commenting only for users with an active subscription
// to the post's creator. The creator may always comment on their own post.
func (g *Gate) CanComment(ctx context.Context, userID, postID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	creatorID, isDraft, err := g.content.OwnerAndDraft(ctx, postID)
	if err != nil {
		return err
	}
	if isDraft {
		return pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
	}
	if creatorID == userID {
		return nil
	}

	active, err := g.subscriptions.HasActive(ctx, userID, creatorID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check subscription")
	}
	if !active {
		return pkgerrors.New(pkgerrors.CodeSubscriptionGate, "an active subscription is required to comment")
	}
	return nil
}
