package comments

import (
	"context"
	"fmt"
	"strings"

	"github.com/creatorden/backend/pkg/db/models"
	pkgerrors "github.com/creatorden/backend/pkg/errors"
	"github.com/google/uuid"
)

const maxCommentLength = 2000

// commentGate decides whether the user may comment on the post.
type commentGate interface {
	CanComment(ctx context.Context, userID, postID uuid.UUID) error
}

type Service interface {
	Add(ctx context.Context, userID, postID uuid.UUID, text string) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uuid.UUID, limit int) ([]models.Comment, error)
}

type service struct {
	repo Repository
	gate commentGate
}

func NewService(repo Repository, gate commentGate) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("comment repository required")
	}
	if gate == nil {
		return nil, fmt.Errorf("comment gate required")
	}
	return &service{repo: repo, gate: gate}, nil
}

// Add runs the gate before anything is stored. SubscriptionRequired and
// content lookup errors pass through untouched so controllers map them.
func (s *service) Add(ctx context.Context, userID, postID uuid.UUID, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "comment text required")
	}
	if len(text) > maxCommentLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "comment too long")
	}

	if err := s.gate.CanComment(ctx, userID, postID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID: postID,
		UserID: userID,
		Text:   text,
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create comment")
	}
	return comment, nil
}

func (s *service) ListByPost(ctx context.Context, postID uuid.UUID, limit int) ([]models.Comment, error) {
	records, err := s.repo.ListByPost(ctx, postID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list comments")
	}
	return records, nil
}
