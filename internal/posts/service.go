package posts

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/creatorden/backend/internal/access"
	"github.com/creatorden/backend/internal/moderation"
	"github.com/creatorden/backend/pkg/db/models"
	pkgerrors "github.com/creatorden/backend/pkg/errors"
	"github.com/creatorden/backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinAccessLevel = 1
	MaxAccessLevel = 10
)

// levelResolver supplies the viewer's effective tier level for a creator.
type levelResolver interface {
	EffectiveLevel(ctx context.Context, userID, creatorID uuid.UUID) (*int, error)
}

// CreatePostInput captures a new post.
type CreatePostInput struct {
	CreatorID           uuid.UUID
	Title               string
	BodyText            *string
	MediaIDs            []uuid.UUID
	AccessLevelRequired int
	IsDraft             bool
	ScheduledAt         *time.Time
}

// Page is one page of gated posts plus the cursor for the next one.
type Page struct {
	Posts      []models.Post
	NextCursor string
}

type Service interface {
	Create(ctx context.Context, input CreatePostInput) (*models.Post, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	ListVisible(ctx context.Context, creatorID uuid.UUID, viewerID uuid.UUID, params pagination.Params) (*Page, error)
	Publish(ctx context.Context, creatorID, postID uuid.UUID) error
	OwnerAndDraft(ctx context.Context, postID uuid.UUID) (uuid.UUID, bool, error)
	CountByCreator(ctx context.Context, creatorID uuid.UUID) (int64, error)
}

type service struct {
	repo       Repository
	levels     levelResolver
	classifier moderation.ContentClassifier
}

func NewService(repo Repository, levels levelResolver, classifier moderation.ContentClassifier) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("post repository required")
	}
	if levels == nil {
		return nil, fmt.Errorf("level resolver required")
	}
	if classifier == nil {
		return nil, fmt.Errorf("content classifier required")
	}
	return &service{repo: repo, levels: levels, classifier: classifier}, nil
}

// Create runs the classifier over title and body before anything is stored.
func (s *service) Create(ctx context.Context, input CreatePostInput) (*models.Post, error) {
	if input.CreatorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "creator id required")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if input.AccessLevelRequired < MinAccessLevel || input.AccessLevelRequired > MaxAccessLevel {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("access level must be between %d and %d", MinAccessLevel, MaxAccessLevel))
	}

	text := title
	if input.BodyText != nil {
		text += "\n" + *input.BodyText
	}
	verdict, err := s.classifier.Classify(ctx, text)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "classify content")
	}
	if verdict.Flagged {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content violates platform policy").
			WithDetails(map[string]any{"labels": verdict.Labels})
	}

	post := &models.Post{
		CreatorID:           input.CreatorID,
		Title:               title,
		BodyText:            input.BodyText,
		MediaIDs:            joinIDs(input.MediaIDs),
		AccessLevelRequired: input.AccessLevelRequired,
		IsDraft:             input.IsDraft,
		ScheduledAt:         input.ScheduledAt,
	}
	if !input.IsDraft {
		now := time.Now().UTC()
		post.PublishedAt = &now
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create post")
	}
	return post, nil
}

func (s *service) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load post")
	}
	return post, nil
}

// ListVisible pages through a creator's feed, dropping every post the viewer
// may not see. The creator sees their own drafts; everyone else goes through
// the gate with their effective tier level.
func (s *service) ListVisible(ctx context.Context, creatorID uuid.UUID, viewerID uuid.UUID, params pagination.Params) (*Page, error) {
	if creatorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "creator id required")
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	isOwner := viewerID != uuid.Nil && viewerID == creatorID
	var viewerLevel *int
	if !isOwner {
		viewerLevel, err = s.levels.EffectiveLevel(ctx, viewerID, creatorID)
		if err != nil {
			return nil, err
		}
	}

	visible := make([]models.Post, 0, limit)
	for len(visible) < limit+1 {
		batch, err := s.repo.ListByCreator(ctx, creatorID, cursor, pagination.LimitWithBuffer(limit))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list posts")
		}
		if len(batch) == 0 {
			break
		}
		for _, post := range batch {
			if isOwner || access.CanView(viewerLevel, post.AccessLevelRequired, post.IsDraft).Allowed {
				visible = append(visible, post)
			}
		}
		last := batch[len(batch)-1]
		cursor = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
		if len(batch) < pagination.LimitWithBuffer(limit) {
			break
		}
	}

	page := &Page{}
	if len(visible) > limit {
		visible = visible[:limit]
		last := visible[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	page.Posts = visible
	return page, nil
}

func (s *service) Publish(ctx context.Context, creatorID, postID uuid.UUID) error {
	post, err := s.FindByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.CreatorID != creatorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "post belongs to another creator")
	}
	if err := s.repo.Publish(ctx, postID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "publish post")
	}
	return nil
}

// OwnerAndDraft implements the content lookup side of the access gate.
func (s *service) OwnerAndDraft(ctx context.Context, postID uuid.UUID) (uuid.UUID, bool, error) {
	post, err := s.FindByID(ctx, postID)
	if err != nil {
		return uuid.Nil, false, err
	}
	return post.CreatorID, post.IsDraft, nil
}

func (s *service) CountByCreator(ctx context.Context, creatorID uuid.UUID) (int64, error) {
	count, err := s.repo.CountByCreator(ctx, creatorID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count posts")
	}
	return count, nil
}

func joinIDs(ids []uuid.UUID) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ",")
}

// MediaIDList splits the stored CSV back into UUIDs, skipping anything that
// no longer parses.
func MediaIDList(post *models.Post) []uuid.UUID {
	if post == nil || post.MediaIDs == "" {
		return nil
	}
	parts := strings.Split(post.MediaIDs, ",")
	out := make([]uuid.UUID, 0, len(parts))
	for _, part := range parts {
		if id, err := uuid.Parse(part); err == nil {
			out = append(out, id)
		}
	}
	return out
}
