package creators

import (
	"context"
	stderrors "errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/creatorden/backend/pkg/db"
	"github.com/creatorden/backend/pkg/db/models"
	pkgerrors "github.com/creatorden/backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var handlePattern = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)

// userFlipper marks a user as a creator once their profile exists.
type userFlipper interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// CreateProfileInput captures a new creator profile.
type CreateProfileInput struct {
	UserID     uuid.UUID
	Handle     string
	Headline   *string
	About      *string
	Categories []string
}

type Service interface {
	Create(ctx context.Context, input CreateProfileInput) (*models.CreatorProfile, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.CreatorProfile, error)
	FindByHandle(ctx context.Context, handle string) (*models.CreatorProfile, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	tx    txRunner
	repo  Repository
	users userFlipper
}

func NewService(tx txRunner, repo Repository, users userFlipper) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("creator repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user store required")
	}
	return &service{tx: tx, repo: repo, users: users}, nil
}

// Create stores the profile and flips the user's creator flag in one
// transaction.
func (s *service) Create(ctx context.Context, input CreateProfileInput) (*models.CreatorProfile, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	handle := strings.ToLower(strings.TrimSpace(input.Handle))
	if !handlePattern.MatchString(handle) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			"handle must be 3-30 characters of lowercase letters, digits or underscores")
	}

	user, err := s.users.FindByID(ctx, input.UserID)
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	profile := &models.CreatorProfile{
		UserID:     input.UserID,
		Handle:     handle,
		Headline:   input.Headline,
		About:      input.About,
		Categories: strings.Join(input.Categories, ","),
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, profile); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "handle already taken")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create profile")
		}
		if !user.IsCreator {
			user.IsCreator = true
			if err := s.users.Update(ctx, user); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark user as creator")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *service) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.CreatorProfile, error) {
	profile, err := s.repo.FindByUserID(ctx, userID)
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "creator profile not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	return profile, nil
}

func (s *service) FindByHandle(ctx context.Context, handle string) (*models.CreatorProfile, error) {
	profile, err := s.repo.FindByHandle(ctx, strings.ToLower(strings.TrimSpace(handle)))
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "creator profile not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	return profile, nil
}

// CategoryList splits the stored CSV into a slice for responses.
func CategoryList(profile *models.CreatorProfile) []string {
	if profile == nil || profile.Categories == "" {
		return nil
	}
	return strings.Split(profile.Categories, ",")
}
