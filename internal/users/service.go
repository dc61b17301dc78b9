package users

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/creatorden/backend/pkg/db"
	"github.com/creatorden/backend/pkg/db/models"
	pkgerrors "github.com/creatorden/backend/pkg/errors"
	"github.com/creatorden/backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// accountProvisioner creates the user's token account inside the
// registration transaction.
type accountProvisioner interface {
	Provision(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*models.Account, error)
}

// RegisterInput is the payload for onboarding a new user.
type RegisterInput struct {
	Name      string
	Email     string
	IsCreator bool
	Bio       *string
	AvatarURL *string
}

// Registered pairs the stored user with the freshly minted API key. The key
// is returned exactly once; only its value is stored for lookup.
type Registered struct {
	User   *models.User
	APIKey string
}

type Service interface {
	Register(ctx context.Context, input RegisterInput) (*Registered, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByAPIKey(ctx context.Context, apiKey string) (*models.User, error)
	RotateAPIKey(ctx context.Context, userID uuid.UUID) (string, error)
}

type service struct {
	tx       txRunner
	repo     Repository
	accounts accountProvisioner
}

func NewService(tx txRunner, repo Repository, accounts accountProvisioner) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if accounts == nil {
		return nil, fmt.Errorf("account provisioner required")
	}
	return &service{tx: tx, repo: repo, accounts: accounts}, nil
}

// Register creates the user, mints an API key and provisions an empty token
// account, all in one transaction.
func (s *service) Register(ctx context.Context, input RegisterInput) (*Registered, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}

	apiKey, err := security.NewAPIKey()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint api key")
	}

	user := &models.User{
		Name:      name,
		Email:     email,
		IsCreator: input.IsCreator,
		APIKey:    &apiKey,
		Bio:       input.Bio,
		AvatarURL: input.AvatarURL,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !stderrors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check user email")
		}

		if err := repo.Create(ctx, user); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
		}

		if _, err := s.accounts.Provision(ctx, tx, user.ID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Registered{User: user, APIKey: apiKey}, nil
}

func (s *service) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func (s *service) FindByAPIKey(ctx context.Context, apiKey string) (*models.User, error) {
	if !security.LooksLikeAPIKey(apiKey) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid api key")
	}
	user, err := s.repo.FindByAPIKey(ctx, apiKey)
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid api key")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up api key")
	}
	return user, nil
}

func (s *service) RotateAPIKey(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := s.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	apiKey, err := security.NewAPIKey()
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint api key")
	}
	user.APIKey = &apiKey
	if err := s.repo.Update(ctx, user); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store api key")
	}
	return apiKey, nil
}
