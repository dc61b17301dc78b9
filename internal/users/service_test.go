package users

import (
	"context"
	"strings"
	"testing"

	"github.com/creatorden/backend/pkg/db/models"
	apperrors "github.com/creatorden/backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeUserStore struct {
	byEmail map[string]*models.User
	byKey   map[string]*models.User
	byID    map[uuid.UUID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byEmail: make(map[string]*models.User),
		byKey:   make(map[string]*models.User),
		byID:    make(map[uuid.UUID]*models.User),
	}
}

func (f *fakeUserStore) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	copied := *user
	f.byEmail[user.Email] = &copied
	f.byID[user.ID] = &copied
	if user.APIKey != nil {
		f.byKey[*user.APIKey] = &copied
	}
	return nil
}

func (f *fakeUserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := f.byID[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := f.byEmail[email]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserStore) FindByAPIKey(ctx context.Context, apiKey string) (*models.User, error) {
	if user, ok := f.byKey[apiKey]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserStore) Update(ctx context.Context, user *models.User) error {
	copied := *user
	f.byID[user.ID] = &copied
	f.byEmail[user.Email] = &copied
	if user.APIKey != nil {
		f.byKey[*user.APIKey] = &copied
	}
	return nil
}

type fakeProvisioner struct {
	provisioned []uuid.UUID
	err         error
}

func (f *fakeProvisioner) Provision(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*models.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.provisioned = append(f.provisioned, userID)
	return &models.Account{ID: uuid.New(), UserID: userID, Balance: 0}, nil
}

func newTestService(t *testing.T, store *fakeUserStore, provisioner *fakeProvisioner) Service {
	t.Helper()
	svc, err := NewService(stubTxRunner{}, store, provisioner)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func TestService_Register(t *testing.T) {
	store := newFakeUserStore()
	provisioner := &fakeProvisioner{}
	svc := newTestService(t, store, provisioner)

	registered, err := svc.Register(context.Background(), RegisterInput{
		Name:  "Ada",
		Email: " Ada@Example.COM ",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if registered.User.Email != "ada@example.com" {
		t.Fatalf("email should be normalized, got %q", registered.User.Email)
	}
	if !strings.HasPrefix(registered.APIKey, "cd_live_") {
		t.Fatalf("unexpected api key shape: %q", registered.APIKey)
	}
	if len(provisioner.provisioned) != 1 || provisioner.provisioned[0] != registered.User.ID {
		t.Fatalf("expected token account provisioned for user, got %v", provisioner.provisioned)
	}
}

func TestService_RegisterDuplicateEmail(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(t, store, &fakeProvisioner{})

	input := RegisterInput{Name: "Ada", Email: "ada@example.com"}
	if _, err := svc.Register(context.Background(), input); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(context.Background(), input)
	appErr := apperrors.As(err)
	if appErr == nil || appErr.Code() != apperrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestService_RegisterValidation(t *testing.T) {
	svc := newTestService(t, newFakeUserStore(), &fakeProvisioner{})

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{name: "blank name", input: RegisterInput{Name: "  ", Email: "a@b.com"}},
		{name: "blank email", input: RegisterInput{Name: "Ada", Email: "  "}},
		{name: "malformed email", input: RegisterInput{Name: "Ada", Email: "not-an-email"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.input)
			appErr := apperrors.As(err)
			if appErr == nil || appErr.Code() != apperrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestService_FindByAPIKey(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(t, store, &fakeProvisioner{})

	registered, err := svc.Register(context.Background(), RegisterInput{
		Name:  "Ada",
		Email: "ada@example.com",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	user, err := svc.FindByAPIKey(context.Background(), registered.APIKey)
	if err != nil {
		t.Fatalf("FindByAPIKey: %v", err)
	}
	if user.ID != registered.User.ID {
		t.Fatalf("resolved wrong user: %s", user.ID)
	}

	for _, key := range []string{"", "garbage", "cd_live_"} {
		_, err := svc.FindByAPIKey(context.Background(), key)
		appErr := apperrors.As(err)
		if appErr == nil || appErr.Code() != apperrors.CodeUnauthorized {
			t.Fatalf("key %q: expected unauthorized, got %v", key, err)
		}
	}
}

func TestService_RotateAPIKey(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(t, store, &fakeProvisioner{})

	registered, err := svc.Register(context.Background(), RegisterInput{
		Name:  "Ada",
		Email: "ada@example.com",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	rotated, err := svc.RotateAPIKey(context.Background(), registered.User.ID)
	if err != nil {
		t.Fatalf("RotateAPIKey: %v", err)
	}
	if rotated == registered.APIKey {
		t.Fatal("rotation must mint a new key")
	}
	if _, err := svc.FindByAPIKey(context.Background(), rotated); err != nil {
		t.Fatalf("new key should resolve: %v", err)
	}
}
