package ledger

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/creatorden/backend/pkg/db/models"
	"github.com/creatorden/backend/pkg/enums"
	apperrors "github.com/creatorden/backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeRepository struct {
	createFn func(ctx context.Context, record *models.TokenTransaction) error
	sumFn    func(ctx context.Context, accountID uuid.UUID) (int64, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Create(ctx context.Context, record *models.TokenTransaction) error {
	if f.createFn != nil {
		return f.createFn(ctx, record)
	}
	return nil
}

func (f *fakeRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]models.TokenTransaction, error) {
	return nil, nil
}

func (f *fakeRepository) SumTipsTo(ctx context.Context, accountID uuid.UUID) (int64, error) {
	if f.sumFn != nil {
		return f.sumFn(ctx, accountID)
	}
	return 0, nil
}

func ptr[T any](v T) *T { return &v }

func TestService_RecordPurchase(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	to := uuid.New()
	var created *models.TokenTransaction
	repo.createFn = func(ctx context.Context, record *models.TokenTransaction) error {
		created = record
		return nil
	}

	got, err := svc.Record(context.Background(), Entry{
		ToAccountID: &to,
		Amount:      250,
		Kind:        enums.TransactionKindPurchase,
	})
	if err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if created == nil {
		t.Fatal("expected transaction to be created")
	}
	if created.FromAccountID != nil {
		t.Fatalf("purchase must not carry a source account: %+v", created)
	}
	if created.ToAccountID == nil || *created.ToAccountID != to {
		t.Fatalf("unexpected destination: %+v", created)
	}
	if created.Amount != 250 || created.Kind != "purchase" {
		t.Fatalf("unexpected transaction data: %+v", created)
	}
	if got != created {
		t.Fatal("service should return created transaction")
	}
}

func TestService_RecordTip(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	from := uuid.New()
	to := uuid.New()
	post := uuid.New()
	var created *models.TokenTransaction
	repo.createFn = func(ctx context.Context, record *models.TokenTransaction) error {
		created = record
		return nil
	}

	if _, err := svc.Record(context.Background(), Entry{
		FromAccountID: &from,
		ToAccountID:   &to,
		Amount:        40,
		Kind:          enums.TransactionKindTip,
		PostID:        &post,
		Note:          ptr("great post"),
	}); err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if created.FromAccountID == nil || *created.FromAccountID != from {
		t.Fatalf("missing source account: %+v", created)
	}
	if created.PostID == nil || *created.PostID != post {
		t.Fatalf("missing post reference: %+v", created)
	}
	if created.Note == nil || *created.Note != "great post" {
		t.Fatalf("missing note: %+v", created)
	}
}

func TestService_RecordValidation(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	acct := uuid.New()
	other := uuid.New()
	tests := []struct {
		name  string
		entry Entry
	}{
		{
			name:  "zero amount",
			entry: Entry{ToAccountID: &acct, Amount: 0, Kind: enums.TransactionKindPurchase},
		},
		{
			name:  "negative amount",
			entry: Entry{ToAccountID: &acct, Amount: -5, Kind: enums.TransactionKindPurchase},
		},
		{
			name:  "invalid kind",
			entry: Entry{ToAccountID: &acct, Amount: 10, Kind: enums.TransactionKind("refund")},
		},
		{
			name:  "purchase missing destination",
			entry: Entry{Amount: 10, Kind: enums.TransactionKindPurchase},
		},
		{
			name:  "purchase with source",
			entry: Entry{FromAccountID: &other, ToAccountID: &acct, Amount: 10, Kind: enums.TransactionKindPurchase},
		},
		{
			name:  "tip missing source",
			entry: Entry{ToAccountID: &acct, Amount: 10, Kind: enums.TransactionKindTip},
		},
		{
			name:  "tip to self",
			entry: Entry{FromAccountID: &acct, ToAccountID: &acct, Amount: 10, Kind: enums.TransactionKindTip},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Record(context.Background(), tc.entry)
			if err == nil {
				t.Fatalf("expected validation error for %s", tc.name)
			}
			var appErr *apperrors.Error
			if !stderrors.As(err, &appErr) || appErr.Code() != apperrors.CodeValidation {
				t.Fatalf("expected validation code, got %v", err)
			}
		})
	}
}

func TestService_RecordRepoError(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	expectedErr := stderrors.New("boom")
	repo.createFn = func(ctx context.Context, record *models.TokenTransaction) error {
		return expectedErr
	}

	to := uuid.New()
	_, err = svc.Record(context.Background(), Entry{
		ToAccountID: &to,
		Amount:      10,
		Kind:        enums.TransactionKindPurchase,
	})
	if !stderrors.Is(err, expectedErr) {
		t.Fatalf("expected repo error to bubble up, got %v", err)
	}
	var appErr *apperrors.Error
	if !stderrors.As(err, &appErr) || appErr.Code() != apperrors.CodeDependency {
		t.Fatalf("expected dependency code, got %v", err)
	}
}

func TestService_SumTipsTo(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	acct := uuid.New()
	repo.sumFn = func(ctx context.Context, accountID uuid.UUID) (int64, error) {
		if accountID != acct {
			t.Fatalf("unexpected account id: %s", accountID)
		}
		return 1234, nil
	}

	total, err := svc.SumTipsTo(context.Background(), acct)
	if err != nil {
		t.Fatalf("SumTipsTo error: %v", err)
	}
	if total != 1234 {
		t.Fatalf("expected 1234, got %d", total)
	}
}
