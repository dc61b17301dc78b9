package ledger

import (
	"context"
	"fmt"

	"github.com/creatorden/backend/pkg/db/models"
	"github.com/creatorden/backend/pkg/enums"
	"github.com/creatorden/backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Entry describes a single movement of tokens to be appended to the log.
// Purchases mint tokens from outside the system, so FromAccountID is nil.
// Tips move tokens between two accounts and require both sides.
type Entry struct {
	FromAccountID *uuid.UUID
	ToAccountID   *uuid.UUID
	Amount        int64
	Kind          enums.TransactionKind
	PostID        *uuid.UUID
	Note          *string
}

type Service interface {
	Record(ctx context.Context, entry Entry) (*models.TokenTransaction, error)
	RecordTx(ctx context.Context, tx *gorm.DB, entry Entry) (*models.TokenTransaction, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]models.TokenTransaction, error)
	SumTipsTo(ctx context.Context, accountID uuid.UUID) (int64, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Record(ctx context.Context, entry Entry) (*models.TokenTransaction, error) {
	return s.RecordTx(ctx, nil, entry)
}

func (s *service) RecordTx(ctx context.Context, tx *gorm.DB, entry Entry) (*models.TokenTransaction, error) {
	if err := validateEntry(entry); err != nil {
		return nil, err
	}

	record := &models.TokenTransaction{
		FromAccountID: entry.FromAccountID,
		ToAccountID:   entry.ToAccountID,
		Amount:        entry.Amount,
		Kind:          entry.Kind,
		PostID:        entry.PostID,
		Note:          entry.Note,
	}
	if err := s.repo.WithTx(tx).Create(ctx, record); err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "append ledger record")
	}
	return record, nil
}

func (s *service) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]models.TokenTransaction, error) {
	records, err := s.repo.ListByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "list ledger records")
	}
	return records, nil
}

func (s *service) SumTipsTo(ctx context.Context, accountID uuid.UUID) (int64, error) {
	total, err := s.repo.SumTipsTo(ctx, accountID)
	if err != nil {
		return 0, errors.Wrap(errors.CodeDependency, err, "sum tips")
	}
	return total, nil
}

func validateEntry(entry Entry) error {
	if entry.Amount < 1 {
		return errors.New(errors.CodeValidation, "amount must be a positive whole number")
	}
	if !entry.Kind.IsValid() {
		return errors.New(errors.CodeValidation, "unknown transaction kind")
	}
	switch entry.Kind {
	case enums.TransactionKindPurchase:
		if entry.ToAccountID == nil {
			return errors.New(errors.CodeValidation, "purchase requires a destination account")
		}
		if entry.FromAccountID != nil {
			return errors.New(errors.CodeValidation, "purchase must not name a source account")
		}
	case enums.TransactionKindTip:
		if entry.FromAccountID == nil || entry.ToAccountID == nil {
			return errors.New(errors.CodeValidation, "tip requires both accounts")
		}
		if *entry.FromAccountID == *entry.ToAccountID {
			return errors.New(errors.CodeValidation, "tip source and destination must differ")
		}
	}
	return nil
}
