package wallet

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/creatorden/backend/internal/ledger"
	"github.com/creatorden/backend/pkg/db/models"
	"github.com/creatorden/backend/pkg/enums"
	pkgerrors "github.com/creatorden/backend/pkg/errors"
	"github.com/creatorden/backend/pkg/metrics"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service moves tokens. Purchases mint tokens into an account; tips move
// tokens between two accounts. Every movement appends a ledger record in
// the same transaction as the balance change, so the log and the balances
// never drift apart.
type Service interface {
	Purchase(ctx context.Context, userID uuid.UUID, amount int64) (*models.Account, error)
	Tip(ctx context.Context, input TipInput) (*models.TokenTransaction, error)
	Balance(ctx context.Context, userID uuid.UUID) (int64, error)
	Provision(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*models.Account, error)
	History(ctx context.Context, userID uuid.UUID, limit int) ([]models.TokenTransaction, error)
}

// TipInput captures a tip from one user to another, optionally tied to a post.
type TipInput struct {
	FromUserID uuid.UUID
	ToUserID   uuid.UUID
	Amount     int64
	PostID     *uuid.UUID
	Note       *string
}

type service struct {
	tx            txRunner
	accounts      AccountRepository
	ledger        ledger.Service
	metrics       *metrics.WalletMetrics
	autoProvision bool
}

// NewService builds the wallet service. When autoProvision is set, a
// purchase against a user without an account creates the account first.
func NewService(tx txRunner, accounts AccountRepository, ledgerSvc ledger.Service, walletMetrics *metrics.WalletMetrics, autoProvision bool) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if accounts == nil {
		return nil, fmt.Errorf("account repository required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	return &service{
		tx:            tx,
		accounts:      accounts,
		ledger:        ledgerSvc,
		metrics:       walletMetrics,
		autoProvision: autoProvision,
	}, nil
}

func (s *service) Purchase(ctx context.Context, userID uuid.UUID, amount int64) (*models.Account, error) {
	start := time.Now()
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if amount < 1 {
		s.metrics.IncFailure("purchase", "invalid_amount")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be a positive whole number")
	}

	var account *models.Account
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		accounts := s.accounts.WithTx(tx)

		found, err := accounts.GetByUserID(ctx, userID)
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			if !s.autoProvision {
				return pkgerrors.New(pkgerrors.CodeNotFound, "token account not found")
			}
			found = &models.Account{UserID: userID, Balance: 0}
			if err := accounts.Create(ctx, found); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "provision token account")
			}
		} else if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load token account")
		}

		ok, err := accounts.AdjustBalance(ctx, userID, amount, 0)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit token account")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeDependency, "credit token account")
		}

		if _, err := s.ledger.RecordTx(ctx, tx, ledger.Entry{
			ToAccountID: &found.ID,
			Amount:      amount,
			Kind:        enums.TransactionKindPurchase,
		}); err != nil {
			return err
		}

		// Re-read inside the transaction so the returned balance reflects
		// the committed row, not the pre-update read.
		account, err = accounts.GetByUserID(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load token account")
		}
		return nil
	})
	if err != nil {
		s.metrics.IncFailure("purchase", failureReason(err))
		return nil, err
	}

	s.metrics.ObserveTransfer("purchase", amount, time.Since(start))
	return account, nil
}

func (s *service) Tip(ctx context.Context, input TipInput) (*models.TokenTransaction, error) {
	start := time.Now()
	if input.FromUserID == uuid.Nil || input.ToUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "both sender and recipient are required")
	}
	if input.FromUserID == input.ToUserID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot tip yourself")
	}
	if input.Amount < 1 {
		s.metrics.IncFailure("tip", "invalid_amount")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be a positive whole number")
	}

	var record *models.TokenTransaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		accounts := s.accounts.WithTx(tx)

		from, err := s.loadAccount(ctx, accounts, input.FromUserID, "sender account")
		if err != nil {
			return err
		}
		to, err := s.loadAccount(ctx, accounts, input.ToUserID, "recipient account")
		if err != nil {
			return err
		}

		debited, err := accounts.AdjustBalance(ctx, input.FromUserID, -input.Amount, 0)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "debit sender")
		}
		if !debited {
			available := from.Balance
			if current, err := accounts.GetByUserID(ctx, input.FromUserID); err == nil {
				available = current.Balance
			}
			return pkgerrors.New(pkgerrors.CodeInsufficientBalance, "insufficient token balance").
				WithDetails(map[string]any{"required": input.Amount, "available": available})
		}

		credited, err := accounts.AdjustBalance(ctx, input.ToUserID, input.Amount, 0)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit recipient")
		}
		if !credited {
			return pkgerrors.New(pkgerrors.CodeDependency, "credit recipient")
		}

		record, err = s.ledger.RecordTx(ctx, tx, ledger.Entry{
			FromAccountID: &from.ID,
			ToAccountID:   &to.ID,
			Amount:        input.Amount,
			Kind:          enums.TransactionKindTip,
			PostID:        input.PostID,
			Note:          input.Note,
		})
		return err
	})
	if err != nil {
		s.metrics.IncFailure("tip", failureReason(err))
		return nil, err
	}

	s.metrics.ObserveTransfer("tip", input.Amount, time.Since(start))
	return record, nil
}

func (s *service) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	account, err := s.loadAccount(ctx, s.accounts, userID, "token account")
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}

// Provision creates an empty token account for a user. Safe to call inside
// a larger transaction; pass nil to run standalone.
func (s *service) Provision(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*models.Account, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	account := &models.Account{UserID: userID, Balance: 0}
	if err := s.accounts.WithTx(tx).Create(ctx, account); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "provision token account")
	}
	return account, nil
}

func (s *service) History(ctx context.Context, userID uuid.UUID, limit int) ([]models.TokenTransaction, error) {
	account, err := s.loadAccount(ctx, s.accounts, userID, "token account")
	if err != nil {
		return nil, err
	}
	return s.ledger.ListByAccount(ctx, account.ID, limit)
}

func (s *service) loadAccount(ctx context.Context, accounts AccountRepository, userID uuid.UUID, label string) (*models.Account, error) {
	account, err := accounts.GetByUserID(ctx, userID)
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, label+" not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+label+" account")
	}
	return account, nil
}

func failureReason(err error) string {
	appErr := pkgerrors.As(err)
	if appErr == nil {
		return "internal"
	}
	switch appErr.Code() {
	case pkgerrors.CodeValidation:
		return "invalid_amount"
	case pkgerrors.CodeNotFound:
		return "account_not_found"
	case pkgerrors.CodeInsufficientBalance:
		return "insufficient_balance"
	case pkgerrors.CodeDependency:
		return "storage_unavailable"
	default:
		return "internal"
	}
}
