package wallet

import (
	"context"
	"time"

	"github.com/creatorden/backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccountRepository manages token account rows. Balance changes go through
// AdjustBalance, which applies the delta with a conditional update so the
// floor check and the write happen in a single statement.
type AccountRepository interface {
	WithTx(tx *gorm.DB) AccountRepository
	Create(ctx context.Context, account *models.Account) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Account, error)
	AdjustBalance(ctx context.Context, userID uuid.UUID, delta int64, floor int64) (bool, error)
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) WithTx(tx *gorm.DB) AccountRepository {
	if tx == nil {
		return r
	}
	return &accountRepository{db: tx}
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *accountRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// AdjustBalance applies delta to the account balance only when the result
// stays at or above floor. Returns false when the guard rejects the update
// or the account row does not exist.
func (r *accountRepository) AdjustBalance(ctx context.Context, userID uuid.UUID, delta int64, floor int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("user_id = ? AND balance + ? >= ?", userID, delta, floor).
		UpdateColumns(map[string]any{
			"balance":    gorm.Expr("balance + ?", delta),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
