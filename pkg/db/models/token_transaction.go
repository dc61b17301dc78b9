package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/creatorden/backend/pkg/enums"
)

// TokenTransaction records an immutable token movement. Rows are append-only:
// nothing in the codebase updates or deletes them.
type TokenTransaction struct {
	ID            uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FromAccountID *uuid.UUID            `gorm:"column:from_account_id;type:uuid"`
	ToAccountID   *uuid.UUID            `gorm:"column:to_account_id;type:uuid"`
	Amount        int64                 `gorm:"column:amount;not null"`
	Kind          enums.TransactionKind `gorm:"column:kind;type:transaction_kind_enum;not null"`
	Note          *string               `gorm:"column:note"`
	PostID        *uuid.UUID            `gorm:"column:post_id;type:uuid"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime"`
}
