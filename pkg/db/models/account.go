package models

import (
	"time"

	"github.com/google/uuid"
)

// Account holds a user's token balance. Balances move only through the
// wallet transfer engine; the balance column carries a CHECK (balance >= 0)
// constraint as a second line of defense.
type Account struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Balance   int64     `gorm:"column:balance;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
