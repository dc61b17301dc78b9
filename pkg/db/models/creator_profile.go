package models

import (
	"time"

	"github.com/google/uuid"
)

// CreatorProfile extends a creator user without cluttering the users table.
type CreatorProfile struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Handle     string    `gorm:"column:handle;not null;uniqueIndex"`
	Headline   *string   `gorm:"column:headline"`
	About      *string   `gorm:"column:about"`
	Categories string    `gorm:"column:categories;not null;default:''"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
