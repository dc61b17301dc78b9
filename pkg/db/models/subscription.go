package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription links a subscriber to a creator at a tier. Cancellations flip
// the active flag; rows are never deleted.
type Subscription struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	CreatorID uuid.UUID `gorm:"column:creator_id;type:uuid;not null;index"`
	TierID    uuid.UUID `gorm:"column:tier_id;type:uuid;not null"`
	Active    bool      `gorm:"column:active;not null;default:true"`
	StartedAt time.Time `gorm:"column:started_at;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
