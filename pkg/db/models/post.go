package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is a gated content unit. AccessLevelRequired runs 1..10 and drafts are
// never visible to viewers regardless of tier.
type Post struct {
	ID                  uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CreatorID           uuid.UUID  `gorm:"column:creator_id;type:uuid;not null;index"`
	Title               string     `gorm:"column:title;not null"`
	BodyText            *string    `gorm:"column:body_text"`
	MediaIDs            string     `gorm:"column:media_ids;not null;default:''"`
	AccessLevelRequired int        `gorm:"column:access_level_required;not null;default:1"`
	IsDraft             bool       `gorm:"column:is_draft;not null;default:false"`
	ScheduledAt         *time.Time `gorm:"column:scheduled_at"`
	PublishedAt         *time.Time `gorm:"column:published_at"`
	CreatedAt           time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
