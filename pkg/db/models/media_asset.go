package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/creatorden/backend/pkg/enums"
)

// MediaAsset stores a reference to externally hosted media. Only the URL is
// kept; uploads are out of scope.
type MediaAsset struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CreatorID uuid.UUID       `gorm:"column:creator_id;type:uuid;not null;index"`
	URL       string          `gorm:"column:url;not null"`
	MediaType enums.MediaType `gorm:"column:media_type;type:media_type_enum;not null"`
	Title     *string         `gorm:"column:title"`
	SizeBytes *int64          `gorm:"column:size_bytes"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
