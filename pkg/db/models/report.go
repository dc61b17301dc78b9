package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/creatorden/backend/pkg/enums"
)

// Report is a user-filed moderation flag against a post, comment or user.
type Report struct {
	ID         uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TargetType enums.ReportTargetType `gorm:"column:target_type;type:report_target_type_enum;not null"`
	TargetID   uuid.UUID              `gorm:"column:target_id;type:uuid;not null"`
	Reason     string                 `gorm:"column:reason;not null"`
	ReporterID uuid.UUID              `gorm:"column:reporter_id;type:uuid;not null"`
	Status     enums.ReportStatus     `gorm:"column:status;type:report_status_enum;not null;default:'open'"`
	CreatedAt  time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
