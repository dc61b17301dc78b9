package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tier is a creator-defined access level. Level runs 1..10; a higher level
// unlocks everything a lower one does.
type Tier struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CreatorID    uuid.UUID       `gorm:"column:creator_id;type:uuid;not null;index"`
	Name         string          `gorm:"column:name;not null"`
	Description  *string         `gorm:"column:description"`
	PriceMonthly decimal.Decimal `gorm:"column:price_monthly;type:numeric(12,2);not null"`
	Level        int             `gorm:"column:level;not null;default:1"`
	IsActive     bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
