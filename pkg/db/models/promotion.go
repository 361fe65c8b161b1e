package models

import (
	"time"

	"github.com/google/uuid"
)

// Promotion is a free-shipping promotion. Exactly one qualifier is set:
// MinSubtotalCents makes the promotion threshold-based, EligibleItemIDs makes
// it item-based.
type Promotion struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Type             string    `gorm:"column:type;type:text;not null;default:'free_shipping'"`
	Title            string    `gorm:"column:title;type:text;not null"`
	MinSubtotalCents *int      `gorm:"column:min_subtotal_cents"`
	EligibleItemIDs  []string  `gorm:"column:eligible_item_ids;type:jsonb;serializer:json"`
	Active           bool      `gorm:"column:active;not null"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
