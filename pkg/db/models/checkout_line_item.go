package models

import (
	"time"

	"github.com/google/uuid"
)

// CheckoutLineItem holds one product line on a checkout. Unit price is
// snapshotted from the catalog at add time.
type CheckoutLineItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CheckoutID     uuid.UUID `gorm:"column:checkout_id;type:uuid;not null;index"`
	ProductID      string    `gorm:"column:product_id;type:text;not null"`
	Title          string    `gorm:"column:title;type:text;not null"`
	UnitPriceCents int       `gorm:"column:unit_price_cents;not null"`
	Quantity       int       `gorm:"column:quantity;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
