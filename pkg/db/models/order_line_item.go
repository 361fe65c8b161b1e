package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderLineItem is a frozen copy of a checkout line item. It gets a fresh id
// so order lines never alias checkout lines.
type OrderLineItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderID        uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID      string    `gorm:"column:product_id;type:text;not null"`
	Title          string    `gorm:"column:title;type:text;not null"`
	UnitPriceCents int       `gorm:"column:unit_price_cents;not null"`
	Quantity       int       `gorm:"column:quantity;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
