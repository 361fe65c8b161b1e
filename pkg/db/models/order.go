package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storemock-backend/pkg/enums"
	"github.com/angelmondragon/storemock-backend/pkg/types"
)

// Order is the immutable snapshot produced when a checkout completes. Only
// status, fulfillment events/expectations and adjustments change afterwards.
type Order struct {
	ID               uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	CheckoutID       uuid.UUID               `gorm:"column:checkout_id;type:uuid;not null;uniqueIndex"`
	BuyerID          *string                 `gorm:"column:buyer_id;type:text;index"`
	Status           enums.OrderStatus       `gorm:"column:status;type:text;not null;default:'pending'"`
	Currency         string                  `gorm:"column:currency;type:text;not null;default:'USD'"`
	SubtotalCents    int                     `gorm:"column:subtotal_cents;not null"`
	DiscountsCents   int                     `gorm:"column:discounts_cents;not null;default:0"`
	FulfillmentCents int                     `gorm:"column:fulfillment_cents;not null;default:0"`
	TotalCents       int                     `gorm:"column:total_cents;not null"`
	Fulfillment      types.OrderFulfillment  `gorm:"column:fulfillment;type:jsonb;serializer:json"`
	Adjustments      []types.OrderAdjustment `gorm:"column:adjustments;type:jsonb;serializer:json"`
	Items            []OrderLineItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CanceledAt       *time.Time              `gorm:"column:canceled_at"`
	CreatedAt        time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
