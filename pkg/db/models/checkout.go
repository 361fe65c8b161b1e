package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storemock-backend/pkg/enums"
	"github.com/angelmondragon/storemock-backend/pkg/types"
)

// Checkout is a mutable checkout session. Totals are cached in cents and
// refreshed on every mutation; the fulfillment column holds the full
// method/destination/option tree as one jsonb document.
type Checkout struct {
	ID                  uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	Status              enums.CheckoutStatus    `gorm:"column:status;type:text;not null;default:'incomplete'"`
	Currency            string                  `gorm:"column:currency;type:text;not null;default:'USD'"`
	Buyer               *types.JSONMap          `gorm:"column:buyer;type:jsonb;serializer:json"`
	SubtotalCents       int                     `gorm:"column:subtotal_cents;not null;default:0"`
	DiscountsCents      int                     `gorm:"column:discounts_cents;not null;default:0"`
	FulfillmentCents    int                     `gorm:"column:fulfillment_cents;not null;default:0"`
	TotalCents          int                     `gorm:"column:total_cents;not null;default:0"`
	Fulfillment         *types.FulfillmentState `gorm:"column:fulfillment;type:jsonb;serializer:json"`
	PaymentHandler      *string                 `gorm:"column:payment_handler"`
	PaymentInstrumentID *string                 `gorm:"column:payment_instrument_id"`
	AgentProfileURL     *string                 `gorm:"column:agent_profile_url"`
	Items               []CheckoutLineItem      `gorm:"foreignKey:CheckoutID;constraint:OnDelete:CASCADE"`
	Discounts           []CheckoutDiscount      `gorm:"foreignKey:CheckoutID;constraint:OnDelete:CASCADE"`
	CompletedAt         *time.Time              `gorm:"column:completed_at"`
	CanceledAt          *time.Time              `gorm:"column:canceled_at"`
	CreatedAt           time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
