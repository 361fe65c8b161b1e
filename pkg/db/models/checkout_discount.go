package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storemock-backend/pkg/enums"
)

// CheckoutDiscount is a discount code applied to a checkout. Type and value
// are snapshotted from the code catalog so later catalog edits do not change
// an in-flight session.
type CheckoutDiscount struct {
	ID         uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	CheckoutID uuid.UUID          `gorm:"column:checkout_id;type:uuid;not null;uniqueIndex:idx_checkout_discount_code"`
	Code       string             `gorm:"column:code;type:text;not null;uniqueIndex:idx_checkout_discount_code"`
	Title      string             `gorm:"column:title;type:text;not null"`
	Type       enums.DiscountType `gorm:"column:type;type:text;not null"`
	Value      int                `gorm:"column:value;not null"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime"`
}
