package models

import (
	"time"

	"github.com/angelmondragon/storemock-backend/pkg/enums"
)

// ShippingRate is one row in the rate table. IDs are stable handles such as
// "standard" or "express_us" because fulfillment selections reference them
// directly. CountryCode is an ISO 3166-1 alpha-2 code or the literal
// "default" fallback row.
type ShippingRate struct {
	ID              string                       `gorm:"column:id;type:text;primaryKey"`
	Title           string                       `gorm:"column:title;type:text;not null"`
	MethodType      enums.FulfillmentMethodType  `gorm:"column:method_type;type:text;not null;default:'shipping'"`
	CountryCode     string                       `gorm:"column:country_code;type:text;not null;default:'default';index"`
	ServiceLevel    enums.ServiceLevel           `gorm:"column:service_level;type:text;not null;default:'standard'"`
	PriceCents      int                          `gorm:"column:price_cents;not null"`
	DeliveryDaysMin int                          `gorm:"column:delivery_days_min;not null;default:0"`
	DeliveryDaysMax int                          `gorm:"column:delivery_days_max;not null;default:0"`
	Active          bool                         `gorm:"column:active;not null"`
	CreatedAt       time.Time                    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time                    `gorm:"column:updated_at;autoUpdateTime"`
}
