package models

import (
	"time"

	"github.com/angelmondragon/storemock-backend/pkg/enums"
)

// DiscountCode is a catalog entry for a redeemable code. Value is a whole
// percentage for percentage codes and cents for fixed codes.
type DiscountCode struct {
	Code      string             `gorm:"column:code;type:text;primaryKey"`
	Title     string             `gorm:"column:title;type:text;not null"`
	Type      enums.DiscountType `gorm:"column:type;type:text;not null"`
	Value     int                `gorm:"column:value;not null"`
	Active    bool               `gorm:"column:active;not null"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
