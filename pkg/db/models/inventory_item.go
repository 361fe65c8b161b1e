package models

import "time"

// InventoryItem tracks available stock per product.
type InventoryItem struct {
	ProductID string    `gorm:"column:product_id;type:text;primaryKey"`
	Available int       `gorm:"column:available;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
