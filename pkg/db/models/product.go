package models

import "time"

// Product is a catalog item. IDs are external handles supplied by seed data,
// not generated uuids, so agents can reference stable product ids.
type Product struct {
	ID         string    `gorm:"column:id;type:text;primaryKey"`
	Title      string    `gorm:"column:title;type:text;not null"`
	PriceCents int       `gorm:"column:price_cents;not null"`
	Currency   string    `gorm:"column:currency;type:text;not null;default:'USD'"`
	Active     bool      `gorm:"column:active;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
