package products

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/angelmondragon/storemock-backend/pkg/db/models"
)

// Repository exposes catalog and inventory lookups.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id string) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	Available(ctx context.Context, productID string) (int, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a products repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("id = ? AND active = ?", id, true).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []models.Product
	err := r.db.WithContext(ctx).Where("id IN ? AND active = ?", ids, true).Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Available returns the stock on hand for a product. Products without an
// inventory row are treated as out of stock.
func (r *repository) Available(ctx context.Context, productID string) (int, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return item.Available, nil
}
