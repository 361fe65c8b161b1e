package fulfillment

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/angelmondragon/storemock-backend/pkg/db/models"
	"github.com/angelmondragon/storemock-backend/pkg/enums"
)

// Repository exposes rate table and promotion lookups.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListRatesForCountry(ctx context.Context, countryCode string) ([]models.ShippingRate, error)
	FindRateByID(ctx context.Context, id string) (*models.ShippingRate, error)
	ListFreeShippingPromotions(ctx context.Context) ([]models.Promotion, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a fulfillment repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListRatesForCountry(ctx context.Context, countryCode string) ([]models.ShippingRate, error) {
	var rates []models.ShippingRate
	err := r.db.WithContext(ctx).
		Where("active = ? AND (country_code = ? OR country_code = ?)", true, countryCode, enums.RateCountryDefault).
		Order("id").
		Find(&rates).Error
	if err != nil {
		return nil, err
	}
	return rates, nil
}

func (r *repository) FindRateByID(ctx context.Context, id string) (*models.ShippingRate, error) {
	var rate models.ShippingRate
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rate, nil
}

func (r *repository) ListFreeShippingPromotions(ctx context.Context) ([]models.Promotion, error) {
	var promos []models.Promotion
	err := r.db.WithContext(ctx).
		Where("active = ? AND type = ?", true, "free_shipping").
		Find(&promos).Error
	if err != nil {
		return nil, err
	}
	return promos, nil
}
