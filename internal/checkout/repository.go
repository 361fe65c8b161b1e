package checkout

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storemock-backend/pkg/db/models"
)

// Repository exposes checkout persistence plus the discount code catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, checkout *models.Checkout) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Checkout, error)
	Save(ctx context.Context, checkout *models.Checkout) error
	AddLineItem(ctx context.Context, item *models.CheckoutLineItem) error
	UpdateLineItemQuantity(ctx context.Context, checkoutID, itemID uuid.UUID, quantity int) error
	RemoveLineItem(ctx context.Context, checkoutID, itemID uuid.UUID) error
	UpsertDiscount(ctx context.Context, discount *models.CheckoutDiscount) error
	FindDiscountCode(ctx context.Context, code string) (*models.DiscountCode, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a checkout repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, checkout *models.Checkout) error {
	return r.db.WithContext(ctx).Create(checkout).Error
}

// FindByID loads a checkout with its line items and applied discounts in
// insertion order. Returns nil without error when the id is unknown.
func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Checkout, error) {
	var checkout models.Checkout
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		Preload("Discounts", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, code") }).
		Where("id = ?", id).
		First(&checkout).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &checkout, nil
}

func (r *repository) Save(ctx context.Context, checkout *models.Checkout) error {
	return r.db.WithContext(ctx).
		Omit("Items", "Discounts").
		Save(checkout).Error
}

func (r *repository) AddLineItem(ctx context.Context, item *models.CheckoutLineItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) UpdateLineItemQuantity(ctx context.Context, checkoutID, itemID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CheckoutLineItem{}).
		Where("id = ? AND checkout_id = ?", itemID, checkoutID).
		Update("quantity", quantity).Error
}

func (r *repository) RemoveLineItem(ctx context.Context, checkoutID, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND checkout_id = ?", itemID, checkoutID).
		Delete(&models.CheckoutLineItem{}).Error
}

// UpsertDiscount applies a snapshot row, keeping the first application when
// the same code is submitted twice.
func (r *repository) UpsertDiscount(ctx context.Context, discount *models.CheckoutDiscount) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "checkout_id"}, {Name: "code"}},
			DoNothing: true,
		}).
		Create(discount).Error
}

func (r *repository) FindDiscountCode(ctx context.Context, code string) (*models.DiscountCode, error) {
	var record models.DiscountCode
	err := r.db.WithContext(ctx).
		Where("code = ? AND active = ?", code, true).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}
