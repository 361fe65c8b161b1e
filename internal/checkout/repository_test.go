package checkout

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/storemock-backend/pkg/db/models"
	"github.com/angelmondragon/storemock-backend/pkg/enums"
)

func setupCheckoutTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS checkouts (
  id TEXT PRIMARY KEY,
  status TEXT NOT NULL DEFAULT 'incomplete',
  currency TEXT NOT NULL DEFAULT 'USD',
  buyer TEXT,
  subtotal_cents INTEGER NOT NULL DEFAULT 0,
  discounts_cents INTEGER NOT NULL DEFAULT 0,
  fulfillment_cents INTEGER NOT NULL DEFAULT 0,
  total_cents INTEGER NOT NULL DEFAULT 0,
  fulfillment TEXT,
  payment_handler TEXT,
  payment_instrument_id TEXT,
  agent_profile_url TEXT,
  completed_at DATETIME,
  canceled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS checkout_line_items (
  id TEXT PRIMARY KEY,
  checkout_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  title TEXT NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  quantity INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS checkout_discounts (
  id TEXT PRIMARY KEY,
  checkout_id TEXT NOT NULL,
  code TEXT NOT NULL,
  title TEXT NOT NULL,
  type TEXT NOT NULL,
  value INTEGER NOT NULL,
  created_at DATETIME
);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_checkout_discount_code ON checkout_discounts (checkout_id, code);`,
		`CREATE TABLE IF NOT EXISTS discount_codes (
  code TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  type TEXT NOT NULL,
  value INTEGER NOT NULL,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func createCheckoutFixture(t *testing.T, db *gorm.DB) *models.Checkout {
	t.Helper()
	checkout := &models.Checkout{
		ID:       uuid.New(),
		Status:   enums.CheckoutStatusIncomplete,
		Currency: "USD",
		Items: []models.CheckoutLineItem{
			{ID: uuid.New(), ProductID: "prod_espresso", Title: "Espresso Blend", UnitPriceCents: 1499, Quantity: 2},
		},
	}
	require.NoError(t, NewRepository(db).Create(context.Background(), checkout))
	return checkout
}

func TestRepositoryCreateAndFind(t *testing.T) {
	db := setupCheckoutTestDB(t)
	repo := NewRepository(db)

	checkout := createCheckoutFixture(t, db)

	found, err := repo.FindByID(context.Background(), checkout.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, checkout.ID, found.ID)
	assert.Equal(t, enums.CheckoutStatusIncomplete, found.Status)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "prod_espresso", found.Items[0].ProductID)
	assert.Equal(t, 1499, found.Items[0].UnitPriceCents)
}

func TestRepositoryFindUnknownReturnsNil(t *testing.T) {
	db := setupCheckoutTestDB(t)
	repo := NewRepository(db)

	found, err := repo.FindByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestRepositoryLineItemLifecycle(t *testing.T) {
	db := setupCheckoutTestDB(t)
	repo := NewRepository(db)
	checkout := createCheckoutFixture(t, db)
	itemID := checkout.Items[0].ID

	require.NoError(t, repo.UpdateLineItemQuantity(context.Background(), checkout.ID, itemID, 5))
	found, err := repo.FindByID(context.Background(), checkout.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, 5, found.Items[0].Quantity)

	require.NoError(t, repo.RemoveLineItem(context.Background(), checkout.ID, itemID))
	found, err = repo.FindByID(context.Background(), checkout.ID)
	require.NoError(t, err)
	assert.Empty(t, found.Items)
}

func TestRepositoryUpsertDiscountKeepsFirstApplication(t *testing.T) {
	db := setupCheckoutTestDB(t)
	repo := NewRepository(db)
	checkout := createCheckoutFixture(t, db)

	first := &models.CheckoutDiscount{
		ID: uuid.New(), CheckoutID: checkout.ID, Code: "SAVE10",
		Title: "10% Off", Type: enums.DiscountTypePercentage, Value: 10,
	}
	require.NoError(t, repo.UpsertDiscount(context.Background(), first))

	duplicate := &models.CheckoutDiscount{
		ID: uuid.New(), CheckoutID: checkout.ID, Code: "SAVE10",
		Title: "10% Off", Type: enums.DiscountTypePercentage, Value: 99,
	}
	require.NoError(t, repo.UpsertDiscount(context.Background(), duplicate))

	found, err := repo.FindByID(context.Background(), checkout.ID)
	require.NoError(t, err)
	require.Len(t, found.Discounts, 1)
	assert.Equal(t, first.ID, found.Discounts[0].ID)
	assert.Equal(t, 10, found.Discounts[0].Value)
}

func TestRepositoryFindDiscountCode(t *testing.T) {
	db := setupCheckoutTestDB(t)
	repo := NewRepository(db)

	require.NoError(t, db.Create(&models.DiscountCode{
		Code: "SAVE10", Title: "10% Off", Type: enums.DiscountTypePercentage, Value: 10, Active: true,
	}).Error)
	require.NoError(t, db.Create(&models.DiscountCode{
		Code: "RETIRED", Title: "Retired", Type: enums.DiscountTypeFixed, Value: 100, Active: false,
	}).Error)

	found, err := repo.FindDiscountCode(context.Background(), "SAVE10")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, enums.DiscountTypePercentage, found.Type)

	inactive, err := repo.FindDiscountCode(context.Background(), "RETIRED")
	require.NoError(t, err)
	assert.Nil(t, inactive)
}
