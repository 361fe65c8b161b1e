package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/storemock-backend/pkg/db/models"
	"github.com/angelmondragon/storemock-backend/pkg/enums"
	"github.com/angelmondragon/storemock-backend/pkg/types"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  checkout_id TEXT NOT NULL UNIQUE,
  buyer_id TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  currency TEXT NOT NULL DEFAULT 'USD',
  subtotal_cents INTEGER NOT NULL,
  discounts_cents INTEGER NOT NULL DEFAULT 0,
  fulfillment_cents INTEGER NOT NULL DEFAULT 0,
  total_cents INTEGER NOT NULL,
  fulfillment TEXT,
  adjustments TEXT,
  canceled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS order_line_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  title TEXT NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  quantity INTEGER NOT NULL,
  created_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func createOrderFixture(t *testing.T, db *gorm.DB, buyerID *string, createdAt time.Time) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:            uuid.New(),
		CheckoutID:    uuid.New(),
		BuyerID:       buyerID,
		Status:        enums.OrderStatusConfirmed,
		Currency:      "USD",
		SubtotalCents: 1499,
		TotalCents:    2098,
		Fulfillment: types.OrderFulfillment{
			Expectations: []types.FulfillmentExpectation{{ID: "exp_1", Description: "Standard Shipping"}},
			Events:       []types.FulfillmentEvent{},
		},
		Items: []models.OrderLineItem{
			{ID: uuid.New(), ProductID: "prod_espresso", Title: "Espresso Blend", UnitPriceCents: 1499, Quantity: 1},
		},
		CreatedAt: createdAt,
	}
	require.NoError(t, NewRepository(db).Create(context.Background(), order))
	return order
}

func TestOrderRepositoryCreateAndFind(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	order := createOrderFixture(t, db, nil, time.Now().UTC())

	found, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, order.CheckoutID, found.CheckoutID)
	require.Len(t, found.Fulfillment.Expectations, 1)
	assert.Equal(t, "exp_1", found.Fulfillment.Expectations[0].ID)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "prod_espresso", found.Items[0].ProductID)

	missing, err := repo.FindByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestOrderRepositoryListFiltersAndPaginates(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	alice := "buyer_alice"
	bob := "buyer_bob"
	base := time.Now().UTC().Add(-time.Hour)
	createOrderFixture(t, db, &alice, base)
	newest := createOrderFixture(t, db, &alice, base.Add(10*time.Minute))
	createOrderFixture(t, db, &bob, base.Add(5*time.Minute))

	all, err := repo.List(context.Background(), nil, 20, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, newest.ID, all[0].ID)

	mine, err := repo.List(context.Background(), &alice, 20, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	page, err := repo.List(context.Background(), &alice, 1, 1)
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestOrderRepositorySavePersistsStatus(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	order := createOrderFixture(t, db, nil, time.Now().UTC())
	order.Status = enums.OrderStatusShipped
	order.Fulfillment.Events = append(order.Fulfillment.Events, types.FulfillmentEvent{
		ID: "event_x_shipped", Type: "shipped", Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	require.NoError(t, repo.Save(context.Background(), order))

	found, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, found.Status)
	require.Len(t, found.Fulfillment.Events, 1)
}
