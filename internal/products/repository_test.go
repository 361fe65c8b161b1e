package products

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/storemock-backend/pkg/db/models"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  price_cents INTEGER NOT NULL,
  currency TEXT NOT NULL DEFAULT 'USD',
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	inventory := `
CREATE TABLE IF NOT EXISTS inventory_items (
  product_id TEXT PRIMARY KEY,
  available INTEGER NOT NULL DEFAULT 0,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(products).Error)
	require.NoError(t, db.Exec(inventory).Error)
	return db
}

func TestRepositoryFindByID(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	require.NoError(t, db.Create(&models.Product{ID: "prod_mug", Title: "Mug", PriceCents: 999, Active: true}).Error)
	require.NoError(t, db.Create(&models.Product{ID: "prod_gone", Title: "Gone", PriceCents: 100, Active: false}).Error)

	product, err := repo.FindByID(context.Background(), "prod_mug")
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, 999, product.PriceCents)

	inactive, err := repo.FindByID(context.Background(), "prod_gone")
	require.NoError(t, err)
	assert.Nil(t, inactive)

	missing, err := repo.FindByID(context.Background(), "prod_nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepositoryFindByIDs(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	require.NoError(t, db.Create(&models.Product{ID: "prod_a", Title: "A", PriceCents: 100, Active: true}).Error)
	require.NoError(t, db.Create(&models.Product{ID: "prod_b", Title: "B", PriceCents: 200, Active: true}).Error)

	found, err := repo.FindByIDs(context.Background(), []string{"prod_a", "prod_b", "prod_c"})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	none, err := repo.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRepositoryAvailable(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	require.NoError(t, db.Create(&models.InventoryItem{ProductID: "prod_a", Available: 7}).Error)

	got, err := repo.Available(context.Background(), "prod_a")
	require.NoError(t, err)
	assert.Equal(t, 7, got)

	zero, err := repo.Available(context.Background(), "prod_untracked")
	require.NoError(t, err)
	assert.Equal(t, 0, zero)
}
