package products

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oakmarket/storefront-backend/pkg/db/models"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	categories := `
CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`
	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL,
  category_id TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  is_featured INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  created_at DATETIME
);`
	for _, ddl := range []string{categories, products, orderItems} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

func newTestProduct(t *testing.T, db *gorm.DB, name string, active bool) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:       uuid.New(),
		Name:     name,
		Price:    decimal.NewFromInt(10),
		IsActive: active,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func newTestCategory(t *testing.T, db *gorm.DB) *models.Category {
	t.Helper()

	category := &models.Category{
		ID:   uuid.New(),
		Name: fmt.Sprintf("cat-%s", uuid.NewString()[:8]),
	}
	require.NoError(t, db.Create(category).Error)
	return category
}

func TestListActiveExcludesInactive(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	tag := uuid.NewString()[:8]
	active := newTestProduct(t, db, "shovel "+tag, true)
	inactive := newTestProduct(t, db, "rake "+tag, false)

	rows, err := repo.ListActive(context.Background(), ListFilters{Search: tag})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, active.ID, rows[0].ID)
	assert.NotEqual(t, inactive.ID, rows[0].ID)
}

func TestListActiveSearchIsCaseInsensitive(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	tag := uuid.NewString()[:8]
	product := newTestProduct(t, db, "Copper Kettle "+tag, true)

	rows, err := repo.ListActive(context.Background(), ListFilters{Search: "COPPER KETTLE " + tag})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, product.ID, rows[0].ID)
}

func TestListActiveSearchMatchesDescription(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	tag := uuid.NewString()[:8]
	product := &models.Product{
		ID:          uuid.New(),
		Name:        "kettle",
		Description: "hand forged " + tag,
		Price:       decimal.NewFromInt(25),
		IsActive:    true,
	}
	require.NoError(t, db.Create(product).Error)

	rows, err := repo.ListActive(context.Background(), ListFilters{Search: "forged " + tag})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, product.ID, rows[0].ID)
}

func TestListActiveFiltersByCategory(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	category := newTestCategory(t, db)
	in := newTestProduct(t, db, "in-category", true)
	require.NoError(t, db.Model(in).Update("category_id", category.ID).Error)
	newTestProduct(t, db, "uncategorized", true)

	rows, err := repo.ListActive(context.Background(), ListFilters{CategoryID: &category.ID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, in.ID, rows[0].ID)
}

func TestRandomActiveRespectsLimit(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	for i := 0; i < 5; i++ {
		newTestProduct(t, db, fmt.Sprintf("random-%d", i), true)
	}
	newTestProduct(t, db, "random-inactive", false)

	rows, err := repo.RandomActive(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	for _, row := range rows {
		assert.True(t, row.IsActive)
	}
}

func TestIsReferencedByOrders(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	referenced := newTestProduct(t, db, "referenced", true)
	loose := newTestProduct(t, db, "loose", true)

	require.NoError(t, db.Create(&models.OrderItem{
		ID:        uuid.New(),
		OrderID:   uuid.New(),
		ProductID: referenced.ID,
		Quantity:  1,
		UnitPrice: decimal.NewFromInt(10),
	}).Error)

	got, err := repo.IsReferencedByOrders(context.Background(), referenced.ID)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = repo.IsReferencedByOrders(context.Background(), loose.ID)
	require.NoError(t, err)
	assert.False(t, got)
}
