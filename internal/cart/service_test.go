package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oakmarket/storefront-backend/pkg/db/models"
	pkgerrors "github.com/oakmarket/storefront-backend/pkg/errors"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	carts := `
CREATE TABLE IF NOT EXISTS carts (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`
	cartItems := `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (cart_id, product_id)
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
	for _, ddl := range []string{carts, cartItems, products} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

// productLookup satisfies productFinder against the test database.
type productLookup struct {
	db *gorm.DB
}

func (p *productLookup) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := p.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func newCartService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	db := setupCartTestDB(t)
	svc, err := NewService(NewRepository(db), &productLookup{db: db})
	require.NoError(t, err)
	return svc, db
}

func seedProduct(t *testing.T, db *gorm.DB, price string, active bool) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:       uuid.New(),
		Name:     "cart product",
		Price:    decimal.RequireFromString(price),
		IsActive: active,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestGetCreatesEmptyCart(t *testing.T) {
	svc, _ := newCartService(t)
	userID := uuid.New()

	dto, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, dto.Items)
	assert.True(t, dto.Total.IsZero())

	again, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, dto.ID, again.ID)
}

func TestAddItemAccumulatesQuantity(t *testing.T) {
	svc, db := newCartService(t)
	userID := uuid.New()
	product := seedProduct(t, db, "4.50", true)

	_, err := svc.AddItem(context.Background(), userID, product.ID, 2)
	require.NoError(t, err)

	dto, err := svc.AddItem(context.Background(), userID, product.ID, 3)
	require.NoError(t, err)

	require.Len(t, dto.Items, 1)
	assert.Equal(t, 5, dto.Items[0].Quantity)
	assert.True(t, dto.Total.Equal(decimal.RequireFromString("22.5")), "total %s", dto.Total)
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	svc, db := newCartService(t)
	product := seedProduct(t, db, "1.00", true)

	_, err := svc.AddItem(context.Background(), uuid.New(), product.ID, 0)
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestAddItemInactiveProduct(t *testing.T) {
	svc, db := newCartService(t)
	inactive := seedProduct(t, db, "1.00", false)

	_, err := svc.AddItem(context.Background(), uuid.New(), inactive.ID, 1)
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())

	_, err = svc.AddItem(context.Background(), uuid.New(), uuid.New(), 1)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestUpdateItemQuantityZeroRemovesLine(t *testing.T) {
	svc, db := newCartService(t)
	userID := uuid.New()
	product := seedProduct(t, db, "3.00", true)

	_, err := svc.AddItem(context.Background(), userID, product.ID, 2)
	require.NoError(t, err)

	dto, err := svc.UpdateItemQuantity(context.Background(), userID, product.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, dto.Items)
}

func TestUpdateItemQuantityMissingLine(t *testing.T) {
	svc, db := newCartService(t)
	product := seedProduct(t, db, "3.00", true)

	_, err := svc.UpdateItemQuantity(context.Background(), uuid.New(), product.ID, 2)
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
	assert.Equal(t, "item not in cart", appErr.Message())
}

func TestRemoveItemIsIdempotent(t *testing.T) {
	svc, db := newCartService(t)
	userID := uuid.New()
	product := seedProduct(t, db, "2.00", true)

	_, err := svc.AddItem(context.Background(), userID, product.ID, 1)
	require.NoError(t, err)

	dto, err := svc.RemoveItem(context.Background(), userID, product.ID)
	require.NoError(t, err)
	assert.Empty(t, dto.Items)

	dto, err = svc.RemoveItem(context.Background(), userID, product.ID)
	require.NoError(t, err)
	assert.Empty(t, dto.Items)
}

func TestClearEmptiesCart(t *testing.T) {
	svc, db := newCartService(t)
	userID := uuid.New()

	first := seedProduct(t, db, "2.00", true)
	second := seedProduct(t, db, "7.25", true)
	_, err := svc.AddItem(context.Background(), userID, first.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(context.Background(), userID, second.ID, 2)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(context.Background(), userID))
	require.NoError(t, svc.Clear(context.Background(), userID))

	dto, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, dto.Items)
	assert.True(t, dto.Total.IsZero())
}

func TestCartTotalsReflectCurrentPrices(t *testing.T) {
	svc, db := newCartService(t)
	userID := uuid.New()
	product := seedProduct(t, db, "10.00", true)

	_, err := svc.AddItem(context.Background(), userID, product.ID, 2)
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Product{}).
		Where("id = ?", product.ID).
		Update("price", decimal.RequireFromString("12.50")).Error)

	dto, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, dto.Items, 1)
	assert.True(t, dto.Items[0].UnitPrice.Equal(decimal.RequireFromString("12.5")))
	assert.True(t, dto.Total.Equal(decimal.RequireFromString("25")))
}
