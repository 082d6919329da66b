package users

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
	"github.com/oakmarket/storefront-backend/pkg/enums"
	pkgerrors "github.com/oakmarket/storefront-backend/pkg/errors"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  phone TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  profile_image TEXT NOT NULL DEFAULT 'default-profile.png',
  role TEXT NOT NULL DEFAULT 'customer',
  created_at DATETIME,
  updated_at DATETIME
);`
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
	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  total_amount NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  delivery_date DATETIME,
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
	for _, ddl := range []string{users, carts, cartItems, orders, orderItems} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

func newTestUser(t *testing.T, db *gorm.DB, role enums.UserRole) *models.User {
	t.Helper()

	user := &models.User{
		ID:           uuid.New(),
		FirstName:    "Test",
		LastName:     "User",
		Email:        fmt.Sprintf("sf_%s@example.com", uuid.NewString()),
		Phone:        fmt.Sprintf("+1555%s", uuid.NewString()[:8]),
		PasswordHash: "hash",
		ProfileImage: "default-profile.png",
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestRepositoryCreateAssignsID(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)

	created, err := repo.Create(context.Background(), &models.User{
		FirstName:    "Ada",
		LastName:     "Byron",
		Email:        fmt.Sprintf("sf_%s@example.com", uuid.NewString()),
		Phone:        fmt.Sprintf("+1555%s", uuid.NewString()[:8]),
		PasswordHash: "hash",
		ProfileImage: "default-profile.png",
		Role:         enums.UserRoleCustomer,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
}

func TestRepositoryFindByIdentifier(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	user := newTestUser(t, db, enums.UserRoleCustomer)

	byEmail, err := repo.FindByIdentifier(context.Background(), user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byPhone, err := repo.FindByIdentifier(context.Background(), user.Phone)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byPhone.ID)

	_, err = repo.FindByIdentifier(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryDuplicateEmailMapsToConflict(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	existing := newTestUser(t, db, enums.UserRoleCustomer)

	_, err := repo.Create(context.Background(), &models.User{
		FirstName:    "Dup",
		LastName:     "Email",
		Email:        existing.Email,
		Phone:        fmt.Sprintf("+1555%s", uuid.NewString()[:8]),
		PasswordHash: "hash",
		ProfileImage: "default-profile.png",
		Role:         enums.UserRoleCustomer,
	})
	require.Error(t, err)

	mapped := MapUniqueViolation(err)
	var appErr *pkgerrors.Error
	require.ErrorAs(t, mapped, &appErr)
	assert.Equal(t, pkgerrors.CodeConflict, appErr.Code())
	assert.Equal(t, "email already registered", appErr.Message())
}

func TestRepositoryDuplicatePhoneMapsToConflict(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	existing := newTestUser(t, db, enums.UserRoleCustomer)

	_, err := repo.Create(context.Background(), &models.User{
		FirstName:    "Dup",
		LastName:     "Phone",
		Email:        fmt.Sprintf("sf_%s@example.com", uuid.NewString()),
		Phone:        existing.Phone,
		PasswordHash: "hash",
		ProfileImage: "default-profile.png",
		Role:         enums.UserRoleCustomer,
	})
	require.Error(t, err)

	mapped := MapUniqueViolation(err)
	var appErr *pkgerrors.Error
	require.ErrorAs(t, mapped, &appErr)
	assert.Equal(t, pkgerrors.CodeConflict, appErr.Code())
	assert.Equal(t, "phone already registered", appErr.Message())
}

func TestRepositoryCountAdmins(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)

	before, err := repo.CountAdmins(context.Background())
	require.NoError(t, err)

	newTestUser(t, db, enums.UserRoleAdmin)
	newTestUser(t, db, enums.UserRoleCustomer)

	after, err := repo.CountAdmins(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before+1, after)
}

func TestRepositoryDeleteWithOrders(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	user := newTestUser(t, db, enums.UserRoleCustomer)
	keeper := newTestUser(t, db, enums.UserRoleCustomer)

	order := &models.Order{
		ID:          uuid.New(),
		UserID:      user.ID,
		TotalAmount: decimal.NewFromInt(20),
		Status:      enums.OrderStatusPending,
	}
	require.NoError(t, db.Create(order).Error)
	require.NoError(t, db.Create(&models.OrderItem{
		ID:        uuid.New(),
		OrderID:   order.ID,
		ProductID: uuid.New(),
		Quantity:  2,
		UnitPrice: decimal.NewFromInt(10),
	}).Error)

	keeperOrder := &models.Order{
		ID:          uuid.New(),
		UserID:      keeper.ID,
		TotalAmount: decimal.NewFromInt(5),
		Status:      enums.OrderStatusPending,
	}
	require.NoError(t, db.Create(keeperOrder).Error)

	cart := &models.Cart{ID: uuid.New(), UserID: user.ID}
	require.NoError(t, db.Create(cart).Error)
	require.NoError(t, db.Create(&models.CartItem{
		ID:        uuid.New(),
		CartID:    cart.ID,
		ProductID: uuid.New(),
		Quantity:  1,
	}).Error)

	require.NoError(t, repo.DeleteWithOrders(context.Background(), user.ID))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.Order{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.Cart{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Zero(t, count)

	require.NoError(t, db.Model(&models.Order{}).Where("user_id = ?", keeper.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
