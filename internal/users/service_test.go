package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakmarket/storefront-backend/pkg/config"
	"github.com/oakmarket/storefront-backend/pkg/db"
	"github.com/oakmarket/storefront-backend/pkg/db/models"
	"github.com/oakmarket/storefront-backend/pkg/enums"
	pkgerrors "github.com/oakmarket/storefront-backend/pkg/errors"
	"github.com/oakmarket/storefront-backend/pkg/security"
)

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()

	conn := setupUsersTestDB(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo, db.NewFromConn(conn), config.PasswordConfig{})
	require.NoError(t, err)
	return svc, repo
}

func TestServiceUpdateProfilePartial(t *testing.T) {
	svc, repo := newTestService(t)
	user := newTestUser(t, repo.db, enums.UserRoleCustomer)

	first := "  Grace  "
	email := "Grace.Hopper@Example.COM"
	updated, err := svc.UpdateProfile(context.Background(), user.ID, UpdateProfileInput{
		FirstName: &first,
		Email:     &email,
	})
	require.NoError(t, err)

	assert.Equal(t, "Grace", updated.FirstName)
	assert.Equal(t, "grace.hopper@example.com", updated.Email)
	assert.Equal(t, user.LastName, updated.LastName)
	assert.Equal(t, user.Phone, updated.Phone)
}

func TestServiceUpdateProfileDuplicateEmail(t *testing.T) {
	svc, repo := newTestService(t)
	existing := newTestUser(t, repo.db, enums.UserRoleCustomer)
	user := newTestUser(t, repo.db, enums.UserRoleCustomer)

	_, err := svc.UpdateProfile(context.Background(), user.ID, UpdateProfileInput{Email: &existing.Email})
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeConflict, appErr.Code())
}

func TestServiceUpdatePassword(t *testing.T) {
	svc, repo := newTestService(t)

	hash, err := security.HashPassword("old-password", config.PasswordConfig{})
	require.NoError(t, err)
	user := newTestUser(t, repo.db, enums.UserRoleCustomer)
	user.PasswordHash = hash
	require.NoError(t, repo.db.Save(user).Error)

	err = svc.UpdatePassword(context.Background(), user.ID, "wrong", "new-password")
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code())

	require.NoError(t, svc.UpdatePassword(context.Background(), user.ID, "old-password", "new-password"))

	stored, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	ok, err := security.VerifyPassword("new-password", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestServiceDeleteSoleAdmin(t *testing.T) {
	svc, repo := newTestService(t)
	conn := repo.db

	// Make the admin under test the only one.
	require.NoError(t, conn.Where("role = ?", enums.UserRoleAdmin).Delete(&models.User{}).Error)
	admin := newTestUser(t, conn, enums.UserRoleAdmin)

	err := svc.Delete(context.Background(), admin.ID)
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeConflict, appErr.Code())
	assert.Equal(t, "cannot delete the only admin account", appErr.Message())

	_, err = repo.FindByID(context.Background(), admin.ID)
	assert.NoError(t, err)
}

func TestServiceDeleteAdminWithPeer(t *testing.T) {
	svc, repo := newTestService(t)
	conn := repo.db

	admin := newTestUser(t, conn, enums.UserRoleAdmin)
	newTestUser(t, conn, enums.UserRoleAdmin)

	require.NoError(t, svc.Delete(context.Background(), admin.ID))

	var count int64
	require.NoError(t, conn.Model(&models.User{}).Where("id = ?", admin.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestServiceDeleteCustomerRemovesHistory(t *testing.T) {
	svc, repo := newTestService(t)
	conn := repo.db
	user := newTestUser(t, conn, enums.UserRoleCustomer)

	order := &models.Order{
		ID:          uuid.New(),
		UserID:      user.ID,
		TotalAmount: decimal.NewFromInt(30),
		Status:      enums.OrderStatusCompleted,
	}
	require.NoError(t, conn.Create(order).Error)

	require.NoError(t, svc.Delete(context.Background(), user.ID))

	var count int64
	require.NoError(t, conn.Model(&models.Order{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestServiceGetUnknownUser(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get(context.Background(), uuid.New())
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}
