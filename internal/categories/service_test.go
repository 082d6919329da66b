package categories

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgerrors "github.com/oakmarket/storefront-backend/pkg/errors"
)

func setupCategoriesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func newCategoryService(t *testing.T) Service {
	t.Helper()

	svc, err := NewService(NewRepository(setupCategoriesTestDB(t)))
	require.NoError(t, err)
	return svc
}

func TestCategoryCreateAndGet(t *testing.T) {
	svc := newCategoryService(t)

	name := fmt.Sprintf("Garden %s", uuid.NewString()[:8])
	created, err := svc.Create(context.Background(), "  "+name+"  ")
	require.NoError(t, err)
	assert.Equal(t, name, created.Name)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestCategoryCreateEmptyName(t *testing.T) {
	svc := newCategoryService(t)

	_, err := svc.Create(context.Background(), "   ")
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestCategoryCreateDuplicateName(t *testing.T) {
	svc := newCategoryService(t)

	name := fmt.Sprintf("Tools %s", uuid.NewString()[:8])
	_, err := svc.Create(context.Background(), name)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), name)
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeConflict, appErr.Code())
	assert.Equal(t, "category name already exists", appErr.Message())
}

func TestCategoryUpdate(t *testing.T) {
	svc := newCategoryService(t)

	created, err := svc.Create(context.Background(), fmt.Sprintf("Old %s", uuid.NewString()[:8]))
	require.NoError(t, err)

	renamed := fmt.Sprintf("New %s", uuid.NewString()[:8])
	updated, err := svc.Update(context.Background(), created.ID, renamed)
	require.NoError(t, err)
	assert.Equal(t, renamed, updated.Name)

	_, err = svc.Update(context.Background(), uuid.New(), "whatever")
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestCategoryDelete(t *testing.T) {
	svc := newCategoryService(t)

	created, err := svc.Create(context.Background(), fmt.Sprintf("Gone %s", uuid.NewString()[:8]))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))

	_, err = svc.Get(context.Background(), created.ID)
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())

	err = svc.Delete(context.Background(), created.ID)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestCategoryListSorted(t *testing.T) {
	db := setupCategoriesTestDB(t)
	require.NoError(t, db.Exec("DELETE FROM categories").Error)

	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	for _, name := range []string{"zinc", "apples", "mulch"} {
		_, err := svc.Create(context.Background(), name)
		require.NoError(t, err)
	}

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "apples", list[0].Name)
	assert.Equal(t, "mulch", list[1].Name)
	assert.Equal(t, "zinc", list[2].Name)
}
