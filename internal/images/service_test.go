package images

import (
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakmarket/storefront-backend/pkg/config"
	pkgerrors "github.com/oakmarket/storefront-backend/pkg/errors"
)

func newImageService(t *testing.T) (*Service, config.UploadsConfig) {
	t.Helper()

	cfg := config.UploadsConfig{
		Dir:             t.TempDir(),
		DefaultsSubdir:  "defaults",
		ProductsSubdir:  "products",
		MaxUploadBytes:  5 << 20,
		ExternalProfile: "https://placeholder.example/profile.png",
		ExternalProduct: "https://placeholder.example/product.png",
	}
	svc, err := NewService(cfg)
	require.NoError(t, err)
	return svc, cfg
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("img"), 0o644))
}

func TestProductImageFilename(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, "product_"+id.String()+".jpg", ProductImageFilename(id))
}

func TestValidateUploadRejectsExtension(t *testing.T) {
	svc, _ := newImageService(t)

	err := svc.ValidateUpload(&multipart.FileHeader{Filename: "payload.pdf", Size: 100})
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())

	for _, name := range []string{"a.jpg", "b.JPEG", "c.png", "d.gif"} {
		assert.NoError(t, svc.ValidateUpload(&multipart.FileHeader{Filename: name, Size: 100}), name)
	}
}

func TestValidateUploadRejectsOversize(t *testing.T) {
	svc, cfg := newImageService(t)

	err := svc.ValidateUpload(&multipart.FileHeader{Filename: "big.jpg", Size: cfg.MaxUploadBytes + 1})
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestResolveProfileFallbackChain(t *testing.T) {
	svc, cfg := newImageService(t)

	// Nothing on disk: external placeholder.
	res := svc.Resolve("missing.png", KindProfile)
	assert.Empty(t, res.LocalPath)
	assert.Equal(t, cfg.ExternalProfile, res.RedirectURL)

	// Bundled default.
	writeFile(t, filepath.Join(cfg.Dir, cfg.DefaultsSubdir, "missing.png"))
	res = svc.Resolve("missing.png", KindProfile)
	assert.Equal(t, filepath.Join(cfg.Dir, cfg.DefaultsSubdir, "missing.png"), res.LocalPath)

	// An upload wins over the default.
	writeFile(t, filepath.Join(cfg.Dir, "missing.png"))
	res = svc.Resolve("missing.png", KindProfile)
	assert.Equal(t, filepath.Join(cfg.Dir, "missing.png"), res.LocalPath)
}

func TestResolveProductUsesProductsSubdir(t *testing.T) {
	svc, cfg := newImageService(t)
	name := ProductImageFilename(uuid.New())

	res := svc.Resolve(name, KindProduct)
	assert.Equal(t, cfg.ExternalProduct, res.RedirectURL)

	writeFile(t, filepath.Join(cfg.Dir, cfg.ProductsSubdir, name))
	res = svc.Resolve(name, KindProduct)
	assert.Equal(t, filepath.Join(cfg.Dir, cfg.ProductsSubdir, name), res.LocalPath)
}

func TestResolveStripsPathTraversal(t *testing.T) {
	svc, cfg := newImageService(t)

	writeFile(t, filepath.Join(cfg.Dir, "safe.png"))
	res := svc.Resolve("../../safe.png", KindProfile)
	assert.Equal(t, filepath.Join(cfg.Dir, "safe.png"), res.LocalPath)

	res = svc.Resolve("", KindProfile)
	assert.Equal(t, cfg.ExternalProfile, res.RedirectURL)
}

func TestRemoveProductImage(t *testing.T) {
	svc, cfg := newImageService(t)
	id := uuid.New()

	// Removing a missing image is a no-op.
	require.NoError(t, svc.RemoveProductImage(id))

	path := filepath.Join(cfg.Dir, cfg.ProductsSubdir, ProductImageFilename(id))
	writeFile(t, path)
	require.NoError(t, svc.RemoveProductImage(id))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
