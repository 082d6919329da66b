package images

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/oakmarket/storefront-backend/pkg/config"
	pkgerrors "github.com/oakmarket/storefront-backend/pkg/errors"
)

// Kind distinguishes the two image namespaces served by the API.
type Kind string

const (
	KindProfile Kind = "profile"
	KindProduct Kind = "product"
)

// DefaultProfileImage is the stored filename for accounts without an upload.
const DefaultProfileImage = "default-profile.png"

// DefaultProductImage is the placeholder filename for products without an upload.
const DefaultProductImage = "default-product.png"

var allowedExtensions = map[string]struct{}{
	".jpeg": {},
	".jpg":  {},
	".png":  {},
	".gif":  {},
}

// ProductImageFilename derives the serving filename from the product id.
// The id-derived name is the single source of truth; nothing is stored.
func ProductImageFilename(productID uuid.UUID) string {
	return fmt.Sprintf("product_%s.jpg", productID)
}

// Resolution describes where a requested image should be served from.
type Resolution struct {
	// LocalPath is set when a file exists on disk.
	LocalPath string
	// RedirectURL is set when the request should fall through to the
	// external placeholder.
	RedirectURL string
}

// Service stores uploaded images on disk and resolves serving paths.
type Service struct {
	cfg config.UploadsConfig
}

// NewService constructs the image service and ensures the upload directories exist.
func NewService(cfg config.UploadsConfig) (*Service, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("uploads dir required")
	}
	for _, dir := range []string{
		cfg.Dir,
		filepath.Join(cfg.Dir, cfg.DefaultsSubdir),
		filepath.Join(cfg.Dir, cfg.ProductsSubdir),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %q: %w", dir, err)
		}
	}
	return &Service{cfg: cfg}, nil
}

// ValidateUpload enforces the accepted extensions and the size cap.
func (s *Service) ValidateUpload(header *multipart.FileHeader) error {
	if header == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "image file is required")
	}
	if header.Size > s.cfg.MaxUploadBytes {
		return pkgerrors.New(pkgerrors.CodeValidation, "image exceeds the maximum upload size").
			WithDetails(map[string]any{"max_bytes": s.cfg.MaxUploadBytes})
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "only jpeg, jpg, png and gif images are accepted")
	}
	return nil
}

// SaveProfileImage writes the upload under the uploads root with a generated
// unique filename and returns that filename.
func (s *Service) SaveProfileImage(file multipart.File, header *multipart.FileHeader) (string, error) {
	if err := s.ValidateUpload(header); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	filename := fmt.Sprintf("profile_%s%s", uuid.NewString(), ext)
	if err := s.write(filepath.Join(s.cfg.Dir, filename), file); err != nil {
		return "", err
	}
	return filename, nil
}

// SaveProductImage writes the upload to the id-derived product filename,
// replacing any previous image for the product.
func (s *Service) SaveProductImage(productID uuid.UUID, file multipart.File, header *multipart.FileHeader) (string, error) {
	if err := s.ValidateUpload(header); err != nil {
		return "", err
	}
	filename := ProductImageFilename(productID)
	path := filepath.Join(s.cfg.Dir, s.cfg.ProductsSubdir, filename)
	if err := s.write(path, file); err != nil {
		return "", err
	}
	return filename, nil
}

// RemoveProductImage deletes the product's image file if present.
func (s *Service) RemoveProductImage(productID uuid.UUID) error {
	path := filepath.Join(s.cfg.Dir, s.cfg.ProductsSubdir, ProductImageFilename(productID))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %q: %w", path, err)
	}
	return nil
}

// Resolve walks the fallback chain for the requested image: the uploads
// directory first, then the bundled defaults, finally the external
// placeholder URL. It never fails with a not-found.
func (s *Service) Resolve(name string, kind Kind) Resolution {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." {
		return Resolution{RedirectURL: s.externalURL(kind)}
	}

	var primary string
	if kind == KindProduct {
		primary = filepath.Join(s.cfg.Dir, s.cfg.ProductsSubdir, name)
	} else {
		primary = filepath.Join(s.cfg.Dir, name)
	}
	if fileExists(primary) {
		return Resolution{LocalPath: primary}
	}

	fallback := filepath.Join(s.cfg.Dir, s.cfg.DefaultsSubdir, name)
	if fileExists(fallback) {
		return Resolution{LocalPath: fallback}
	}

	return Resolution{RedirectURL: s.externalURL(kind)}
}

func (s *Service) externalURL(kind Kind) string {
	if kind == KindProduct {
		return s.cfg.ExternalProduct
	}
	return s.cfg.ExternalProfile
}

func (s *Service) write(path string, file multipart.File) error {
	dst, err := os.Create(path)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store image")
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store image")
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
