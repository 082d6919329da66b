package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/oakmarket/storefront-backend/internal/users"
	pkgauth "github.com/oakmarket/storefront-backend/pkg/auth"
	"github.com/oakmarket/storefront-backend/pkg/config"
	"github.com/oakmarket/storefront-backend/pkg/db/models"
	"github.com/oakmarket/storefront-backend/pkg/enums"
	pkgerrors "github.com/oakmarket/storefront-backend/pkg/errors"
	"github.com/oakmarket/storefront-backend/pkg/security"
)

// Service exposes registration and credential-based login.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResultDTO, error)
	Login(ctx context.Context, identifier, password string) (*AuthResultDTO, error)
}

// RegisterInput holds the validated registration payload.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
}

// AuthResultDTO pairs the user payload with a minted access token.
type AuthResultDTO struct {
	User  *users.UserDTO `json:"user"`
	Token string         `json:"token"`
}

type userStore interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByIdentifier(ctx context.Context, identifier string) (*models.User, error)
}

type service struct {
	repo        userStore
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	now         func() time.Time
}

// NewService constructs an auth service instance.
func NewService(repo userStore, jwtCfg config.JWTConfig, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &service{
		repo:        repo,
		jwtCfg:      jwtCfg,
		passwordCfg: passwordCfg,
		now:         time.Now,
	}, nil
}

// Register creates the account and returns it with a fresh token. Duplicate
// email or phone is detected by the unique constraint on insert, not by a
// prior existence query.
func (s *service) Register(ctx context.Context, input RegisterInput) (*AuthResultDTO, error) {
	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:        strings.TrimSpace(input.Phone),
		PasswordHash: hash,
		Role:         enums.UserRoleCustomer,
	}
	if user.ProfileImage == "" {
		user.ProfileImage = "default-profile.png"
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, users.MapUniqueViolation(err)
	}

	return s.result(created)
}

// Login authenticates against email or phone. Unknown identifier and wrong
// password produce the same response.
func (s *service) Login(ctx context.Context, identifier, password string) (*AuthResultDTO, error) {
	identifier = strings.TrimSpace(identifier)

	user, err := s.repo.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidCredentials()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, invalidCredentials()
	}

	return s.result(user)
}

func (s *service) result(user *models.User) (*AuthResultDTO, error) {
	token, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}
	return &AuthResultDTO{User: users.NewUserDTO(user), Token: token}, nil
}

func invalidCredentials() error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
}
