package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/oakmarket/storefront-backend/pkg/enums"
)

// User represents the canonical identity entity.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FirstName    string         `gorm:"column:first_name;not null"`
	LastName     string         `gorm:"column:last_name;not null"`
	Email        string         `gorm:"column:email;type:text;not null;uniqueIndex:users_email_key"`
	Phone        string         `gorm:"column:phone;type:text;not null;uniqueIndex:users_phone_key"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	ProfileImage string         `gorm:"column:profile_image;not null;default:'default-profile.png'"`
	Role         enums.UserRole `gorm:"column:role;type:text;not null;default:'customer'"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
