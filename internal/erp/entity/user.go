package entity

import (
	"time"
)

// User account. Passwords are stored as bcrypt hashes and never serialized.
type User struct {
	ID           string     `json:"id" gorm:"primaryKey;size:36"`
	Username     string     `json:"username" gorm:"size:64;not null;uniqueIndex"`
	Name         string     `json:"name" gorm:"size:128;not null"`
	Email        string     `json:"email" gorm:"size:128"`
	Phone        string     `json:"phone" gorm:"size:20"`
	PasswordHash string     `json:"-" gorm:"size:128;not null"`
	AvatarURL    string     `json:"avatar_url" gorm:"size:512"`
	Status       string     `json:"status" gorm:"size:16;not null;default:active"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Roles []Role `json:"roles,omitempty" gorm:"many2many:user_roles;"`

	// Flattened from Roles, not persisted.
	RoleCodes       []string `json:"role_codes,omitempty" gorm:"-"`
	PermissionCodes []string `json:"permission_codes,omitempty" gorm:"-"`
}

func (User) TableName() string {
	return "users"
}

// Role with its permission codes embedded as a JSON array.
type Role struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	Code        string     `json:"code" gorm:"size:64;not null;uniqueIndex"`
	Name        string     `json:"name" gorm:"size:128;not null"`
	Permissions JSONBArray `json:"permissions" gorm:"type:jsonb"`
	IsSystem    bool       `json:"is_system" gorm:"not null;default:false"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Role) TableName() string {
	return "roles"
}

// User status
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)
