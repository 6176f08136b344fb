package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID         string  `json:"id" gorm:"primaryKey;size:36"`
	ExternalID *string `json:"external_id,omitempty" gorm:"uniqueIndex;size:255"`
	Email      string  `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Username   string  `json:"username" gorm:"uniqueIndex;not null;size:30"`
	FirstName  string  `json:"first_name" gorm:"not null;size:50"`
	LastName   string  `json:"last_name" gorm:"not null;size:50"`
	Role       Role    `json:"role" gorm:"type:varchar(16);not null;index"`

	PasswordHash string `json:"-" gorm:"size:255"`

	// Profile info
	Grade  *string `json:"grade,omitempty" gorm:"size:20"`
	School *string `json:"school,omitempty" gorm:"size:200"`

	// Status
	IsActive    bool       `json:"is_active" gorm:"not null"`
	IsVerified  bool       `json:"is_verified" gorm:"not null"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`

	// One-time codes
	VerificationCode      *string    `json:"-" gorm:"size:6"`
	VerificationExpiresAt *time.Time `json:"-"`
	ResetCode             *string    `json:"-" gorm:"size:6"`
	ResetExpiresAt        *time.Time `json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// CanSignIn reports whether the account may hold a session.
func (u *User) CanSignIn() bool {
	return u.IsActive && !u.DeletedAt.Valid
}
