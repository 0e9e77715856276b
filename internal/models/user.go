// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is the account role stored as a small integer.
type Role int

const (
	// RoleNormal is the default role for registered accounts.
	RoleNormal Role = 1
	// RoleAdmin is granted to superuser and staff accounts at creation.
	RoleAdmin Role = 2
)

// Display returns the human label of the role.
func (r Role) Display() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleNormal:
		return "normal"
	default:
		return "unknown"
	}
}

// User represents an account.
type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Username      string    `gorm:"uniqueIndex;not null;size:150" json:"username"`
	Email         string    `gorm:"size:254" json:"email"`
	Password      string    `gorm:"not null" json:"-"`
	Role          Role      `gorm:"not null;default:1" json:"role"`
	IsActive      bool      `gorm:"not null" json:"is_active"`
	IsStaff       bool      `gorm:"not null" json:"-"`
	IsSuperuser   bool      `gorm:"not null" json:"-"`
	PersonalImage string    `json:"personal_image"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BeforeCreate promotes superuser and staff accounts to admin. It only runs on
// insert, so later updates never reapply the promotion.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.Role == 0 {
		u.Role = RoleNormal
	}
	if u.IsSuperuser || u.IsStaff {
		u.Role = RoleAdmin
	}
	return nil
}

// IsAdmin reports whether the account holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
