// Package domain contains core types for the identity service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// User is an employer-portal account. Accounts are created at
// registration with a system-generated password and are never
// hard-deleted.
type User struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	IDNumber        string       `gorm:"column:id_number;type:text;not null;uniqueIndex:ux_users_id_number" json:"idNumber"`
	Name            string       `gorm:"type:text;not null" json:"name"`
	Surname         string       `gorm:"type:text;not null" json:"surname"`
	Email           string       `gorm:"type:text;not null;uniqueIndex:ux_users_email" json:"email"`
	PhoneNumber     string       `gorm:"column:phone_number;type:text" json:"phoneNumber"`
	TelephoneNumber string       `gorm:"column:telephone_number;type:text" json:"telephoneNumber,omitempty"`
	PasswordHash    string       `gorm:"column:password_hash;type:text;not null" json:"-"`
	IsVerified      bool         `gorm:"column:is_verified;not null;default:false" json:"isVerified"`
	LastLogin       *time.Time   `gorm:"column:last_login" json:"lastLogin,omitempty"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// Admin roles.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// AdminUser is a back-office account. Seeded out of band; shares token
// issuance with User but logs in by username/email.
type AdminUser struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	Username     string            `gorm:"type:text;not null;uniqueIndex:ux_admin_users_username" json:"username"`
	Email        string            `gorm:"type:text;not null;uniqueIndex:ux_admin_users_email" json:"email"`
	PasswordHash string            `gorm:"column:password_hash;type:text;not null" json:"-"`
	Role         string            `gorm:"type:text;not null;default:'admin'" json:"role"`
	Permissions  datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"permissions"`
	IsActive     bool              `gorm:"column:is_active;not null;default:true" json:"isActive"`
	LastLogin    *time.Time        `gorm:"column:last_login" json:"lastLogin,omitempty"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (AdminUser) TableName() string { return "admin_users" }
