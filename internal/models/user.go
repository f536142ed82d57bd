package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the root identity every other entity references as
// creator, approver, sender or recipient.
type User struct {
	ID                   string     `gorm:"type:char(36);primaryKey" json:"id"`
	Name                 string     `gorm:"size:255;not null" json:"name"`
	Email                string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash         string     `gorm:"size:255;not null" json:"-"`
	Roles                []Role     `gorm:"many2many:user_roles" json:"roles"`
	ResetPasswordToken   string     `gorm:"size:64;index" json:"-"`
	ResetPasswordExpires *time.Time `json:"-"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

// Role is a named bundle of permissions assignable to users
type Role struct {
	ID          string       `gorm:"type:char(36);primaryKey" json:"id"`
	Name        string       `gorm:"size:255;not null" json:"name"`
	Permissions []Permission `gorm:"many2many:role_permissions" json:"permissions"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Permission is an atomic named capability, flat namespace
type Permission struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func (p *Permission) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// TableName overrides the table name for Role
func (Role) TableName() string {
	return "roles"
}

// TableName overrides the table name for Permission
func (Permission) TableName() string {
	return "permissions"
}
