package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

type User struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	// Nil for accounts created through Google sign-in only.
	PasswordHash *string `gorm:"column:password_hash" json:"-"`
	Name         string  `gorm:"not null;column:name" json:"name"`
	Avatar       string  `gorm:"column:avatar" json:"avatar"`
	Role         string  `gorm:"not null;column:role;default:student" json:"role"`
	GoogleID     *string `gorm:"column:google_id;index" json:"-"`

	Preferences datatypes.JSON `gorm:"column:preferences" json:"preferences"`

	LastLoginAt *time.Time `gorm:"column:last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updatedAt"`
}

func (User) TableName() string { return "user" }

func (u *User) HasPassword() bool {
	return u != nil && u.PasswordHash != nil && *u.PasswordHash != ""
}
