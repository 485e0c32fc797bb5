package models

import (
	"time"
)

// GlobalRole is a user's account-wide role.
type GlobalRole string

const (
	GlobalRoleAdmin          GlobalRole = "admin"
	GlobalRoleProjectManager GlobalRole = "project_manager"
	GlobalRoleMember         GlobalRole = "member"
)

// Valid reports whether r is one of the known global roles.
func (r GlobalRole) Valid() bool {
	switch r {
	case GlobalRoleAdmin, GlobalRoleProjectManager, GlobalRoleMember:
		return true
	}
	return false
}

// User represents a system user. Passwords are stored as bcrypt hashes and
// never serialized. Users are hard-deleted, but only once no project or task
// references them.
type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"size:100;not null" json:"name"`
	Email     string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string     `gorm:"size:255;not null" json:"-"`
	Role      GlobalRole `gorm:"size:50;default:member" json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// IsAdmin reports whether the user holds the global admin role.
func (u *User) IsAdmin() bool { return u.Role == GlobalRoleAdmin }
