package models

import (
	"time"
)

// ProjectRole is a user's role within a single project. Admin is deliberately
// not a valid project role; admins act through the global role instead.
type ProjectRole string

const (
	ProjectRoleManager ProjectRole = "project_manager"
	ProjectRoleMember  ProjectRole = "member"
)

// Valid reports whether r is one of the known membership roles.
func (r ProjectRole) Valid() bool {
	return r == ProjectRoleManager || r == ProjectRoleMember
}

// CompatibleWith reports whether a user with global role g may hold this
// project role. The two enumerations must agree: a project manager slot can
// only be filled by a global project manager, likewise for members.
func (r ProjectRole) CompatibleWith(g GlobalRole) bool {
	switch r {
	case ProjectRoleManager:
		return g == GlobalRoleProjectManager
	case ProjectRoleMember:
		return g == GlobalRoleMember
	}
	return false
}

// ProjectMembership records a user's participation in a project. A user
// appears at most once per project; at most one row per project carries the
// project_manager role.
type ProjectMembership struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	ProjectID uint        `gorm:"uniqueIndex:idx_project_user;not null" json:"project_id"`
	UserID    uint        `gorm:"uniqueIndex:idx_project_user;not null" json:"user_id"`
	User      *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role      ProjectRole `gorm:"size:50;default:member" json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func (ProjectMembership) TableName() string { return "project_memberships" }
