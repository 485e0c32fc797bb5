package models

import (
	"time"
)

const (
	ProjectStatusActive   = "active"
	ProjectStatusArchived = "archived"
)

// Project is the top-level collaboration unit. The owner must hold the global
// admin role at the time of assignment; per-project roles live on the
// membership rows.
type Project struct {
	ID          uint                `gorm:"primaryKey" json:"id"`
	Name        string              `gorm:"size:200;not null;index" json:"name"`
	Description string              `gorm:"type:text" json:"description"`
	Status      string              `gorm:"size:20;default:active;index" json:"status"`
	OwnerID     uint                `gorm:"not null;index" json:"owner_id"`
	Owner       *User               `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Members     []ProjectMembership `gorm:"foreignKey:ProjectID" json:"members,omitempty"`
	CreatedAt   time.Time           `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func (Project) TableName() string { return "projects" }
