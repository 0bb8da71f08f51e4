package models

import (
	"time"

	"github.com/diewo77/go-stages/internal/workflow"
)

// Profile groups the permissions granted to every user of one role.
type Profile struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	Name        string        `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Role        workflow.Role `gorm:"uniqueIndex;size:20;not null" json:"role"`
	Description string        `gorm:"size:500" json:"description,omitempty"`
	Permissions []Permission  `gorm:"many2many:profile_permissions;" json:"permissions,omitempty"`
}

// Permission is a "resource:action" pair, e.g. "entente:sign".
type Permission struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	ResourceType string `gorm:"size:50;not null;uniqueIndex:idx_perm_resource_action" json:"resource_type"`
	Action       string `gorm:"size:50;not null;uniqueIndex:idx_perm_resource_action" json:"action"`
	Description  string `gorm:"size:200" json:"description,omitempty"`
}

// Code returns the permission in "resource:action" form.
func (p Permission) Code() string {
	return p.ResourceType + ":" + p.Action
}
