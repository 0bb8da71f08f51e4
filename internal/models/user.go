package models

import (
	"time"

	"github.com/diewo77/go-stages/internal/workflow"
	"gorm.io/gorm"
)

// User is a party of the internship workflow: student, employer, professor or manager.
// Credentials live with the external identity provider; only the role matters here.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Email     string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Nom       string         `gorm:"size:255" json:"nom,omitempty"`
	Prenom    string         `gorm:"size:255" json:"prenom,omitempty"`
	Role      workflow.Role  `gorm:"size:20;not null;index" json:"role"`
	// ProfileID links the user to the authorization profile of its role.
	ProfileID *uint    `gorm:"index" json:"profile_id,omitempty"`
	Profile   *Profile `gorm:"foreignKey:ProfileID" json:"-"`
}

// Actor returns the user as the explicit actor passed to service calls.
func (u User) Actor() workflow.Actor {
	return workflow.Actor{ID: u.ID, Role: u.Role}
}
