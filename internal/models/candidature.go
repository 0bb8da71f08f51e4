package models

import (
	"time"

	"github.com/diewo77/go-stages/internal/workflow"
)

// Candidature is a student's application to an offer.
type Candidature struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	OffreID   uint      `gorm:"index;not null" json:"offre_id"`
	// EmployeurID is copied from the offer so ownership checks need no join.
	EmployeurID  uint                       `gorm:"index;not null" json:"employeur_id"`
	EtudiantID   uint                       `gorm:"index;not null" json:"etudiant_id"`
	Statut       workflow.CandidatureStatus `gorm:"size:20;not null;default:EN_ATTENTE;index" json:"statut"`
	Convocations []Convocation              `gorm:"foreignKey:CandidatureID" json:"convocations,omitempty"`
}

func (c *Candidature) HasParticipant(userID uint) bool {
	return userID != 0 && (c.EtudiantID == userID || c.EmployeurID == userID)
}

// ActiveConvocation returns the loaded convocation that is not cancelled, if any.
func (c *Candidature) ActiveConvocation() *Convocation {
	for i := range c.Convocations {
		if c.Convocations[i].Statut.Active() {
			return &c.Convocations[i]
		}
	}
	return nil
}

// Convocation is an interview invitation tied to a candidature. At most one
// non-cancelled convocation exists per candidature (partial unique index).
type Convocation struct {
	ID            uint                       `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time                  `json:"created_at"`
	UpdatedAt     time.Time                  `json:"updated_at"`
	CandidatureID uint                       `gorm:"index;not null" json:"candidature_id"`
	DateHeure     time.Time                  `gorm:"not null" json:"date_heure"`
	Lieu          string                     `gorm:"size:500;not null" json:"lieu"`
	Message       string                     `gorm:"size:2000" json:"message,omitempty"`
	Statut        workflow.ConvocationStatus `gorm:"size:20;not null;default:CONVOQUEE" json:"statut"`
	Version       uint                       `gorm:"not null;default:1" json:"version"`
}
