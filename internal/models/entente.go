package models

import (
	"time"

	"github.com/diewo77/go-stages/internal/workflow"
)

// Offre is an internship offer published by an employer.
type Offre struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	EmployeurID uint      `gorm:"index;not null" json:"employeur_id"`
	Titre       string    `gorm:"size:255;not null" json:"titre"`
	Description string    `gorm:"size:4000" json:"description,omitempty"`
}

// Entente is an internship agreement between a student and an employer.
// Rows are never deleted: refusal and cancellation are terminal statuses.
type Entente struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	EtudiantID    uint      `gorm:"index;not null" json:"etudiant_id"`
	EmployeurID   uint      `gorm:"index;not null" json:"employeur_id"`
	OffreID       uint      `gorm:"index;not null" json:"offre_id"`
	CandidatureID *uint     `gorm:"index" json:"candidature_id,omitempty"`
	// ProfesseurID is the supervising professor, the professor-side evaluator.
	ProfesseurID     *uint     `gorm:"index" json:"professeur_id,omitempty"`
	DateDebut        time.Time `gorm:"not null" json:"date_debut"`
	DateFin          time.Time `gorm:"not null" json:"date_fin"`
	HeuresParSemaine int       `gorm:"not null;default:0" json:"heures_par_semaine"`
	Remuneration     float64   `gorm:"not null;default:0" json:"remuneration"`
	Description      string    `gorm:"size:4000" json:"description,omitempty"`

	EtudiantSignature     workflow.SignatureStatus `gorm:"size:20;not null;default:EN_ATTENTE" json:"etudiant_signature"`
	EmployeurSignature    workflow.SignatureStatus `gorm:"size:20;not null;default:EN_ATTENTE" json:"employeur_signature"`
	GestionnaireSignature workflow.SignatureStatus `gorm:"size:20;not null;default:EN_ATTENTE" json:"gestionnaire_signature"`
	Statut                workflow.EntenteStatus   `gorm:"size:20;not null;default:EN_ATTENTE;index" json:"statut"`
	// Version is bumped by every conditional update.
	Version uint `gorm:"not null;default:1" json:"version"`
}

// Signatures returns the signature state consumed by the transition functions.
func (e *Entente) Signatures() workflow.Signatures {
	return workflow.Signatures{
		Etudiant:     e.EtudiantSignature,
		Employeur:    e.EmployeurSignature,
		Gestionnaire: e.GestionnaireSignature,
		Statut:       e.Statut,
	}
}

// ApplySignatures copies s back onto the record.
func (e *Entente) ApplySignatures(s workflow.Signatures) {
	e.EtudiantSignature = s.Etudiant
	e.EmployeurSignature = s.Employeur
	e.GestionnaireSignature = s.Gestionnaire
	e.Statut = s.Statut
}

// StageStatus derives the temporal status at now.
func (e *Entente) StageStatus(now time.Time) workflow.StageStatus {
	return workflow.DeriveStageStatus(e.Statut, e.DateDebut, e.DateFin, now)
}

// HasParticipant reports whether userID is the student, the employer or the
// supervising professor of the entente.
func (e *Entente) HasParticipant(userID uint) bool {
	if userID == 0 {
		return false
	}
	if e.EtudiantID == userID || e.EmployeurID == userID {
		return true
	}
	return e.ProfesseurID != nil && *e.ProfesseurID == userID
}

// PartyFor returns the user id holding role on this entente, 0 if none.
func (e *Entente) PartyFor(role workflow.Role) uint {
	switch role {
	case workflow.RoleStudent:
		return e.EtudiantID
	case workflow.RoleEmployer:
		return e.EmployeurID
	case workflow.RoleProfessor:
		if e.ProfesseurID != nil {
			return *e.ProfesseurID
		}
	}
	return 0
}
