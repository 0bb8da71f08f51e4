package models

import (
	"time"

	"github.com/diewo77/go-stages/internal/workflow"
)

// Evaluation is the post-internship assessment of the workplace (évaluation
// du milieu de stage). One per entente and evaluator role.
type Evaluation struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time     `json:"created_at"`
	EntenteID       uint          `gorm:"not null;uniqueIndex:idx_evaluation_entente_role" json:"entente_id"`
	EvaluateurRole  workflow.Role `gorm:"size:20;not null;uniqueIndex:idx_evaluation_entente_role" json:"evaluateur_role"`
	EvaluateurID    uint          `gorm:"index;not null" json:"evaluateur_id"`
	Commentaires    string        `gorm:"size:4000;not null" json:"commentaires"`
	PointsForts     string        `gorm:"size:2000" json:"points_forts,omitempty"`
	PointsAmeliorer string        `gorm:"size:2000" json:"points_ameliorer,omitempty"`
	// Recommande tells whether the evaluator would recommend the workplace.
	Recommande bool    `gorm:"not null;default:false" json:"recommande"`
	Reponses   JSONMap `gorm:"type:text" json:"reponses,omitempty"`
}
