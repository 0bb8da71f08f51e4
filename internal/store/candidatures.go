package store

import (
	"context"
	"fmt"

	"github.com/diewo77/go-stages/internal/models"
	"github.com/diewo77/go-stages/internal/workflow"
	"gorm.io/gorm"
)

// Candidatures persists applications to offers.
type Candidatures struct {
	db *gorm.DB
}

// Get loads a candidature with its non-cancelled convocations.
func (s *Candidatures) Get(ctx context.Context, id uint) (*models.Candidature, error) {
	var c models.Candidature
	if err := first(ctx, s.db.Preload("Convocations", "statut <> ?", workflow.ConvocationAnnulee), &c, "candidature", id); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListFor returns the candidatures of a student or received by an employer.
func (s *Candidatures) ListFor(ctx context.Context, userID uint) ([]models.Candidature, error) {
	var out []models.Candidature
	err := s.db.WithContext(ctx).
		Where("etudiant_id = ? OR employeur_id = ?", userID, userID).
		Order("id DESC").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list candidatures of user %d: %w", userID, err)
	}
	return out, nil
}

// SwapStatus sets the status to next if it is still one of from.
func (s *Candidatures) SwapStatus(ctx context.Context, c *models.Candidature, next workflow.CandidatureStatus, from ...workflow.CandidatureStatus) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Candidature{}).
		Where("id = ? AND statut IN ?", c.ID, from).
		Update("statut", next)
	if res.Error != nil {
		return false, fmt.Errorf("update candidature %d: %w", c.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	c.Statut = next
	return true, nil
}
