package store

import (
	"context"
	"fmt"

	"github.com/diewo77/go-stages/internal/models"
	"github.com/diewo77/go-stages/internal/workflow"
	"gorm.io/gorm"
)

// Ententes persists internship agreements and their signature state.
type Ententes struct {
	db *gorm.DB
}

// Get loads an entente by id.
func (s *Ententes) Get(ctx context.Context, id uint) (*models.Entente, error) {
	var e models.Entente
	if err := first(ctx, s.db, &e, "entente", id); err != nil {
		return nil, err
	}
	return &e, nil
}

// ListFor returns the ententes userID is a party of, newest first.
func (s *Ententes) ListFor(ctx context.Context, userID uint) ([]models.Entente, error) {
	var out []models.Entente
	err := s.db.WithContext(ctx).
		Where("etudiant_id = ? OR employeur_id = ? OR professeur_id = ?", userID, userID, userID).
		Order("id DESC").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list ententes of user %d: %w", userID, err)
	}
	return out, nil
}

// List returns every entente, newest first.
func (s *Ententes) List(ctx context.Context) ([]models.Entente, error) {
	var out []models.Entente
	if err := s.db.WithContext(ctx).Order("id DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list ententes: %w", err)
	}
	return out, nil
}

// SwapSignatures writes next over cur only if the row still has cur's version
// and the role's signature field is still EN_ATTENTE. On success cur is updated
// in place. A false result means another writer got there first.
func (s *Ententes) SwapSignatures(ctx context.Context, cur *models.Entente, role workflow.Role, next workflow.Signatures) (bool, error) {
	col := workflow.SignatureColumn(role)
	if col == "" {
		return false, fmt.Errorf("role %s has no signature field", role)
	}
	res := s.db.WithContext(ctx).Model(&models.Entente{}).
		Where("id = ? AND version = ? AND "+col+" = ?", cur.ID, cur.Version, workflow.SignatureEnAttente).
		Updates(map[string]any{
			"etudiant_signature":     next.Etudiant,
			"employeur_signature":    next.Employeur,
			"gestionnaire_signature": next.Gestionnaire,
			"statut":                 next.Statut,
			"version":                gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return false, fmt.Errorf("update entente %d signatures: %w", cur.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	cur.ApplySignatures(next)
	cur.Version++
	return true, nil
}

// SwapCancelled moves a pending entente to ANNULEE under the same version check.
func (s *Ententes) SwapCancelled(ctx context.Context, cur *models.Entente) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Entente{}).
		Where("id = ? AND version = ? AND statut = ?", cur.ID, cur.Version, workflow.EntenteEnAttente).
		Updates(map[string]any{
			"statut":  workflow.EntenteAnnulee,
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return false, fmt.Errorf("cancel entente %d: %w", cur.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	cur.Statut = workflow.EntenteAnnulee
	cur.Version++
	return true, nil
}
