package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/diewo77/go-stages/internal/apperr"
	"github.com/diewo77/go-stages/internal/models"
	"github.com/diewo77/go-stages/internal/workflow"
	"gorm.io/gorm"
)

// Evaluations persists end-of-internship evaluations, one per entente and role.
type Evaluations struct {
	db *gorm.DB
}

// ForRole returns the evaluations recorded by role on the given ententes.
func (s *Evaluations) ForRole(ctx context.Context, role workflow.Role, ententeIDs []uint) ([]models.Evaluation, error) {
	if len(ententeIDs) == 0 {
		return nil, nil
	}
	var out []models.Evaluation
	err := s.db.WithContext(ctx).
		Where("evaluateur_role = ? AND entente_id IN ?", role, ententeIDs).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list %s evaluations: %w", role, err)
	}
	return out, nil
}

// Exists reports whether role already evaluated the entente.
func (s *Evaluations) Exists(ctx context.Context, ententeID uint, role workflow.Role) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Evaluation{}).
		Where("entente_id = ? AND evaluateur_role = ?", ententeID, role).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("count evaluations of entente %d: %w", ententeID, err)
	}
	return n > 0, nil
}

// Create inserts ev. The unique index on (entente, role) turns a racing
// duplicate into AlreadyEvaluated.
func (s *Evaluations) Create(ctx context.Context, ev *models.Evaluation) error {
	err := s.db.WithContext(ctx).Create(ev).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.AlreadyEvaluated(ev.EntenteID, string(ev.EvaluateurRole))
	}
	if err != nil {
		return fmt.Errorf("insert evaluation: %w", err)
	}
	return nil
}
