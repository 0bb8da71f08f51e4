package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/diewo77/go-stages/internal/models"
	"github.com/diewo77/go-stages/internal/workflow"
	"gorm.io/gorm"
)

// Convocations persists interview convocations.
type Convocations struct {
	db *gorm.DB
}

// Get loads a convocation by id.
func (s *Convocations) Get(ctx context.Context, id uint) (*models.Convocation, error) {
	var c models.Convocation
	if err := first(ctx, s.db, &c, "convocation", id); err != nil {
		return nil, err
	}
	return &c, nil
}

// Active returns the non-cancelled convocation of a candidature, nil if none.
func (s *Convocations) Active(ctx context.Context, candidatureID uint) (*models.Convocation, error) {
	var c models.Convocation
	err := s.db.WithContext(ctx).
		Where("candidature_id = ? AND statut <> ?", candidatureID, workflow.ConvocationAnnulee).
		Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load active convocation of candidature %d: %w", candidatureID, err)
	}
	return &c, nil
}

// Insert returns gorm.ErrDuplicatedKey (wrapped) when another active
// convocation already exists for the candidature.
func (s *Convocations) Insert(ctx context.Context, c *models.Convocation) error {
	if c.Version == 0 {
		c.Version = 1
	}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("insert convocation: %w", err)
	}
	return nil
}

// Swap writes next over c if the stored row is still at c.Version. A false
// result means another writer got there first and c is stale.
func (s *Convocations) Swap(ctx context.Context, c *models.Convocation, next models.Convocation) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Convocation{}).
		Where("id = ? AND version = ?", c.ID, c.Version).
		Updates(map[string]any{
			"statut":     next.Statut,
			"date_heure": next.DateHeure,
			"lieu":       next.Lieu,
			"message":    next.Message,
			"version":    gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return false, fmt.Errorf("update convocation %d: %w", c.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	c.Statut, c.DateHeure, c.Lieu, c.Message = next.Statut, next.DateHeure, next.Lieu, next.Message
	c.Version++
	return true, nil
}
