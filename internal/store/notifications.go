package store

import (
	"context"
	"fmt"

	"github.com/diewo77/go-stages/internal/models"
	"gorm.io/gorm"
)

// Notifications persists per-user notifications.
type Notifications struct {
	db *gorm.DB
}

// Create inserts n.
func (s *Notifications) Create(ctx context.Context, n *models.Notification) error {
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// Get loads a notification by id.
func (s *Notifications) Get(ctx context.Context, id uint) (*models.Notification, error) {
	var n models.Notification
	if err := first(ctx, s.db, &n, "notification", id); err != nil {
		return nil, err
	}
	return &n, nil
}

// Unread returns the unread notifications of userID, oldest first.
func (s *Notifications) Unread(ctx context.Context, userID uint) ([]models.Notification, error) {
	var out []models.Notification
	err := s.db.WithContext(ctx).
		Where("destinataire_id = ? AND lu = ?", userID, false).
		Order("id ASC").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list unread notifications of user %d: %w", userID, err)
	}
	return out, nil
}

// SetRead sets the read flag of a notification.
func (s *Notifications) SetRead(ctx context.Context, id uint, read bool) error {
	if err := s.db.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", id).Update("lu", read).Error; err != nil {
		return fmt.Errorf("update notification %d: %w", id, err)
	}
	return nil
}
