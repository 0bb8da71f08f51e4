package services

import (
	"context"

	"github.com/diewo77/go-stages/gate"
	"github.com/diewo77/go-stages/internal/models"
	"github.com/diewo77/go-stages/internal/policy"
	"github.com/diewo77/go-stages/internal/workflow"
)

// NotificationService is the server side of the unread notification list.
type NotificationService struct {
	Deps
}

func NewNotificationService(d Deps) *NotificationService {
	return &NotificationService{Deps: d}
}

func (s *NotificationService) ListUnread(ctx context.Context, actor workflow.Actor) ([]models.Notification, error) {
	return s.Store.Notifications.Unread(ctx, actor.ID)
}

// MarkRead sets the read flag of one of the actor's notifications.
func (s *NotificationService) MarkRead(ctx context.Context, actor workflow.Actor, id uint, read bool) (*models.Notification, error) {
	n, err := s.Store.Notifications.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Authorize(ctx, actor, gate.ActionUpdate, policy.ResourceNotification, n); err != nil {
		return nil, err
	}
	if n.Lu == read {
		return n, nil
	}
	if err := s.Store.Notifications.SetRead(ctx, id, read); err != nil {
		return nil, err
	}
	n.Lu = read
	return n, nil
}
