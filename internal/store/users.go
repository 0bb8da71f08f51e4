package store

import (
	"context"

	"github.com/diewo77/go-stages/internal/models"
	"github.com/diewo77/go-stages/internal/workflow"
	"gorm.io/gorm"
)

// Users persists accounts and their roles.
type Users struct {
	db *gorm.DB
}

// Get loads a user by id.
func (s *Users) Get(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := first(ctx, s.db, &u, "user", id); err != nil {
		return nil, err
	}
	return &u, nil
}

// Actor resolves the explicit actor of a user id.
func (s *Users) Actor(ctx context.Context, id uint) (workflow.Actor, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return workflow.Actor{}, err
	}
	return u.Actor(), nil
}
