// Package store persists the workflow records. Conditional updates report
// whether they applied so callers can reload and re-run the pure transition.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/diewo77/go-stages/internal/apperr"
	"gorm.io/gorm"
)

// Store groups the record stores over one connection or transaction.
type Store struct {
	db            *gorm.DB
	Ententes      *Ententes
	Evaluations   *Evaluations
	Candidatures  *Candidatures
	Convocations  *Convocations
	Notifications *Notifications
	Users         *Users
}

// New builds a Store whose record stores share db.
func New(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Ententes:      &Ententes{db: db},
		Evaluations:   &Evaluations{db: db},
		Candidatures:  &Candidatures{db: db},
		Convocations:  &Convocations{db: db},
		Notifications: &Notifications{db: db},
		Users:         &Users{db: db},
	}
}

// Tx runs fn with stores bound to a single transaction. Inside fn only the
// given store may be used.
func (s *Store) Tx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// DB exposes the underlying handle, scoped to the transaction inside Tx.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// first loads one record by id into dest, mapping a missing row to NotFound.
func first(ctx context.Context, db *gorm.DB, dest any, resource string, id uint) error {
	err := db.WithContext(ctx).First(dest, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(resource, id)
	}
	if err != nil {
		return fmt.Errorf("load %s %d: %w", resource, id, err)
	}
	return nil
}
