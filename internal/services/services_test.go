package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/diewo77/go-stages/gate"
	"github.com/diewo77/go-stages/internal/apperr"
	"github.com/diewo77/go-stages/internal/db"
	"github.com/diewo77/go-stages/internal/metrics"
	"github.com/diewo77/go-stages/internal/models"
	"github.com/diewo77/go-stages/internal/policy"
	"github.com/diewo77/go-stages/internal/services"
	"github.com/diewo77/go-stages/internal/store"
	"github.com/diewo77/go-stages/internal/workflow"
)

const (
	student uint = iota + 1
	employer
	professor
	manager
	otherStudent
	otherEmployer
)

var roles = map[uint]workflow.Role{
	student:       workflow.RoleStudent,
	employer:      workflow.RoleEmployer,
	professor:     workflow.RoleProfessor,
	manager:       workflow.RoleManager,
	otherStudent:  workflow.RoleStudent,
	otherEmployer: workflow.RoleEmployer,
}

func actor(id uint) workflow.Actor {
	return workflow.Actor{ID: id, Role: roles[id]}
}

var clock = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newDeps(t *testing.T) services.Deps {
	t.Helper()
	gdb, err := db.OpenSQLite("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	resolver := gate.NewStaticResolver[uint]()
	for id, role := range roles {
		resolver.Set(id, policy.StaticRoleProfile(role))
	}
	return services.Deps{
		Store:   store.New(gdb),
		Gate:    policy.NewAuthGateWithResolver(resolver, time.Minute),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics: metrics.New(),
		Now:     func() time.Time { return clock },
	}
}

func seedEntente(t *testing.T, st *store.Store, mutate func(*models.Entente)) *models.Entente {
	t.Helper()
	prof := professor
	e := &models.Entente{
		EtudiantID:   student,
		EmployeurID:  employer,
		OffreID:      1,
		ProfesseurID: &prof,
		DateDebut:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		DateFin:      time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	if mutate != nil {
		mutate(e)
	}
	if err := st.DB().Create(e).Error; err != nil {
		t.Fatal(err)
	}
	return e
}

func seedCandidature(t *testing.T, st *store.Store, statut workflow.CandidatureStatus) *models.Candidature {
	t.Helper()
	c := &models.Candidature{OffreID: 1, EmployeurID: employer, EtudiantID: student, Statut: statut}
	if err := st.DB().Create(c).Error; err != nil {
		t.Fatal(err)
	}
	return c
}

func unread(t *testing.T, st *store.Store, user uint) []models.Notification {
	t.Helper()
	out, err := st.Notifications.Unread(context.Background(), user)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func assertCode(t *testing.T, err error, want *apperr.Error) {
	t.Helper()
	if !errors.Is(err, want) {
		t.Fatalf("expected %s, got %v", want.Code, err)
	}
}
