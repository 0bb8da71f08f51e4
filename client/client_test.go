package client_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/diewo77/go-stages/auth"
	"github.com/diewo77/go-stages/client"
	"github.com/diewo77/go-stages/httpx"
	"github.com/diewo77/go-stages/internal/apperr"
	"github.com/diewo77/go-stages/internal/db"
	"github.com/diewo77/go-stages/internal/notify"
	"github.com/diewo77/go-stages/internal/server"
	"github.com/diewo77/go-stages/internal/services"
	"github.com/diewo77/go-stages/internal/workflow"
)

var clock = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newServer(t *testing.T) (*httptest.Server, *db.Demo) {
	t.Helper()
	gdb, err := db.OpenSQLite("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatal(err)
	}
	profiles, err := db.SeedProfiles(gdb)
	if err != nil {
		t.Fatal(err)
	}
	demo, err := db.SeedDemo(gdb, profiles, clock)
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(server.New(server.Options{
		DB:     gdb,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    func() time.Time { return clock },
	}))
	t.Cleanup(func() {
		srv.Close()
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return srv, demo
}

func clientFor(srv *httptest.Server, demo *db.Demo, role workflow.Role) *client.Client {
	return client.New(srv.URL, auth.Token(demo.Users[role].ID))
}

func TestClient_SignatureErrors(t *testing.T) {
	srv, demo := newServer(t)
	ctx := context.Background()
	student := clientFor(srv, demo, workflow.RoleStudent)
	employer := clientFor(srv, demo, workflow.RoleEmployer)

	e, err := employer.Refuse(ctx, demo.Entente.ID)
	if err != nil {
		t.Fatal(err)
	}
	if e.Statut != workflow.EntenteRefusee {
		t.Fatalf("statut = %s", e.Statut)
	}

	_, err = student.Sign(ctx, demo.Entente.ID)
	if !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Fatalf("expected invalid_transition, got %v", err)
	}
	if apperr.Retryable(err) {
		t.Fatal("a conflict is not retryable")
	}

	_, err = clientFor(srv, demo, workflow.RoleProfessor).Sign(ctx, demo.Entente.ID)
	if !errors.Is(err, apperr.ErrNotAuthorized) {
		t.Fatalf("professor sign: %v", err)
	}

	_, err = client.New(srv.URL, "").Ententes(ctx)
	if !errors.Is(err, apperr.ErrNotAuthorized) {
		t.Fatalf("anonymous: %v", err)
	}
}

func TestClient_ValidationFields(t *testing.T) {
	srv, demo := newServer(t)
	employer := clientFor(srv, demo, workflow.RoleEmployer)
	_, err := employer.Convoke(context.Background(), demo.Candidature.ID, services.ConvocationPayload{}, false)
	e, ok := apperr.As(err)
	if !ok || e.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if e.Fields["lieu"] == "" || e.Fields["date_heure"] == "" {
		t.Fatalf("fields = %v", e.Fields)
	}
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := client.New(url, "t").Ententes(context.Background())
	if !apperr.Retryable(err) {
		t.Fatalf("expected retryable transport error, got %v", err)
	}
}

func TestClient_UnavailableStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, http.StatusServiceUnavailable, "unavailable", nil)
	}))
	defer srv.Close()
	err := client.New(srv.URL, "t").MarkRead(context.Background(), 1, true)
	if !errors.Is(err, apperr.ErrUnavailable) || !apperr.Retryable(err) {
		t.Fatalf("got %v", err)
	}
}

func TestClient_DeduplicatorOverAPI(t *testing.T) {
	srv, demo := newServer(t)
	ctx := context.Background()
	if _, err := clientFor(srv, demo, workflow.RoleEmployer).Sign(ctx, demo.Entente.ID); err != nil {
		t.Fatal(err)
	}
	student := clientFor(srv, demo, workflow.RoleStudent)
	student.Lang = "en"

	list, err := student.Notifications(ctx)
	if err != nil || len(list) != 1 || list[0].Message == "" {
		t.Fatalf("notifications = %+v, err = %v", list, err)
	}

	var _ notify.Source = student
	d := notify.NewDeduplicator(student)
	if err := d.Reload(ctx); err != nil {
		t.Fatal(err)
	}
	unread := d.Unread()
	if len(unread) != 1 {
		t.Fatalf("unread = %v", unread)
	}
	if err := d.MarkAsRead(ctx, unread[0].ID); err != nil {
		t.Fatal(err)
	}
	if len(d.Unread()) != 0 {
		t.Fatal("item still listed locally")
	}
	if err := d.Reload(ctx); err != nil || len(d.Unread()) != 0 {
		t.Fatalf("server still lists the item: %v", d.Unread())
	}
}
