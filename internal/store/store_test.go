package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/diewo77/go-stages/internal/apperr"
	"github.com/diewo77/go-stages/internal/db"
	"github.com/diewo77/go-stages/internal/models"
	"github.com/diewo77/go-stages/internal/store"
	"github.com/diewo77/go-stages/internal/workflow"
	"gorm.io/gorm"
)

func newStore(t *testing.T) *store.Store {
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
	return store.New(gdb)
}

func seedEntente(t *testing.T, s *store.Store) *models.Entente {
	t.Helper()
	e := &models.Entente{
		EtudiantID: 1, EmployeurID: 2, OffreID: 1,
		DateDebut: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		DateFin:   time.Date(2025, 4, 25, 0, 0, 0, 0, time.UTC),
	}
	if err := s.DB().Create(e).Error; err != nil {
		t.Fatal(err)
	}
	return e
}

func TestEntentes_GetNotFound(t *testing.T) {
	s := newStore(t)
	_, err := s.Ententes.Get(context.Background(), 42)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestEntentes_SwapSignatures(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	e := seedEntente(t, s)
	if e.Version != 1 || e.Statut != workflow.EntenteEnAttente {
		t.Fatalf("defaults not applied: %+v", e)
	}

	stale := *e
	next, _, err := workflow.ApplySignature(e.Signatures(), workflow.RoleStudent, workflow.SignatureSignee)
	if err != nil {
		t.Fatal(err)
	}
	ok, err := s.Ententes.SwapSignatures(ctx, e, workflow.RoleStudent, next)
	if err != nil || !ok {
		t.Fatalf("first swap: ok=%v err=%v", ok, err)
	}
	if e.Version != 2 || e.EtudiantSignature != workflow.SignatureSignee {
		t.Fatalf("record not updated in place: %+v", e)
	}

	// A writer holding the old version loses.
	next, _, _ = workflow.ApplySignature(stale.Signatures(), workflow.RoleEmployer, workflow.SignatureSignee)
	ok, err = s.Ententes.SwapSignatures(ctx, &stale, workflow.RoleEmployer, next)
	if err != nil || ok {
		t.Fatalf("stale swap should not apply: ok=%v err=%v", ok, err)
	}

	got, err := s.Ententes.Get(ctx, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.EmployeurSignature != workflow.SignatureEnAttente || got.Version != 2 {
		t.Fatalf("stale write leaked: %+v", got)
	}
}

func TestEntentes_SwapCancelled(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	e := seedEntente(t, s)
	ok, err := s.Ententes.SwapCancelled(ctx, e)
	if err != nil || !ok || e.Statut != workflow.EntenteAnnulee {
		t.Fatalf("cancel: ok=%v err=%v statut=%s", ok, err, e.Statut)
	}
	ok, err = s.Ententes.SwapCancelled(ctx, e)
	if err != nil || ok {
		t.Fatalf("second cancel should not apply: ok=%v err=%v", ok, err)
	}
}

func TestEntentes_ListFor(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	prof := uint(3)
	seedEntente(t, s)
	other := &models.Entente{EtudiantID: 4, EmployeurID: 2, OffreID: 1, ProfesseurID: &prof}
	if err := s.DB().Create(other).Error; err != nil {
		t.Fatal(err)
	}
	cases := map[uint]int{1: 1, 2: 2, 3: 1, 4: 1, 5: 0}
	for user, want := range cases {
		got, err := s.Ententes.ListFor(ctx, user)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != want {
			t.Errorf("ListFor(%d) = %d ententes, want %d", user, len(got), want)
		}
	}
}

func TestEvaluations_CreateDuplicate(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	ev := &models.Evaluation{EntenteID: 1, EvaluateurRole: workflow.RoleEmployer, EvaluateurID: 2, Commentaires: "bien"}
	if err := s.Evaluations.Create(ctx, ev); err != nil {
		t.Fatal(err)
	}
	dup := &models.Evaluation{EntenteID: 1, EvaluateurRole: workflow.RoleEmployer, EvaluateurID: 2, Commentaires: "encore"}
	if err := s.Evaluations.Create(ctx, dup); !errors.Is(err, apperr.ErrAlreadyEvaluated) {
		t.Fatalf("expected already evaluated, got %v", err)
	}
	ok, err := s.Evaluations.Exists(ctx, 1, workflow.RoleEmployer)
	if err != nil || !ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}
	got, err := s.Evaluations.ForRole(ctx, workflow.RoleProfessor, []uint{1})
	if err != nil || len(got) != 0 {
		t.Fatalf("professor evaluations = %v, %v", got, err)
	}
}

func TestConvocations_ActiveAndSwap(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	cand := &models.Candidature{OffreID: 1, EmployeurID: 2, EtudiantID: 1}
	if err := s.DB().Create(cand).Error; err != nil {
		t.Fatal(err)
	}
	if c, err := s.Convocations.Active(ctx, cand.ID); err != nil || c != nil {
		t.Fatalf("expected no active convocation, got %+v %v", c, err)
	}
	conv := &models.Convocation{CandidatureID: cand.ID, DateHeure: time.Now().Add(time.Hour), Lieu: "Bureau 204"}
	if err := s.Convocations.Insert(ctx, conv); err != nil {
		t.Fatal(err)
	}
	dup := &models.Convocation{CandidatureID: cand.ID, DateHeure: time.Now().Add(time.Hour), Lieu: "Teams"}
	if err := s.Convocations.Insert(ctx, dup); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected duplicated key, got %v", err)
	}

	next := *conv
	next.Statut = workflow.ConvocationAnnulee
	stale := *conv
	if ok, err := s.Convocations.Swap(ctx, conv, next); err != nil || !ok {
		t.Fatalf("swap: %v %v", ok, err)
	}
	if ok, _ := s.Convocations.Swap(ctx, &stale, next); ok {
		t.Fatal("stale swap applied")
	}
	if c, _ := s.Convocations.Active(ctx, cand.ID); c != nil {
		t.Fatalf("cancelled convocation still active: %+v", c)
	}

	loaded, err := s.Candidatures.Get(ctx, cand.ID)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.ActiveConvocation() != nil {
		t.Fatal("preload should skip cancelled convocations")
	}
	if ok, err := s.Candidatures.SwapStatus(ctx, loaded, workflow.CandidatureEntrevue, workflow.CandidatureEnAttente); !ok || err != nil {
		t.Fatalf("candidature swap: %v %v", ok, err)
	}
	if ok, _ := s.Candidatures.SwapStatus(ctx, loaded, workflow.CandidatureAcceptee, workflow.CandidatureEnAttente); ok {
		t.Fatal("swap from a stale status applied")
	}
}

func TestConvocations_SwapRejectsStaleVersion(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	cand := &models.Candidature{OffreID: 1, EmployeurID: 2, EtudiantID: 1}
	if err := s.DB().Create(cand).Error; err != nil {
		t.Fatal(err)
	}
	conv := &models.Convocation{CandidatureID: cand.ID, DateHeure: time.Now().Add(time.Hour), Lieu: "Bureau 204", Statut: workflow.ConvocationModifie}
	if err := s.Convocations.Insert(ctx, conv); err != nil {
		t.Fatal(err)
	}
	if conv.Version != 1 {
		t.Fatalf("version = %d, want 1", conv.Version)
	}

	// Two writers load the same row; the status is unchanged by either write.
	a, b := *conv, *conv
	nextA, nextB := a, b
	nextA.Lieu, nextB.Lieu = "Bureau 310", "Teams"
	if ok, err := s.Convocations.Swap(ctx, &a, nextA); err != nil || !ok {
		t.Fatalf("first swap: %v %v", ok, err)
	}
	if a.Version != 2 {
		t.Fatalf("version after swap = %d, want 2", a.Version)
	}
	if ok, err := s.Convocations.Swap(ctx, &b, nextB); err != nil || ok {
		t.Fatalf("second swap on a stale version: %v %v", ok, err)
	}
	if b.Lieu != "Bureau 204" {
		t.Fatalf("rejected swap mutated its copy: %+v", b)
	}

	got, err := s.Convocations.Get(ctx, conv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Lieu != "Bureau 310" || got.Version != 2 {
		t.Fatalf("stored convocation = %+v", got)
	}
}

func TestNotifications_Unread(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	for _, cle := range []string{"notif.entente_signee", "notif.convocation_creee"} {
		if err := s.Notifications.Create(ctx, &models.Notification{DestinataireID: 1, Cle: cle}); err != nil {
			t.Fatal(err)
		}
	}
	unread, err := s.Notifications.Unread(ctx, 1)
	if err != nil || len(unread) != 2 {
		t.Fatalf("unread = %v, %v", unread, err)
	}
	if err := s.Notifications.SetRead(ctx, unread[0].ID, true); err != nil {
		t.Fatal(err)
	}
	unread, _ = s.Notifications.Unread(ctx, 1)
	if len(unread) != 1 || unread[0].Cle != "notif.convocation_creee" {
		t.Fatalf("unexpected unread set %+v", unread)
	}
}

func TestTx_Rollback(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	boom := errors.New("boom")
	err := s.Tx(ctx, func(tx *store.Store) error {
		if err := tx.Notifications.Create(ctx, &models.Notification{DestinataireID: 1, Cle: "x"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	unread, _ := s.Notifications.Unread(ctx, 1)
	if len(unread) != 0 {
		t.Fatalf("rolled back insert persisted: %+v", unread)
	}
}
