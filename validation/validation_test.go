package validation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/go-stages/internal/apperr"
)

func TestViolations(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	v := make(Violations)
	Required("lieu", "  ", v)
	MaxLength("message", strings.Repeat("é", 11), 10, v)
	RequiredTime("date_heure", time.Time{}, v)
	After("rappel", now.Add(-time.Hour), now, v)
	RequiredID("entente_id", 0, v)

	want := map[string]string{
		"lieu":       "required",
		"message":    "too_long",
		"date_heure": "required",
		"rappel":     "must_be_in_future",
		"entente_id": "required",
	}
	for field, code := range want {
		if v[field] != code {
			t.Fatalf("%s: expected %s got %q", field, code, v[field])
		}
	}
	err := v.Err()
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if e, _ := apperr.As(err); e.Fields["lieu"] != "required" {
		t.Fatalf("fields not carried: %+v", e.Fields)
	}
}

func TestViolationsEmpty(t *testing.T) {
	now := time.Now()
	v := make(Violations)
	Required("lieu", "Salle 204", v)
	MaxLength("message", "ok", 10, v)
	RequiredTime("date_heure", now, v)
	After("date_heure", now.Add(time.Hour), now, v)
	After("optionnel", time.Time{}, now, v)
	if !v.Empty() || v.Err() != nil {
		t.Fatalf("expected no violations, got %v", v)
	}
}
