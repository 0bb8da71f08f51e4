// Package validation collects per-field violation codes before any state is touched.
package validation

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/diewo77/go-stages/internal/apperr"
)

// Violations maps a field name to a violation code ("required", "too_long", ...).
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Err returns nil when empty, a validation error otherwise.
func (v Violations) Err() error {
	if v.Empty() {
		return nil
	}
	return apperr.Validation(v)
}

func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func MaxLength(field, value string, maxLen int, v Violations) {
	if utf8.RuneCountInString(value) > maxLen {
		v[field] = "too_long"
	}
}

func RequiredTime(field string, value time.Time, v Violations) {
	if value.IsZero() {
		v[field] = "required"
	}
}

// After flags value unless it is strictly after ref. Zero values are left to RequiredTime.
func After(field string, value, ref time.Time, v Violations) {
	if !value.IsZero() && !value.After(ref) {
		v[field] = "must_be_in_future"
	}
}

func RequiredID(field string, id uint, v Violations) {
	if id == 0 {
		v[field] = "required"
	}
}
