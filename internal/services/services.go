// Package services runs the internship workflow: signatures, evaluations,
// convocations, candidature decisions and notifications. Every operation
// takes the acting user explicitly and returns apperr errors.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/diewo77/go-stages/gate"
	"github.com/diewo77/go-stages/internal/apperr"
	"github.com/diewo77/go-stages/internal/metrics"
	"github.com/diewo77/go-stages/internal/models"
	"github.com/diewo77/go-stages/internal/store"
	"github.com/diewo77/go-stages/internal/workflow"
)

// maxAttempts bounds the reload-and-retry loop of conditional updates.
const maxAttempts = 5

// errConcurrentUpdate marks a conditional update that lost a race.
var errConcurrentUpdate = errors.New("concurrent update")

// Authorizer checks an actor against a resource. *policy.AuthGate implements it.
type Authorizer interface {
	Authorize(ctx context.Context, userID uint, action gate.Action, resourceType string, resource any) error
}

// Deps are the collaborators shared by every service.
type Deps struct {
	Store   *store.Store
	Gate    Authorizer
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	// Now is the service clock; time.Now when nil.
	Now func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) log() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// Authorize runs the gate and turns its denials into NotAuthorized.
// Must not be called inside a store transaction: the profile resolver
// uses its own connection.
func (d Deps) Authorize(ctx context.Context, actor workflow.Actor, action gate.Action, resourceType string, resource any) error {
	err := d.Gate.Authorize(ctx, actor.ID, action, resourceType, resource)
	if err == nil {
		return nil
	}
	if errors.Is(err, gate.ErrUnauthorized) || errors.Is(err, gate.ErrPermissionDenied) ||
		errors.Is(err, gate.ErrNotRelated) || errors.Is(err, gate.ErrNoPolicyDefined) {
		e := apperr.NotAuthorized("%s may not %s this %s", actor.Role, action, resourceType)
		e.Err = err
		return e
	}
	return fmt.Errorf("authorize %s:%s: %w", resourceType, action, err)
}

// record counts the outcome of op and logs rejected operations.
func (d Deps) record(ctx context.Context, op string, actor workflow.Actor, changed bool, err error) {
	switch {
	case err == nil && changed:
		d.Metrics.Transition(op, "ok")
	case err == nil:
		d.Metrics.Transition(op, "noop")
	default:
		code := apperr.CodeOf(err)
		d.Metrics.Transition(op, string(code))
		if apperr.KindOf(err) == apperr.KindConflict {
			d.Metrics.Conflict(string(code))
		}
		level := slog.LevelInfo
		if apperr.KindOf(err) == apperr.KindInternal {
			level = slog.LevelError
		}
		d.log().Log(ctx, level, "operation rejected", "op", op, "actor", actor.ID, "role", actor.Role, "code", code, "error", err)
	}
}

// exhausted is returned when every attempt of a conditional update lost a race.
func exhausted(resource string, id uint) error {
	e := apperr.New(apperr.KindTransport, apperr.CodeUnavailable, "%s %d is being updated concurrently", resource, id)
	e.Err = errConcurrentUpdate
	return e
}

// notify stores one notification per recipient inside tx. Zero ids and
// duplicates are skipped.
func notify(ctx context.Context, tx *store.Store, key string, params map[string]string, to ...uint) error {
	seen := make(map[uint]bool, len(to))
	for _, id := range to {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		n := &models.Notification{DestinataireID: id, Cle: key, Params: models.JSONMap(params)}
		if err := tx.Notifications.Create(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

func idParam(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// except returns ids without skip.
func except(skip uint, ids ...uint) []uint {
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id != skip {
			out = append(out, id)
		}
	}
	return out
}
