package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/diewo77/go-stages/auth"
	"github.com/diewo77/go-stages/httpx"
	"github.com/diewo77/go-stages/internal/apperr"
	"github.com/diewo77/go-stages/internal/workflow"
)

// ActorResolver looks up the role of an authenticated user.
type ActorResolver interface {
	Actor(ctx context.Context, userID uint) (workflow.Actor, error)
}

type actorKey struct{}

// Actor resolves the authenticated user into an explicit actor for the
// handlers. Unknown users get 401.
func Actor(users ActorResolver, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, ok := auth.UserIDFromContext(r.Context())
			if !ok {
				httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			actor, err := users.Actor(r.Context(), uid)
			if errors.Is(err, apperr.ErrNotFound) {
				auth.ClearSession(w)
				httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			if err != nil {
				log.Error("resolve actor", "user", uid, "error", err)
				httpx.Error(w, err, "")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func WithActor(ctx context.Context, a workflow.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom returns the actor stored by Actor.
func ActorFrom(ctx context.Context) (workflow.Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(workflow.Actor)
	return a, ok && a.ID != 0
}
