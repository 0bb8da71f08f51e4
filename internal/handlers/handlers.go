// Package handlers exposes the workflow services as a JSON API.
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/diewo77/go-stages/httpx"
	"github.com/diewo77/go-stages/i18n"
	"github.com/diewo77/go-stages/internal/apperr"
	"github.com/diewo77/go-stages/internal/middleware"
	"github.com/diewo77/go-stages/internal/services"
	"github.com/diewo77/go-stages/internal/workflow"
	"github.com/go-chi/chi/v5"
)

// Gate is the authorization surface the handlers need.
type Gate interface {
	services.Authorizer
	IsManager(ctx context.Context, userID uint) bool
}

// actorFrom returns the request actor or answers 401.
func actorFrom(w http.ResponseWriter, r *http.Request) (workflow.Actor, bool) {
	a, ok := middleware.ActorFrom(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
	}
	return a, ok
}

// writeError renders err with a message in the request language, tailored
// to the actor's role when the catalog has a variant.
func writeError(w http.ResponseWriter, r *http.Request, actor workflow.Actor, err error) {
	code := string(apperr.CodeOf(err))
	httpx.Error(w, err, i18n.ForRole(i18n.LangFrom(r.Context()), code, string(actor.Role)))
}

func pathID(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation(map[string]string{name: "invalid_choice"})
	}
	return uint(id), nil
}

func queryBool(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}
