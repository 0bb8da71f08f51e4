package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/diewo77/go-stages/gate"
	"github.com/diewo77/go-stages/httpx"
	"github.com/diewo77/go-stages/internal/models"
	"github.com/diewo77/go-stages/internal/policy"
	"github.com/diewo77/go-stages/internal/services"
	"github.com/diewo77/go-stages/internal/store"
	"github.com/diewo77/go-stages/internal/workflow"
	"github.com/go-chi/chi/v5"
)

// EntenteResponse is an entente with its stage status derived at read time.
type EntenteResponse struct {
	models.Entente
	StatutStage workflow.StageStatus `json:"statut_stage"`
}

type EntenteHandler struct {
	Store      *store.Store
	Gate       Gate
	Signatures *services.SignatureCoordinator
	Now        func() time.Time
}

func NewEntenteHandler(st *store.Store, g Gate, sig *services.SignatureCoordinator) *EntenteHandler {
	return &EntenteHandler{Store: st, Gate: g, Signatures: sig, Now: time.Now}
}

func (h *EntenteHandler) Register(r chi.Router) {
	r.Get("/ententes", h.List)
	r.Get("/ententes/{id}", h.Get)
	r.Post("/ententes/{id}/signer", h.Sign)
	r.Post("/ententes/{id}/refuser", h.Refuse)
	r.Post("/ententes/{id}/annuler", h.Cancel)
}

func (h *EntenteHandler) respond(w http.ResponseWriter, e *models.Entente) {
	httpx.JSON(w, http.StatusOK, EntenteResponse{Entente: *e, StatutStage: e.StageStatus(h.Now())})
}

// List returns the actor's ententes; managers see all of them.
func (h *EntenteHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var (
		list []models.Entente
		err  error
	)
	if h.Gate.IsManager(r.Context(), actor.ID) {
		list, err = h.Store.Ententes.List(r.Context())
	} else {
		list, err = h.Store.Ententes.ListFor(r.Context(), actor.ID)
	}
	if err != nil {
		writeError(w, r, actor, err)
		return
	}
	now := h.Now()
	out := make([]EntenteResponse, len(list))
	for i, e := range list {
		out[i] = EntenteResponse{Entente: e, StatutStage: e.StageStatus(now)}
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *EntenteHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, actor, err)
		return
	}
	e, err := h.Store.Ententes.Get(r.Context(), id)
	if err == nil {
		err = h.Signatures.Authorize(r.Context(), actor, gate.ActionView, policy.ResourceEntente, e)
	}
	if err != nil {
		writeError(w, r, actor, err)
		return
	}
	h.respond(w, e)
}

// Sign records the actor's signature on its own field.
func (h *EntenteHandler) Sign(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Signatures.Sign)
}

func (h *EntenteHandler) Refuse(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Signatures.Refuse)
}

func (h *EntenteHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(ctx context.Context, a workflow.Actor, id uint, _ workflow.Role) (*models.Entente, error) {
		return h.Signatures.Cancel(ctx, a, id)
	})
}

func (h *EntenteHandler) transition(w http.ResponseWriter, r *http.Request, op func(context.Context, workflow.Actor, uint, workflow.Role) (*models.Entente, error)) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, actor, err)
		return
	}
	e, err := op(r.Context(), actor, id, actor.Role)
	if err != nil {
		writeError(w, r, actor, err)
		return
	}
	h.respond(w, e)
}
