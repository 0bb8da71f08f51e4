package handlers

import (
	"net/http"

	"github.com/diewo77/go-stages/gate"
	"github.com/diewo77/go-stages/httpx"
	"github.com/diewo77/go-stages/internal/policy"
	"github.com/diewo77/go-stages/internal/services"
	"github.com/diewo77/go-stages/internal/store"
	"github.com/diewo77/go-stages/internal/workflow"
	"github.com/go-chi/chi/v5"
)

// CandidatureHandler serves candidatures and their interview convocations.
type CandidatureHandler struct {
	Store     *store.Store
	Tracker   *services.CandidatureTracker
	Scheduler *services.ConvocationScheduler
}

func NewCandidatureHandler(st *store.Store, t *services.CandidatureTracker, s *services.ConvocationScheduler) *CandidatureHandler {
	return &CandidatureHandler{Store: st, Tracker: t, Scheduler: s}
}

func (h *CandidatureHandler) Register(r chi.Router) {
	r.Get("/candidatures", h.List)
	r.Get("/candidatures/{id}", h.Get)
	r.Post("/candidatures/{id}/decision", h.Decide)
	r.Post("/candidatures/{id}/convocations", h.Convoke)
	r.Put("/convocations/{id}", h.ModifyConvocation)
	r.Delete("/convocations/{id}", h.CancelConvocation)
}

func (h *CandidatureHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	list, err := h.Store.Candidatures.ListFor(r.Context(), actor.ID)
	if err != nil {
		writeError(w, r, actor, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

// Get returns the candidature with its active convocation, if any.
func (h *CandidatureHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, actor, err)
		return
	}
	c, err := h.Store.Candidatures.Get(r.Context(), id)
	if err == nil {
		err = h.Tracker.Authorize(r.Context(), actor, gate.ActionView, policy.ResourceCandidature, c)
	}
	if err != nil {
		writeError(w, r, actor, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// DecisionRequest is the body of POST /candidatures/{id}/decision.
type DecisionRequest struct {
	Statut string `json:"statut"`
}

func (h *CandidatureHandler) Decide(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, actor, err)
		return
	}
	var req DecisionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, r, actor, err)
		return
	}
	statut, err := workflow.ParseCandidatureStatus(req.Statut)
	if err != nil {
		writeError(w, r, actor, err)
		return
	}
	c, err := h.Tracker.Decide(r.Context(), actor, id, statut)
	if err != nil {
		writeError(w, r, actor, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// Convoke creates the interview convocation. ?overwrite=true replaces an
// active one.
func (h *CandidatureHandler) Convoke(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, actor, err)
		return
	}
	var p services.ConvocationPayload
	if err := httpx.DecodeJSON(r, &p); err != nil {
		writeError(w, r, actor, err)
		return
	}
	conv, err := h.Scheduler.Create(r.Context(), actor, id, p, queryBool(r, "overwrite"))
	if err != nil {
		writeError(w, r, actor, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, conv)
}

func (h *CandidatureHandler) ModifyConvocation(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, actor, err)
		return
	}
	var p services.ConvocationPayload
	if err := httpx.DecodeJSON(r, &p); err != nil {
		writeError(w, r, actor, err)
		return
	}
	conv, err := h.Scheduler.Modify(r.Context(), actor, id, p)
	if err != nil {
		writeError(w, r, actor, err)
		return
	}
	httpx.JSON(w, http.StatusOK, conv)
}

// CancelConvocation requires ?confirm=true.
func (h *CandidatureHandler) CancelConvocation(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, actor, err)
		return
	}
	conv, err := h.Scheduler.Cancel(r.Context(), actor, id, queryBool(r, "confirm"))
	if err != nil {
		writeError(w, r, actor, err)
		return
	}
	httpx.JSON(w, http.StatusOK, conv)
}
