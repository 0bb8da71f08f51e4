package handlers

import (
	"net/http"

	"github.com/diewo77/go-stages/httpx"
	"github.com/diewo77/go-stages/internal/services"
	"github.com/go-chi/chi/v5"
)

type EvaluationHandler struct {
	Evaluations *services.EvaluationGate
}

func NewEvaluationHandler(g *services.EvaluationGate) *EvaluationHandler {
	return &EvaluationHandler{Evaluations: g}
}

func (h *EvaluationHandler) Register(r chi.Router) {
	r.Get("/evaluations/eligibles", h.ListEligible)
	r.Post("/evaluations", h.Create)
}

// CreateEvaluationRequest is the body of POST /evaluations.
type CreateEvaluationRequest struct {
	EntenteID uint `json:"entente_id"`
	services.EvaluationPayload
}

func (h *EvaluationHandler) ListEligible(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	list, err := h.Evaluations.ListEvaluableFor(r.Context(), actor)
	if err != nil {
		writeError(w, r, actor, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *EvaluationHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req CreateEvaluationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, r, actor, err)
		return
	}
	ev, err := h.Evaluations.Create(r.Context(), actor, req.EntenteID, req.EvaluationPayload)
	if err != nil {
		writeError(w, r, actor, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, ev)
}
