package handlers

import (
	"net/http"

	"github.com/diewo77/go-stages/httpx"
	"github.com/diewo77/go-stages/i18n"
	"github.com/diewo77/go-stages/internal/apperr"
	"github.com/diewo77/go-stages/internal/models"
	"github.com/diewo77/go-stages/internal/services"
	"github.com/go-chi/chi/v5"
)

type NotificationHandler struct {
	Notifications *services.NotificationService
}

func NewNotificationHandler(s *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{Notifications: s}
}

func (h *NotificationHandler) Register(r chi.Router) {
	r.Get("/notifications", h.ListUnread)
	r.Patch("/notifications/{id}", h.Update)
}

// NotificationResponse carries the rendered message next to the template key.
type NotificationResponse struct {
	models.Notification
	Message string `json:"message"`
}

func (h *NotificationHandler) ListUnread(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	list, err := h.Notifications.ListUnread(r.Context(), actor)
	if err != nil {
		writeError(w, r, actor, err)
		return
	}
	lang := i18n.LangFrom(r.Context())
	out := make([]NotificationResponse, len(list))
	for i, n := range list {
		out[i] = NotificationResponse{Notification: n, Message: i18n.Format(lang, n.Cle, n.Params)}
	}
	httpx.JSON(w, http.StatusOK, out)
}

// UpdateNotificationRequest is the body of PATCH /notifications/{id}.
type UpdateNotificationRequest struct {
	Lu *bool `json:"lu"`
}

func (h *NotificationHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, actor, err)
		return
	}
	var req UpdateNotificationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, r, actor, err)
		return
	}
	if req.Lu == nil {
		writeError(w, r, actor, apperr.Validation(map[string]string{"lu": "required"}))
		return
	}
	n, err := h.Notifications.MarkRead(r.Context(), actor, id, *req.Lu)
	if err != nil {
		writeError(w, r, actor, err)
		return
	}
	httpx.JSON(w, http.StatusOK, n)
}
