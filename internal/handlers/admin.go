package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/go-stages/gate"
	"github.com/diewo77/go-stages/httpx"
	"github.com/diewo77/go-stages/internal/apperr"
	"github.com/diewo77/go-stages/internal/models"
	"github.com/diewo77/go-stages/internal/policy"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

// AdminProfileHandler lists authorization profiles and assigns them to users.
// Routes are restricted to profiles holding profile:list or profile:update.
type AdminProfileHandler struct {
	DB   *gorm.DB
	Gate *policy.AuthGate
}

func NewAdminProfileHandler(db *gorm.DB, g *policy.AuthGate) *AdminProfileHandler {
	return &AdminProfileHandler{DB: db, Gate: g}
}

func (h *AdminProfileHandler) Register(r chi.Router) {
	r.With(h.Gate.RequirePermission(policy.ResourceProfile, gate.ActionList)).Get("/admin/profiles", h.List)
	r.With(h.Gate.RequirePermission(policy.ResourceProfile, gate.ActionUpdate)).Put("/admin/users/{id}/profile", h.AssignProfile)
}

// List returns every profile with its permissions.
func (h *AdminProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var profiles []models.Profile
	if err := h.DB.WithContext(r.Context()).Preload("Permissions").Order("id").Find(&profiles).Error; err != nil {
		writeError(w, r, actor, apperr.Internal(err))
		return
	}
	httpx.JSON(w, http.StatusOK, profiles)
}

// AssignProfileRequest is the body of PUT /admin/users/{id}/profile.
// A nil profile_id detaches the user from any profile.
type AssignProfileRequest struct {
	ProfileID *uint `json:"profile_id"`
}

func (h *AdminProfileHandler) AssignProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, actor, err)
		return
	}
	var req AssignProfileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, r, actor, err)
		return
	}
	db := h.DB.WithContext(r.Context())
	if req.ProfileID != nil {
		var p models.Profile
		if err := db.First(&p, *req.ProfileID).Error; err != nil {
			writeError(w, r, actor, notFoundOr(err, "profile", *req.ProfileID))
			return
		}
	}
	var u models.User
	if err := db.First(&u, userID).Error; err != nil {
		writeError(w, r, actor, notFoundOr(err, "user", userID))
		return
	}
	if err := db.Model(&u).Update("profile_id", req.ProfileID).Error; err != nil {
		writeError(w, r, actor, apperr.Internal(err))
		return
	}
	h.Gate.InvalidateUser(userID)
	httpx.JSON(w, http.StatusOK, map[string]any{"user_id": userID, "profile_id": req.ProfileID})
}

func notFoundOr(err error, resource string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(resource, id)
	}
	return apperr.Internal(err)
}
