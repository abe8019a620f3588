package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cafefinder/gateway/internal/application/services"
	"github.com/cafefinder/gateway/internal/domain/entities"
)

// AdminHandler handles the review moderation queue
type AdminHandler struct {
	admin    *services.AdminService
	sessions *services.SessionService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(admin *services.AdminService, sessions *services.SessionService) *AdminHandler {
	return &AdminHandler{admin: admin, sessions: sessions}
}

// Stats handles GET /api/admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	session := resolveSession(r, h.sessions)
	stats, err := h.admin.Stats(r.Context(), session)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}

// Reviews handles GET /api/admin/reviews
func (h *AdminHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	status := entities.ModerationStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = entities.ModerationPending
	}

	session := resolveSession(r, h.sessions)
	reviews, err := h.admin.Reviews(r.Context(), session, status)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"reviews": reviews,
		"count":   len(reviews),
	})
}

type moderationRequest struct {
	Status     entities.ModerationStatus `json:"status"`
	AdminNotes string                    `json:"adminNotes,omitempty"`
}

// Moderate handles POST /api/admin/reviews/{id}/decision
func (h *AdminHandler) Moderate(w http.ResponseWriter, r *http.Request) {
	reviewID := r.PathValue("id")
	if reviewID == "" {
		respondWithError(w, http.StatusBadRequest, "review ID is required")
		return
	}

	var req moderationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session := resolveSession(r, h.sessions)
	if err := h.admin.Moderate(r.Context(), session, reviewID, req.Status, req.AdminNotes); err != nil {
		respondWithAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
