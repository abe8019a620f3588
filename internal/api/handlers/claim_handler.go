package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cafefinder/gateway/internal/application/services"
	"github.com/cafefinder/gateway/internal/domain/entities"
)

// ClaimHandler handles business-owner claim requests
type ClaimHandler struct {
	claims   *services.ClaimService
	sessions *services.SessionService
}

// NewClaimHandler creates a new claim handler
func NewClaimHandler(claims *services.ClaimService, sessions *services.SessionService) *ClaimHandler {
	return &ClaimHandler{claims: claims, sessions: sessions}
}

// CanClaim handles GET /api/claims/can-claim/{id}
func (h *ClaimHandler) CanClaim(w http.ResponseWriter, r *http.Request) {
	cafeID := r.PathValue("id")
	if cafeID == "" {
		respondWithError(w, http.StatusBadRequest, "cafe ID is required")
		return
	}

	session := resolveSession(r, h.sessions)
	canClaim, err := h.claims.CanClaim(r.Context(), session, cafeID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"canClaim": canClaim})
}

// SubmitClaim handles POST /api/claims
func (h *ClaimHandler) SubmitClaim(w http.ResponseWriter, r *http.Request) {
	var claim entities.ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&claim); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session := resolveSession(r, h.sessions)
	if err := h.claims.Submit(r.Context(), session, &claim); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusAccepted, map[string]string{
		"status": "submitted",
	})
}
