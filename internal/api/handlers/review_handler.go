package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cafefinder/gateway/internal/application/services"
	"github.com/cafefinder/gateway/internal/domain/entities"
)

// ReviewHandler handles review reads and submission
type ReviewHandler struct {
	reviews  *services.ReviewService
	sessions *services.SessionService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviews *services.ReviewService, sessions *services.SessionService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, sessions: sessions}
}

// RecentReviews handles GET /api/reviews/recent
func (h *ReviewHandler) RecentReviews(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	reviews, err := h.reviews.Recent(r.Context(), limit)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"reviews": reviews,
		"count":   len(reviews),
	})
}

// CafeReviews handles GET /api/reviews/cafe/{id}
func (h *ReviewHandler) CafeReviews(w http.ResponseWriter, r *http.Request) {
	cafeID := r.PathValue("id")
	if cafeID == "" {
		respondWithError(w, http.StatusBadRequest, "cafe ID is required")
		return
	}

	reviews, err := h.reviews.ForCafe(r.Context(), cafeID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"reviews": reviews,
		"count":   len(reviews),
	})
}

// SubmitReview handles POST /api/reviews. The created review comes back in
// the response so the client can prepend it locally instead of refetching
// the whole list.
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	var review entities.Review
	if err := json.NewDecoder(r.Body).Decode(&review); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session := resolveSession(r, h.sessions)
	created, err := h.reviews.Submit(r.Context(), session, &review)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}
