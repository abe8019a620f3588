package handlers

import (
	"net/http"
	"strconv"

	"github.com/cafefinder/gateway/internal/application/services"
	"github.com/cafefinder/gateway/internal/domain/entities"
)

// CafeHandler handles café search and detail requests
type CafeHandler struct {
	cafes *services.CafeService
}

// NewCafeHandler creates a new cafe handler
func NewCafeHandler(cafes *services.CafeService) *CafeHandler {
	return &CafeHandler{cafes: cafes}
}

// SearchCafes handles GET /api/cafes/search
func (h *CafeHandler) SearchCafes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := entities.SearchFilter{
		Query:        query.Get("q"),
		City:         query.Get("city"),
		Wifi:         query.Get("wifi") == "true",
		Seating:      query.Get("seating") == "true",
		WorkFriendly: query.Get("workFriendly") == "true",
		PriceRange:   query.Get("priceRange"),
	}
	if v := query.Get("minRating"); v != "" {
		if rating, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MinRating = rating
		}
	}
	if lat, err := strconv.ParseFloat(query.Get("lat"), 64); err == nil {
		if lng, err := strconv.ParseFloat(query.Get("lng"), 64); err == nil {
			filter.Latitude = lat
			filter.Longitude = lng
			if radius, err := strconv.ParseFloat(query.Get("radius"), 64); err == nil {
				filter.RadiusKm = radius
			}
		}
	}

	cafes, err := h.cafes.Search(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"cafes": cafes,
		"count": len(cafes),
	})
}

// PopularCafes handles GET /api/cafes/popular
func (h *CafeHandler) PopularCafes(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	cafes, err := h.cafes.Popular(r.Context(), limit)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"cafes": cafes,
		"count": len(cafes),
	})
}

// GetCafeDetails handles GET /api/cafes/{id}
func (h *CafeHandler) GetCafeDetails(w http.ResponseWriter, r *http.Request) {
	cafeID := r.PathValue("id")
	if cafeID == "" {
		respondWithError(w, http.StatusBadRequest, "cafe ID is required")
		return
	}

	details, err := h.cafes.Details(r.Context(), cafeID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, details)
}
