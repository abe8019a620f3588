package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cafefinder/gateway/internal/application/services"
	"github.com/cafefinder/gateway/internal/domain/entities"
)

// MapHandler handles map view lifecycle and marker interaction
type MapHandler struct {
	maps  *services.MapService
	cafes *services.CafeService
}

// NewMapHandler creates a new map handler
func NewMapHandler(maps *services.MapService, cafes *services.CafeService) *MapHandler {
	return &MapHandler{maps: maps, cafes: cafes}
}

type createViewRequest struct {
	Filter entities.SearchFilter `json:"filter"`
}

// CreateView handles POST /api/maps/views. The response snapshot is taken
// after the view is ready: every marker already carries its fallback glyph,
// photo icons trickle in on subsequent GETs.
func (h *MapHandler) CreateView(w http.ResponseWriter, r *http.Request) {
	var req createViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cafes, err := h.cafes.Search(r.Context(), req.Filter)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	view := h.maps.CreateView(r.Context(), cafes)
	if err := h.maps.WaitReady(r.Context(), view); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, h.maps.Snapshot(view))
}

// GetView handles GET /api/maps/views/{id}
func (h *MapHandler) GetView(w http.ResponseWriter, r *http.Request) {
	view, err := h.maps.View(r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, h.maps.Snapshot(view))
}

// SelectMarker handles POST /api/maps/views/{id}/select/{cafeId}
func (h *MapHandler) SelectMarker(w http.ResponseWriter, r *http.Request) {
	if err := h.maps.Select(r.PathValue("id"), r.PathValue("cafeId")); err != nil {
		respondWithAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HoverMarker handles POST /api/maps/views/{id}/hover/{cafeId}
func (h *MapHandler) HoverMarker(w http.ResponseWriter, r *http.Request) {
	if err := h.maps.Hover(r.PathValue("id"), r.PathValue("cafeId")); err != nil {
		respondWithAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CloseView handles DELETE /api/maps/views/{id}
func (h *MapHandler) CloseView(w http.ResponseWriter, r *http.Request) {
	h.maps.CloseView(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

// GetGlyph handles GET /api/maps/glyph. Serves the fallback marker icon for
// a café name as inline SVG.
func (h *MapHandler) GetGlyph(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		respondWithError(w, http.StatusBadRequest, "name is required")
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(services.GlyphSVG(name)))
}
