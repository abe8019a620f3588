package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cafefinder/gateway/internal/application/services"
)

// BusyHandler handles crowd report aggregation and submission
type BusyHandler struct {
	busy     *services.BusyService
	sessions *services.SessionService
}

// NewBusyHandler creates a new busy handler
func NewBusyHandler(busy *services.BusyService, sessions *services.SessionService) *BusyHandler {
	return &BusyHandler{busy: busy, sessions: sessions}
}

// GetBusySummary handles GET /api/busy/cafe/{id}
func (h *BusyHandler) GetBusySummary(w http.ResponseWriter, r *http.Request) {
	cafeID := r.PathValue("id")
	if cafeID == "" {
		respondWithError(w, http.StatusBadRequest, "cafe ID is required")
		return
	}

	hours := 0
	if v := r.URL.Query().Get("hours"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			hours = parsed
		}
	}

	summary, err := h.busy.Summary(r.Context(), cafeID, hours)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

type busyReportRequest struct {
	CrowdLevel int  `json:"crowdLevel"`
	WaitMins   *int `json:"waitMins,omitempty"`
}

// SubmitReport handles POST /api/busy/cafe/{id}/report
func (h *BusyHandler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	cafeID := r.PathValue("id")
	if cafeID == "" {
		respondWithError(w, http.StatusBadRequest, "cafe ID is required")
		return
	}

	req := busyReportRequest{CrowdLevel: services.DefaultCrowdLevel}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session := resolveSession(r, h.sessions)
	report, err := h.busy.SubmitReport(r.Context(), session, cafeID, req.CrowdLevel, req.WaitMins)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, report)
}
