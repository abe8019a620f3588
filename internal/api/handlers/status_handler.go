package handlers

import (
	"net/http"

	"github.com/cafefinder/gateway/internal/adapters/events"
	"github.com/cafefinder/gateway/internal/application/services"
)

// StatusHandler serves the status page probes and the notification feed
type StatusHandler struct {
	diagnostics *services.DiagnosticsService
	toasts      *events.ToastNotifier
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(diagnostics *services.DiagnosticsService, toasts *events.ToastNotifier) *StatusHandler {
	return &StatusHandler{diagnostics: diagnostics, toasts: toasts}
}

// Status handles GET /api/status
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	report := h.diagnostics.Status(r.Context())
	status := http.StatusOK
	if !report.Healthy {
		status = http.StatusServiceUnavailable
	}
	respondWithJSON(w, status, report)
}

// Notifications handles GET /api/notifications
func (h *StatusHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	toasts := h.toasts.Recent()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": toasts,
		"count":         len(toasts),
	})
}
