package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cafefinder/gateway/internal/api/handlers"
	"github.com/cafefinder/gateway/internal/application/services"
	"github.com/cafefinder/gateway/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusyHandler_GetBusySummary(t *testing.T) {
	api := &stubAPI{busyReports: []entities.BusyReport{
		{CafeID: "c1", CrowdLevel: 70},
		{CafeID: "c1", CrowdLevel: 30},
	}}
	sessions, _ := newSessions(api)
	handler := handlers.NewBusyHandler(services.NewBusyService(api), sessions)

	req := httptest.NewRequest("GET", "/api/busy/cafe/c1?hours=48", nil)
	req.SetPathValue("id", "c1")
	w := httptest.NewRecorder()

	handler.GetBusySummary(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var summary services.BusySummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, "c1", summary.CafeID)
	assert.Equal(t, 48, summary.WindowHours)
	assert.Equal(t, 2, summary.ReportCount)
	assert.Len(t, summary.Hourly, 24)
	assert.Len(t, summary.Weekly, 7)
}

func TestBusyHandler_SubmitReport(t *testing.T) {
	t.Run("rejects anonymous reports", func(t *testing.T) {
		api := &stubAPI{}
		sessions, _ := newSessions(api)
		handler := handlers.NewBusyHandler(services.NewBusyService(api), sessions)

		body, _ := json.Marshal(map[string]int{"crowdLevel": 70})
		req := httptest.NewRequest("POST", "/api/busy/cafe/c1/report", bytes.NewBuffer(body))
		req.SetPathValue("id", "c1")
		w := httptest.NewRecorder()

		handler.SubmitReport(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("accepts a signed-in report", func(t *testing.T) {
		api := &stubAPI{}
		sessions, session := newSessions(api)
		handler := handlers.NewBusyHandler(services.NewBusyService(api), sessions)

		body, _ := json.Marshal(map[string]int{"crowdLevel": 70, "waitMins": 5})
		req := httptest.NewRequest("POST", "/api/busy/cafe/c1/report", bytes.NewBuffer(body))
		req.SetPathValue("id", "c1")
		req.Header.Set("X-Session-ID", session.ID)
		w := httptest.NewRecorder()

		handler.SubmitReport(w, req)

		require.Equal(t, http.StatusCreated, w.Code)

		var report entities.BusyReport
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
		assert.Equal(t, 70, report.CrowdLevel)
	})

	t.Run("rejects an out-of-range crowd level", func(t *testing.T) {
		api := &stubAPI{}
		sessions, session := newSessions(api)
		handler := handlers.NewBusyHandler(services.NewBusyService(api), sessions)

		body, _ := json.Marshal(map[string]int{"crowdLevel": 140})
		req := httptest.NewRequest("POST", "/api/busy/cafe/c1/report", bytes.NewBuffer(body))
		req.SetPathValue("id", "c1")
		req.Header.Set("X-Session-ID", session.ID)
		w := httptest.NewRecorder()

		handler.SubmitReport(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
