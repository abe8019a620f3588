package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cafefinder/gateway/internal/api/handlers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_Login(t *testing.T) {
	t.Run("signs in and never exposes the bearer token", func(t *testing.T) {
		sessions, _ := newSessions(&stubAPI{})
		handler := handlers.NewAuthHandler(sessions)

		body, _ := json.Marshal(map[string]string{"username": "jane", "password": "secret"})
		req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Login(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var payload map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
		assert.NotEmpty(t, payload["id"])
		assert.NotContains(t, payload, "token")
		user, ok := payload["user"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "jane", user["username"])
	})

	t.Run("returns bad request for invalid payload", func(t *testing.T) {
		sessions, _ := newSessions(&stubAPI{})
		handler := handlers.NewAuthHandler(sessions)

		req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBufferString("not-json"))
		w := httptest.NewRecorder()

		handler.Login(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns bad request for missing credentials", func(t *testing.T) {
		sessions, _ := newSessions(&stubAPI{})
		handler := handlers.NewAuthHandler(sessions)

		body, _ := json.Marshal(map[string]string{"username": "", "password": ""})
		req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Login(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Run("requires a session header", func(t *testing.T) {
		sessions, _ := newSessions(&stubAPI{})
		handler := handlers.NewAuthHandler(sessions)

		req := httptest.NewRequest("POST", "/api/auth/logout", nil)
		w := httptest.NewRecorder()

		handler.Logout(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("logs out and forgets the session", func(t *testing.T) {
		sessions, session := newSessions(&stubAPI{})
		handler := handlers.NewAuthHandler(sessions)

		req := httptest.NewRequest("POST", "/api/auth/logout", nil)
		req.Header.Set("X-Session-ID", session.ID)
		w := httptest.NewRecorder()

		handler.Logout(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)

		req = httptest.NewRequest("GET", "/api/auth/session", nil)
		req.Header.Set("X-Session-ID", session.ID)
		w = httptest.NewRecorder()

		handler.CurrentSession(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAuthHandler_CurrentSession_Anonymous(t *testing.T) {
	sessions, _ := newSessions(&stubAPI{})
	handler := handlers.NewAuthHandler(sessions)

	req := httptest.NewRequest("GET", "/api/auth/session", nil)
	w := httptest.NewRecorder()

	handler.CurrentSession(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
