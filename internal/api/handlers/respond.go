package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cafefinder/gateway/internal/application/services"
	"github.com/cafefinder/gateway/internal/domain/entities"
	apperrors "github.com/cafefinder/gateway/pkg/errors"
)

// sessionHeader carries the client's session ID on authorized routes.
const sessionHeader = "X-Session-ID"

// resolveSession returns the caller's session, or nil for anonymous
// requests. Services decide whether anonymous is acceptable.
func resolveSession(r *http.Request, sessions *services.SessionService) *entities.Session {
	sessionID := r.Header.Get(sessionHeader)
	if sessionID == "" {
		return nil
	}
	session, err := sessions.Get(r.Context(), sessionID)
	if err != nil {
		return nil
	}
	return session
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps application error types onto HTTP statuses.
// Upstream errors keep their original status and message so the caller sees
// exactly what the API said.
func respondWithAppError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	switch appErr.Type {
	case apperrors.ErrorTypeNotFound:
		respondWithError(w, http.StatusNotFound, appErr.Message)
	case apperrors.ErrorTypeValidation:
		respondWithError(w, http.StatusBadRequest, appErr.Message)
	case apperrors.ErrorTypeUnauthorized:
		respondWithError(w, http.StatusUnauthorized, appErr.Message)
	case apperrors.ErrorTypeForbidden:
		respondWithError(w, http.StatusForbidden, appErr.Message)
	case apperrors.ErrorTypeUpstream:
		status := appErr.StatusCode
		if status < 400 {
			status = http.StatusBadGateway
		}
		respondWithError(w, status, apperrors.UserMessage(appErr, "upstream request failed"))
	default:
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
