package cafeapi_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/cafefinder/gateway/internal/domain/entities"
	"github.com/cafefinder/gateway/internal/infrastructure/clients/cafeapi"
	apperrors "github.com/cafefinder/gateway/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hookRecorder captures auth lifecycle events.
type hookRecorder struct {
	mu        sync.Mutex
	refreshed []string
	evicted   []string
}

func (h *hookRecorder) TokenRefreshed(ctx context.Context, sessionID, newToken string) {
	h.mu.Lock()
	h.refreshed = append(h.refreshed, sessionID+"="+newToken)
	h.mu.Unlock()
}

func (h *hookRecorder) SessionEvicted(ctx context.Context, sessionID string) {
	h.mu.Lock()
	h.evicted = append(h.evicted, sessionID)
	h.mu.Unlock()
}

func session(token string) *entities.Session {
	return &entities.Session{ID: "s1", Token: token, User: entities.User{ID: "u1"}}
}

func TestAuthorized_RefreshesOnceAndRetries(t *testing.T) {
	var (
		mu           sync.Mutex
		bodies       []string
		authHeaders  []string
		refreshCalls int
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/refresh" {
			mu.Lock()
			refreshCalls++
			mu.Unlock()
			assert.Equal(t, "Bearer stale", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(map[string]string{"token": "fresh"})
			return
		}

		payload, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(payload))
		authHeaders = append(authHeaders, r.Header.Get("Authorization"))
		mu.Unlock()

		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "token expired"})
			return
		}
		json.NewEncoder(w).Encode(entities.Review{ID: "r1", Status: entities.ModerationPending})
	}))
	defer server.Close()

	hook := &hookRecorder{}
	client := cafeapi.NewClient(server.URL)
	client.SetSessionHook(hook)

	created, err := client.SubmitReview(context.Background(), session("stale"), &entities.Review{
		CafeID:        "c1",
		OverallRating: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, "r1", created.ID)

	assert.Equal(t, 1, refreshCalls)
	assert.Equal(t, []string{"s1=fresh"}, hook.refreshed)
	assert.Empty(t, hook.evicted)

	// The retry replays the original body under the new token.
	require.Len(t, bodies, 2)
	assert.Equal(t, bodies[0], bodies[1])
	assert.Equal(t, []string{"Bearer stale", "Bearer fresh"}, authHeaders)
}

func TestAuthorized_EvictsWhenRefreshFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	hook := &hookRecorder{}
	client := cafeapi.NewClient(server.URL)
	client.SetSessionHook(hook)

	_, err := client.CanClaim(context.Background(), session("stale"), "c1")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.Equal(t, []string{"s1"}, hook.evicted)
	assert.Empty(t, hook.refreshed)
}

func TestAuthorized_EvictsOnSecondRejection(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/refresh" {
			json.NewEncoder(w).Encode(map[string]string{"token": "fresh"})
			return
		}
		requests++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	hook := &hookRecorder{}
	client := cafeapi.NewClient(server.URL)
	client.SetSessionHook(hook)

	_, err := client.CanClaim(context.Background(), session("stale"), "c1")
	require.Error(t, err)
	assert.Equal(t, 2, requests, "exactly one retry per original request")
	assert.Equal(t, []string{"s1=fresh"}, hook.refreshed)
	assert.Equal(t, []string{"s1"}, hook.evicted)
}

func TestAuthorized_RequiresSession(t *testing.T) {
	client := cafeapi.NewClient("http://127.0.0.1:0")
	_, err := client.CanClaim(context.Background(), nil, "c1")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestErrors_ForwardUpstreamMessageVerbatim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"message": "You have already reviewed this cafe"})
	}))
	defer server.Close()

	client := cafeapi.NewClient(server.URL)
	_, err := client.Login(context.Background(), "jane", "secret")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrorTypeUpstream, appErr.Type)
	assert.Equal(t, http.StatusConflict, appErr.StatusCode)
	assert.Equal(t, "You have already reviewed this cafe", appErr.Message)
}

func TestErrors_FallBackToStatusLine(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>nginx</html>"))
	}))
	defer server.Close()

	client := cafeapi.NewClient(server.URL)
	err := client.Health(context.Background())
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadGateway, appErr.StatusCode)
	assert.Contains(t, appErr.Message, "502")
}

func TestSubmitClaim_SetsIdempotencyKey(t *testing.T) {
	var keys []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get("Idempotency-Key"))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := cafeapi.NewClient(server.URL)
	err := client.SubmitClaim(context.Background(), session("tok"), &entities.ClaimRequest{
		CafeID:        "c1",
		BusinessEmail: "owner@example.com",
		OwnerName:     "Jane",
	}, "key-123")
	require.NoError(t, err)
	assert.Equal(t, []string{"key-123"}, keys)
}

func TestAdmin_ReadsAndModerationUseUpstreamPaths(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		switch {
		case r.URL.Path == "/api/test-admin/stats":
			json.NewEncoder(w).Encode(entities.ModerationStats{TotalReviews: 3})
		case r.URL.Path == "/api/test-admin/reviews":
			assert.Equal(t, "PENDING", r.URL.Query().Get("status"))
			json.NewEncoder(w).Encode([]entities.Review{{ID: "r1"}})
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer server.Close()

	client := cafeapi.NewClient(server.URL)
	ctx := context.Background()

	stats, err := client.AdminStats(ctx, session("tok"))
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalReviews)

	reviews, err := client.AdminReviews(ctx, session("tok"), entities.ModerationPending)
	require.NoError(t, err)
	require.Len(t, reviews, 1)

	require.NoError(t, client.ModerateReview(ctx, session("tok"), "r1", entities.ModerationApproved, "ok"))

	assert.Equal(t, []string{
		"/api/test-admin/stats",
		"/api/test-admin/reviews",
		"/api/admin/reviews/r1/review",
	}, paths)
}

func TestSearchCafes_BuildsQuery(t *testing.T) {
	var rawQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode([]entities.Cafe{{ID: "c1", Name: "Blue Bottle"}})
	}))
	defer server.Close()

	client := cafeapi.NewClient(server.URL)
	cafes, err := client.SearchCafes(context.Background(), entities.SearchFilter{
		Query:        "pour over",
		City:         "SF",
		Wifi:         true,
		WorkFriendly: true,
		MinRating:    4,
	})
	require.NoError(t, err)
	require.Len(t, cafes, 1)

	assert.Contains(t, rawQuery, "q=pour+over")
	assert.Contains(t, rawQuery, "city=SF")
	assert.Contains(t, rawQuery, "wifi=true")
	assert.Contains(t, rawQuery, "workFriendly=true")
	assert.Contains(t, rawQuery, "minRating=4")
	assert.NotContains(t, rawQuery, "seating")
}
