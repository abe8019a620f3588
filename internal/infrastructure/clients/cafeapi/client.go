package cafeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cafefinder/gateway/internal/domain/entities"
	"github.com/cafefinder/gateway/internal/infrastructure/observability"
	apperrors "github.com/cafefinder/gateway/pkg/errors"
)

const defaultHTTPTimeout = 10 * time.Second

// Client is the typed wrapper around the external CafeFinder REST API. All
// calls are fire-and-forget from the caller's perspective: no queuing, no
// deduplication, and no retry beyond the single refresh path on 401.
type Client interface {
	Login(ctx context.Context, username, password string) (*LoginResponse, error)
	Register(ctx context.Context, req RegisterRequest) error

	SearchCafes(ctx context.Context, filter entities.SearchFilter) ([]entities.Cafe, error)
	GetCafe(ctx context.Context, cafeID string) (*entities.Cafe, error)
	PopularCafes(ctx context.Context, limit int) ([]entities.Cafe, error)
	CafeReviews(ctx context.Context, cafeID string) ([]entities.Review, error)
	RecentReviews(ctx context.Context, limit int) ([]entities.Review, error)
	BusyHistory(ctx context.Context, cafeID string, hours int) ([]entities.BusyReport, error)
	Health(ctx context.Context) error

	SubmitReview(ctx context.Context, session *entities.Session, review *entities.Review) (*entities.Review, error)
	SubmitBusyReport(ctx context.Context, session *entities.Session, cafeID string, crowdLevel int, waitMins *int) (*entities.BusyReport, error)
	CanClaim(ctx context.Context, session *entities.Session, cafeID string) (bool, error)
	SubmitClaim(ctx context.Context, session *entities.Session, claim *entities.ClaimRequest, idempotencyKey string) error

	AdminStats(ctx context.Context, session *entities.Session) (*entities.ModerationStats, error)
	AdminReviews(ctx context.Context, session *entities.Session, status entities.ModerationStatus) ([]entities.Review, error)
	ModerateReview(ctx context.Context, session *entities.Session, reviewID string, status entities.ModerationStatus, adminNotes string) error
}

// SessionHook receives auth lifecycle events from the client. The session
// service implements it so a refreshed token is persisted and a rejected
// session is evicted everywhere at once.
type SessionHook interface {
	TokenRefreshed(ctx context.Context, sessionID, newToken string)
	SessionEvicted(ctx context.Context, sessionID string)
}

// LoginResponse mirrors the upstream auth payload.
type LoginResponse struct {
	Token    string   `json:"token"`
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// RegisterRequest is the upstream registration payload.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshResponse struct {
	Token string `json:"token"`
}

// upstreamError is the error body shape the API uses; Message is forwarded
// to users verbatim when present.
type upstreamError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// HTTPClient implements Client over a single shared http.Client.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	hook       SessionHook
	metrics    *observability.Metrics
}

// NewClient creates the shared API client for the given base URL.
func NewClient(baseURL string) *HTTPClient {
	return NewClientWithOptions(baseURL, nil)
}

// NewClientWithOptions allows overriding the HTTP client (used for tests).
func NewClientWithOptions(baseURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// SetSessionHook installs the auth lifecycle hook. Must be called before the
// client serves authorized requests.
func (c *HTTPClient) SetSessionHook(hook SessionHook) {
	c.hook = hook
}

// SetMetrics enables upstream call duration recording.
func (c *HTTPClient) SetMetrics(metrics *observability.Metrics) {
	c.metrics = metrics
}

// Login exchanges credentials for a bearer token and profile.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	body := map[string]string{"username": username, "password": password}
	out := &LoginResponse{}
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/api/auth/login", body, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Register creates a new upstream account.
func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) error {
	return c.doJSON(ctx, http.MethodPost, c.baseURL+"/api/auth/register", req, nil)
}

// SearchCafes queries the public café search endpoint.
func (c *HTTPClient) SearchCafes(ctx context.Context, filter entities.SearchFilter) ([]entities.Cafe, error) {
	parsed, err := url.Parse(c.baseURL + "/api/cafes/public/search")
	if err != nil {
		return nil, err
	}

	query := parsed.Query()
	if filter.Query != "" {
		query.Set("q", filter.Query)
	}
	if filter.City != "" {
		query.Set("city", filter.City)
	}
	if filter.Wifi {
		query.Set("wifi", "true")
	}
	if filter.Seating {
		query.Set("seating", "true")
	}
	if filter.WorkFriendly {
		query.Set("workFriendly", "true")
	}
	if filter.PriceRange != "" {
		query.Set("priceRange", filter.PriceRange)
	}
	if filter.MinRating > 0 {
		query.Set("minRating", strconv.FormatFloat(filter.MinRating, 'f', -1, 64))
	}
	if filter.Latitude != 0 || filter.Longitude != 0 {
		query.Set("lat", strconv.FormatFloat(filter.Latitude, 'f', -1, 64))
		query.Set("lng", strconv.FormatFloat(filter.Longitude, 'f', -1, 64))
		if filter.RadiusKm > 0 {
			query.Set("radius", strconv.FormatFloat(filter.RadiusKm, 'f', -1, 64))
		}
	}
	parsed.RawQuery = query.Encode()

	var cafes []entities.Cafe
	if err := c.doJSON(ctx, http.MethodGet, parsed.String(), nil, &cafes); err != nil {
		return nil, err
	}
	return cafes, nil
}

// GetCafe returns a single café listing.
func (c *HTTPClient) GetCafe(ctx context.Context, cafeID string) (*entities.Cafe, error) {
	if strings.TrimSpace(cafeID) == "" {
		return nil, apperrors.NewValidationError("cafe id is required")
	}
	endpoint := fmt.Sprintf("%s/api/cafes/public/%s", c.baseURL, url.PathEscape(cafeID))
	out := &entities.Cafe{}
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// PopularCafes returns the most reviewed listings.
func (c *HTTPClient) PopularCafes(ctx context.Context, limit int) ([]entities.Cafe, error) {
	endpoint := c.baseURL + "/api/cafes/public/popular"
	if limit > 0 {
		endpoint = fmt.Sprintf("%s?limit=%d", endpoint, limit)
	}
	var cafes []entities.Cafe
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &cafes); err != nil {
		return nil, err
	}
	return cafes, nil
}

// CafeReviews returns the approved reviews for one café.
func (c *HTTPClient) CafeReviews(ctx context.Context, cafeID string) ([]entities.Review, error) {
	if strings.TrimSpace(cafeID) == "" {
		return nil, apperrors.NewValidationError("cafe id is required")
	}
	endpoint := fmt.Sprintf("%s/api/reviews/public/cafe/%s", c.baseURL, url.PathEscape(cafeID))
	var reviews []entities.Review
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// RecentReviews returns the site-wide recent approved reviews feed.
func (c *HTTPClient) RecentReviews(ctx context.Context, limit int) ([]entities.Review, error) {
	endpoint := c.baseURL + "/api/reviews/public/recent"
	if limit > 0 {
		endpoint = fmt.Sprintf("%s?limit=%d", endpoint, limit)
	}
	var reviews []entities.Review
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// BusyHistory returns crowd reports for a café over the trailing window.
func (c *HTTPClient) BusyHistory(ctx context.Context, cafeID string, hours int) ([]entities.BusyReport, error) {
	if strings.TrimSpace(cafeID) == "" {
		return nil, apperrors.NewValidationError("cafe id is required")
	}
	endpoint := fmt.Sprintf("%s/api/busy/public/cafe/%s", c.baseURL, url.PathEscape(cafeID))
	if hours > 0 {
		endpoint = fmt.Sprintf("%s?hours=%d", endpoint, hours)
	}
	var reports []entities.BusyReport
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// Health probes the upstream health endpoint.
func (c *HTTPClient) Health(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, c.baseURL+"/api/health", nil, nil)
}

// SubmitReview posts a new review and returns the created record.
func (c *HTTPClient) SubmitReview(ctx context.Context, session *entities.Session, review *entities.Review) (*entities.Review, error) {
	out := &entities.Review{}
	if err := c.doAuthorized(ctx, session, http.MethodPost, c.baseURL+"/api/reviews", review, out); err != nil {
		return nil, err
	}
	return out, nil
}

// SubmitBusyReport posts a single quick crowd report.
func (c *HTTPClient) SubmitBusyReport(ctx context.Context, session *entities.Session, cafeID string, crowdLevel int, waitMins *int) (*entities.BusyReport, error) {
	endpoint := fmt.Sprintf("%s/api/busy/cafe/%s/quick-report?crowdLevel=%d",
		c.baseURL, url.PathEscape(cafeID), crowdLevel)
	if waitMins != nil {
		endpoint = fmt.Sprintf("%s&waitMins=%d", endpoint, *waitMins)
	}
	out := &entities.BusyReport{}
	if err := c.doAuthorized(ctx, session, http.MethodPost, endpoint, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// CanClaim asks whether the session's user may claim the listing.
func (c *HTTPClient) CanClaim(ctx context.Context, session *entities.Session, cafeID string) (bool, error) {
	endpoint := fmt.Sprintf("%s/api/claims/can-claim/%s", c.baseURL, url.PathEscape(cafeID))
	var out struct {
		CanClaim bool `json:"canClaim"`
	}
	if err := c.doAuthorized(ctx, session, http.MethodGet, endpoint, nil, &out); err != nil {
		return false, err
	}
	return out.CanClaim, nil
}

// SubmitClaim posts a claim request. The idempotency key shields the
// non-idempotent upstream endpoint from duplicate double-clicks.
func (c *HTTPClient) SubmitClaim(ctx context.Context, session *entities.Session, claim *entities.ClaimRequest, idempotencyKey string) error {
	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+"/api/claims/request", claim)
	if err != nil {
		return err
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
	return c.sendAuthorized(req, session, nil)
}

// AdminStats returns the moderation queue summary.
func (c *HTTPClient) AdminStats(ctx context.Context, session *entities.Session) (*entities.ModerationStats, error) {
	out := &entities.ModerationStats{}
	if err := c.doAuthorized(ctx, session, http.MethodGet, c.baseURL+"/api/test-admin/stats", nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// AdminReviews lists reviews in the given moderation state.
func (c *HTTPClient) AdminReviews(ctx context.Context, session *entities.Session, status entities.ModerationStatus) ([]entities.Review, error) {
	endpoint := c.baseURL + "/api/test-admin/reviews"
	if status != "" {
		endpoint = fmt.Sprintf("%s?status=%s", endpoint, url.QueryEscape(string(status)))
	}
	var reviews []entities.Review
	if err := c.doAuthorized(ctx, session, http.MethodGet, endpoint, nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// ModerateReview applies an approve/reject decision with an optional note.
func (c *HTTPClient) ModerateReview(ctx context.Context, session *entities.Session, reviewID string, status entities.ModerationStatus, adminNotes string) error {
	endpoint := fmt.Sprintf("%s/api/admin/reviews/%s/review", c.baseURL, url.PathEscape(reviewID))
	body := map[string]string{
		"status":     string(status),
		"adminNotes": adminNotes,
	}
	return c.doAuthorized(ctx, session, http.MethodPost, endpoint, body, nil)
}

// doAuthorized sends a bearer-authorized request. On a 401 it attempts one
// token refresh and retries the original request once; a second rejection or
// a failed refresh evicts the session unconditionally.
func (c *HTTPClient) doAuthorized(ctx context.Context, session *entities.Session, method, endpoint string, body, out interface{}) error {
	req, err := c.newRequest(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	return c.sendAuthorized(req, session, out)
}

func (c *HTTPClient) sendAuthorized(req *http.Request, session *entities.Session, out interface{}) error {
	if session == nil || session.Token == "" {
		return apperrors.NewUnauthorizedError("please log in")
	}

	token := session.Token
	retried := false
	for {
		attempt := req.Clone(req.Context())
		if req.GetBody != nil {
			replay, err := req.GetBody()
			if err != nil {
				return apperrors.NewInternalError("failed to replay request body", err)
			}
			attempt.Body = replay
		}
		attempt.Header.Set("Authorization", "Bearer "+token)

		err := c.send(attempt, out)
		if err == nil {
			return nil
		}
		if !isStatus(err, http.StatusUnauthorized) || retried {
			if isStatus(err, http.StatusUnauthorized) {
				c.evict(req.Context(), session)
			}
			return err
		}

		// One refresh per original request.
		retried = true
		newToken, refreshErr := c.refresh(req.Context(), token)
		if refreshErr != nil {
			c.evict(req.Context(), session)
			return apperrors.NewUnauthorizedError("session expired")
		}
		token = newToken
		if c.hook != nil {
			c.hook.TokenRefreshed(req.Context(), session.ID, newToken)
		}
	}
}

func (c *HTTPClient) refresh(ctx context.Context, token string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+"/api/auth/refresh", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	out := &refreshResponse{}
	if err := c.send(req, out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", apperrors.NewUpstreamError("refresh returned no token", http.StatusUnauthorized, nil)
	}
	return out.Token, nil
}

func (c *HTTPClient) evict(ctx context.Context, session *entities.Session) {
	if c.hook != nil {
		c.hook.SessionEvicted(ctx, session.ID)
	}
}

func (c *HTTPClient) newRequest(ctx context.Context, method, endpoint string, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, endpoint string, body, out interface{}) error {
	req, err := c.newRequest(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	return c.send(req, out)
}

func (c *HTTPClient) send(req *http.Request, out interface{}) error {
	ctx, span := observability.StartSpan(req.Context(), "cafeapi "+req.Method+" "+req.URL.Path)
	defer span.End()

	start := time.Now()
	resp, err := c.httpClient.Do(req.WithContext(ctx))
	observability.RecordUpstreamMetric(ctx, c.metrics, req.URL.Path, time.Since(start))
	if err != nil {
		observability.RecordError(span, err)
		return apperrors.NewUpstreamError("", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewUpstreamError("invalid response from api", resp.StatusCode, err)
	}
	return nil
}

// decodeError forwards the server-provided message verbatim when one exists.
func decodeError(resp *http.Response) error {
	var payload upstreamError
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		message := payload.Message
		if message == "" {
			message = payload.Error
		}
		if message != "" {
			return apperrors.NewUpstreamError(message, resp.StatusCode, nil)
		}
	}
	return apperrors.NewUpstreamError(
		fmt.Sprintf("cafe api returned status %d", resp.StatusCode), resp.StatusCode, nil)
}

func isStatus(err error, status int) bool {
	appErr, ok := err.(*apperrors.AppError)
	return ok && appErr.StatusCode == status
}
