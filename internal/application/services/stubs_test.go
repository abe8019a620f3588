package services_test

import (
	"context"
	"sync"

	"github.com/cafefinder/gateway/internal/domain/entities"
	"github.com/cafefinder/gateway/internal/infrastructure/clients/cafeapi"
	apperrors "github.com/cafefinder/gateway/pkg/errors"
)

// stubClient is a hand-rolled cafeapi.Client that records calls and serves
// canned responses.
type stubClient struct {
	mu    sync.Mutex
	calls []string

	cafes        []entities.Cafe
	cafe         *entities.Cafe
	reviews      []entities.Review
	busyReports  []entities.BusyReport
	loginResp    *cafeapi.LoginResponse
	createdBusy  *entities.BusyReport
	createdRev   *entities.Review
	canClaim     bool
	stats        *entities.ModerationStats
	err          error
	claimedKeys  []string
	submittedRev []*entities.Review
}

func (s *stubClient) record(name string) {
	s.mu.Lock()
	s.calls = append(s.calls, name)
	s.mu.Unlock()
}

func (s *stubClient) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *stubClient) Login(ctx context.Context, username, password string) (*cafeapi.LoginResponse, error) {
	s.record("Login")
	if s.err != nil {
		return nil, s.err
	}
	if s.loginResp != nil {
		return s.loginResp, nil
	}
	return &cafeapi.LoginResponse{
		Token:    "token-1",
		ID:       "user-1",
		Username: username,
		Email:    username + "@example.com",
		Roles:    []string{"USER"},
	}, nil
}

func (s *stubClient) Register(ctx context.Context, req cafeapi.RegisterRequest) error {
	s.record("Register")
	return s.err
}

func (s *stubClient) SearchCafes(ctx context.Context, filter entities.SearchFilter) ([]entities.Cafe, error) {
	s.record("SearchCafes")
	return s.cafes, s.err
}

func (s *stubClient) GetCafe(ctx context.Context, cafeID string) (*entities.Cafe, error) {
	s.record("GetCafe")
	if s.err != nil {
		return nil, s.err
	}
	if s.cafe == nil {
		return nil, apperrors.NewNotFoundError("cafe not found")
	}
	return s.cafe, nil
}

func (s *stubClient) PopularCafes(ctx context.Context, limit int) ([]entities.Cafe, error) {
	s.record("PopularCafes")
	return s.cafes, s.err
}

func (s *stubClient) CafeReviews(ctx context.Context, cafeID string) ([]entities.Review, error) {
	s.record("CafeReviews")
	return s.reviews, s.err
}

func (s *stubClient) RecentReviews(ctx context.Context, limit int) ([]entities.Review, error) {
	s.record("RecentReviews")
	return s.reviews, s.err
}

func (s *stubClient) BusyHistory(ctx context.Context, cafeID string, hours int) ([]entities.BusyReport, error) {
	s.record("BusyHistory")
	return s.busyReports, s.err
}

func (s *stubClient) Health(ctx context.Context) error {
	s.record("Health")
	return s.err
}

func (s *stubClient) SubmitReview(ctx context.Context, session *entities.Session, review *entities.Review) (*entities.Review, error) {
	s.record("SubmitReview")
	s.submittedRev = append(s.submittedRev, review)
	if s.err != nil {
		return nil, s.err
	}
	if s.createdRev != nil {
		return s.createdRev, nil
	}
	created := *review
	created.ID = "review-1"
	created.Status = entities.ModerationPending
	return &created, nil
}

func (s *stubClient) SubmitBusyReport(ctx context.Context, session *entities.Session, cafeID string, crowdLevel int, waitMins *int) (*entities.BusyReport, error) {
	s.record("SubmitBusyReport")
	if s.err != nil {
		return nil, s.err
	}
	if s.createdBusy != nil {
		return s.createdBusy, nil
	}
	return &entities.BusyReport{ID: "busy-1", CafeID: cafeID, CrowdLevel: crowdLevel, WaitMins: waitMins}, nil
}

func (s *stubClient) CanClaim(ctx context.Context, session *entities.Session, cafeID string) (bool, error) {
	s.record("CanClaim")
	return s.canClaim, s.err
}

func (s *stubClient) SubmitClaim(ctx context.Context, session *entities.Session, claim *entities.ClaimRequest, idempotencyKey string) error {
	s.record("SubmitClaim")
	s.mu.Lock()
	s.claimedKeys = append(s.claimedKeys, idempotencyKey)
	s.mu.Unlock()
	return s.err
}

func (s *stubClient) AdminStats(ctx context.Context, session *entities.Session) (*entities.ModerationStats, error) {
	s.record("AdminStats")
	return s.stats, s.err
}

func (s *stubClient) AdminReviews(ctx context.Context, session *entities.Session, status entities.ModerationStatus) ([]entities.Review, error) {
	s.record("AdminReviews")
	return s.reviews, s.err
}

func (s *stubClient) ModerateReview(ctx context.Context, session *entities.Session, reviewID string, status entities.ModerationStatus, adminNotes string) error {
	s.record("ModerateReview")
	return s.err
}

// stubNotifier records toast messages.
type stubNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *stubNotifier) Success(message string) {
	n.mu.Lock()
	n.successes = append(n.successes, message)
	n.mu.Unlock()
}

func (n *stubNotifier) Error(message string) {
	n.mu.Lock()
	n.errors = append(n.errors, message)
	n.mu.Unlock()
}

// memorySessionRepo is an in-memory SessionRepository.
type memorySessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*entities.Session
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{sessions: make(map[string]*entities.Session)}
}

func (r *memorySessionRepo) Save(ctx context.Context, session *entities.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

func (r *memorySessionRepo) Get(ctx context.Context, id string) (*entities.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("session not found: " + id)
	}
	copied := *session
	return &copied, nil
}

func (r *memorySessionRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *memorySessionRepo) All(ctx context.Context) ([]*entities.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entities.Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		copied := *session
		out = append(out, &copied)
	}
	return out, nil
}
