package handlers_test

import (
	"context"
	"sync"

	"github.com/cafefinder/gateway/internal/application/services"
	"github.com/cafefinder/gateway/internal/domain/entities"
	"github.com/cafefinder/gateway/internal/infrastructure/clients/cafeapi"
	apperrors "github.com/cafefinder/gateway/pkg/errors"
)

// stubAPI is a canned cafeapi.Client for handler tests.
type stubAPI struct {
	cafes       []entities.Cafe
	cafe        *entities.Cafe
	reviews     []entities.Review
	busyReports []entities.BusyReport
	canClaim    bool
	stats       *entities.ModerationStats
	err         error
}

func (s *stubAPI) Login(ctx context.Context, username, password string) (*cafeapi.LoginResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &cafeapi.LoginResponse{
		Token:    "token-1",
		ID:       "user-1",
		Username: username,
		Email:    username + "@example.com",
		Roles:    []string{"USER"},
	}, nil
}

func (s *stubAPI) Register(ctx context.Context, req cafeapi.RegisterRequest) error {
	return s.err
}

func (s *stubAPI) SearchCafes(ctx context.Context, filter entities.SearchFilter) ([]entities.Cafe, error) {
	return s.cafes, s.err
}

func (s *stubAPI) GetCafe(ctx context.Context, cafeID string) (*entities.Cafe, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.cafe == nil {
		return nil, apperrors.NewNotFoundError("cafe not found")
	}
	return s.cafe, nil
}

func (s *stubAPI) PopularCafes(ctx context.Context, limit int) ([]entities.Cafe, error) {
	return s.cafes, s.err
}

func (s *stubAPI) CafeReviews(ctx context.Context, cafeID string) ([]entities.Review, error) {
	return s.reviews, s.err
}

func (s *stubAPI) RecentReviews(ctx context.Context, limit int) ([]entities.Review, error) {
	return s.reviews, s.err
}

func (s *stubAPI) BusyHistory(ctx context.Context, cafeID string, hours int) ([]entities.BusyReport, error) {
	return s.busyReports, s.err
}

func (s *stubAPI) Health(ctx context.Context) error { return s.err }

func (s *stubAPI) SubmitReview(ctx context.Context, session *entities.Session, review *entities.Review) (*entities.Review, error) {
	if s.err != nil {
		return nil, s.err
	}
	created := *review
	created.ID = "review-1"
	created.Status = entities.ModerationPending
	return &created, nil
}

func (s *stubAPI) SubmitBusyReport(ctx context.Context, session *entities.Session, cafeID string, crowdLevel int, waitMins *int) (*entities.BusyReport, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &entities.BusyReport{ID: "busy-1", CafeID: cafeID, CrowdLevel: crowdLevel, WaitMins: waitMins}, nil
}

func (s *stubAPI) CanClaim(ctx context.Context, session *entities.Session, cafeID string) (bool, error) {
	return s.canClaim, s.err
}

func (s *stubAPI) SubmitClaim(ctx context.Context, session *entities.Session, claim *entities.ClaimRequest, idempotencyKey string) error {
	return s.err
}

func (s *stubAPI) AdminStats(ctx context.Context, session *entities.Session) (*entities.ModerationStats, error) {
	return s.stats, s.err
}

func (s *stubAPI) AdminReviews(ctx context.Context, session *entities.Session, status entities.ModerationStatus) ([]entities.Review, error) {
	return s.reviews, s.err
}

func (s *stubAPI) ModerateReview(ctx context.Context, session *entities.Session, reviewID string, status entities.ModerationStatus, adminNotes string) error {
	return s.err
}

// memoryRepo is an in-memory session repository.
type memoryRepo struct {
	mu       sync.Mutex
	sessions map[string]*entities.Session
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{sessions: make(map[string]*entities.Session)}
}

func (r *memoryRepo) Save(ctx context.Context, session *entities.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

func (r *memoryRepo) Get(ctx context.Context, id string) (*entities.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("session not found: " + id)
	}
	copied := *session
	return &copied, nil
}

func (r *memoryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *memoryRepo) All(ctx context.Context) ([]*entities.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entities.Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		copied := *session
		out = append(out, &copied)
	}
	return out, nil
}

// newSessions builds a session service over the stub API and signs one user
// in, returning the service and the live session.
func newSessions(api cafeapi.Client) (*services.SessionService, *entities.Session) {
	sessions := services.NewSessionService(api, newMemoryRepo(), nil)
	session, err := sessions.Login(context.Background(), "jane", "secret")
	if err != nil {
		panic(err)
	}
	return sessions, session
}
