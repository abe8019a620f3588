package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/cafefinder/gateway/internal/domain/entities"
	"github.com/cafefinder/gateway/internal/domain/providers"
	"github.com/cafefinder/gateway/internal/domain/repositories"
	"github.com/cafefinder/gateway/internal/infrastructure/clients/cafeapi"
	apperrors "github.com/cafefinder/gateway/pkg/errors"
	"github.com/google/uuid"
)

// SessionService owns the authenticated sessions. It is the single writer of
// session state: login, logout, token refresh and eviction all flow through
// here, so the persisted copy and the in-memory copy never diverge.
type SessionService struct {
	api      cafeapi.Client
	repo     repositories.SessionRepository
	notifier providers.Notifier

	mu       sync.RWMutex
	sessions map[string]*entities.Session
}

// NewSessionService creates a new session service.
func NewSessionService(api cafeapi.Client, repo repositories.SessionRepository, notifier providers.Notifier) *SessionService {
	return &SessionService{
		api:      api,
		repo:     repo,
		notifier: notifier,
		sessions: make(map[string]*entities.Session),
	}
}

// Restore loads persisted sessions into memory. Called once on startup;
// tokens are taken at face value, an expired one is only discovered when its
// next request fails.
func (s *SessionService) Restore(ctx context.Context) error {
	stored, err := s.repo.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore sessions: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, session := range stored {
		s.sessions[session.ID] = session
	}
	return nil
}

// Login exchanges credentials for a new session.
func (s *SessionService) Login(ctx context.Context, username, password string) (*entities.Session, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, apperrors.NewValidationError("username and password are required")
	}

	resp, err := s.api.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session := &entities.Session{
		ID:    uuid.New().String(),
		Token: resp.Token,
		User: entities.User{
			ID:       resp.ID,
			Username: resp.Username,
			Email:    resp.Email,
			Roles:    resp.Roles,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Save(ctx, session); err != nil {
		return nil, apperrors.NewInternalError("failed to persist session", err)
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	if s.notifier != nil {
		s.notifier.Success(fmt.Sprintf("Welcome back, %s!", session.User.Username))
	}
	return session, nil
}

// Register creates an upstream account and signs the new user in.
func (s *SessionService) Register(ctx context.Context, req cafeapi.RegisterRequest) (*entities.Session, error) {
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, apperrors.NewValidationError("username, email and password are required")
	}

	if err := s.api.Register(ctx, req); err != nil {
		return nil, err
	}
	return s.Login(ctx, req.Username, req.Password)
}

// Logout drops the session. Missing sessions are not an error; logging out
// twice is a no-op and only the first one toasts.
func (s *SessionService) Logout(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if err := s.repo.Delete(ctx, sessionID); err != nil {
		return apperrors.NewInternalError("failed to delete session", err)
	}
	if ok && s.notifier != nil {
		s.notifier.Success("You've been signed out.")
	}
	return nil
}

// Get returns the live session for the ID, or a NOT_FOUND error.
func (s *SessionService) Get(ctx context.Context, sessionID string) (*entities.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return session, nil
	}

	// Fall back to storage in case the process restarted without Restore.
	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	return session, nil
}

var _ cafeapi.SessionHook = (*SessionService)(nil)

// TokenRefreshed swaps in the new bearer token after a successful refresh.
func (s *SessionService) TokenRefreshed(ctx context.Context, sessionID, newToken string) {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if ok {
		session.Token = newToken
		session.UpdatedAt = time.Now().UTC()
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	if err := s.repo.Save(ctx, session); err != nil {
		log.Printf("Warning: Failed to persist refreshed token for session %s: %v", sessionID, err)
	}
}

// SessionEvicted drops a session whose token was rejected twice (or whose
// refresh failed). The user has to sign in again.
func (s *SessionService) SessionEvicted(ctx context.Context, sessionID string) {
	s.mu.Lock()
	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if err := s.repo.Delete(ctx, sessionID); err != nil {
		log.Printf("Warning: Failed to delete evicted session %s: %v", sessionID, err)
	}
	if ok && s.notifier != nil {
		s.notifier.Error("Your session has expired. Please sign in again.")
	}
}
