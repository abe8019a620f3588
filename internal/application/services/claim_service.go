package services

import (
	"context"
	"strings"
	"sync"

	"github.com/cafefinder/gateway/internal/domain/entities"
	"github.com/cafefinder/gateway/internal/domain/providers"
	"github.com/cafefinder/gateway/internal/infrastructure/clients/cafeapi"
	apperrors "github.com/cafefinder/gateway/pkg/errors"
	"github.com/google/uuid"
)

// ClaimService handles business-owner claim requests. The upstream claim
// endpoint is not idempotent, so each submission carries a generated
// idempotency key and concurrent submissions for the same café by the same
// user are rejected locally.
type ClaimService struct {
	api      cafeapi.Client
	notifier providers.Notifier

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewClaimService creates a new claim service.
func NewClaimService(api cafeapi.Client, notifier providers.Notifier) *ClaimService {
	return &ClaimService{
		api:      api,
		notifier: notifier,
		inFlight: make(map[string]struct{}),
	}
}

// CanClaim asks upstream whether the session's user may claim the listing.
func (s *ClaimService) CanClaim(ctx context.Context, session *entities.Session, cafeID string) (bool, error) {
	if session == nil || session.Token == "" {
		return false, nil
	}
	return s.api.CanClaim(ctx, session, cafeID)
}

// Submit sends a claim request. A second submit for the same user and café
// while the first is still in flight fails fast instead of double-posting.
func (s *ClaimService) Submit(ctx context.Context, session *entities.Session, claim *entities.ClaimRequest) error {
	if session == nil || session.Token == "" {
		return apperrors.NewUnauthorizedError("please log in to claim a listing")
	}
	if claim == nil || strings.TrimSpace(claim.CafeID) == "" {
		return apperrors.NewValidationError("cafe id is required")
	}
	if strings.TrimSpace(claim.BusinessEmail) == "" {
		return apperrors.NewValidationError("business email is required")
	}
	if strings.TrimSpace(claim.OwnerName) == "" {
		return apperrors.NewValidationError("owner name is required")
	}

	key := session.User.ID + ":" + claim.CafeID
	s.mu.Lock()
	if _, busy := s.inFlight[key]; busy {
		s.mu.Unlock()
		return apperrors.NewValidationError("a claim for this café is already being submitted")
	}
	s.inFlight[key] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.inFlight, key)
		s.mu.Unlock()
	}()

	claim.UserID = session.User.ID
	if err := s.api.SubmitClaim(ctx, session, claim, uuid.New().String()); err != nil {
		if s.notifier != nil {
			s.notifier.Error(apperrors.UserMessage(err, "Could not submit your claim. Please try again."))
		}
		return err
	}

	if s.notifier != nil {
		s.notifier.Success("Claim request submitted. We'll be in touch.")
	}
	return nil
}
