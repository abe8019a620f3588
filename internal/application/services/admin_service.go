package services

import (
	"context"

	"github.com/cafefinder/gateway/internal/domain/entities"
	"github.com/cafefinder/gateway/internal/infrastructure/clients/cafeapi"
	apperrors "github.com/cafefinder/gateway/pkg/errors"
)

// AdminService surfaces the moderation queue. The role check here only keeps
// the admin screens hidden from regular users; the upstream API makes the
// authoritative decision on every call.
type AdminService struct {
	api cafeapi.Client
}

// NewAdminService creates a new admin service.
func NewAdminService(api cafeapi.Client) *AdminService {
	return &AdminService{api: api}
}

// Stats returns the moderation queue summary.
func (s *AdminService) Stats(ctx context.Context, session *entities.Session) (*entities.ModerationStats, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	return s.api.AdminStats(ctx, session)
}

// Reviews lists reviews in the given moderation state.
func (s *AdminService) Reviews(ctx context.Context, session *entities.Session, status entities.ModerationStatus) ([]entities.Review, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	return s.api.AdminReviews(ctx, session, status)
}

// Moderate applies an approve or reject decision.
func (s *AdminService) Moderate(ctx context.Context, session *entities.Session, reviewID string, status entities.ModerationStatus, notes string) error {
	if err := requireAdmin(session); err != nil {
		return err
	}
	if status != entities.ModerationApproved && status != entities.ModerationRejected {
		return apperrors.NewValidationError("status must be APPROVED or REJECTED")
	}
	return s.api.ModerateReview(ctx, session, reviewID, status, notes)
}

func requireAdmin(session *entities.Session) error {
	if session == nil || session.Token == "" {
		return apperrors.NewUnauthorizedError("please log in")
	}
	if !session.IsAdmin() {
		return apperrors.NewForbiddenError("admin access required")
	}
	return nil
}
