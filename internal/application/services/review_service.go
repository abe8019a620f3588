package services

import (
	"context"
	"strings"

	"github.com/cafefinder/gateway/internal/domain/entities"
	"github.com/cafefinder/gateway/internal/domain/providers"
	"github.com/cafefinder/gateway/internal/infrastructure/clients/cafeapi"
	apperrors "github.com/cafefinder/gateway/pkg/errors"
)

// ReviewService handles review reads and submission.
type ReviewService struct {
	api      cafeapi.Client
	notifier providers.Notifier
}

// NewReviewService creates a new review service.
func NewReviewService(api cafeapi.Client, notifier providers.Notifier) *ReviewService {
	return &ReviewService{api: api, notifier: notifier}
}

// ForCafe returns the approved reviews for one café.
func (s *ReviewService) ForCafe(ctx context.Context, cafeID string) ([]entities.Review, error) {
	return s.api.CafeReviews(ctx, cafeID)
}

// Recent returns the site-wide recent reviews feed.
func (s *ReviewService) Recent(ctx context.Context, limit int) ([]entities.Review, error) {
	return s.api.RecentReviews(ctx, limit)
}

// Submit validates and posts a new review. The overall rating is checked
// before any network traffic: an untouched rating widget reads zero and is
// rejected here, not upstream. The created review is returned so callers can
// prepend it to a list they already hold instead of refetching.
func (s *ReviewService) Submit(ctx context.Context, session *entities.Session, review *entities.Review) (*entities.Review, error) {
	if session == nil || session.Token == "" {
		return nil, apperrors.NewUnauthorizedError("please log in to leave a review")
	}
	if review == nil || strings.TrimSpace(review.CafeID) == "" {
		return nil, apperrors.NewValidationError("cafe id is required")
	}
	if review.OverallRating < 1 {
		return nil, apperrors.NewValidationError("Please select an overall rating")
	}
	if review.OverallRating > 5 {
		return nil, apperrors.NewValidationError("overall rating must be between 1 and 5")
	}
	for _, sub := range []*int{review.CoffeeRating, review.TasteRating, review.AmbianceRating, review.ServiceRating} {
		if sub != nil && (*sub < 1 || *sub > 5) {
			return nil, apperrors.NewValidationError("ratings must be between 1 and 5")
		}
	}

	created, err := s.api.SubmitReview(ctx, session, review)
	if err != nil {
		if s.notifier != nil {
			s.notifier.Error(apperrors.UserMessage(err, "Could not submit your review. Please try again."))
		}
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Success("Review submitted! It will appear once approved.")
	}
	return created, nil
}
