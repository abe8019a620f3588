package services_test

import (
	"context"
	"testing"

	"github.com/cafefinder/gateway/internal/application/services"
	"github.com/cafefinder/gateway/internal/domain/entities"
	apperrors "github.com/cafefinder/gateway/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authedSession() *entities.Session {
	return &entities.Session{
		ID:    "s1",
		Token: "tok",
		User:  entities.User{ID: "u1", Username: "jane", Roles: []string{"USER"}},
	}
}

func TestSubmitReview_RequiresSession(t *testing.T) {
	client := &stubClient{}
	service := services.NewReviewService(client, nil)

	_, err := service.Submit(context.Background(), nil, &entities.Review{CafeID: "c1", OverallRating: 4})
	require.Error(t, err)
	assert.Equal(t, 0, client.callCount(), "anonymous reviews must not reach the network")
}

func TestSubmitReview_RejectsUntouchedRating(t *testing.T) {
	client := &stubClient{}
	service := services.NewReviewService(client, nil)

	// An untouched rating widget reads zero.
	_, err := service.Submit(context.Background(), authedSession(), &entities.Review{CafeID: "c1"})
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Please select an overall rating", appErr.Message)
	assert.Equal(t, 0, client.callCount())
}

func TestSubmitReview_ValidatesRatingRange(t *testing.T) {
	service := services.NewReviewService(&stubClient{}, nil)

	_, err := service.Submit(context.Background(), authedSession(), &entities.Review{CafeID: "c1", OverallRating: 6})
	assert.Error(t, err)

	bad := 0
	_, err = service.Submit(context.Background(), authedSession(), &entities.Review{
		CafeID:        "c1",
		OverallRating: 4,
		CoffeeRating:  &bad,
	})
	assert.Error(t, err)
}

func TestSubmitReview_ReturnsCreatedForPrepend(t *testing.T) {
	client := &stubClient{}
	notifier := &stubNotifier{}
	service := services.NewReviewService(client, notifier)

	coffee := 5
	created, err := service.Submit(context.Background(), authedSession(), &entities.Review{
		CafeID:        "c1",
		OverallRating: 4,
		CoffeeRating:  &coffee,
		Text:          "great pour-over",
	})
	require.NoError(t, err)
	assert.Equal(t, "review-1", created.ID)
	assert.Equal(t, entities.ModerationPending, created.Status)
	require.Len(t, notifier.successes, 1)
	assert.Equal(t, "Review submitted! It will appear once approved.", notifier.successes[0])
}

func TestSubmitReview_UpstreamErrorToastsVerbatim(t *testing.T) {
	client := &stubClient{err: apperrors.NewUpstreamError("You already reviewed this cafe", 409, nil)}
	notifier := &stubNotifier{}
	service := services.NewReviewService(client, notifier)

	_, err := service.Submit(context.Background(), authedSession(), &entities.Review{CafeID: "c1", OverallRating: 3})
	require.Error(t, err)
	require.Len(t, notifier.errors, 1)
	assert.Equal(t, "You already reviewed this cafe", notifier.errors[0])
}
