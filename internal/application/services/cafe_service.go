package services

import (
	"context"
	"log"
	"sync"

	"github.com/cafefinder/gateway/internal/domain/entities"
	"github.com/cafefinder/gateway/internal/infrastructure/clients/cafeapi"
)

// CafeDetails is the composed detail page payload: the listing itself plus
// its approved reviews and aggregated crowd data. Reviews and busy data are
// best-effort; only the listing fetch is fatal.
type CafeDetails struct {
	Cafe       entities.Cafe     `json:"cafe"`
	Reviews    []entities.Review `json:"reviews"`
	HasReviews bool              `json:"hasReviews"`
	Busy       *BusySummary      `json:"busy,omitempty"`
}

// CafeService handles listing search and detail composition.
type CafeService struct {
	api  cafeapi.Client
	busy *BusyService
}

// NewCafeService creates a new cafe service.
func NewCafeService(api cafeapi.Client, busy *BusyService) *CafeService {
	return &CafeService{api: api, busy: busy}
}

// Search queries listings through the upstream search endpoint.
func (s *CafeService) Search(ctx context.Context, filter entities.SearchFilter) ([]entities.Cafe, error) {
	return s.api.SearchCafes(ctx, filter)
}

// Popular returns the most reviewed listings.
func (s *CafeService) Popular(ctx context.Context, limit int) ([]entities.Cafe, error) {
	return s.api.PopularCafes(ctx, limit)
}

// Details composes the detail page for one café. The listing, its reviews
// and its busy history are fetched concurrently; a café nobody has reviewed
// yet still renders, with HasReviews false.
func (s *CafeService) Details(ctx context.Context, cafeID string) (*CafeDetails, error) {
	var (
		wg      sync.WaitGroup
		cafe    *entities.Cafe
		cafeErr error
		reviews []entities.Review
		busy    *BusySummary
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		cafe, cafeErr = s.api.GetCafe(ctx, cafeID)
	}()
	go func() {
		defer wg.Done()
		var err error
		reviews, err = s.api.CafeReviews(ctx, cafeID)
		if err != nil {
			log.Printf("Warning: Failed to load reviews for cafe %s: %v", cafeID, err)
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		busy, err = s.busy.Summary(ctx, cafeID, DefaultHistoryHours)
		if err != nil {
			log.Printf("Warning: Failed to load busy data for cafe %s: %v", cafeID, err)
		}
	}()
	wg.Wait()

	if cafeErr != nil {
		return nil, cafeErr
	}

	if reviews == nil {
		reviews = []entities.Review{}
	}
	return &CafeDetails{
		Cafe:       *cafe,
		Reviews:    reviews,
		HasReviews: len(reviews) > 0,
		Busy:       busy,
	}, nil
}
