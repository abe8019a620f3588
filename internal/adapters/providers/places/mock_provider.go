package places

import (
	"context"
	"fmt"
	"strings"

	"github.com/cafefinder/gateway/internal/domain/providers"
)

// MockPlacesProvider implements a mock places provider for testing and for
// local development without an API key.
type MockPlacesProvider struct {
	// Photos maps lowercase place names to canned photo URLs.
	Photos map[string]string
}

// NewMockPlacesProvider creates a new mock places provider.
func NewMockPlacesProvider() *MockPlacesProvider {
	return &MockPlacesProvider{
		Photos: map[string]string{
			"blue bottle":  "https://photos.example.com/blue-bottle.jpg",
			"ritual":       "https://photos.example.com/ritual.jpg",
			"sightglass":   "https://photos.example.com/sightglass.jpg",
			"four barrel":  "https://photos.example.com/four-barrel.jpg",
			"verve coffee": "https://photos.example.com/verve.jpg",
		},
	}
}

// Configured always reports true for the mock.
func (m *MockPlacesProvider) Configured() bool {
	return true
}

// FindPhoto returns a canned photo when the query name matches a known place.
func (m *MockPlacesProvider) FindPhoto(ctx context.Context, query providers.PhotoQuery) (*providers.PlacePhoto, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := strings.ToLower(strings.TrimSpace(query.Name))
	for key, photoURL := range m.Photos {
		if strings.Contains(name, key) {
			return &providers.PlacePhoto{
				URL:     photoURL,
				PlaceID: fmt.Sprintf("mock-%s", strings.ReplaceAll(key, " ", "-")),
				Name:    query.Name,
				Width:   96,
				Height:  96,
			}, nil
		}
	}
	return nil, nil
}
