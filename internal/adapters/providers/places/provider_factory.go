package places

import (
	"context"
	"errors"

	"github.com/cafefinder/gateway/internal/domain/providers"
)

// ErrNotConfigured indicates no places credential is present. Map views
// check Configured() first and render the degraded placeholder instead of
// looking up photos.
var ErrNotConfigured = errors.New("places provider is not configured")

// PlacesProviderConfig configures places providers.
type PlacesProviderConfig struct {
	Provider string
	APIKey   string
	Cache    providers.CacheProvider
}

// NewPlacesProvider selects a provider implementation from configuration.
// An empty API key yields an unconfigured provider rather than an error so
// the application can start without maps credentials.
func NewPlacesProvider(cfg PlacesProviderConfig) providers.PlacesProvider {
	switch cfg.Provider {
	case "mock":
		return NewMockPlacesProvider()
	case "google", "":
		if cfg.APIKey == "" {
			return &unconfiguredProvider{}
		}
		return NewGooglePlacesProvider(cfg.APIKey, cfg.Cache)
	default:
		return &unconfiguredProvider{}
	}
}

type unconfiguredProvider struct{}

func (u *unconfiguredProvider) Configured() bool {
	return false
}

func (u *unconfiguredProvider) FindPhoto(ctx context.Context, query providers.PhotoQuery) (*providers.PlacePhoto, error) {
	return nil, ErrNotConfigured
}
