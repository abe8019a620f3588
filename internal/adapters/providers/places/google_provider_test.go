package places_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/cafefinder/gateway/internal/adapters/providers/places"
	"github.com/cafefinder/gateway/internal/domain/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string][]byte)}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.items[key]
	if !ok {
		return nil, assert.AnError
	}
	return value, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

func textSearchResponse(status string, results ...map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{"status": status, "results": results}
}

func TestFindPhoto_ResolvesAndCaches(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		query := r.URL.Query()
		assert.Equal(t, "Blue Bottle 66 Mint St San Francisco", query.Get("query"))
		assert.Equal(t, "test-key", query.Get("key"))
		assert.Contains(t, query.Get("locationbias"), "circle:100@")

		json.NewEncoder(w).Encode(textSearchResponse("OK", map[string]interface{}{
			"place_id": "place-1",
			"name":     "Blue Bottle Coffee",
			"photos": []map[string]interface{}{
				{"photo_reference": "ref-1", "width": 800, "height": 600},
			},
		}))
	}))
	defer server.Close()

	cache := newMemoryCache()
	provider := places.NewGooglePlacesProviderWithOptions("test-key", cache, server.URL, server.Client())

	query := providers.PhotoQuery{
		Name:      "Blue Bottle",
		Address:   "66 Mint St",
		City:      "San Francisco",
		Latitude:  37.78,
		Longitude: -122.41,
		MaxWidth:  96,
	}

	photo, err := provider.FindPhoto(context.Background(), query)
	require.NoError(t, err)
	require.NotNil(t, photo)
	assert.Equal(t, "place-1", photo.PlaceID)
	assert.Contains(t, photo.URL, "photoreference=ref-1")
	assert.Contains(t, photo.URL, "maxwidth=96")

	// Second lookup is served from cache.
	photo, err = provider.FindPhoto(context.Background(), query)
	require.NoError(t, err)
	require.NotNil(t, photo)
	assert.Equal(t, 1, requests)
}

func TestFindPhoto_ZeroResultsIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(textSearchResponse("ZERO_RESULTS"))
	}))
	defer server.Close()

	provider := places.NewGooglePlacesProviderWithOptions("test-key", nil, server.URL, server.Client())

	photo, err := provider.FindPhoto(context.Background(), providers.PhotoQuery{Name: "Nowhere"})
	require.NoError(t, err)
	assert.Nil(t, photo)
}

func TestFindPhoto_PlaceWithoutPhotos(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(textSearchResponse("OK", map[string]interface{}{
			"place_id": "place-1",
			"name":     "Cameraless Cafe",
		}))
	}))
	defer server.Close()

	provider := places.NewGooglePlacesProviderWithOptions("test-key", nil, server.URL, server.Client())

	photo, err := provider.FindPhoto(context.Background(), providers.PhotoQuery{Name: "Cameraless Cafe"})
	require.NoError(t, err)
	assert.Nil(t, photo)
}

func TestFindPhoto_APIErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":        "REQUEST_DENIED",
			"error_message": "The provided API key is invalid.",
			"results":       []interface{}{},
		})
	}))
	defer server.Close()

	provider := places.NewGooglePlacesProviderWithOptions("bad-key", nil, server.URL, server.Client())

	_, err := provider.FindPhoto(context.Background(), providers.PhotoQuery{Name: "Anywhere"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
}

func TestNewPlacesProvider_Unconfigured(t *testing.T) {
	provider := places.NewPlacesProvider(places.PlacesProviderConfig{Provider: "google"})
	assert.False(t, provider.Configured())

	_, err := provider.FindPhoto(context.Background(), providers.PhotoQuery{Name: "Anywhere"})
	assert.ErrorIs(t, err, places.ErrNotConfigured)
}

func TestNewPlacesProvider_Mock(t *testing.T) {
	provider := places.NewPlacesProvider(places.PlacesProviderConfig{Provider: "mock"})
	require.True(t, provider.Configured())

	photo, err := provider.FindPhoto(context.Background(), providers.PhotoQuery{Name: "Blue Bottle Coffee"})
	require.NoError(t, err)
	assert.NotNil(t, photo)
}
