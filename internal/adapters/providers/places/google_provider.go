package places

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cafefinder/gateway/internal/domain/providers"
)

const (
	googlePlacesTextURL  = "https://maps.googleapis.com/maps/api/place/textsearch/json"
	googlePlacePhotoURL  = "https://maps.googleapis.com/maps/api/place/photo"
	defaultPhotoCacheTTL = 60 * 60 * 24 * 7
	defaultHTTPTimeout   = 8 * time.Second

	// Bias results toward the marker's own coordinates so a chain with many
	// branches resolves to the branch on the map.
	locationBiasRadiusMeters = 100
)

// GooglePlacesProvider resolves café storefront photos through the Places
// Text Search API.
type GooglePlacesProvider struct {
	apiKey     string
	httpClient *http.Client
	cache      providers.CacheProvider
	baseURL    string
}

// NewGooglePlacesProvider creates a new Google places provider.
func NewGooglePlacesProvider(apiKey string, cache providers.CacheProvider) providers.PlacesProvider {
	return NewGooglePlacesProviderWithOptions(apiKey, cache, googlePlacesTextURL, nil)
}

// NewGooglePlacesProviderWithOptions allows overriding base URL and HTTP client (used for tests).
func NewGooglePlacesProviderWithOptions(apiKey string, cache providers.CacheProvider, baseURL string, httpClient *http.Client) providers.PlacesProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = googlePlacesTextURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &GooglePlacesProvider{
		apiKey:     apiKey,
		httpClient: httpClient,
		cache:      cache,
		baseURL:    baseURL,
	}
}

// Configured reports whether an API key is present.
func (g *GooglePlacesProvider) Configured() bool {
	return g.apiKey != ""
}

// FindPhoto looks up a storefront photo for the queried place. A nil photo
// with a nil error means the place was found but carries no usable photo,
// or was not found at all.
func (g *GooglePlacesProvider) FindPhoto(ctx context.Context, query providers.PhotoQuery) (*providers.PlacePhoto, error) {
	if !g.Configured() {
		return nil, fmt.Errorf("google places api key is required")
	}

	text := buildQueryText(query)
	if text == "" {
		return nil, fmt.Errorf("photo query requires a name or address")
	}

	cacheKey := "places:v1:photo:" + hashKey(strings.ToLower(text))
	if g.cache != nil {
		if cached, err := g.cache.Get(ctx, cacheKey); err == nil && len(cached) > 0 {
			var photo providers.PlacePhoto
			if err := json.Unmarshal(cached, &photo); err == nil && photo.URL != "" {
				return &photo, nil
			}
		}
	}

	resp, err := g.doTextSearch(ctx, text, query)
	if err != nil {
		return nil, err
	}
	if resp.Status == "ZERO_RESULTS" {
		return nil, nil
	}
	// Denied and quota statuses ship an empty results array too, so the
	// status check has to come before the zero-results shortcut.
	if resp.Status != "OK" {
		if resp.ErrorMessage != "" {
			return nil, fmt.Errorf("places text search failed: %s - %s", resp.Status, resp.ErrorMessage)
		}
		return nil, fmt.Errorf("places text search failed: %s", resp.Status)
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}

	result := resp.Results[0]
	if len(result.Photos) == 0 || result.Photos[0].PhotoReference == "" {
		return nil, nil
	}

	photo := providers.PlacePhoto{
		PlaceID: result.PlaceID,
		Name:    result.Name,
		URL:     g.photoURL(result.Photos[0].PhotoReference, query),
		Width:   result.Photos[0].Width,
		Height:  result.Photos[0].Height,
	}

	if g.cache != nil {
		if payload, err := json.Marshal(photo); err == nil {
			_ = g.cache.Set(ctx, cacheKey, payload, defaultPhotoCacheTTL)
		}
	}

	return &photo, nil
}

func (g *GooglePlacesProvider) doTextSearch(ctx context.Context, text string, query providers.PhotoQuery) (*googlePlacesTextSearchResponse, error) {
	params := url.Values{}
	params.Set("query", text)
	params.Set("key", g.apiKey)
	if query.Latitude != 0 || query.Longitude != 0 {
		params.Set("locationbias", fmt.Sprintf("circle:%d@%f,%f",
			locationBiasRadiusMeters, query.Latitude, query.Longitude))
	}

	reqURL := fmt.Sprintf("%s?%s", g.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build places text search request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places text search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("places text search returned status %d", resp.StatusCode)
	}

	var payload googlePlacesTextSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode places text search response: %w", err)
	}

	return &payload, nil
}

func (g *GooglePlacesProvider) photoURL(reference string, query providers.PhotoQuery) string {
	params := url.Values{}
	params.Set("photoreference", reference)
	params.Set("key", g.apiKey)
	maxWidth := query.MaxWidth
	if maxWidth <= 0 {
		maxWidth = 96
	}
	params.Set("maxwidth", fmt.Sprintf("%d", maxWidth))
	if query.MaxHeight > 0 {
		params.Set("maxheight", fmt.Sprintf("%d", query.MaxHeight))
	}
	return fmt.Sprintf("%s?%s", googlePlacePhotoURL, params.Encode())
}

func buildQueryText(query providers.PhotoQuery) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{query.Name, query.Address, query.City} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, strings.TrimSpace(part))
		}
	}
	return strings.Join(parts, " ")
}

func hashKey(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

type googlePlacesTextSearchResponse struct {
	Status       string                         `json:"status"`
	ErrorMessage string                         `json:"error_message,omitempty"`
	Results      []googlePlacesTextSearchResult `json:"results"`
}

type googlePlacesTextSearchResult struct {
	PlaceID string              `json:"place_id"`
	Name    string              `json:"name"`
	Photos  []googlePlacesPhoto `json:"photos"`
}

type googlePlacesPhoto struct {
	PhotoReference string `json:"photo_reference"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
}
