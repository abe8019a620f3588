package providers

import "context"

// PlacePhoto is the result of a best-effort photo lookup for a location.
type PlacePhoto struct {
	URL     string `json:"url"`
	PlaceID string `json:"placeId"`
	Name    string `json:"name"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

// PhotoQuery identifies a location to the places provider. Name/Address/City
// form the free-text query; the coordinates bias the search.
type PhotoQuery struct {
	Name      string
	Address   string
	City      string
	Latitude  float64
	Longitude float64
	MaxWidth  int
	MaxHeight int
}

// PlacesProvider resolves photos for café locations through an external
// maps/places service. Implementations must honor ctx cancellation; a nil
// photo with a nil error means the place had no usable photo.
type PlacesProvider interface {
	FindPhoto(ctx context.Context, query PhotoQuery) (*PlacePhoto, error)

	// Configured reports whether the provider has a usable API credential.
	// When false, map views render the degraded placeholder and never call
	// FindPhoto.
	Configured() bool
}
