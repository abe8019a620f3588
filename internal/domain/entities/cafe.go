package entities

import "time"

// Cafe represents a café listing as served by the CafeFinder API. The
// gateway treats it as read-only: it is refreshed by re-fetching, never
// mutated locally. JSON tags follow the upstream camelCase contract.
type Cafe struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZipCode     string `json:"zipCode"`
	Phone       string `json:"phone"`
	Website     string `json:"website"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`

	// Business hours keyed by weekday (0=Sunday), value like "7:00-20:00".
	Hours map[int]string `json:"hours,omitempty"`

	Wifi                 bool     `json:"wifi"`
	Seating              bool     `json:"seating"`
	WorkFriendly         bool     `json:"workFriendly"`
	Bathrooms            bool     `json:"bathrooms"`
	PetFriendly          bool     `json:"petFriendly"`
	WheelchairAccessible bool     `json:"wheelchairAccessible"`
	Parking              string   `json:"parking,omitempty"`
	AlternativeMilks     []string `json:"alternativeMilks,omitempty"`

	MenuItems      []MenuItem `json:"menuItems,omitempty"`
	CoffeeTypes    []string   `json:"coffeeTypes,omitempty"`
	DietaryOptions []string   `json:"dietaryOptions,omitempty"`
	PriceRange     string     `json:"priceRange,omitempty"`

	Socials []string `json:"socials,omitempty"`
	Photos  []string `json:"photos,omitempty"`

	AvgRating       float64 `json:"avgRating"`
	AvgCoffeeRating float64 `json:"avgCoffeeRating"`
	AvgTasteRating  float64 `json:"avgTasteRating"`
	ReviewsCount    int     `json:"reviewsCount"`

	CurrentStatus   string `json:"currentStatus,omitempty"`
	CurrentWaitTime *int   `json:"currentWaitTime,omitempty"`

	OwnerID     string     `json:"ownerId,omitempty"`
	IsClaimed   bool       `json:"isClaimed"`
	ClaimStatus string     `json:"claimStatus,omitempty"`
	ClaimedAt   *time.Time `json:"claimedAt,omitempty"`
	IsVerified  bool       `json:"isVerified"`

	Tags []string `json:"tags,omitempty"`
}

// MenuItem is a single menu entry on a café listing.
type MenuItem struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Category    string  `json:"category,omitempty"`
}

// HasCoordinates reports whether the listing carries a usable map position.
// Listings without one are skipped during marker placement.
func (c *Cafe) HasCoordinates() bool {
	return c.Latitude != 0 && c.Longitude != 0
}

// SearchFilter holds the query parameters accepted by the upstream public
// café search endpoint.
type SearchFilter struct {
	Query        string
	City         string
	Wifi         bool
	Seating      bool
	WorkFriendly bool
	PriceRange   string
	MinRating    float64
	Latitude     float64
	Longitude    float64
	RadiusKm     float64
}
