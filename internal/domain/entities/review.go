package entities

import (
	"bytes"
	"time"
)

// ModerationStatus is the review lifecycle applied before public display.
type ModerationStatus string

const (
	ModerationPending  ModerationStatus = "PENDING"
	ModerationApproved ModerationStatus = "APPROVED"
	ModerationRejected ModerationStatus = "REJECTED"
)

// TriState is a three-variant answer for amenity verification on a review:
// the reviewer confirmed the amenity, denied it, or did not answer. It
// serializes as true/false/null to match the upstream contract.
type TriState int

const (
	TriUnknown TriState = iota
	TriYes
	TriNo
)

var (
	jsonTrue  = []byte("true")
	jsonFalse = []byte("false")
	jsonNull  = []byte("null")
)

// MarshalJSON encodes Yes/No/Unknown as true/false/null.
func (t TriState) MarshalJSON() ([]byte, error) {
	switch t {
	case TriYes:
		return jsonTrue, nil
	case TriNo:
		return jsonFalse, nil
	default:
		return jsonNull, nil
	}
}

// UnmarshalJSON decodes true/false/null into Yes/No/Unknown.
func (t *TriState) UnmarshalJSON(data []byte) error {
	switch {
	case bytes.Equal(data, jsonTrue):
		*t = TriYes
	case bytes.Equal(data, jsonFalse):
		*t = TriNo
	default:
		*t = TriUnknown
	}
	return nil
}

// Review is a user-submitted café review. Status transitions happen only in
// the upstream moderation workflow.
type Review struct {
	ID       string `json:"id"`
	CafeID   string `json:"cafeId"`
	UserID   string `json:"userId,omitempty"`
	Username string `json:"username"`

	OverallRating  int  `json:"overallRating"`
	CoffeeRating   *int `json:"coffeeRating,omitempty"`
	TasteRating    *int `json:"tasteRating,omitempty"`
	AmbianceRating *int `json:"ambianceRating,omitempty"`
	ServiceRating  *int `json:"serviceRating,omitempty"`
	ValueRating    *int `json:"valueRating,omitempty"`

	Text       string   `json:"text,omitempty"`
	TasteNotes string   `json:"tasteNotes,omitempty"`
	Photos     []string `json:"photos,omitempty"`

	// Amenity verification: what the reviewer actually observed.
	Wifi         TriState `json:"wifi"`
	Seating      TriState `json:"seating"`
	WorkFriendly TriState `json:"workFriendly"`
	Bathrooms    TriState `json:"bathrooms"`
	PetFriendly  TriState `json:"petFriendly"`
	Parking      string   `json:"parking,omitempty"`
	PriceRange   string   `json:"priceRange,omitempty"`
	WaitTime     *int     `json:"waitTime,omitempty"`

	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
	Likes        int        `json:"likes"`
	HelpfulVotes int        `json:"helpfulVotes"`
	Verified     bool       `json:"verified"`

	Status     ModerationStatus `json:"status"`
	AdminID    string           `json:"adminId,omitempty"`
	AdminNotes string           `json:"adminNotes,omitempty"`
	ReviewedAt *time.Time       `json:"reviewedAt,omitempty"`
}

// ModerationStats summarizes the admin review queue.
type ModerationStats struct {
	TotalReviews    int `json:"totalReviews"`
	PendingReviews  int `json:"pendingReviews"`
	ApprovedReviews int `json:"approvedReviews"`
	RejectedReviews int `json:"rejectedReviews"`
}
