package entities

import "time"

// ClaimRequest is a write-once submission asking for management rights over
// a café listing. The approval workflow lives upstream.
type ClaimRequest struct {
	ID            string     `json:"id,omitempty"`
	CafeID        string     `json:"cafeId"`
	UserID        string     `json:"userId,omitempty"`
	BusinessEmail string     `json:"businessEmail"`
	BusinessPhone string     `json:"businessPhone,omitempty"`
	OwnerName     string     `json:"ownerName"`
	OwnerTitle    string     `json:"ownerTitle,omitempty"`
	Reason        string     `json:"reason"`
	Status        string     `json:"status,omitempty"`
	SubmittedAt   *time.Time `json:"submittedAt,omitempty"`
}
