package entities

import "time"

// BusyReport is a single self-reported crowd-level signal for a café.
// Reports are append-only: the gateway aggregates them, never edits them.
type BusyReport struct {
	ID         string    `json:"id,omitempty"`
	CafeID     string    `json:"cafeId"`
	Timestamp  time.Time `json:"timestamp"`
	CrowdLevel int       `json:"crowdLevel"`
	WaitMins   *int      `json:"waitMins,omitempty"`
}
