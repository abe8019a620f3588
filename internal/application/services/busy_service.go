package services

import (
	"context"
	"time"

	"github.com/cafefinder/gateway/internal/domain/entities"
	"github.com/cafefinder/gateway/internal/infrastructure/clients/cafeapi"
	apperrors "github.com/cafefinder/gateway/pkg/errors"
)

// DefaultCrowdLevel is the slider position a fresh quick-report form starts
// from, and the value the form resets to after a successful submit.
const DefaultCrowdLevel = 50

// DefaultHistoryHours is the trailing window requested when the caller does
// not specify one.
const DefaultHistoryHours = 24 * 7

// HourBucket aggregates reports whose local timestamp falls in one hour of
// the day. Average is meaningless when Count is zero; renderers show
// "No data" instead.
type HourBucket struct {
	Hour    int     `json:"hour"`
	Total   int     `json:"total"`
	Count   int     `json:"count"`
	Average float64 `json:"average"`
	Label   string  `json:"label"`
	Color   string  `json:"color,omitempty"`
}

// DayBucket aggregates reports by day of week, Sunday through Saturday.
type DayBucket struct {
	Day     string  `json:"day"`
	Total   int     `json:"total"`
	Count   int     `json:"count"`
	Average float64 `json:"average"`
	Label   string  `json:"label"`
	Color   string  `json:"color,omitempty"`
}

// BusySummary is the aggregated view of a café's crowd reports.
type BusySummary struct {
	CafeID      string       `json:"cafeId"`
	WindowHours int          `json:"windowHours"`
	ReportCount int          `json:"reportCount"`
	Hourly      []HourBucket `json:"hourly"`
	Weekly      []DayBucket  `json:"weekly"`
}

var dayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// BusyService aggregates crowd reports and submits new ones.
type BusyService struct {
	api cafeapi.Client
}

// NewBusyService creates a new busy service.
func NewBusyService(api cafeapi.Client) *BusyService {
	return &BusyService{api: api}
}

// Summary fetches the report history for a café and buckets it by hour of
// day and day of week. A café with no reports still yields all 24 hourly and
// 7 weekly buckets, each with a zero count.
func (s *BusyService) Summary(ctx context.Context, cafeID string, hours int) (*BusySummary, error) {
	if hours <= 0 {
		hours = DefaultHistoryHours
	}

	reports, err := s.api.BusyHistory(ctx, cafeID, hours)
	if err != nil {
		return nil, err
	}
	return Aggregate(cafeID, hours, reports), nil
}

// Aggregate buckets reports without touching the network. Exposed so the
// status page and tests can aggregate canned report sets.
func Aggregate(cafeID string, hours int, reports []entities.BusyReport) *BusySummary {
	summary := &BusySummary{
		CafeID:      cafeID,
		WindowHours: hours,
		ReportCount: len(reports),
		Hourly:      make([]HourBucket, 24),
		Weekly:      make([]DayBucket, 7),
	}
	for h := range summary.Hourly {
		summary.Hourly[h].Hour = h
	}
	for d := range summary.Weekly {
		summary.Weekly[d].Day = dayNames[d]
	}

	for _, report := range reports {
		hour := report.Timestamp.Hour()
		day := int(report.Timestamp.Weekday())
		summary.Hourly[hour].Total += report.CrowdLevel
		summary.Hourly[hour].Count++
		summary.Weekly[day].Total += report.CrowdLevel
		summary.Weekly[day].Count++
	}

	// Averages stay exact; the band boundaries apply to the raw value, so
	// 30.25 is already Moderate. Rounding is the renderer's concern.
	for h := range summary.Hourly {
		bucket := &summary.Hourly[h]
		if bucket.Count > 0 {
			bucket.Average = float64(bucket.Total) / float64(bucket.Count)
			bucket.Label = CrowdLabel(bucket.Average)
			bucket.Color = CrowdColor(bucket.Average)
		}
	}
	for d := range summary.Weekly {
		bucket := &summary.Weekly[d]
		if bucket.Count > 0 {
			bucket.Average = float64(bucket.Total) / float64(bucket.Count)
			bucket.Label = CrowdLabel(bucket.Average)
			bucket.Color = CrowdColor(bucket.Average)
		}
	}

	return summary
}

// SubmitReport posts one quick crowd report. Requires a signed-in session;
// an anonymous caller is rejected before any network traffic.
func (s *BusyService) SubmitReport(ctx context.Context, session *entities.Session, cafeID string, crowdLevel int, waitMins *int) (*entities.BusyReport, error) {
	if session == nil || session.Token == "" {
		return nil, apperrors.NewUnauthorizedError("please log in to report how busy it is")
	}
	if crowdLevel < 0 || crowdLevel > 100 {
		return nil, apperrors.NewValidationError("crowd level must be between 0 and 100")
	}
	if waitMins != nil && *waitMins < 0 {
		return nil, apperrors.NewValidationError("wait time cannot be negative")
	}

	report, err := s.api.SubmitBusyReport(ctx, session, cafeID, crowdLevel, waitMins)
	if err != nil {
		return nil, err
	}
	if report.Timestamp.IsZero() {
		report.Timestamp = time.Now().UTC()
	}
	return report, nil
}

// CrowdLabel maps a 0-100 crowd level to its display label.
func CrowdLabel(level float64) string {
	switch {
	case level <= 30:
		return "Quiet"
	case level <= 60:
		return "Moderate"
	case level <= 85:
		return "Busy"
	default:
		return "Very Busy"
	}
}

// CrowdColor maps a 0-100 crowd level to the band color used by charts and
// markers. Same boundaries as CrowdLabel.
func CrowdColor(level float64) string {
	switch {
	case level <= 30:
		return "#22c55e"
	case level <= 60:
		return "#eab308"
	case level <= 85:
		return "#f97316"
	default:
		return "#ef4444"
	}
}
