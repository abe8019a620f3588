package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cafefinder/gateway/internal/domain/entities"
	"github.com/cafefinder/gateway/internal/infrastructure/clients/cafeapi"
	apperrors "github.com/cafefinder/gateway/pkg/errors"
)

const probeTimeout = 5 * time.Second

// isAuthRejection reports whether the login attempt was answered with a
// credential rejection. A rejection still proves the auth route is up, so
// the probe counts it as healthy.
func isAuthRejection(err error) bool {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return false
	}
	switch appErr.Type {
	case apperrors.ErrorTypeUnauthorized, apperrors.ErrorTypeValidation, apperrors.ErrorTypeForbidden:
		return true
	case apperrors.ErrorTypeUpstream:
		return appErr.StatusCode >= 400 && appErr.StatusCode < 500
	}
	return false
}

// ProbeResult is the outcome of one upstream endpoint check.
type ProbeResult struct {
	Name      string `json:"name"`
	OK        bool   `json:"ok"`
	LatencyMS int64  `json:"latencyMs"`
	Error     string `json:"error,omitempty"`
}

// StatusReport is the status page payload: each upstream capability probed
// independently with its latency.
type StatusReport struct {
	Healthy   bool          `json:"healthy"`
	CheckedAt time.Time     `json:"checkedAt"`
	Probes    []ProbeResult `json:"probes"`
}

// DiagnosticsService runs the status page probes against the upstream API.
type DiagnosticsService struct {
	api cafeapi.Client
}

// NewDiagnosticsService creates a new diagnostics service.
func NewDiagnosticsService(api cafeapi.Client) *DiagnosticsService {
	return &DiagnosticsService{api: api}
}

// Status probes health, search, auth and the reviews feed concurrently.
func (s *DiagnosticsService) Status(ctx context.Context) *StatusReport {
	probes := []struct {
		name string
		run  func(context.Context) error
	}{
		{"health", func(ctx context.Context) error {
			return s.api.Health(ctx)
		}},
		{"search", func(ctx context.Context) error {
			_, err := s.api.SearchCafes(ctx, entities.SearchFilter{Query: "coffee"})
			return err
		}},
		{"auth", func(ctx context.Context) error {
			_, err := s.api.Login(ctx, "status-probe", "status-probe")
			if err == nil || isAuthRejection(err) {
				return nil
			}
			return err
		}},
		{"reviews", func(ctx context.Context) error {
			_, err := s.api.RecentReviews(ctx, 1)
			return err
		}},
	}

	report := &StatusReport{
		Healthy:   true,
		CheckedAt: time.Now().UTC(),
		Probes:    make([]ProbeResult, len(probes)),
	}

	var wg sync.WaitGroup
	for i, probe := range probes {
		wg.Add(1)
		go func(i int, name string, run func(context.Context) error) {
			defer wg.Done()
			probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
			defer cancel()

			start := time.Now()
			err := run(probeCtx)
			result := ProbeResult{
				Name:      name,
				OK:        err == nil,
				LatencyMS: time.Since(start).Milliseconds(),
			}
			if err != nil {
				result.Error = err.Error()
			}
			report.Probes[i] = result
		}(i, probe.name, probe.run)
	}
	wg.Wait()

	for _, result := range report.Probes {
		if !result.OK {
			report.Healthy = false
			break
		}
	}
	return report
}
