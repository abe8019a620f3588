package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/cafefinder/gateway/internal/domain/entities"
	"github.com/cafefinder/gateway/internal/domain/providers"
	"github.com/cafefinder/gateway/internal/infrastructure/observability"
	apperrors "github.com/cafefinder/gateway/pkg/errors"
	"github.com/google/uuid"
)

// ViewState is the lifecycle of a map view. A view moves strictly forward:
// UNINITIALIZED -> LOADING -> READY or FAILED.
type ViewState string

const (
	ViewUninitialized ViewState = "UNINITIALIZED"
	ViewLoading       ViewState = "LOADING"
	ViewReady         ViewState = "READY"
	ViewFailed        ViewState = "FAILED"
)

// MarkerState tracks how far a marker's icon has resolved. A marker never
// moves backwards: once the photo icon is placed it stays.
type MarkerState string

const (
	MarkerAbsent   MarkerState = "ABSENT"
	MarkerFallback MarkerState = "FALLBACK_ICON"
	MarkerPhoto    MarkerState = "PHOTO_ICON"
)

const (
	// photoLookupTimeout bounds each marker's photo resolution; past it the
	// fallback glyph simply stays.
	photoLookupTimeout = 3 * time.Second

	// bounceDuration is how long a hovered marker animates before settling.
	bounceDuration = 750 * time.Millisecond

	// degradedPlaceholderLimit caps the café names listed when no maps
	// credential is configured; the remainder collapses to "+N more".
	degradedPlaceholderLimit = 5

	photoIconMaxWidth = 96

	// viewTTL is how long an unclosed view is kept; clients that navigate
	// away without a DELETE would otherwise leak views and bounce timers.
	viewTTL = 30 * time.Minute

	sweepInterval = 5 * time.Minute
)

// Marker is one café pin on a map view.
type Marker struct {
	CafeID    string        `json:"cafeId"`
	Name      string        `json:"name"`
	Latitude  float64       `json:"latitude"`
	Longitude float64       `json:"longitude"`
	State     MarkerState   `json:"state"`
	GlyphSVG  string        `json:"glyphSvg"`
	PhotoURL  string        `json:"photoUrl,omitempty"`
	Selected  bool          `json:"selected"`
	Bouncing  bool          `json:"bouncing"`
	Overlay   MarkerOverlay `json:"overlay"`
}

// MarkerOverlay is the info panel shown when a marker is selected, built
// from the listing's fields at view creation time.
type MarkerOverlay struct {
	Name         string   `json:"name"`
	Rating       float64  `json:"rating"`
	ReviewsCount int      `json:"reviewsCount"`
	Description  string   `json:"description,omitempty"`
	Address      string   `json:"address,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	PriceRange   string   `json:"priceRange,omitempty"`
	Amenities    []string `json:"amenities,omitempty"`
	Status       string   `json:"status,omitempty"`
}

// Bounds is the box the map fits to when it holds more than one marker.
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Placeholder is the degraded rendering used when no maps credential is
// configured: a short café list instead of a map.
type Placeholder struct {
	Names []string `json:"names"`
	More  int      `json:"more"`
}

// MapView holds the resolved marker set for one page view.
type MapView struct {
	mu sync.RWMutex

	id        string
	state     ViewState
	err       error
	markers   []*Marker
	byCafe    map[string]*Marker
	bounds    *Bounds
	degraded  *Placeholder
	selected  string
	createdAt time.Time

	ready  chan struct{}
	cancel context.CancelFunc

	bounceTimers map[string]*time.Timer
}

// MapViewSnapshot is the renderable copy of a view's current state.
type MapViewSnapshot struct {
	ID          string       `json:"id"`
	State       ViewState    `json:"state"`
	Markers     []Marker     `json:"markers"`
	Bounds      *Bounds      `json:"bounds,omitempty"`
	FitBounds   bool         `json:"fitBounds"`
	Placeholder *Placeholder `json:"placeholder,omitempty"`
	Selected    string       `json:"selected,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// MapService builds map views and resolves marker icons. Photo lookups run
// concurrently per marker with a hard timeout; the fallback glyph is always
// placed first so the map is usable immediately.
type MapService struct {
	places  providers.PlacesProvider
	metrics *observability.Metrics

	mu    sync.RWMutex
	views map[string]*MapView
}

// NewMapService creates a new map service.
func NewMapService(places providers.PlacesProvider, metrics *observability.Metrics) *MapService {
	return &MapService{
		places:  places,
		metrics: metrics,
		views:   make(map[string]*MapView),
	}
}

// CreateView builds a view for the given cafés. Cafés without coordinates
// are skipped. The returned view is READY as soon as every marker carries
// its fallback glyph; photo icons arrive asynchronously afterwards.
func (s *MapService) CreateView(ctx context.Context, cafes []entities.Cafe) *MapView {
	lookupCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	view := &MapView{
		id:           uuid.New().String(),
		state:        ViewUninitialized,
		byCafe:       make(map[string]*Marker),
		createdAt:    time.Now(),
		ready:        make(chan struct{}),
		cancel:       cancel,
		bounceTimers: make(map[string]*time.Timer),
	}

	view.mu.Lock()
	view.state = ViewLoading

	if !s.places.Configured() {
		view.degraded = buildPlaceholder(cafes)
		view.state = ViewReady
		view.mu.Unlock()
		close(view.ready)
		s.register(view)
		return view
	}

	for _, cafe := range cafes {
		if !cafe.HasCoordinates() {
			continue
		}
		marker := &Marker{
			CafeID:    cafe.ID,
			Name:      cafe.Name,
			Latitude:  cafe.Latitude,
			Longitude: cafe.Longitude,
			State:     MarkerFallback,
			GlyphSVG:  GlyphSVG(cafe.Name),
			Overlay:   buildOverlay(cafe),
		}
		view.markers = append(view.markers, marker)
		view.byCafe[cafe.ID] = marker
	}
	view.bounds = computeBounds(view.markers)
	view.state = ViewReady
	view.mu.Unlock()
	close(view.ready)
	s.register(view)

	for _, cafe := range cafes {
		if !cafe.HasCoordinates() {
			continue
		}
		go s.resolvePhoto(lookupCtx, view, cafe)
	}
	return view
}

// WaitReady blocks until the view leaves LOADING or the context is done.
// The ready signal fires exactly once per view.
func (s *MapService) WaitReady(ctx context.Context, view *MapView) error {
	select {
	case <-view.ready:
	case <-ctx.Done():
		return ctx.Err()
	}

	view.mu.RLock()
	defer view.mu.RUnlock()
	if view.state == ViewFailed {
		return view.err
	}
	return nil
}

// View returns a live view by ID.
func (s *MapService) View(id string) (*MapView, error) {
	s.mu.RLock()
	view, ok := s.views[id]
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("map view not found: %s", id))
	}
	return view, nil
}

// Select marks one marker selected and clears the previous selection.
func (s *MapService) Select(viewID, cafeID string) error {
	view, err := s.View(viewID)
	if err != nil {
		return err
	}

	view.mu.Lock()
	defer view.mu.Unlock()
	marker, ok := view.byCafe[cafeID]
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("marker not found: %s", cafeID))
	}
	if prev, ok := view.byCafe[view.selected]; ok {
		prev.Selected = false
	}
	marker.Selected = true
	view.selected = cafeID
	return nil
}

// Hover starts the marker's bounce animation; it settles on its own.
// Re-hovering restarts the clock.
func (s *MapService) Hover(viewID, cafeID string) error {
	view, err := s.View(viewID)
	if err != nil {
		return err
	}

	view.mu.Lock()
	defer view.mu.Unlock()
	marker, ok := view.byCafe[cafeID]
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("marker not found: %s", cafeID))
	}
	marker.Bouncing = true

	if timer, ok := view.bounceTimers[cafeID]; ok {
		timer.Stop()
	}
	view.bounceTimers[cafeID] = time.AfterFunc(bounceDuration, func() {
		view.mu.Lock()
		defer view.mu.Unlock()
		if m, ok := view.byCafe[cafeID]; ok {
			m.Bouncing = false
		}
	})
	return nil
}

// Snapshot copies the view's current state for rendering.
func (s *MapService) Snapshot(view *MapView) MapViewSnapshot {
	view.mu.RLock()
	defer view.mu.RUnlock()

	snap := MapViewSnapshot{
		ID:          view.id,
		State:       view.state,
		Markers:     make([]Marker, 0, len(view.markers)),
		Bounds:      view.bounds,
		FitBounds:   len(view.markers) > 1,
		Placeholder: view.degraded,
		Selected:    view.selected,
	}
	for _, marker := range view.markers {
		snap.Markers = append(snap.Markers, *marker)
	}
	if view.err != nil {
		snap.Error = view.err.Error()
	}
	return snap
}

// CloseView tears down a view and cancels its outstanding photo lookups.
func (s *MapService) CloseView(id string) {
	s.mu.Lock()
	view, ok := s.views[id]
	delete(s.views, id)
	s.mu.Unlock()
	if !ok {
		return
	}

	view.cancel()
	view.mu.Lock()
	for _, timer := range view.bounceTimers {
		timer.Stop()
	}
	view.mu.Unlock()
}

// StartSweeper periodically closes views older than their TTL. It runs
// until ctx is done; main ties it to the server lifetime.
func (s *MapService) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.SweepExpired(time.Now())
			}
		}
	}()
}

// SweepExpired closes every view created more than the TTL before now and
// returns how many were closed.
func (s *MapService) SweepExpired(now time.Time) int {
	s.mu.RLock()
	var expired []string
	for id, view := range s.views {
		if now.Sub(view.createdAt) > viewTTL {
			expired = append(expired, id)
		}
	}
	s.mu.RUnlock()

	for _, id := range expired {
		s.CloseView(id)
	}
	return len(expired)
}

func (s *MapService) register(view *MapView) {
	s.mu.Lock()
	s.views[view.id] = view
	s.mu.Unlock()
}

// resolvePhoto looks up one marker's storefront photo and, if one arrives in
// time, swaps the fallback glyph for the photo icon. A lookup that times out
// or is cancelled never touches the marker.
func (s *MapService) resolvePhoto(ctx context.Context, view *MapView, cafe entities.Cafe) {
	lookupCtx, cancel := context.WithTimeout(ctx, photoLookupTimeout)
	defer cancel()

	photo, err := s.places.FindPhoto(lookupCtx, providers.PhotoQuery{
		Name:      cafe.Name,
		Address:   cafe.Address,
		City:      cafe.City,
		Latitude:  cafe.Latitude,
		Longitude: cafe.Longitude,
		MaxWidth:  photoIconMaxWidth,
	})

	switch {
	case lookupCtx.Err() != nil:
		outcome := "timeout"
		if ctx.Err() != nil {
			outcome = "cancelled"
		}
		observability.RecordPhotoLookup(context.WithoutCancel(ctx), s.metrics, outcome)
		return
	case err != nil:
		observability.RecordPhotoLookup(ctx, s.metrics, "error")
		return
	case photo == nil || photo.URL == "":
		observability.RecordPhotoLookup(ctx, s.metrics, "none")
		return
	}

	view.mu.Lock()
	marker, ok := view.byCafe[cafe.ID]
	if ok && marker.State == MarkerFallback {
		marker.State = MarkerPhoto
		marker.PhotoURL = photo.URL
	}
	view.mu.Unlock()
	observability.RecordPhotoLookup(ctx, s.metrics, "resolved")
}

// GlyphSVG renders the fallback marker icon: a filled pin carrying the
// café's initial.
func GlyphSVG(name string) string {
	initial := "?"
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			initial = string(unicode.ToUpper(r))
			break
		}
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="36" height="48" viewBox="0 0 36 48">`+
		`<path d="M18 0C8.06 0 0 8.06 0 18c0 13.5 18 30 18 30s18-16.5 18-30C36 8.06 27.94 0 18 0z" fill="#6f4e37"/>`+
		`<circle cx="18" cy="18" r="12" fill="#fff"/>`+
		`<text x="18" y="23" font-family="sans-serif" font-size="14" font-weight="bold" text-anchor="middle" fill="#6f4e37">%s</text>`+
		`</svg>`, initial)
}

func buildOverlay(cafe entities.Cafe) MarkerOverlay {
	return MarkerOverlay{
		Name:         cafe.Name,
		Rating:       cafe.AvgRating,
		ReviewsCount: cafe.ReviewsCount,
		Description:  cafe.Description,
		Address:      cafe.Address,
		Phone:        cafe.Phone,
		PriceRange:   cafe.PriceRange,
		Amenities:    amenityBadges(cafe),
		Status:       cafe.CurrentStatus,
	}
}

func amenityBadges(cafe entities.Cafe) []string {
	var badges []string
	if cafe.Wifi {
		badges = append(badges, "WiFi")
	}
	if cafe.Seating {
		badges = append(badges, "Seating")
	}
	if cafe.WorkFriendly {
		badges = append(badges, "Work Friendly")
	}
	if cafe.Bathrooms {
		badges = append(badges, "Bathrooms")
	}
	if cafe.PetFriendly {
		badges = append(badges, "Pet Friendly")
	}
	if cafe.WheelchairAccessible {
		badges = append(badges, "Wheelchair Accessible")
	}
	return badges
}

func buildPlaceholder(cafes []entities.Cafe) *Placeholder {
	placeholder := &Placeholder{}
	for _, cafe := range cafes {
		if len(placeholder.Names) < degradedPlaceholderLimit {
			placeholder.Names = append(placeholder.Names, cafe.Name)
		} else {
			placeholder.More++
		}
	}
	return placeholder
}

func computeBounds(markers []*Marker) *Bounds {
	if len(markers) == 0 {
		return nil
	}
	bounds := &Bounds{
		North: markers[0].Latitude,
		South: markers[0].Latitude,
		East:  markers[0].Longitude,
		West:  markers[0].Longitude,
	}
	for _, marker := range markers[1:] {
		if marker.Latitude > bounds.North {
			bounds.North = marker.Latitude
		}
		if marker.Latitude < bounds.South {
			bounds.South = marker.Latitude
		}
		if marker.Longitude > bounds.East {
			bounds.East = marker.Longitude
		}
		if marker.Longitude < bounds.West {
			bounds.West = marker.Longitude
		}
	}
	return bounds
}
