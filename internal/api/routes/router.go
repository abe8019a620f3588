package routes

import (
	"net/http"

	"github.com/cafefinder/gateway/internal/api/handlers"
	"github.com/cafefinder/gateway/internal/api/middleware"
	"github.com/cafefinder/gateway/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	authHandler   *handlers.AuthHandler
	cafeHandler   *handlers.CafeHandler
	reviewHandler *handlers.ReviewHandler
	busyHandler   *handlers.BusyHandler
	claimHandler  *handlers.ClaimHandler
	adminHandler  *handlers.AdminHandler
	mapHandler    *handlers.MapHandler
	statusHandler *handlers.StatusHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	authHandler *handlers.AuthHandler,
	cafeHandler *handlers.CafeHandler,
	reviewHandler *handlers.ReviewHandler,
	busyHandler *handlers.BusyHandler,
	claimHandler *handlers.ClaimHandler,
	adminHandler *handlers.AdminHandler,
	mapHandler *handlers.MapHandler,
	statusHandler *handlers.StatusHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		authHandler:     authHandler,
		cafeHandler:     cafeHandler,
		reviewHandler:   reviewHandler,
		busyHandler:     busyHandler,
		claimHandler:    claimHandler,
		adminHandler:    adminHandler,
		mapHandler:      mapHandler,
		statusHandler:   statusHandler,
		cacheMiddleware: cacheMiddleware,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Auth endpoints
	r.mux.HandleFunc("POST /api/auth/login", r.authHandler.Login)
	r.mux.HandleFunc("POST /api/auth/register", r.authHandler.Register)
	r.mux.HandleFunc("POST /api/auth/logout", r.authHandler.Logout)
	r.mux.HandleFunc("GET /api/auth/session", r.authHandler.CurrentSession)

	// Cafe endpoints
	r.mux.HandleFunc("GET /api/cafes/search", r.cafeHandler.SearchCafes)
	r.mux.HandleFunc("GET /api/cafes/popular", r.cafeHandler.PopularCafes)
	r.mux.HandleFunc("GET /api/cafes/{id}", r.cafeHandler.GetCafeDetails)

	// Review endpoints
	r.mux.HandleFunc("GET /api/reviews/recent", r.reviewHandler.RecentReviews)
	r.mux.HandleFunc("GET /api/reviews/cafe/{id}", r.reviewHandler.CafeReviews)
	r.mux.HandleFunc("POST /api/reviews", r.reviewHandler.SubmitReview)

	// Busy report endpoints
	r.mux.HandleFunc("GET /api/busy/cafe/{id}", r.busyHandler.GetBusySummary)
	r.mux.HandleFunc("POST /api/busy/cafe/{id}/report", r.busyHandler.SubmitReport)

	// Claim endpoints
	r.mux.HandleFunc("GET /api/claims/can-claim/{id}", r.claimHandler.CanClaim)
	r.mux.HandleFunc("POST /api/claims", r.claimHandler.SubmitClaim)

	// Moderation endpoints
	r.mux.HandleFunc("GET /api/admin/stats", r.adminHandler.Stats)
	r.mux.HandleFunc("GET /api/admin/reviews", r.adminHandler.Reviews)
	r.mux.HandleFunc("POST /api/admin/reviews/{id}/decision", r.adminHandler.Moderate)

	// Map view endpoints
	r.mux.HandleFunc("POST /api/maps/views", r.mapHandler.CreateView)
	r.mux.HandleFunc("GET /api/maps/views/{id}", r.mapHandler.GetView)
	r.mux.HandleFunc("POST /api/maps/views/{id}/select/{cafeId}", r.mapHandler.SelectMarker)
	r.mux.HandleFunc("POST /api/maps/views/{id}/hover/{cafeId}", r.mapHandler.HoverMarker)
	r.mux.HandleFunc("DELETE /api/maps/views/{id}", r.mapHandler.CloseView)
	r.mux.HandleFunc("GET /api/maps/glyph", r.mapHandler.GetGlyph)

	// Status page and notification feed
	r.mux.HandleFunc("GET /api/status", r.statusHandler.Status)
	r.mux.HandleFunc("GET /api/notifications", r.statusHandler.Notifications)

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so cached responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	// Apply cache middleware if available
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// Apply HTTP performance optimizations (compression, ETag, cache headers)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(handler)

	return handler
}
