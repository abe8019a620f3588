package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cafefinder/gateway/internal/adapters/cache"
	"github.com/cafefinder/gateway/internal/adapters/events"
	"github.com/cafefinder/gateway/internal/adapters/providers/places"
	"github.com/cafefinder/gateway/internal/adapters/storage"
	"github.com/cafefinder/gateway/internal/api/handlers"
	"github.com/cafefinder/gateway/internal/api/middleware"
	"github.com/cafefinder/gateway/internal/api/routes"
	"github.com/cafefinder/gateway/internal/application/services"
	"github.com/cafefinder/gateway/internal/domain/providers"
	"github.com/cafefinder/gateway/internal/infrastructure/clients/cafeapi"
	"github.com/cafefinder/gateway/internal/infrastructure/clients/redis"
	"github.com/cafefinder/gateway/internal/infrastructure/observability"
	"github.com/cafefinder/gateway/pkg/config"
	"github.com/cafefinder/gateway/pkg/retry"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env in development; production injects environment directly
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err == nil {
			log.Println("Loaded environment from .env")
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize session store
	sessionStore, err := storage.NewSQLiteSessionStore(cfg.Session.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize session store: %v", err)
	}
	defer sessionStore.Close()
	log.Println("Session store initialized successfully")

	// Initialize Redis client
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
		// Continue without Redis - the gateway can work without caching
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Println("Redis client initialized successfully")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	// Toast notifications fan out over Redis when it is available
	notifier := events.NewToastNotifier(redisClient)

	// Initialize the upstream API client
	apiClient := cafeapi.NewClient(cfg.API.BaseURL)
	apiClient.SetMetrics(metrics)

	// Probe the upstream API before serving. Startup is the only place the
	// gateway retries anything other than the single 401 refresh.
	if err := retry.Do(ctx, retry.DefaultConfig(), func() error {
		probeCtx, probeCancel := context.WithTimeout(ctx, 5*time.Second)
		defer probeCancel()
		return apiClient.Health(probeCtx)
	}); err != nil {
		log.Printf("Warning: CafeFinder API not reachable at %s: %v", cfg.API.BaseURL, err)
	} else {
		log.Printf("CafeFinder API reachable at %s", cfg.API.BaseURL)
	}

	// Initialize places provider
	placesProvider := places.NewPlacesProvider(places.PlacesProviderConfig{
		Provider: cfg.Maps.Provider,
		APIKey:   cfg.Maps.APIKey,
		Cache:    cacheProvider,
	})
	if !placesProvider.Configured() {
		log.Println("Warning: MAPS_API_KEY is not set; map views will render the degraded placeholder")
	}

	// Initialize services
	sessionService := services.NewSessionService(apiClient, sessionStore, notifier)
	apiClient.SetSessionHook(sessionService)

	if err := sessionService.Restore(ctx); err != nil {
		log.Printf("Warning: Failed to restore sessions: %v", err)
	}

	busyService := services.NewBusyService(apiClient)
	cafeService := services.NewCafeService(apiClient, busyService)
	reviewService := services.NewReviewService(apiClient, notifier)
	claimService := services.NewClaimService(apiClient, notifier)
	adminService := services.NewAdminService(apiClient)
	mapService := services.NewMapService(placesProvider, metrics)
	mapService.StartSweeper(ctx)
	diagnosticsService := services.NewDiagnosticsService(apiClient)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(sessionService)
	cafeHandler := handlers.NewCafeHandler(cafeService)
	reviewHandler := handlers.NewReviewHandler(reviewService, sessionService)
	busyHandler := handlers.NewBusyHandler(busyService, sessionService)
	claimHandler := handlers.NewClaimHandler(claimService, sessionService)
	adminHandler := handlers.NewAdminHandler(adminService, sessionService)
	mapHandler := handlers.NewMapHandler(mapService, cafeService)
	statusHandler := handlers.NewStatusHandler(diagnosticsService, notifier)

	// Initialize cache middleware
	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider, metrics)
		log.Println("Cache middleware initialized successfully")
	}

	// Set up router
	router := routes.NewRouter(
		authHandler,
		cafeHandler,
		reviewHandler,
		busyHandler,
		claimHandler,
		adminHandler,
		mapHandler,
		statusHandler,
		cacheMiddleware,
		metrics,
	)
	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Gateway starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Gateway shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	log.Println("Gateway stopped")
}
