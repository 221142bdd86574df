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

	"myFoodFinder/app/echo-server/router"
	"myFoodFinder/business/recommendation"
	"myFoodFinder/internal/middleware"
	"myFoodFinder/internal/repository/places"
	"myFoodFinder/internal/rest"
	"myFoodFinder/pkg/config"
	"myFoodFinder/pkg/logger"
	"myFoodFinder/pkg/utils"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting myFoodFinder", "version", cfg.App.Version, "stats_backend", cfg.Stats.Backend)

	utils.SetJWTSecret(cfg.JWT.SecretKey)

	backend, err := openStatsBackend(context.Background(), cfg)
	if err != nil {
		logger.Fatal("Failed to open decision stats backend", "error", err)
	}
	defer backend.close()

	placesRepo := places.NewPlacesRepository(places.PlacesConfig{
		APIKey:    cfg.Places.APIKey,
		BaseURL:   cfg.Places.BaseURL,
		Timeout:   cfg.Places.Timeout,
		RateLimit: cfg.Places.RateLimit,
		Burst:     cfg.Places.Burst,

		FailureThreshold: cfg.Places.BreakerFailures,
		OpenTimeout:      cfg.Places.BreakerOpenTimeout,
	})

	var eligChecker recommendation.EligibilityChecker = recommendation.NoopEligibilityChecker{}
	if cfg.Recommendation.SkipClosed {
		eligChecker = recommendation.OperationalChecker{}
	}

	// Init service
	recoService := recommendation.NewRecommendationService(
		placesRepo,
		backend.stats,
		backend.events,
		eligChecker,
		recommendation.Config{
			RefreshDistanceMeters: cfg.Recommendation.RefreshDistanceMeters,
			SearchRadiusMeters:    cfg.Recommendation.SearchRadiusMeters,
			PlaceTypes:            cfg.Recommendation.PlaceTypes,
			Seed:                  cfg.Recommendation.Seed,
			SessionIdleTTL:        cfg.Recommendation.SessionIdleTTL,
			MaxSessions:           cfg.Recommendation.MaxSessions,
		},
	)

	pruneCtx, stopPrune := context.WithCancel(context.Background())
	defer stopPrune()
	go pruneSessions(pruneCtx, recoService, time.Minute)

	// Init handler
	recoHandler := rest.NewRecommendationHandler(recoService)
	adminHandler := rest.NewAdminHandler(recoService)
	healthHandler := rest.NewHealthHandler(cfg.App.Version, map[string]func() string{
		"places_breaker": placesRepo.State,
	})

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.TraceMiddleware())
	e.Use(middleware.MetricsMiddleware())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:  cfg.Server.AllowedOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, middleware.HeaderRequestID},
		ExposeHeaders: []string{middleware.HeaderRequestID},
	}))

	// Setup routes
	router.SetSystemRoutes(e, healthHandler)
	api := e.Group("/api/v1")
	router.SetRecommendationRoutes(api, recoHandler)
	router.SetAdminRoutes(api, adminHandler)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}

func pruneSessions(ctx context.Context, svc *recommendation.RecommendationService, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := svc.PruneIdle(now); n > 0 {
				logger.Info("Pruned idle sessions", "count", n, "remaining", svc.Sessions())
			}
		}
	}
}
