package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/airopshq/airops/internal/cache"
	"github.com/airopshq/airops/internal/config"
	"github.com/airopshq/airops/internal/events"
	"github.com/airopshq/airops/internal/handlers"
	"github.com/airopshq/airops/internal/logging"
	"github.com/airopshq/airops/internal/router"
	"github.com/airopshq/airops/internal/services"
	"github.com/airopshq/airops/internal/storage/driver"
)

// connectTimeout bounds the initial data source connection
const connectTimeout = 30 * time.Second

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)
	logger.Info("Analytics service starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)
	handlers.Version = Version

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	// Data source
	logger.Info("Opening data source", "driver", cfg.Database.Driver)
	source, err := driver.Open(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to open data source", "error", err, "driver", cfg.Database.Driver)
	}
	defer func() { _ = source.Close() }()

	// Report cache
	reportCache, err := cache.New(cfg.Cache)
	if err != nil {
		logger.Fatal("Failed to initialize cache", "error", err, "type", cfg.Cache.Type)
	}
	defer func() { _ = reportCache.Close() }()
	logger.Info("Report cache initialized", "type", cfg.Cache.Type, "ttl", cfg.Cache.TTL)

	// Event publisher
	publisher, err := events.NewPublisher(cfg.Events)
	if err != nil {
		logger.Fatal("Failed to initialize event publisher", "error", err, "type", cfg.Events.Type)
	}
	defer func() { _ = publisher.Close() }()
	logger.Info("Event publisher initialized", "type", cfg.Events.Type, "prefix", cfg.Events.SubjectPrefix)

	// Log authentication status
	if cfg.Auth.Enabled {
		logger.Info("API key authentication enabled", "num_keys", len(cfg.Auth.APIKeys))
	} else {
		logger.Warn("API key authentication DISABLED - all requests will be allowed")
	}

	analyticsService := services.NewAnalyticsService(logger, source, reportCache, publisher, services.AnalyticsServiceConfig{
		Analytics:     cfg.Analytics,
		CacheTTL:      cfg.Cache.TTL,
		SubjectPrefix: cfg.Events.SubjectPrefix,
		QueryTimeout:  cfg.Database.QueryTimeout,
	})
	reviewService := services.NewReviewService(logger, source, cfg.Analytics.MaxReviewLimit)

	app := router.New(logger, source, analyticsService, reviewService, *cfg)

	// Start server in goroutine
	go func() {
		addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.HTTPPort))
		logger.Info("Server listening", "address", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
