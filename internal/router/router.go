package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/airopshq/airops/internal/config"
	"github.com/airopshq/airops/internal/handlers"
	"github.com/airopshq/airops/internal/logging"
	"github.com/airopshq/airops/internal/middleware"
	"github.com/airopshq/airops/internal/services"
	"github.com/airopshq/airops/internal/storage"
)

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, source storage.Source,
	analyticsService *services.AnalyticsService, reviewService *services.ReviewService,
	cfg config.Config,
) *handlers.Handler {
	h := handlers.New(logger, source, analyticsService, reviewService)

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-API-Key,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger))

	// Health check (no auth required)
	app.Get("/health", h.Health)

	// API v1 routes (API key, then per-client rate limit)
	v1 := app.Group("/v1",
		middleware.APIKeyAuth(logger, cfg.Auth),
		middleware.RateLimit(logger, cfg.RateLimit),
	)

	// Revenue analytics
	v1.Get("/analytics/revenue", h.RevenueReport)
	v1.Post("/analytics/revenue", h.RevenueReportPost)
	v1.Get("/analytics/revenue/export.csv", h.ExportRevenueCSV)
	v1.Get("/analytics/methods", h.Methods)

	// Passenger feedback
	v1.Get("/reviews", h.SearchReviews)

	// 404 handler
	app.Use(h.NotFound)

	return h
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, source storage.Source,
	analyticsService *services.AnalyticsService, reviewService *services.ReviewService,
	cfg config.Config,
) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "airops",
		DisableStartupMessage: true,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	Setup(app, logger, source, analyticsService, reviewService, cfg)

	return app
}
