package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/airopshq/airops/internal/config"
	"github.com/airopshq/airops/internal/logging"
	"github.com/airopshq/airops/internal/models"
)

// RateLimit limits requests per client within a sliding window. Clients are
// identified by API key when present, otherwise by IP.
func RateLimit(logger *logging.Logger, cfg config.RateLimitConfig) fiber.Handler {
	if !cfg.Enabled {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	return limiter.New(limiter.Config{
		Max:               cfg.Max,
		Expiration:        cfg.Window,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			if key := extractAPIKey(c); key != "" {
				return "key:" + key
			}
			return "ip:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			logger.Warn("Rate limit reached", "path", c.Path(), "ip", c.IP())
			return c.Status(fiber.StatusTooManyRequests).JSON(models.NewError("RATE_LIMITED", "Too many requests"))
		},
	})
}
