// Package middleware provides the fiber middlewares of the HTTP API.
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/airopshq/airops/internal/config"
	"github.com/airopshq/airops/internal/logging"
	"github.com/airopshq/airops/internal/models"
)

// MinAPIKeyLength is the minimum required length for API keys
const MinAPIKeyLength = 32

// APIKeyHeader is the preferred header carrying the key
const APIKeyHeader = "X-API-Key"

// ValidateAPIKey reports whether a configured key is long enough to be accepted
func ValidateAPIKey(key string) bool {
	return len(key) >= MinAPIKeyLength && strings.TrimSpace(key) != ""
}

// APIKeyAuth rejects requests without a configured API key. Keys are read from
// X-API-Key, "Authorization: Bearer <key>" or a bare Authorization header.
func APIKeyAuth(logger *logging.Logger, cfg config.AuthConfig) fiber.Handler {
	if !cfg.Enabled {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	keys := make(map[string]struct{}, len(cfg.APIKeys))
	for _, key := range cfg.APIKeys {
		if key == "" {
			continue
		}
		if !ValidateAPIKey(key) {
			logger.Warn("Ignoring API key shorter than the minimum length",
				"key_prefix", maskAPIKey(key),
				"min_required", MinAPIKeyLength,
			)
			continue
		}
		keys[key] = struct{}{}
	}

	if len(keys) == 0 {
		logger.Error("Authentication enabled but no valid API keys configured",
			"configured", len(cfg.APIKeys),
		)
	}

	return func(c *fiber.Ctx) error {
		apiKey := extractAPIKey(c)
		if apiKey == "" {
			logger.Warn("API key missing", "path", c.Path(), "ip", c.IP())
			return unauthorized(c, "API key is required. Provide it via X-API-Key or Authorization header.")
		}

		if _, ok := keys[apiKey]; !ok {
			logger.Warn("Invalid API key",
				"path", c.Path(),
				"ip", c.IP(),
				"key_prefix", maskAPIKey(apiKey),
			)
			return unauthorized(c, "Invalid API key.")
		}

		return c.Next()
	}
}

func extractAPIKey(c *fiber.Ctx) string {
	if key := c.Get(APIKeyHeader); key != "" {
		return key
	}
	auth := c.Get(fiber.HeaderAuthorization)
	if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return auth
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(models.NewError("UNAUTHORIZED", message))
}

// maskAPIKey keeps the first four characters for logging
func maskAPIKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return key[:4] + "****"
}
