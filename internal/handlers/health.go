package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/airopshq/airops/internal/models"
)

const healthPingTimeout = 2 * time.Second

// Health reports service status and whether the data source answers a ping
func (h *Handler) Health(c *fiber.Ctx) error {
	resp := models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   Version,
		Source:    "ok",
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), healthPingTimeout)
	defer cancel()

	if err := h.source.Ping(ctx); err != nil {
		h.logger.Warn("Data source ping failed", "error", err)
		resp.Status = "degraded"
		resp.Source = err.Error()
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}

	return c.JSON(resp)
}

// NotFound handles 404 errors
func (h *Handler) NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "NOT_FOUND",
			Message: "Route not found",
			Path:    c.Path(),
		},
	})
}
