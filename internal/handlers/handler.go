// Package handlers implements the HTTP endpoints of the analytics API.
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/airopshq/airops/internal/logging"
	"github.com/airopshq/airops/internal/models"
	"github.com/airopshq/airops/internal/services"
	"github.com/airopshq/airops/internal/storage"
)

// Version is reported by the health endpoint; overridden at build time
var Version = "1.0.0"

// Handler contains all HTTP handlers
type Handler struct {
	logger           *logging.Logger
	source           storage.Source
	analyticsService *services.AnalyticsService
	reviewService    *services.ReviewService
}

// New creates a new handler instance
func New(logger *logging.Logger, source storage.Source,
	analyticsService *services.AnalyticsService, reviewService *services.ReviewService,
) *Handler {
	return &Handler{
		logger:           logger,
		source:           source,
		analyticsService: analyticsService,
		reviewService:    reviewService,
	}
}

// serviceErrorStatus maps service error codes to HTTP status codes
func serviceErrorStatus(code string) int {
	switch code {
	case services.ErrCodeInvalidRequest, services.ErrCodeInvalidMethod:
		return fiber.StatusBadRequest
	case services.ErrCodeSourceUnavailable:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError renders service errors as JSON. Anything else goes to the
// central error handler.
func (h *Handler) writeError(c *fiber.Ctx, err error) error {
	var svcErr *services.ServiceError
	if !errors.As(err, &svcErr) {
		return err
	}

	return c.Status(serviceErrorStatus(svcErr.Code)).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    svcErr.Code,
			Message: svcErr.Message,
			Path:    c.Path(),
			Details: svcErr.Details,
		},
	})
}

// badRequest renders a 400 with the given code
func badRequest(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
			Path:    c.Path(),
		},
	})
}
