package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/airopshq/airops/internal/services"
)

// SearchReviews handles passenger feedback search
// GET /v1/reviews?search=&min_rating=&airline_id=&limit=&offset=
func (h *Handler) SearchReviews(c *fiber.Ctx) error {
	var req services.ReviewSearchRequest
	if err := c.QueryParser(&req); err != nil {
		return badRequest(c, services.ErrCodeInvalidRequest, "Invalid query parameters: "+err.Error())
	}

	resp, err := h.reviewService.Search(c.UserContext(), req)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(resp)
}
