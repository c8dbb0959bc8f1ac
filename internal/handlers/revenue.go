package handlers

import (
	"bytes"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/airopshq/airops/internal/models"
	"github.com/airopshq/airops/internal/services"
)

// RevenueReport handles GET revenue report requests
// GET /v1/analytics/revenue?periods=&airline_id=&method=&periods_ahead=
func (h *Handler) RevenueReport(c *fiber.Ctx) error {
	var req services.RevenueReportRequest
	if err := c.QueryParser(&req); err != nil {
		return badRequest(c, services.ErrCodeInvalidRequest, "Invalid query parameters: "+err.Error())
	}

	return h.revenueReport(c, req)
}

// RevenueReportPost handles POST revenue report requests with a JSON body
// POST /v1/analytics/revenue
func (h *Handler) RevenueReportPost(c *fiber.Ctx) error {
	var req services.RevenueReportRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "INVALID_JSON", "Invalid JSON body: "+err.Error())
	}

	return h.revenueReport(c, req)
}

func (h *Handler) revenueReport(c *fiber.Ctx, req services.RevenueReportRequest) error {
	resp, err := h.analyticsService.RevenueReport(c.UserContext(), req)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(resp)
}

// ExportRevenueCSV streams the monthly series of a revenue report as CSV
// GET /v1/analytics/revenue/export.csv
func (h *Handler) ExportRevenueCSV(c *fiber.Ctx) error {
	var req services.RevenueReportRequest
	if err := c.QueryParser(&req); err != nil {
		return badRequest(c, services.ErrCodeInvalidRequest, "Invalid query parameters: "+err.Error())
	}

	resp, err := h.analyticsService.RevenueReport(c.UserContext(), req)
	if err != nil {
		return h.writeError(c, err)
	}

	var buf bytes.Buffer
	if err := services.WriteRevenueCSV(&buf, resp); err != nil {
		return err
	}

	filename := fmt.Sprintf("revenue_%s_%dm.csv", resp.Query.Until, resp.Query.Periods)
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(buf.Bytes())
}

// Methods lists the registered forecast methods
// GET /v1/analytics/methods
func (h *Handler) Methods(c *fiber.Ctx) error {
	return c.JSON(models.MethodsResponse{
		Methods: h.analyticsService.Methods(),
		Default: h.analyticsService.DefaultMethod(),
	})
}
