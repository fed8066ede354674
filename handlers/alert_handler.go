package handlers

import (
	"github.com/fenilmodi00/legal-oracle-backend/middleware"
	"github.com/fenilmodi00/legal-oracle-backend/models"
	"github.com/fenilmodi00/legal-oracle-backend/services"
	"github.com/gofiber/fiber/v2"
)

type AlertHandler struct {
	Service *services.AlertService
}

func NewAlertHandler(service *services.AlertService) *AlertHandler {
	return &AlertHandler{Service: service}
}

// GenerateAlerts saves the posted settings and generates alerts when they allow it
func (h *AlertHandler) GenerateAlerts(c *fiber.Ctx) error {
	var settings models.AlertSettings
	if err := c.BodyParser(&settings); err != nil {
		return badRequest(c, "Invalid request body")
	}

	result, persisted, err := h.Service.GenerateAlerts(c.Context(), middleware.ClaimsFrom(c), settings)
	if err != nil {
		return errorResponse(c, err)
	}
	return oracleResponse(c, result, result.OracleMeta, persisted)
}

// ListAlerts only reads the session cache
func (h *AlertHandler) ListAlerts(c *fiber.Ctx) error {
	alerts := h.Service.ListAlerts(c.Context(), middleware.ClaimsFrom(c))
	return c.JSON(fiber.Map{
		"success": true,
		"data":    alerts,
		"count":   len(alerts),
	})
}

func (h *AlertHandler) DismissAlert(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Alert id is required")
	}

	remaining, err := h.Service.DismissAlert(c.Context(), middleware.ClaimsFrom(c), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    remaining,
		"count":   len(remaining),
	})
}

func (h *AlertHandler) GetSettings(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.Service.GetSettings(c.Context(), middleware.ClaimsFrom(c)),
	})
}

func (h *AlertHandler) UpdateSettings(c *fiber.Ctx) error {
	var settings models.AlertSettings
	if err := c.BodyParser(&settings); err != nil {
		return badRequest(c, "Invalid request body")
	}

	claims := middleware.ClaimsFrom(c)
	if err := h.Service.SaveSettings(c.Context(), claims, settings); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.Service.GetSettings(c.Context(), claims),
	})
}
