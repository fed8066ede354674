package handlers

import (
	"github.com/fenilmodi00/legal-oracle-backend/middleware"
	"github.com/fenilmodi00/legal-oracle-backend/services"
	"github.com/gofiber/fiber/v2"
)

type CaseHandler struct {
	Service *services.CaseService
}

func NewCaseHandler(service *services.CaseService) *CaseHandler {
	return &CaseHandler{Service: service}
}

// GetCases returns the recent cases and whether they came from the database or the session cache
func (h *CaseHandler) GetCases(c *fiber.Ctx) error {
	cases, source := h.Service.GetCases(c.Context(), middleware.ClaimsFrom(c))
	return c.JSON(fiber.Map{
		"success": true,
		"data":    cases,
		"count":   len(cases),
		"source":  source,
	})
}

func (h *CaseHandler) GetDashboard(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.Service.Dashboard(c.Context(), middleware.ClaimsFrom(c)),
	})
}
