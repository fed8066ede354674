package handlers

import (
	"github.com/fenilmodi00/legal-oracle-backend/models"
	"github.com/fenilmodi00/legal-oracle-backend/services"
	"github.com/gofiber/fiber/v2"
)

type CourtListenerHandler struct {
	Service *services.CourtListenerService
}

func NewCourtListenerHandler(service *services.CourtListenerService) *CourtListenerHandler {
	return &CourtListenerHandler{Service: service}
}

// SearchOpinions proxies the opinion search; upstream statuses are passed through
func (h *CourtListenerHandler) SearchOpinions(c *fiber.Ctx) error {
	var params models.OpinionSearchParams
	if err := c.QueryParser(&params); err != nil {
		return badRequest(c, "Invalid query parameters")
	}

	result, err := h.Service.SearchOpinions(c.Context(), params)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}
