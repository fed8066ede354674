package handlers

import (
	"strconv"

	"github.com/fenilmodi00/legal-oracle-backend/middleware"
	"github.com/fenilmodi00/legal-oracle-backend/models"
	"github.com/fenilmodi00/legal-oracle-backend/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

type CaselawHandler struct {
	Service *services.CaselawService
}

func NewCaselawHandler(service *services.CaselawService) *CaselawHandler {
	return &CaselawHandler{Service: service}
}

// queryLimit parses the limit query parameter; absent means fallback
func queryLimit(c *fiber.Ctx, fallback int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return fallback, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return limit, true
}

func (h *CaselawHandler) Search(c *fiber.Ctx) error {
	limit, ok := queryLimit(c, 10)
	if !ok {
		return badRequest(c, "limit must be an integer")
	}

	query := utils.CopyString(c.Query("query"))
	results, err := h.Service.Search(c.Context(), middleware.ClaimsFrom(c).UserID, query, limit)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    results,
		"count":   len(results),
	})
}

func (h *CaselawHandler) Similar(c *fiber.Ctx) error {
	var req models.SimilarCasesRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	limit := 5
	if req.Limit != nil {
		limit = *req.Limit
	}

	results, err := h.Service.Similar(c.Context(), middleware.ClaimsFrom(c).UserID, req.Text, limit)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    results,
		"count":   len(results),
	})
}

func (h *CaselawHandler) Autocomplete(c *fiber.Ctx) error {
	limit, ok := queryLimit(c, 5)
	if !ok {
		return badRequest(c, "limit must be an integer")
	}

	suggestions := h.Service.Autocomplete(c.Query("query"), limit)
	return c.JSON(fiber.Map{
		"success": true,
		"data":    suggestions,
	})
}
