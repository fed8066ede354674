package handlers

import (
	"github.com/fenilmodi00/legal-oracle-backend/middleware"
	"github.com/fenilmodi00/legal-oracle-backend/models"
	"github.com/fenilmodi00/legal-oracle-backend/services"
	"github.com/gofiber/fiber/v2"
)

type FeedbackHandler struct {
	Service *services.FeedbackService
}

func NewFeedbackHandler(service *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{Service: service}
}

func (h *FeedbackHandler) Submit(c *fiber.Ctx) error {
	var req models.FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	feedback, err := h.Service.Submit(c.Context(), middleware.ClaimsFrom(c).UserID, req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    feedback,
	})
}

func (h *FeedbackHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.Service.Stats(c.Context(), c.Query("dataset"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    stats,
	})
}

func (h *FeedbackHandler) MyFeedback(c *fiber.Ctx) error {
	items, err := h.Service.MyFeedback(c.Context(), middleware.ClaimsFrom(c).UserID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"feedback": items,
			"total":    len(items),
		},
	})
}
