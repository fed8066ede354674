package handlers

import (
	"github.com/fenilmodi00/legal-oracle-backend/models"
	"github.com/fenilmodi00/legal-oracle-backend/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

type DatasetHandler struct {
	Service *services.DatasetService
}

func NewDatasetHandler(service *services.DatasetService) *DatasetHandler {
	return &DatasetHandler{Service: service}
}

func (h *DatasetHandler) ListDatasets(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.Service.ListDatasets(),
	})
}

func (h *DatasetHandler) GetSubsets(c *fiber.Ctx) error {
	subsets, err := h.Service.Subsets(c.Context(), utils.CopyString(c.Params("name")))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    subsets,
	})
}

func (h *DatasetHandler) Search(c *fiber.Ctx) error {
	var params models.DatasetSearchParams
	if err := c.QueryParser(&params); err != nil {
		return badRequest(c, "Invalid query parameters")
	}
	params.Keyword = utils.CopyString(params.Keyword)
	params.Subset = utils.CopyString(params.Subset)
	params.Field = utils.CopyString(params.Field)

	response, err := h.Service.Search(c.Context(), utils.CopyString(c.Params("name")), params)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    response,
	})
}
