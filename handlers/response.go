package handlers

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/fenilmodi00/legal-oracle-backend/models"
	"github.com/fenilmodi00/legal-oracle-backend/shared"
	"github.com/gofiber/fiber/v2"
)

// HeaderLLMFallback tells clients whether an oracle payload came from fallback data
const HeaderLLMFallback = "X-LLM-Fallback"

func errorResponse(c *fiber.Ctx, err error) error {
	message := err.Error()
	var serviceErr *shared.ServiceError
	if errors.As(err, &serviceErr) {
		message = serviceErr.Message
		if serviceErr.HTTPStatus() >= fiber.StatusInternalServerError {
			serviceErr.LogError()
		}
	}
	return c.Status(shared.StatusForError(err)).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func oracleResponse(c *fiber.Ctx, data interface{}, meta models.OracleMeta, persisted bool) error {
	c.Set(HeaderLLMFallback, strconv.FormatBool(meta.IsLLMFallback))
	return c.JSON(fiber.Map{
		"success":   true,
		"data":      data,
		"persisted": persisted,
	})
}

// missingFields returns the sorted names whose values are blank
func missingFields(fields map[string]string) []string {
	var missing []string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

func missingFieldsResponse(c *fiber.Ctx, missing []string) error {
	return badRequest(c, "Missing required fields: "+strings.Join(missing, ", "))
}
