package handlers

import (
	"github.com/fenilmodi00/legal-oracle-backend/middleware"
	"github.com/fenilmodi00/legal-oracle-backend/models"
	"github.com/fenilmodi00/legal-oracle-backend/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Service *services.AuthService
}

func NewAuthHandler(service *services.AuthService) *AuthHandler {
	return &AuthHandler{Service: service}
}

func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req models.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if missing := missingFields(map[string]string{"email": req.Email, "password": req.Password}); len(missing) > 0 {
		return missingFieldsResponse(c, missing)
	}

	response, err := h.Service.SignUp(c.Context(), req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    response,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if missing := missingFields(map[string]string{"email": req.Email, "password": req.Password}); len(missing) > 0 {
		return missingFieldsResponse(c, missing)
	}

	response, err := h.Service.SignIn(c.Context(), req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    response,
	})
}

// GuestLogin starts a session that lives only in the session store
func (h *AuthHandler) GuestLogin(c *fiber.Ctx) error {
	var req models.GuestLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if missing := missingFields(map[string]string{"role": req.Role}); len(missing) > 0 {
		return missingFieldsResponse(c, missing)
	}

	response, err := h.Service.GuestLogin(c.Context(), req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    response,
	})
}

func (h *AuthHandler) Session(c *fiber.Ctx) error {
	user, profile, err := h.Service.Session(c.Context(), middleware.ClaimsFrom(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"user":    user,
			"profile": profile,
		},
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.Service.Logout(c.Context(), middleware.ClaimsFrom(c).UserID); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged out",
	})
}
