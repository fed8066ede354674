package middleware

import (
	"strings"

	"github.com/fenilmodi00/legal-oracle-backend/models"
	"github.com/fenilmodi00/legal-oracle-backend/services"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	claimsLocalKey = "claims"
	// AnonymousUserID identifies callers without a token when verification is skipped
	AnonymousUserID = "anon"
)

// TokenValidator turns a bearer token into claims
type TokenValidator interface {
	ValidateToken(token string) (*services.Claims, error)
}

// AnonymousClaims is the identity given to unauthenticated callers when verification is skipped
func AnonymousClaims() *services.Claims {
	return &services.Claims{
		UserID:  AnonymousUserID,
		Email:   models.GuestEmail,
		Role:    models.RoleIndividual,
		IsGuest: true,
	}
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// RequireAuth stores the caller's claims in the request locals.
// A valid bearer token always wins. Without one, skipVerify admits the caller as the anonymous guest
// and otherwise the request is rejected with 401.
func RequireAuth(validator TokenValidator, skipVerify bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token != "" {
			claims, err := validator.ValidateToken(token)
			if err == nil {
				c.Locals(claimsLocalKey, claims)
				return c.Next()
			}
			if !skipVerify {
				logrus.WithFields(logrus.Fields{
					"component": "AuthMiddleware",
					"path":      c.Path(),
					"ip":        c.IP(),
				}).Debug("Rejected invalid token")
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"success": false,
					"error":   "Invalid or expired token",
				})
			}
		}

		if !skipVerify {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Missing or invalid Authorization header",
			})
		}

		c.Locals(claimsLocalKey, AnonymousClaims())
		return c.Next()
	}
}

// ClaimsFrom returns the claims stored by RequireAuth, or the anonymous identity when none were stored
func ClaimsFrom(c *fiber.Ctx) *services.Claims {
	if claims, ok := c.Locals(claimsLocalKey).(*services.Claims); ok && claims != nil {
		return claims
	}
	return AnonymousClaims()
}
