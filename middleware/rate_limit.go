package middleware

import (
	"github.com/fenilmodi00/legal-oracle-backend/shared"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// RateLimit rejects clients that exceed their per-IP request budget with 429
func RateLimit(limiter *shared.KeyedRateLimiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()
		if !limiter.Allow(ip) {
			logrus.WithFields(logrus.Fields{
				"component": "RateLimitMiddleware",
				"ip":        ip,
				"path":      c.Path(),
			}).Warn("Rate limit exceeded")
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error":   "Rate limit exceeded. Try again later.",
			})
		}
		return c.Next()
	}
}
