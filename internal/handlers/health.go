package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthCheck reports service liveness.
func HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "earnedpay",
		"time":    time.Now().UTC(),
	})
}
