package middleware

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"quizhub/backend/utils"
)

// LoggingMiddleware tags each request with an id and logs it on the
// way out.
func LoggingMiddleware(logger *log.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := uuid.New().String()
		c.Locals("requestID", requestID)
		c.Set("X-Request-Id", requestID)

		err := c.Next()

		status := c.Response().StatusCode()
		reset := "\033[0m"
		logger.Printf("%s %s %s%s%s %s %s%d%s %v",
			requestID[:8],
			c.IP(),
			utils.MethodColor(c.Method()), c.Method(), reset,
			c.Path(),
			utils.StatusColor(status), status, reset,
			time.Since(start),
		)

		return err
	}
}
