package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"propcatalog/internal/logger"
)

// Logger writes one structured entry per HTTP request with request_id,
// method, path, status and latency in milliseconds. Register it after
// RequestID so the ID is available.
func Logger(log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		rid, _ := c.Locals(RequestIDLocalKey).(string)

		log.Info("http request",
			"request_id", rid,
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", float64(time.Since(start).Microseconds())/1000,
		)
		return err
	}
}
