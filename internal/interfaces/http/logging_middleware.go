package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jcastellr/bodega-api/pkg/logger"
)

// LoggingMiddleware registra cada petición con método, ruta, estado y latencia.
func LoggingMiddleware(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		started := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		event := log.Info()
		if status >= 500 {
			event = log.Error()
		} else if status >= 400 {
			event = log.Warn()
		}
		event.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(started)).
			Str("user_id", GetUserID(c)).
			Msg("request")
		return err
	}
}
