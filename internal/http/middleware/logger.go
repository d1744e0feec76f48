package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"legalpub/internal/logger"
)

// Logger logs one structured entry per request with the fields
// request_id, method, path, status and latency (milliseconds). Server
// errors log at error level, client errors at warn.
func Logger(log *logger.Logger) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	log = log.With("component", "http")

	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		rid, _ := c.Locals(RequestIDLocalKey).(string)
		fields := []any{
			"request_id", rid,
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", float64(time.Since(start).Microseconds()) / 1000,
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			log.Error("http_request", fields...)
		case status >= fiber.StatusBadRequest:
			log.Warn("http_request", fields...)
		default:
			log.Info("http_request", fields...)
		}
		return err
	}
}
