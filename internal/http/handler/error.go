package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"legalpub/internal/http/middleware"
	"legalpub/internal/logger"
)

// errorPayload is the JSON body of every API and routing error.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusCodes maps the statuses the router produces on its own onto
// envelope codes. Anything else is reported as INTERNAL_ERROR.
var statusCodes = map[int]errorEnvelope{
	fiber.StatusBadRequest:         {"BAD_REQUEST", "bad request"},
	fiber.StatusNotFound:           {"NOT_FOUND", "resource not found"},
	fiber.StatusMethodNotAllowed:   {"METHOD_NOT_ALLOWED", "method not allowed"},
	fiber.StatusRequestTimeout:     {"TIMEOUT", "request timed out"},
	fiber.StatusServiceUnavailable: {"SERVICE_UNAVAILABLE", "service unavailable"},
}

func requestIDFromCtx(c *fiber.Ctx) string {
	s, _ := c.Locals(middleware.RequestIDLocalKey).(string)
	return s
}

// writeError writes the envelope. message must be safe to show; internal
// error text never goes here.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error:     errorEnvelope{Code: code, Message: message},
	})
}

// ErrorHandler is the app-wide Fiber error handler. Errors that are not
// *fiber.Error escaped a handler unexpectedly and are logged with the
// request id before a generic 500 is returned.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	if log == nil {
		log = logger.Nop()
	}
	log = log.With("component", "http")

	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if !errors.As(err, &fe) {
			log.Error("unhandled_error",
				"request_id", requestIDFromCtx(c),
				"method", c.Method(),
				"path", c.Path(),
				"error", err.Error(),
			)
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		if env, ok := statusCodes[fe.Code]; ok {
			return writeError(c, fe.Code, env.Code, env.Message)
		}
		return writeError(c, fe.Code, "INTERNAL_ERROR", "internal server error")
	}
}
