package handler

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/gofiber/fiber/v2"

	"propcatalog/internal/http/middleware"
	"propcatalog/internal/query"
	"propcatalog/internal/service"
)

// StatusClientClosedRequest is returned when the caller went away before
// the query finished.
const StatusClientClosedRequest = 499

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response. message must be
// safe to show to clients.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// writeServiceError maps a service or query error to a response. Store
// failures never expose their cause.
func writeServiceError(c *fiber.Ctx, err error) error {
	var verr *query.ValidationError
	switch {
	case errors.As(err, &verr):
		return writeError(c, fiber.StatusBadRequest, invalidCode(verr.Field), verr.Error())
	case errors.Is(err, query.ErrValidation):
		return writeError(c, fiber.StatusBadRequest, "INVALID_QUERY", "invalid query")
	case errors.Is(err, query.ErrPattern):
		return writeError(c, fiber.StatusBadRequest, "INVALID_PATTERN", "invalid search pattern")
	case errors.Is(err, service.ErrInvalidOwner):
		return writeError(c, fiber.StatusBadRequest, "INVALID_OWNER", err.Error())
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "property not found")
	case errors.Is(err, service.ErrOwnerConflict):
		return writeError(c, fiber.StatusConflict, "CONFLICT", "owner already exists")
	case errors.Is(err, context.DeadlineExceeded):
		return writeError(c, fiber.StatusGatewayTimeout, "TIMEOUT", "request timed out")
	case errors.Is(err, query.ErrCancelled), errors.Is(err, context.Canceled):
		return writeError(c, StatusClientClosedRequest, "CANCELLED", "request cancelled")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// invalidCode turns a parameter name into an error code:
// "pageSize" becomes "INVALID_PAGE_SIZE".
func invalidCode(field string) string {
	if field == "" {
		return "INVALID_QUERY"
	}
	var b strings.Builder
	b.WriteString("INVALID_")
	for i, r := range field {
		if unicode.IsUpper(r) && i > 0 {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if !errors.As(err, &fe) {
			return writeServiceError(c, err)
		}

		switch fe.Code {
		case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
			return writeError(c, fe.Code, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, fe.Code, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, fe.Code, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, fe.Code, "PAYLOAD_TOO_LARGE", "payload too large")
		default:
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
	}
}
