package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"contextly/internal/http/middleware"
	"contextly/internal/model"
	"contextly/internal/validation"
)

// ErrorResponse is the standardized error response body.
type ErrorResponse struct {
	RequestID string        `json:"request_id"`
	Error     ErrorEnvelope `json:"error"`
}

type ErrorEnvelope struct {
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

// writeError writes a standardized JSON error response.
// message must be safe to show to clients.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(ErrorResponse{
		RequestID: requestIDFromCtx(c),
		Error: ErrorEnvelope{
			Code:    code,
			Message: message,
		},
	})
}

// writeServiceError translates session and service errors into HTTP responses.
func writeServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, model.ErrSessionNotFound):
		return writeError(c, fiber.StatusNotFound, "SESSION_NOT_FOUND", "session not found")
	case errors.Is(err, model.ErrIndexOutOfRange):
		return writeError(c, fiber.StatusNotFound, "INDEX_OUT_OF_RANGE", "no question/answer pair at this index")
	case errors.Is(err, model.ErrNoDocuments):
		return writeError(c, fiber.StatusConflict, "NO_DOCUMENTS", "upload a document first")
	case errors.Is(err, model.ErrNothingSelected):
		return writeError(c, fiber.StatusConflict, "NOTHING_SELECTED", "select at least one question/answer pair")
	case errors.Is(err, model.ErrBlankQuestion):
		return writeError(c, fiber.StatusBadRequest, "INVALID_QUESTION", "question must not be blank")
	case errors.Is(err, validation.ErrInvalid):
		return writeError(c, fiber.StatusBadRequest, "INVALID_FILE", err.Error())
	case errors.Is(err, model.ErrNetwork):
		return writeError(c, fiber.StatusBadGateway, "BACKEND_UNAVAILABLE", "backend unavailable")
	case errors.Is(err, model.ErrRender):
		return writeError(c, fiber.StatusInternalServerError, "RENDER_FAILED", "could not render the export")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var e *fiber.Error
		if errors.As(err, &e) {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "upload too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
