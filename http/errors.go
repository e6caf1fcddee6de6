package http

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dukerupert/shopwrench"
)

// errorStatusCode maps domain error codes to HTTP status codes.
func errorStatusCode(code string) int {
	switch code {
	case shopwrench.ENOTFOUND:
		return http.StatusNotFound
	case shopwrench.EINVALID:
		return http.StatusBadRequest
	case shopwrench.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case shopwrench.EFORBIDDEN:
		return http.StatusForbidden
	case shopwrench.ECONFLICT:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse represents the JSON error response format.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HandleError converts domain errors to appropriate HTTP responses.
// It logs internal errors and returns user-safe messages.
func HandleError(c echo.Context, logger *slog.Logger, err error) error {
	code := shopwrench.ErrorCode(err)
	message := shopwrench.ErrorMessage(err)
	status := errorStatusCode(code)

	// Log internal errors with full details
	if code == shopwrench.EINTERNAL {
		logger.Error("internal error",
			slog.String("error", err.Error()),
			slog.String("path", c.Path()),
			slog.String("method", c.Request().Method),
		)
		// Don't expose internal error details to clients
		message = "An internal error occurred."
	}

	return c.JSON(status, ErrorResponse{
		Error:   code,
		Message: message,
	})
}

// isDomainError checks if the error is a shopwrench.Error type.
func isDomainError(err error) bool {
	_, ok := err.(*shopwrench.Error)
	return ok
}
