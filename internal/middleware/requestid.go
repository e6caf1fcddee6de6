package middleware

import (
	"log/slog"

	"github.com/dukerupert/shopwrench"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestID assigns each request a UUID, echoes it in the X-Request-ID
// response header, and threads it through both the Echo context and the
// request's context.Context so log lines and denial entries can be
// correlated.
func RequestID(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			c.Response().Header().Set(echo.HeaderXRequestID, requestID)
			c.Set("request_id", requestID)
			c.Set("logger", logger.With(slog.String("request_id", requestID)))

			ctx := shopwrench.NewContextWithRequestID(c.Request().Context(), requestID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// GetRequestID retrieves the request ID from the Echo context.
func GetRequestID(c echo.Context) string {
	requestID, ok := c.Get("request_id").(string)
	if !ok {
		return ""
	}
	return requestID
}

// GetRequestLogger retrieves the request-scoped logger from the Echo
// context, falling back to the default logger.
func GetRequestLogger(c echo.Context) *slog.Logger {
	logger, ok := c.Get("logger").(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return logger
}
