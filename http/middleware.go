package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dukerupert/shopwrench"
	appmiddleware "github.com/dukerupert/shopwrench/internal/middleware"
)

const (
	// SessionCookieName is the name of the session cookie.
	SessionCookieName = "session"

	// Default timeout for database operations.
	DefaultTimeout = 5 * time.Second
)

// registerMiddleware sets up all middleware for the server.
func (s *Server) registerMiddleware() {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Request ID middleware (sets request-scoped logger)
	s.echo.Use(appmiddleware.RequestID(s.logger))

	// Prometheus request metrics
	s.echo.Use(appmiddleware.Metrics())

	// Logger middleware with request ID
	s.echo.Use(s.requestLoggerMiddleware())

	// CORS middleware (configure as needed)
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderXRequestID},
	}))

	// Custom error handler
	s.echo.HTTPErrorHandler = s.httpErrorHandler
}

// requestLoggerMiddleware creates a middleware that logs requests with context.
func (s *Server) requestLoggerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			logger := appmiddleware.GetRequestLogger(c).With(
				slog.String("method", c.Request().Method),
				slog.String("path", c.Path()),
			)
			c.Set("logger", logger)

			err := next(c)

			// Log request completion
			duration := time.Since(start)
			status := c.Response().Status

			logAttrs := []any{
				slog.Int("status", status),
				slog.Duration("duration", duration),
			}

			if err != nil {
				logAttrs = append(logAttrs, slog.String("error", err.Error()))
				logger.Error("request failed", logAttrs...)
			} else if status >= 500 {
				logger.Error("request completed with server error", logAttrs...)
			} else if status >= 400 {
				logger.Warn("request completed with client error", logAttrs...)
			} else {
				logger.Info("request completed", logAttrs...)
			}

			return err
		}
	}
}

// httpErrorHandler handles errors and returns appropriate responses.
func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	// Check if it's an Echo HTTP error
	if he, ok := err.(*echo.HTTPError); ok {
		_ = c.JSON(he.Code, map[string]any{"error": he.Message})
		return
	}

	if isDomainError(err) {
		_ = HandleError(c, s.logger, err)
		return
	}

	// Wrap unexpected errors as internal errors
	_ = HandleError(c, s.logger, shopwrench.Internal("An unexpected error occurred", err))
}

// sessionToken extracts the session token from the Authorization header or
// the session cookie, header first.
func sessionToken(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return token
		}
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// RequireAuth validates the session token and attaches the acting user to
// the request context. Requests without a valid session get 401.
func (s *Server) RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			logger := s.getRequestLogger(c)

			token := sessionToken(c)
			if token == "" {
				logger.Debug("auth required but no session token found")
				return shopwrench.Unauthorized("Authentication required")
			}

			session, err := s.sessionService.FindSessionByToken(c.Request().Context(), token)
			if err != nil {
				if shopwrench.IsErrorCode(err, shopwrench.EUNAUTHORIZED) {
					logger.Debug("session expired or invalid")
					return err
				}
				logger.Error("session validation failed", slog.String("error", err.Error()))
				return shopwrench.Internal("Failed to validate session", err)
			}

			actor := session.Actor()
			ctx := shopwrench.NewContextWithActor(c.Request().Context(), &actor)
			c.SetRequest(c.Request().WithContext(ctx))

			c.Set("actor", &actor)
			c.Set("session", session)

			return next(c)
		}
	}
}

// getRequestLogger retrieves the request-scoped logger from context.
func (s *Server) getRequestLogger(c echo.Context) *slog.Logger {
	if logger, ok := c.Get("logger").(*slog.Logger); ok {
		return logger
	}
	return s.logger
}
