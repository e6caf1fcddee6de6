package http

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dukerupert/shopwrench"
)

// withTimeout creates a context with a timeout for handler operations.
func withTimeout(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), DefaultTimeout)
}

// parseUUID parses a UUID from a string, returning a domain error if invalid.
func parseUUID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.UUID{}, shopwrench.Invalid("Invalid ID format")
	}
	return id, nil
}

// requireParam extracts a required route parameter, returning error if empty.
func requireParam(c echo.Context, name string) (string, error) {
	value := c.Param(name)
	if value == "" {
		return "", shopwrench.Invalid("%s is required", name)
	}
	return value, nil
}

// requireUUIDParam extracts and parses a required UUID route parameter.
func requireUUIDParam(c echo.Context, name string) (uuid.UUID, error) {
	value, err := requireParam(c, name)
	if err != nil {
		return uuid.UUID{}, err
	}
	return parseUUID(value)
}

// requireActor extracts the authenticated actor from context.
func requireActor(c echo.Context) (shopwrench.Actor, error) {
	actor := shopwrench.ActorFromContext(c.Request().Context())
	if actor == nil {
		return shopwrench.Actor{}, shopwrench.Unauthorized("Authentication required")
	}
	return *actor, nil
}

// bind binds the request body to a struct and validates it.
func bind(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return shopwrench.Invalid("Invalid request body")
	}
	if err := c.Validate(v); err != nil {
		return err
	}
	return nil
}

// pagination extracts offset/limit query parameters with a default limit.
func pagination(c echo.Context, defaultLimit int) (offset, limit int) {
	limit = defaultLimit
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 {
		limit = v
	}
	if v, err := strconv.Atoi(c.QueryParam("offset")); err == nil && v > 0 {
		offset = v
	}
	return offset, limit
}

// log returns the request-scoped logger.
func (s *Server) log(c echo.Context) *slog.Logger {
	return s.getRequestLogger(c)
}

// Health handlers

func (s *Server) handleHealthCheck(c echo.Context) error {
	return RespondOK(c, map[string]string{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}

func (s *Server) handleLivenessCheck(c echo.Context) error {
	return RespondOK(c, map[string]string{"status": "alive"})
}

func (s *Server) handleReadinessCheck(c echo.Context) error {
	return RespondOK(c, map[string]string{"status": "ready"})
}
