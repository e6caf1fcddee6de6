package http

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dukerupert/shopwrench"
)

func (s *Server) handleListUserPermissions(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	userID, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	// Users may inspect their own overrides; anything else needs manage
	if userID != actor.UserID {
		if err := s.authz.Check(ctx, actor, shopwrench.PermPermissionsManage); err != nil {
			return err
		}
	}

	overrides, err := s.permissionService.FindUserPermissions(ctx, userID)
	if err != nil {
		return err
	}

	return RespondOK(c, map[string]any{
		"userId":    userID,
		"overrides": overrides,
	})
}

// CreateUserPermissionRequest is the request payload for a permission override.
type CreateUserPermissionRequest struct {
	Permission string `json:"permission" validate:"required,max=100"`
	Effect     string `json:"effect" validate:"required,oneof=grant revoke"`
	ExpiresAt  string `json:"expiresAt" validate:"omitempty"`
}

func (s *Server) handleCreateUserPermission(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	if err := s.authz.Check(ctx, actor, shopwrench.PermPermissionsManage); err != nil {
		return err
	}

	userID, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req CreateUserPermissionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	permission, err := shopwrench.ParsePermission(req.Permission)
	if err != nil {
		return err
	}

	override := &shopwrench.UserPermission{
		UserID:     userID,
		Permission: permission,
		Effect:     shopwrench.OverrideEffect(req.Effect),
	}
	if req.ExpiresAt != "" {
		expiresAt, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			return shopwrench.Invalid("expiresAt must be RFC 3339")
		}
		override.ExpiresAt = &expiresAt
	}

	if err := s.permissionService.CreateUserPermission(ctx, override); err != nil {
		return err
	}

	// Cached permission sets for this user are now stale
	s.authz.Invalidate(userID)

	s.log(c).Info("permission override created",
		slog.String("user_id", userID.String()),
		slog.String("permission", permission.Name()),
		slog.String("effect", req.Effect),
	)

	return RespondCreated(c, override)
}

func (s *Server) handleDeleteUserPermission(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	if err := s.authz.Check(ctx, actor, shopwrench.PermPermissionsManage); err != nil {
		return err
	}

	userID, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	permissionID, err := requireUUIDParam(c, "permissionId")
	if err != nil {
		return err
	}

	if err := s.permissionService.DeleteUserPermission(ctx, permissionID); err != nil {
		return err
	}

	s.authz.Invalidate(userID)

	return RespondNoContent(c)
}

// handleClearPermissionCache flushes every cached permission set. Role
// permission mappings are edited out of band (migrations, other instances),
// so admins need a way to force re-resolution without waiting out the TTL.
func (s *Server) handleClearPermissionCache(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	if err := s.authz.Check(ctx, actor, shopwrench.PermPermissionsManage); err != nil {
		return err
	}

	cleared := s.authz.Items()
	s.authz.Clear()

	s.log(c).Info("permission cache cleared",
		slog.Int("entries", cleared),
		slog.String("user_id", actor.UserID.String()),
	)

	return RespondOK(c, map[string]any{"cleared": cleared})
}
