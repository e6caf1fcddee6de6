package http

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/dukerupert/shopwrench"
)

// CreateUserRequest is the request payload for creating a user.
type CreateUserRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	FirstName string `json:"firstName" validate:"omitempty,max=50"`
	LastName  string `json:"lastName" validate:"omitempty,max=50"`
	Role      string `json:"role" validate:"required,role"`
}

func (s *Server) handleCreateUser(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	if err := s.authz.Check(ctx, actor, shopwrench.PermPermissionsManage); err != nil {
		return err
	}

	var req CreateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user := &shopwrench.User{
		ShopID:    actor.ShopID,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      shopwrench.Role(req.Role),
	}

	if err := s.userService.CreateUser(ctx, user, req.Password); err != nil {
		return err
	}

	s.log(c).Info("user created",
		slog.String("user_id", user.ID.String()),
		slog.String("role", string(user.Role)),
	)

	return RespondCreated(c, user)
}

func (s *Server) handleGetUser(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	userID, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	user, err := s.userService.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}

	return RespondOK(c, user)
}

func (s *Server) handleListUsers(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	offset, limit := pagination(c, 50)
	filter := shopwrench.UserFilter{
		ShopID: &actor.ShopID,
		Offset: offset,
		Limit:  limit,
	}

	if v := c.QueryParam("role"); v != "" {
		role := shopwrench.Role(v)
		if !role.Valid() {
			return shopwrench.Invalid("Unknown role %q", v)
		}
		filter.Role = &role
	}

	users, total, err := s.userService.FindUsers(ctx, filter)
	if err != nil {
		return err
	}

	return RespondList(c, users, total, offset, limit)
}

// UpdateUserRequest is the request payload for updating a user.
type UpdateUserRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,max=50"`
	LastName  *string `json:"lastName" validate:"omitempty,max=50"`
	Role      *string `json:"role" validate:"omitempty,role"`
}

func (s *Server) handleUpdateUser(c echo.Context) error {
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

	var req UpdateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	upd := shopwrench.UserUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if req.Role != nil {
		// Role changes affect permissions; manage permission required
		if err := s.authz.Check(ctx, actor, shopwrench.PermPermissionsManage); err != nil {
			return err
		}
		role := shopwrench.Role(*req.Role)
		upd.Role = &role
	}

	user, err := s.userService.UpdateUser(ctx, userID, upd)
	if err != nil {
		return err
	}

	if upd.Role != nil {
		s.authz.Invalidate(userID)
	}

	return RespondOK(c, user)
}
