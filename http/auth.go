package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dukerupert/shopwrench"
)

// LoginRequest is the request payload for user login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

// LoginResponse is the response payload for user login.
type LoginResponse struct {
	Token     string           `json:"token"`
	ExpiresAt string           `json:"expiresAt"`
	User      *shopwrench.User `json:"user"`
}

func (s *Server) handleLogin(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	var req LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := s.userService.VerifyPassword(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}

	session, err := s.sessionService.CreateSession(ctx, user.ID, s.SessionDuration)
	if err != nil {
		s.log(c).Error("failed to create session", slog.String("error", err.Error()))
		return shopwrench.Internal("Login failed", err)
	}

	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.SessionSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  session.ExpiresAt,
	})

	s.log(c).Info("user logged in", slog.String("user_id", user.ID.String()))

	return RespondOK(c, LoginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.UTC().Format(time.RFC3339),
		User:      user,
	})
}

func (s *Server) handleLogout(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	token := sessionToken(c)
	if token != "" {
		if err := s.sessionService.DeleteSession(ctx, token); err != nil {
			s.log(c).Error("failed to delete session", slog.String("error", err.Error()))
		}
	}

	// Clear cookie
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	return RespondSuccess(c, "Logged out")
}

func (s *Server) handleMe(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	user, err := s.userService.FindUserByID(ctx, actor.UserID)
	if err != nil {
		return err
	}

	permissions, err := s.authz.Effective(ctx, actor)
	if err != nil {
		return err
	}

	return RespondOK(c, map[string]any{
		"user":        user,
		"permissions": permissions.Names(),
	})
}
