package mock

import (
	"context"
	"time"

	"github.com/dukerupert/shopwrench"
	"github.com/google/uuid"
)

// Compile-time interface check
var _ shopwrench.UserService = (*UserService)(nil)

// UserService is a mock implementation of shopwrench.UserService.
type UserService struct {
	FindUserByIDFn   func(ctx context.Context, id uuid.UUID) (*shopwrench.User, error)
	FindUsersFn      func(ctx context.Context, filter shopwrench.UserFilter) ([]*shopwrench.User, int, error)
	CreateUserFn     func(ctx context.Context, user *shopwrench.User, password string) error
	UpdateUserFn     func(ctx context.Context, id uuid.UUID, upd shopwrench.UserUpdate) (*shopwrench.User, error)
	VerifyPasswordFn func(ctx context.Context, email, password string) (*shopwrench.User, error)
}

func (s *UserService) FindUserByID(ctx context.Context, id uuid.UUID) (*shopwrench.User, error) {
	if s.FindUserByIDFn != nil {
		return s.FindUserByIDFn(ctx, id)
	}
	return nil, shopwrench.NotFound("User not found")
}

func (s *UserService) FindUsers(ctx context.Context, filter shopwrench.UserFilter) ([]*shopwrench.User, int, error) {
	if s.FindUsersFn != nil {
		return s.FindUsersFn(ctx, filter)
	}
	return []*shopwrench.User{}, 0, nil
}

func (s *UserService) CreateUser(ctx context.Context, user *shopwrench.User, password string) error {
	if s.CreateUserFn != nil {
		return s.CreateUserFn(ctx, user, password)
	}
	user.ID = uuid.New()
	user.Status = shopwrench.UserStatusActive
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	return nil
}

func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, upd shopwrench.UserUpdate) (*shopwrench.User, error) {
	if s.UpdateUserFn != nil {
		return s.UpdateUserFn(ctx, id, upd)
	}
	return nil, shopwrench.NotFound("User not found")
}

func (s *UserService) VerifyPassword(ctx context.Context, email, password string) (*shopwrench.User, error) {
	if s.VerifyPasswordFn != nil {
		return s.VerifyPasswordFn(ctx, email, password)
	}
	return nil, shopwrench.Unauthorized("invalid credentials")
}
