package mock

import (
	"context"
	"time"

	"github.com/dukerupert/shopwrench"
	"github.com/google/uuid"
)

// Compile-time interface check
var _ shopwrench.SessionService = (*SessionService)(nil)

// SessionService is a mock implementation of shopwrench.SessionService.
type SessionService struct {
	CreateSessionFn      func(ctx context.Context, userID uuid.UUID, duration time.Duration) (*shopwrench.Session, error)
	FindSessionByTokenFn func(ctx context.Context, token string) (*shopwrench.Session, error)
	DeleteSessionFn      func(ctx context.Context, token string) error
}

func (s *SessionService) CreateSession(ctx context.Context, userID uuid.UUID, duration time.Duration) (*shopwrench.Session, error) {
	if s.CreateSessionFn != nil {
		return s.CreateSessionFn(ctx, userID, duration)
	}
	return &shopwrench.Session{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     "mock-session-token",
		ExpiresAt: time.Now().Add(duration),
		CreatedAt: time.Now(),
	}, nil
}

func (s *SessionService) FindSessionByToken(ctx context.Context, token string) (*shopwrench.Session, error) {
	if s.FindSessionByTokenFn != nil {
		return s.FindSessionByTokenFn(ctx, token)
	}
	return nil, shopwrench.Unauthorized("Session not found or expired")
}

func (s *SessionService) DeleteSession(ctx context.Context, token string) error {
	if s.DeleteSessionFn != nil {
		return s.DeleteSessionFn(ctx, token)
	}
	return nil
}
