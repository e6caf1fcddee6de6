package shopwrench

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session is a server-side login session identified by an opaque token.
type Session struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`

	// Joined fields (populated by some queries)
	User *User `json:"user,omitempty"`
}

// IsExpired returns true if the session has lapsed.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Actor builds the authenticated actor for this session's user. The joined
// User must be populated.
func (s *Session) Actor() Actor {
	return Actor{
		UserID: s.User.ID,
		Role:   s.User.Role,
		ShopID: s.User.ShopID,
	}
}

// SessionService defines operations for managing login sessions.
type SessionService interface {
	// CreateSession creates a session for the user with a fresh token.
	CreateSession(ctx context.Context, userID uuid.UUID, duration time.Duration) (*Session, error)

	// FindSessionByToken retrieves a live session with its user joined.
	// Returns EUNAUTHORIZED if the token is unknown or expired.
	FindSessionByToken(ctx context.Context, token string) (*Session, error)

	// DeleteSession removes a session (logout).
	DeleteSession(ctx context.Context, token string) error
}
