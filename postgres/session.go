package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dukerupert/shopwrench"
	"github.com/dukerupert/shopwrench/internal/auth"
)

// Compile-time check that SessionService implements shopwrench.SessionService.
var _ shopwrench.SessionService = (*SessionService)(nil)

// SessionService implements shopwrench.SessionService using PostgreSQL.
type SessionService struct {
	db *DB
}

func (s *SessionService) CreateSession(ctx context.Context, userID uuid.UUID, duration time.Duration) (*shopwrench.Session, error) {
	token, err := auth.GenerateToken()
	if err != nil {
		return nil, shopwrench.Internal("Failed to generate session token", err)
	}

	session := &shopwrench.Session{
		UserID:    userID,
		Token:     token,
		ExpiresAt: time.Now().Add(duration),
	}

	err = s.db.pool.QueryRow(ctx, `
		INSERT INTO sessions (user_id, token, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		session.UserID, session.Token, session.ExpiresAt,
	).Scan(&session.ID, &session.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, shopwrench.NotFound("User not found")
		}
		return nil, shopwrench.Internal("Failed to create session", err)
	}

	return session, nil
}

func (s *SessionService) FindSessionByToken(ctx context.Context, token string) (*shopwrench.Session, error) {
	var session shopwrench.Session
	var user shopwrench.User

	err := s.db.pool.QueryRow(ctx, `
		SELECT s.id, s.user_id, s.token, s.expires_at, s.created_at,
		       u.id, u.shop_id, u.email, u.first_name, u.last_name, u.role, u.status, u.created_at, u.updated_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token = $1`,
		token,
	).Scan(
		&session.ID, &session.UserID, &session.Token, &session.ExpiresAt, &session.CreatedAt,
		&user.ID, &user.ShopID, &user.Email, &user.FirstName, &user.LastName, &user.Role, &user.Status, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, shopwrench.Unauthorized("Session not found or expired")
		}
		return nil, shopwrench.Internal("Failed to fetch session", err)
	}

	if session.IsExpired() {
		return nil, shopwrench.Unauthorized("Session expired")
	}

	session.User = &user
	return &session, nil
}

func (s *SessionService) DeleteSession(ctx context.Context, token string) error {
	_, err := s.db.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return shopwrench.Internal("Failed to delete session", err)
	}
	return nil
}
