package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/shopwrench"
	"github.com/dukerupert/shopwrench/internal/auth"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Compile-time check that UserService implements shopwrench.UserService.
var _ shopwrench.UserService = (*UserService)(nil)

// UserService implements shopwrench.UserService using PostgreSQL.
type UserService struct {
	db *DB
}

func (s *UserService) FindUserByID(ctx context.Context, id uuid.UUID) (*shopwrench.User, error) {
	var user shopwrench.User
	err := s.db.pool.QueryRow(ctx, `
		SELECT id, shop_id, email, first_name, last_name, role, status, created_at, updated_at
		FROM users
		WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.ShopID, &user.Email, &user.FirstName, &user.LastName,
		&user.Role, &user.Status, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, shopwrench.NotFound("User not found")
		}
		return nil, shopwrench.Internal("Failed to fetch user", err)
	}
	return &user, nil
}

func (s *UserService) FindUsers(ctx context.Context, filter shopwrench.UserFilter) ([]*shopwrench.User, int, error) {
	var conditions []string
	var args []any
	argNum := 1

	if filter.ShopID != nil {
		conditions = append(conditions, fmt.Sprintf("shop_id = $%d", argNum))
		args = append(args, *filter.ShopID)
		argNum++
	}
	if filter.Role != nil {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argNum))
		args = append(args, *filter.Role)
		argNum++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argNum))
		args = append(args, *filter.Status)
		argNum++
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := s.db.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users"+where, args...).Scan(&total); err != nil {
		return nil, 0, shopwrench.Internal("Failed to count users", err)
	}

	query := `
		SELECT id, shop_id, email, first_name, last_name, role, status, created_at, updated_at
		FROM users` + where + " ORDER BY created_at"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filter.Limit)
		argNum++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filter.Offset)
	}

	rows, err := s.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, shopwrench.Internal("Failed to fetch users", err)
	}
	defer rows.Close()

	var users []*shopwrench.User
	for rows.Next() {
		var user shopwrench.User
		if err := rows.Scan(&user.ID, &user.ShopID, &user.Email, &user.FirstName, &user.LastName,
			&user.Role, &user.Status, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, 0, shopwrench.Internal("Failed to scan user", err)
		}
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, shopwrench.Internal("Failed to iterate users", err)
	}
	return users, total, nil
}

func (s *UserService) CreateUser(ctx context.Context, user *shopwrench.User, password string) error {
	if !user.Role.Valid() {
		return shopwrench.Invalid("invalid role %q", user.Role)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Status == "" {
		user.Status = shopwrench.UserStatusActive
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err = s.db.pool.Exec(ctx, `
		INSERT INTO users (id, shop_id, email, password_hash, first_name, last_name, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		user.ID, user.ShopID, user.Email, hash, user.FirstName, user.LastName,
		user.Role, user.Status, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return shopwrench.Conflict("A user with this email already exists")
		}
		if isForeignKeyViolation(err) {
			return shopwrench.NotFound("Shop not found")
		}
		return shopwrench.Internal("Failed to create user", err)
	}
	return nil
}

func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, upd shopwrench.UserUpdate) (*shopwrench.User, error) {
	user, err := s.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.FirstName != nil {
		user.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		user.LastName = *upd.LastName
	}
	if upd.Role != nil {
		if !upd.Role.Valid() {
			return nil, shopwrench.Invalid("invalid role %q", *upd.Role)
		}
		user.Role = *upd.Role
	}
	if upd.Status != nil {
		user.Status = *upd.Status
	}
	user.UpdatedAt = time.Now()

	_, err = s.db.pool.Exec(ctx, `
		UPDATE users
		SET first_name = $2, last_name = $3, role = $4, status = $5, updated_at = $6
		WHERE id = $1`,
		user.ID, user.FirstName, user.LastName, user.Role, user.Status, user.UpdatedAt,
	)
	if err != nil {
		return nil, shopwrench.Internal("Failed to update user", err)
	}
	return user, nil
}

// FindCredentialsByEmail returns the user and stored password hash for login.
func (s *UserService) FindCredentialsByEmail(ctx context.Context, email string) (*shopwrench.User, string, error) {
	var user shopwrench.User
	var hash string
	err := s.db.pool.QueryRow(ctx, `
		SELECT id, shop_id, email, password_hash, first_name, last_name, role, status, created_at, updated_at
		FROM users
		WHERE email = $1`,
		email,
	).Scan(&user.ID, &user.ShopID, &user.Email, &hash, &user.FirstName, &user.LastName,
		&user.Role, &user.Status, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", shopwrench.Unauthorized("invalid credentials")
		}
		return nil, "", shopwrench.Internal("Failed to fetch user", err)
	}
	return &user, hash, nil
}

func (s *UserService) VerifyPassword(ctx context.Context, email, password string) (*shopwrench.User, error) {
	user, hash, err := s.FindCredentialsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := auth.VerifyPassword(password, hash); err != nil {
		return nil, err
	}
	if user.Status != shopwrench.UserStatusActive {
		return nil, shopwrench.Forbidden("Account is not active")
	}
	return user, nil
}
