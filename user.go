package shopwrench

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User represents a shop employee.
type User struct {
	ID        uuid.UUID  `json:"id"`
	ShopID    uuid.UUID  `json:"shopId"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstName,omitempty"`
	LastName  string     `json:"lastName,omitempty"`
	Role      Role       `json:"role"`
	Status    UserStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Role represents a user's job function within a shop. A role maps to a
// default permission set; per-user overrides take precedence.
type Role string

const (
	RoleTechnician     Role = "technician"
	RoleServiceAdvisor Role = "service_advisor"
	RoleManager        Role = "manager"
	RoleAdmin          Role = "admin"
)

// Roles lists every recognized role.
func Roles() []Role {
	return []Role{RoleTechnician, RoleServiceAdvisor, RoleManager, RoleAdmin}
}

// Valid returns true if the role is one of the recognized roles.
func (r Role) Valid() bool {
	switch r {
	case RoleTechnician, RoleServiceAdvisor, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// UserStatus represents the status of a user account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusDeleted   UserStatus = "deleted"
)

// FullName returns the user's full name, falling back to their email.
func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Email
	}
	if u.LastName == "" {
		return u.FirstName
	}
	if u.FirstName == "" {
		return u.LastName
	}
	return u.FirstName + " " + u.LastName
}

// IsActive returns true if the user account is active.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// Actor identifies an already-authenticated caller. The authentication layer
// resolves credentials to an Actor before any engine call; the engine trusts
// these values as verified.
type Actor struct {
	UserID uuid.UUID `json:"userId"`
	Role   Role      `json:"role"`
	ShopID uuid.UUID `json:"shopId"`
}

// UserService defines operations for managing users.
type UserService interface {
	// FindUserByID retrieves a user by their ID.
	// Returns ENOTFOUND if the user does not exist.
	FindUserByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindUsers retrieves users matching the filter criteria.
	// Returns the matching users and total count.
	FindUsers(ctx context.Context, filter UserFilter) ([]*User, int, error)

	// CreateUser creates a new user with the given password.
	// Returns ECONFLICT if the email already exists.
	CreateUser(ctx context.Context, user *User, password string) error

	// UpdateUser updates an existing user.
	// Returns ENOTFOUND if the user does not exist.
	UpdateUser(ctx context.Context, id uuid.UUID, upd UserUpdate) (*User, error)

	// VerifyPassword checks login credentials.
	// Returns EUNAUTHORIZED if the email is unknown or the password is wrong.
	VerifyPassword(ctx context.Context, email, password string) (*User, error)
}

// UserFilter defines criteria for filtering users.
type UserFilter struct {
	ShopID *uuid.UUID
	Role   *Role
	Status *UserStatus

	// Pagination
	Offset int
	Limit  int
}

// UserUpdate defines fields that can be updated on a user.
// Pointer fields: nil = don't update, non-nil = update to this value.
type UserUpdate struct {
	FirstName *string
	LastName  *string
	Role      *Role
	Status    *UserStatus
}
