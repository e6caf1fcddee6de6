package shopwrench

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Shop represents a service shop. Inspections, users, vehicles, and business
// rules are all owned by a shop.
type Shop struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Timezone  string    `json:"timezone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ShopService defines operations for managing shops.
type ShopService interface {
	// FindShopByID retrieves a shop by its ID.
	// Returns ENOTFOUND if the shop does not exist.
	FindShopByID(ctx context.Context, id uuid.UUID) (*Shop, error)

	// CreateShop creates a new shop.
	CreateShop(ctx context.Context, shop *Shop) error

	// UpdateShop updates an existing shop.
	// Returns ENOTFOUND if the shop does not exist.
	UpdateShop(ctx context.Context, id uuid.UUID, upd ShopUpdate) (*Shop, error)
}

// ShopUpdate defines fields that can be updated on a shop.
type ShopUpdate struct {
	Name     *string
	Phone    *string
	Timezone *string
}
