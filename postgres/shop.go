package postgres

import (
	"context"
	"time"

	"github.com/dukerupert/shopwrench"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Compile-time check that ShopService implements shopwrench.ShopService.
var _ shopwrench.ShopService = (*ShopService)(nil)

// ShopService implements shopwrench.ShopService using PostgreSQL.
type ShopService struct {
	db *DB
}

func (s *ShopService) FindShopByID(ctx context.Context, id uuid.UUID) (*shopwrench.Shop, error) {
	var shop shopwrench.Shop
	err := s.db.pool.QueryRow(ctx, `
		SELECT id, name, phone, timezone, created_at, updated_at
		FROM shops
		WHERE id = $1`,
		id,
	).Scan(&shop.ID, &shop.Name, &shop.Phone, &shop.Timezone, &shop.CreatedAt, &shop.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, shopwrench.NotFound("Shop not found")
		}
		return nil, shopwrench.Internal("Failed to fetch shop", err)
	}
	return &shop, nil
}

func (s *ShopService) CreateShop(ctx context.Context, shop *shopwrench.Shop) error {
	if shop.ID == uuid.Nil {
		shop.ID = uuid.New()
	}
	if shop.Timezone == "" {
		shop.Timezone = "UTC"
	}
	now := time.Now()
	shop.CreatedAt = now
	shop.UpdatedAt = now

	_, err := s.db.pool.Exec(ctx, `
		INSERT INTO shops (id, name, phone, timezone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		shop.ID, shop.Name, shop.Phone, shop.Timezone, shop.CreatedAt, shop.UpdatedAt,
	)
	if err != nil {
		return shopwrench.Internal("Failed to create shop", err)
	}
	return nil
}

func (s *ShopService) UpdateShop(ctx context.Context, id uuid.UUID, upd shopwrench.ShopUpdate) (*shopwrench.Shop, error) {
	shop, err := s.FindShopByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		shop.Name = *upd.Name
	}
	if upd.Phone != nil {
		shop.Phone = *upd.Phone
	}
	if upd.Timezone != nil {
		shop.Timezone = *upd.Timezone
	}
	shop.UpdatedAt = time.Now()

	_, err = s.db.pool.Exec(ctx, `
		UPDATE shops
		SET name = $2, phone = $3, timezone = $4, updated_at = $5
		WHERE id = $1`,
		shop.ID, shop.Name, shop.Phone, shop.Timezone, shop.UpdatedAt,
	)
	if err != nil {
		return nil, shopwrench.Internal("Failed to update shop", err)
	}
	return shop, nil
}
