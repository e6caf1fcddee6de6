package mock

import (
	"context"
	"time"

	"github.com/dukerupert/shopwrench"
	"github.com/google/uuid"
)

// Compile-time interface check
var _ shopwrench.ShopService = (*ShopService)(nil)

// ShopService is a mock implementation of shopwrench.ShopService.
type ShopService struct {
	FindShopByIDFn func(ctx context.Context, id uuid.UUID) (*shopwrench.Shop, error)
	CreateShopFn   func(ctx context.Context, shop *shopwrench.Shop) error
	UpdateShopFn   func(ctx context.Context, id uuid.UUID, upd shopwrench.ShopUpdate) (*shopwrench.Shop, error)
}

func (s *ShopService) FindShopByID(ctx context.Context, id uuid.UUID) (*shopwrench.Shop, error) {
	if s.FindShopByIDFn != nil {
		return s.FindShopByIDFn(ctx, id)
	}
	return nil, shopwrench.NotFound("Shop not found")
}

func (s *ShopService) CreateShop(ctx context.Context, shop *shopwrench.Shop) error {
	if s.CreateShopFn != nil {
		return s.CreateShopFn(ctx, shop)
	}
	shop.ID = uuid.New()
	shop.CreatedAt = time.Now()
	shop.UpdatedAt = time.Now()
	return nil
}

func (s *ShopService) UpdateShop(ctx context.Context, id uuid.UUID, upd shopwrench.ShopUpdate) (*shopwrench.Shop, error) {
	if s.UpdateShopFn != nil {
		return s.UpdateShopFn(ctx, id, upd)
	}
	return nil, shopwrench.NotFound("Shop not found")
}
