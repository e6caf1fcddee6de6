package http

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/dukerupert/shopwrench"
)

// CreateShopRequest is the request payload for creating a shop.
type CreateShopRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
	Timezone string `json:"timezone" validate:"omitempty,max=50"`
}

func (s *Server) handleCreateShop(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	var req CreateShopRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	shop := &shopwrench.Shop{
		Name:     req.Name,
		Phone:    req.Phone,
		Timezone: req.Timezone,
	}

	if err := s.shopService.CreateShop(ctx, shop); err != nil {
		return err
	}

	s.log(c).Info("shop created", slog.String("shop_id", shop.ID.String()))

	return RespondCreated(c, shop)
}

func (s *Server) handleGetShop(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	shopID, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	shop, err := s.shopService.FindShopByID(ctx, shopID)
	if err != nil {
		return err
	}

	return RespondOK(c, shop)
}

// UpdateShopRequest is the request payload for updating a shop.
type UpdateShopRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=100"`
	Phone    *string `json:"phone" validate:"omitempty,max=20"`
	Timezone *string `json:"timezone" validate:"omitempty,max=50"`
}

func (s *Server) handleUpdateShop(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	shopID, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req UpdateShopRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	shop, err := s.shopService.UpdateShop(ctx, shopID, shopwrench.ShopUpdate{
		Name:     req.Name,
		Phone:    req.Phone,
		Timezone: req.Timezone,
	})
	if err != nil {
		return err
	}

	return RespondOK(c, shop)
}
