package mock

import (
	"context"
	"time"

	"github.com/dukerupert/shopwrench"
	"github.com/google/uuid"
)

// Compile-time interface check
var _ shopwrench.ItemService = (*ItemService)(nil)

// ItemService is a mock implementation of shopwrench.ItemService.
type ItemService struct {
	FindItemByIDFn            func(ctx context.Context, id uuid.UUID) (*shopwrench.InspectionItem, error)
	FindItemsByInspectionFn   func(ctx context.Context, inspectionID uuid.UUID) ([]*shopwrench.InspectionItem, error)
	CreateItemFn              func(ctx context.Context, item *shopwrench.InspectionItem) error
	CreateItemsFromTemplateFn func(ctx context.Context, inspectionID uuid.UUID) ([]*shopwrench.InspectionItem, error)
	UpdateItemFn              func(ctx context.Context, id uuid.UUID, upd shopwrench.ItemUpdate) (*shopwrench.InspectionItem, error)
	DeleteItemFn              func(ctx context.Context, id uuid.UUID) error
}

func (s *ItemService) FindItemByID(ctx context.Context, id uuid.UUID) (*shopwrench.InspectionItem, error) {
	if s.FindItemByIDFn != nil {
		return s.FindItemByIDFn(ctx, id)
	}
	return nil, shopwrench.NotFound("Item not found")
}

func (s *ItemService) FindItemsByInspection(ctx context.Context, inspectionID uuid.UUID) ([]*shopwrench.InspectionItem, error) {
	if s.FindItemsByInspectionFn != nil {
		return s.FindItemsByInspectionFn(ctx, inspectionID)
	}
	return []*shopwrench.InspectionItem{}, nil
}

func (s *ItemService) CreateItem(ctx context.Context, item *shopwrench.InspectionItem) error {
	if s.CreateItemFn != nil {
		return s.CreateItemFn(ctx, item)
	}
	item.ID = uuid.New()
	item.CreatedAt = time.Now()
	item.UpdatedAt = time.Now()
	return nil
}

func (s *ItemService) CreateItemsFromTemplate(ctx context.Context, inspectionID uuid.UUID) ([]*shopwrench.InspectionItem, error) {
	if s.CreateItemsFromTemplateFn != nil {
		return s.CreateItemsFromTemplateFn(ctx, inspectionID)
	}
	return []*shopwrench.InspectionItem{}, nil
}

func (s *ItemService) UpdateItem(ctx context.Context, id uuid.UUID, upd shopwrench.ItemUpdate) (*shopwrench.InspectionItem, error) {
	if s.UpdateItemFn != nil {
		return s.UpdateItemFn(ctx, id, upd)
	}
	return nil, shopwrench.NotFound("Item not found")
}

func (s *ItemService) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if s.DeleteItemFn != nil {
		return s.DeleteItemFn(ctx, id)
	}
	return nil
}
