package http

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/dukerupert/shopwrench"
)

// CreateItemRequest is the request payload for adding an inspection item.
type CreateItemRequest struct {
	Category      string                   `json:"category" validate:"required,max=50"`
	Component     string                   `json:"component" validate:"required,max=100"`
	Condition     string                   `json:"condition" validate:"omitempty,item_condition"`
	Measurements  []shopwrench.Measurement `json:"measurements" validate:"omitempty,dive"`
	Priority      int                      `json:"priority" validate:"omitempty,min=1,max=10"`
	EstimatedCost float64                  `json:"estimatedCost" validate:"omitempty,min=0"`
}

func (s *Server) handleCreateItem(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	inspectionID, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req CreateItemRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	item := &shopwrench.InspectionItem{
		InspectionID:  inspectionID,
		Category:      shopwrench.ItemCategory(req.Category),
		Component:     req.Component,
		Condition:     shopwrench.ItemCondition(req.Condition),
		Measurements:  req.Measurements,
		Priority:      req.Priority,
		EstimatedCost: req.EstimatedCost,
	}

	if err := s.itemService.CreateItem(ctx, item); err != nil {
		return err
	}

	// A new item shifts the inspection's cached urgency; refresh it
	if _, err := s.workflowService.RecomputeUrgency(ctx, inspectionID); err != nil {
		s.log(c).Error("failed to recompute urgency after item create",
			slog.String("inspection_id", inspectionID.String()),
			slog.String("error", err.Error()),
		)
	}

	return RespondCreated(c, item)
}

func (s *Server) handleListItems(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	inspectionID, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	items, err := s.itemService.FindItemsByInspection(ctx, inspectionID)
	if err != nil {
		return err
	}

	return RespondOK(c, map[string]any{
		"inspectionId": inspectionID,
		"items":        items,
	})
}

func (s *Server) handleSeedItems(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	inspectionID, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	items, err := s.itemService.CreateItemsFromTemplate(ctx, inspectionID)
	if err != nil {
		return err
	}

	s.log(c).Info("checklist seeded",
		slog.String("inspection_id", inspectionID.String()),
		slog.Int("items", len(items)),
	)

	return RespondCreated(c, map[string]any{
		"inspectionId": inspectionID,
		"items":        items,
	})
}

// UpdateItemRequest is the request payload for updating an inspection item.
// Pointer fields are optional; absent fields are left unchanged.
type UpdateItemRequest struct {
	Condition                  *string                   `json:"condition" validate:"omitempty,item_condition"`
	Measurements               *[]shopwrench.Measurement `json:"measurements" validate:"omitempty,dive"`
	Priority                   *int                      `json:"priority" validate:"omitempty,min=1,max=10"`
	EstimatedCost              *float64                  `json:"estimatedCost" validate:"omitempty,min=0"`
	RequiresImmediateAttention *bool                     `json:"requiresImmediateAttention"`
}

func (s *Server) handleUpdateItem(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	itemID, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req UpdateItemRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	upd := shopwrench.ItemUpdate{
		Measurements:               req.Measurements,
		Priority:                   req.Priority,
		EstimatedCost:              req.EstimatedCost,
		RequiresImmediateAttention: req.RequiresImmediateAttention,
	}
	if req.Condition != nil {
		condition := shopwrench.ItemCondition(*req.Condition)
		upd.Condition = &condition
	}

	item, err := s.itemService.UpdateItem(ctx, itemID, upd)
	if err != nil {
		return err
	}

	// Every editable field feeds the urgency score; refresh it
	if _, err := s.workflowService.RecomputeUrgency(ctx, item.InspectionID); err != nil {
		s.log(c).Error("failed to recompute urgency after item update",
			slog.String("inspection_id", item.InspectionID.String()),
			slog.String("error", err.Error()),
		)
	}

	return RespondOK(c, item)
}

func (s *Server) handleDeleteItem(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	itemID, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	item, err := s.itemService.FindItemByID(ctx, itemID)
	if err != nil {
		return err
	}

	if err := s.itemService.DeleteItem(ctx, itemID); err != nil {
		return err
	}

	if _, err := s.workflowService.RecomputeUrgency(ctx, item.InspectionID); err != nil {
		s.log(c).Error("failed to recompute urgency after item delete",
			slog.String("inspection_id", item.InspectionID.String()),
			slog.String("error", err.Error()),
		)
	}

	return RespondNoContent(c)
}
