package mock

import (
	"context"
	"time"

	"github.com/dukerupert/shopwrench"
	"github.com/google/uuid"
)

// Compile-time interface check
var _ shopwrench.InspectionService = (*InspectionService)(nil)

// InspectionService is a mock implementation of shopwrench.InspectionService.
type InspectionService struct {
	FindInspectionByIDFn func(ctx context.Context, id uuid.UUID) (*shopwrench.Inspection, error)
	FindInspectionsFn    func(ctx context.Context, filter shopwrench.InspectionFilter) ([]*shopwrench.Inspection, int, error)
	CreateInspectionFn   func(ctx context.Context, inspection *shopwrench.Inspection) error
	RetireInspectionFn   func(ctx context.Context, id uuid.UUID) error
}

func (s *InspectionService) FindInspectionByID(ctx context.Context, id uuid.UUID) (*shopwrench.Inspection, error) {
	if s.FindInspectionByIDFn != nil {
		return s.FindInspectionByIDFn(ctx, id)
	}
	return nil, shopwrench.NotFound("Inspection not found")
}

func (s *InspectionService) FindInspections(ctx context.Context, filter shopwrench.InspectionFilter) ([]*shopwrench.Inspection, int, error) {
	if s.FindInspectionsFn != nil {
		return s.FindInspectionsFn(ctx, filter)
	}
	return []*shopwrench.Inspection{}, 0, nil
}

func (s *InspectionService) CreateInspection(ctx context.Context, inspection *shopwrench.Inspection) error {
	if s.CreateInspectionFn != nil {
		return s.CreateInspectionFn(ctx, inspection)
	}
	inspection.ID = uuid.New()
	inspection.WorkflowState = shopwrench.StateDraft
	inspection.Version = 1
	inspection.CreatedAt = time.Now()
	inspection.UpdatedAt = time.Now()
	return nil
}

func (s *InspectionService) RetireInspection(ctx context.Context, id uuid.UUID) error {
	if s.RetireInspectionFn != nil {
		return s.RetireInspectionFn(ctx, id)
	}
	return nil
}
