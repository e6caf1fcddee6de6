package mock

import (
	"context"

	"github.com/dukerupert/shopwrench"
	"github.com/google/uuid"
)

// Compile-time interface checks
var (
	_ shopwrench.WorkflowService         = (*WorkflowService)(nil)
	_ shopwrench.TransitionRecordService = (*TransitionRecordService)(nil)
)

// WorkflowService is a mock implementation of shopwrench.WorkflowService.
type WorkflowService struct {
	RequestTransitionFn func(ctx context.Context, inspectionID uuid.UUID, target shopwrench.WorkflowState, actor shopwrench.Actor, reason string) (*shopwrench.TransitionResult, error)
	RecomputeUrgencyFn  func(ctx context.Context, inspectionID uuid.UUID) (*shopwrench.UrgencyReport, error)
}

func (s *WorkflowService) RequestTransition(ctx context.Context, inspectionID uuid.UUID, target shopwrench.WorkflowState, actor shopwrench.Actor, reason string) (*shopwrench.TransitionResult, error) {
	if s.RequestTransitionFn != nil {
		return s.RequestTransitionFn(ctx, inspectionID, target, actor, reason)
	}
	return nil, shopwrench.NotFound("Inspection not found")
}

func (s *WorkflowService) RecomputeUrgency(ctx context.Context, inspectionID uuid.UUID) (*shopwrench.UrgencyReport, error) {
	if s.RecomputeUrgencyFn != nil {
		return s.RecomputeUrgencyFn(ctx, inspectionID)
	}
	return nil, shopwrench.NotFound("Inspection not found")
}

// TransitionRecordService is a mock implementation of
// shopwrench.TransitionRecordService.
type TransitionRecordService struct {
	FindTransitionsByInspectionFn func(ctx context.Context, inspectionID uuid.UUID) ([]*shopwrench.StateTransitionRecord, error)
}

func (s *TransitionRecordService) FindTransitionsByInspection(ctx context.Context, inspectionID uuid.UUID) ([]*shopwrench.StateTransitionRecord, error) {
	if s.FindTransitionsByInspectionFn != nil {
		return s.FindTransitionsByInspectionFn(ctx, inspectionID)
	}
	return []*shopwrench.StateTransitionRecord{}, nil
}
