package shopwrench

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Inspection represents a single vehicle inspection visit.
//
// The workflow state is mutated only through WorkflowService.RequestTransition;
// direct writes to WorkflowState bypass validation and the audit trail and are
// an invariant violation. Version increments by exactly one on every
// successful mutation and guards against concurrent writers.
type Inspection struct {
	ID             uuid.UUID     `json:"id"`
	ShopID         uuid.UUID     `json:"shopId"`
	VehicleID      uuid.UUID     `json:"vehicleId"`
	CustomerID     uuid.UUID     `json:"customerId"`
	TechnicianID   uuid.UUID     `json:"technicianId"`
	WorkflowState  WorkflowState `json:"workflowState"`
	PreviousState  WorkflowState `json:"previousState,omitempty"`
	StateChangedAt time.Time     `json:"stateChangedAt"`
	StateChangedBy uuid.UUID     `json:"stateChangedBy,omitempty"`
	UrgencyLevel   UrgencyLevel  `json:"urgencyLevel"`
	EstimatedCost  float64       `json:"estimatedCost"`
	Version        int64         `json:"version"`
	RetiredAt      *time.Time    `json:"retiredAt,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`

	// Joined fields (populated by some queries)
	Items []*InspectionItem `json:"items,omitempty"`
}

// IsRetired returns true if the inspection has been soft-retired.
func (i *Inspection) IsRetired() bool {
	return i.RetiredAt != nil
}

// WorkflowState represents an inspection's lifecycle stage.
type WorkflowState string

const (
	StateDraft          WorkflowState = "draft"
	StateInProgress     WorkflowState = "in_progress"
	StatePendingReview  WorkflowState = "pending_review"
	StateApproved       WorkflowState = "approved"
	StateRejected       WorkflowState = "rejected"
	StateSentToCustomer WorkflowState = "sent_to_customer"
	StateCompleted      WorkflowState = "completed"
)

// transitions is the fixed edge set of the inspection lifecycle. The
// sent_to_customer self-edge models an idempotent re-send; the engine
// commits no state change for it.
var transitions = map[WorkflowState][]WorkflowState{
	StateDraft:          {StateInProgress},
	StateInProgress:     {StatePendingReview},
	StatePendingReview:  {StateApproved, StateRejected},
	StateApproved:       {StateSentToCustomer},
	StateRejected:       {StateInProgress, StateSentToCustomer},
	StateSentToCustomer: {StateSentToCustomer, StateCompleted},
	StateCompleted:      {},
}

// Valid returns true if the state is one of the recognized workflow states.
func (s WorkflowState) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo returns true if this state can transition to the target state.
func (s WorkflowState) CanTransitionTo(target WorkflowState) bool {
	for _, t := range transitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the legal target states from this state.
func (s WorkflowState) AllowedTransitions() []WorkflowState {
	return transitions[s]
}

// IsTerminal returns true if no further transitions are possible.
func (s WorkflowState) IsTerminal() bool {
	return s == StateCompleted
}

// IsEditable returns true if inspection items can still be modified.
func (s WorkflowState) IsEditable() bool {
	return s == StateDraft || s == StateInProgress || s == StateRejected
}

// InspectionService defines CRUD operations for inspections. State changes go
// through WorkflowService, never through this interface.
type InspectionService interface {
	// FindInspectionByID retrieves an inspection with its items.
	// Returns ENOTFOUND if the inspection does not exist.
	FindInspectionByID(ctx context.Context, id uuid.UUID) (*Inspection, error)

	// FindInspections retrieves inspections matching the filter criteria.
	// Returns the matching inspections and total count.
	FindInspections(ctx context.Context, filter InspectionFilter) ([]*Inspection, int, error)

	// CreateInspection creates a new inspection in the draft state.
	// Returns ENOTFOUND if a referenced shop, vehicle, or technician is missing.
	CreateInspection(ctx context.Context, inspection *Inspection) error

	// RetireInspection soft-retires an inspection. Retired inspections are
	// excluded from queue listings and refuse further transitions.
	// Returns ENOTFOUND if the inspection does not exist.
	RetireInspection(ctx context.Context, id uuid.UUID) error
}

// InspectionFilter defines criteria for filtering inspections. ShopID plus
// State serves queue-style queries ("all inspections pending review").
type InspectionFilter struct {
	ShopID       *uuid.UUID
	TechnicianID *uuid.UUID
	VehicleID    *uuid.UUID
	State        *WorkflowState
	Urgency      *UrgencyLevel

	// Pagination
	Offset int
	Limit  int
}
