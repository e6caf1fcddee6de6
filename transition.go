package shopwrench

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StateTransitionRecord is one immutable entry in an inspection's state
// history. Exactly one record exists per accepted transition; rejected
// attempts write nothing here (denials go to a separate denial log).
type StateTransitionRecord struct {
	ID               uuid.UUID     `json:"id"`
	InspectionID     uuid.UUID     `json:"inspectionId"`
	FromState        WorkflowState `json:"fromState"`
	ToState          WorkflowState `json:"toState"`
	UserID           uuid.UUID     `json:"userId"`
	Reason           string        `json:"reason,omitempty"`
	ValidationPassed bool          `json:"validationPassed"`
	CreatedAt        time.Time     `json:"createdAt"`
}

// Validation error codes carried in ValidationError.Code.
const (
	ValidationIllegalTransition = "illegal_transition"
	ValidationPermissionDenied  = "permission_denied"
	ValidationSafetyBlocked     = "safety_blocked"
	ValidationRuleViolation     = "rule_violation"
)

// ValidationError describes one reason a transition was refused.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`

	// Permission names the missing permission for permission_denied errors.
	Permission string `json:"permission,omitempty"`
}

// ValidationResult is the structured outcome of validating a transition
// request. All independent rule categories are evaluated so the caller gets a
// complete error list.
type ValidationResult struct {
	Allowed bool              `json:"allowed"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

// Messages returns the human-readable error messages.
func (r ValidationResult) Messages() []string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return msgs
}

// HasCode returns true if any error carries the given code.
func (r ValidationResult) HasCode(code string) bool {
	for _, e := range r.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}

// TransitionResult is returned by WorkflowService.RequestTransition. A
// refused transition is a normal outcome: Validation.Allowed is false, the
// inspection is untouched, and no error is returned. Errors are reserved for
// concurrency conflicts (ECONFLICT) and persistence failures (EINTERNAL).
type TransitionResult struct {
	Validation ValidationResult `json:"validation"`
	Inspection *Inspection      `json:"inspection,omitempty"`
	FromState  WorkflowState    `json:"fromState,omitempty"`
	NewState   WorkflowState    `json:"newState,omitempty"`
	Urgency    *UrgencyReport   `json:"urgency,omitempty"`

	// AutoAdvanced lists states reached by automatic follow-on transitions
	// from state_transition business rules, in order.
	AutoAdvanced []WorkflowState `json:"autoAdvanced,omitempty"`
}

// WorkflowService orchestrates inspection lifecycle transitions. It is the
// sole authority for transition legality; the store provides only
// durability and atomicity.
type WorkflowService interface {
	// RequestTransition validates and applies a state transition for the
	// given actor. State change, refreshed urgency, version increment, and
	// the audit record commit in one atomic unit, or not at all.
	// Returns ECONFLICT if concurrent mutations exhausted the retry budget.
	RequestTransition(ctx context.Context, inspectionID uuid.UUID, target WorkflowState, actor Actor, reason string) (*TransitionResult, error)

	// RecomputeUrgency refreshes the cached urgency level from the current
	// items, independent of any transition. Callable after item edits.
	RecomputeUrgency(ctx context.Context, inspectionID uuid.UUID) (*UrgencyReport, error)
}

// TransitionRecordService reads the append-only state history.
type TransitionRecordService interface {
	// FindTransitionsByInspection returns an inspection's state history,
	// oldest first.
	FindTransitionsByInspection(ctx context.Context, inspectionID uuid.UUID) ([]*StateTransitionRecord, error)
}
