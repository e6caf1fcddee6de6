package workflow

import (
	"context"

	"github.com/dukerupert/shopwrench"
	"github.com/google/uuid"
)

// Snapshot is a consistent read of an inspection and its items.
type Snapshot struct {
	Inspection *shopwrench.Inspection
	Items      []*shopwrench.InspectionItem
}

// Commit describes the atomic unit of a successful transition: the state
// change, the refreshed urgency, the version increment, and the audit record.
// Either all of it lands or none of it does.
type Commit struct {
	InspectionID    uuid.UUID
	ExpectedVersion int64

	Target    shopwrench.WorkflowState
	ChangedBy uuid.UUID
	Urgency   shopwrench.UrgencyLevel

	Record *shopwrench.StateTransitionRecord
}

// Store is the engine's persistence contract. Implementations must provide
// atomic multi-row commits and conditional writes on the inspection version.
type Store interface {
	// LoadInspection reads an inspection with its items.
	// Returns ENOTFOUND if the inspection does not exist.
	LoadInspection(ctx context.Context, id uuid.UUID) (*Snapshot, error)

	// CommitTransition applies a commit in one transaction, conditioned on
	// the inspection's version still matching ExpectedVersion.
	// Returns ECONFLICT if the version moved; nothing is written then.
	CommitTransition(ctx context.Context, c Commit) (*shopwrench.Inspection, error)

	// SaveUrgency persists a recomputed urgency level outside a transition,
	// incrementing the version. Same ECONFLICT contract as CommitTransition.
	SaveUrgency(ctx context.Context, id uuid.UUID, level shopwrench.UrgencyLevel, expectedVersion int64) error
}

// PermissionChecker resolves an actor's effective permission set, typically
// through the cached authorization checker.
type PermissionChecker interface {
	Effective(ctx context.Context, actor shopwrench.Actor) (shopwrench.PermissionSet, error)
}

// Denial is a permission-denial audit entry, recorded separately from the
// state history so rejected attempts never pollute it.
type Denial struct {
	InspectionID      uuid.UUID
	ShopID            uuid.UUID
	UserID            uuid.UUID
	FromState         shopwrench.WorkflowState
	ToState           shopwrench.WorkflowState
	MissingPermission string
	Reasons           []string
}

// DenialRecorder persists permission denials for forensics.
type DenialRecorder interface {
	RecordDenial(ctx context.Context, d Denial)
}
