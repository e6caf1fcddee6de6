package postgres

import (
	"context"
	"time"

	"github.com/dukerupert/shopwrench"
	"github.com/dukerupert/shopwrench/internal/workflow"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Compile-time check that WorkflowStore implements workflow.Store.
var _ workflow.Store = (*WorkflowStore)(nil)

// WorkflowStore is the engine's persistence layer. A transition commits the
// state change and its audit record in one transaction, conditioned on the
// inspection's version. A lost version race writes nothing and reports
// ECONFLICT; the engine retries from a fresh read.
type WorkflowStore struct {
	db *DB
}

// NewWorkflowStore creates a workflow store on the shared DB wrapper.
func NewWorkflowStore(db *DB) *WorkflowStore {
	return &WorkflowStore{db: db}
}

func (s *WorkflowStore) LoadInspection(ctx context.Context, id uuid.UUID) (*workflow.Snapshot, error) {
	inspection, err := (&InspectionService{db: s.db}).FindInspectionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &workflow.Snapshot{
		Inspection: inspection,
		Items:      inspection.Items,
	}, nil
}

func (s *WorkflowStore) CommitTransition(ctx context.Context, c workflow.Commit) (*shopwrench.Inspection, error) {
	tx, err := s.db.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, shopwrench.Internal("Failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	row := tx.QueryRow(ctx, `
		UPDATE inspections
		SET previous_state = workflow_state,
		    workflow_state = $3,
		    state_changed_at = $4,
		    state_changed_by = $5,
		    urgency_level = $6,
		    version = version + 1,
		    updated_at = $4
		WHERE id = $1 AND version = $2 AND retired_at IS NULL
		RETURNING`+inspectionColumns,
		c.InspectionID, c.ExpectedVersion, c.Target, now, c.ChangedBy, c.Urgency,
	)

	inspection, err := scanInspection(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, s.conflictOrMissing(ctx, c.InspectionID)
		}
		return nil, shopwrench.Internal("Failed to update inspection", err)
	}

	rec := c.Record
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO state_transitions (id, inspection_id, from_state, to_state, user_id, reason, validation_passed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.InspectionID, rec.FromState, rec.ToState,
		rec.UserID, rec.Reason, rec.ValidationPassed, rec.CreatedAt,
	)
	if err != nil {
		return nil, shopwrench.Internal("Failed to insert state history record", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, shopwrench.Internal("Failed to commit transition", err)
	}
	return inspection, nil
}

func (s *WorkflowStore) SaveUrgency(ctx context.Context, id uuid.UUID, level shopwrench.UrgencyLevel, expectedVersion int64) error {
	tag, err := s.db.pool.Exec(ctx, `
		UPDATE inspections
		SET urgency_level = $3, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2 AND retired_at IS NULL`,
		id, expectedVersion, level,
	)
	if err != nil {
		return shopwrench.Internal("Failed to save urgency", err)
	}
	if tag.RowsAffected() == 0 {
		return s.conflictOrMissing(ctx, id)
	}
	return nil
}

// conflictOrMissing distinguishes a lost version race from a missing or
// retired inspection after a conditional update matched no rows.
func (s *WorkflowStore) conflictOrMissing(ctx context.Context, id uuid.UUID) error {
	var retired *time.Time
	err := s.db.pool.QueryRow(ctx,
		`SELECT retired_at FROM inspections WHERE id = $1`, id,
	).Scan(&retired)
	if err != nil {
		if err == pgx.ErrNoRows {
			return shopwrench.NotFound("Inspection not found")
		}
		return shopwrench.Internal("Failed to fetch inspection", err)
	}
	if retired != nil {
		return shopwrench.Invalid("inspection has been retired")
	}
	return shopwrench.Conflict("inspection was modified concurrently")
}
