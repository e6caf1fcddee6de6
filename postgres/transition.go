package postgres

import (
	"context"

	"github.com/dukerupert/shopwrench"
	"github.com/google/uuid"
)

// Compile-time check that TransitionRecordService implements shopwrench.TransitionRecordService.
var _ shopwrench.TransitionRecordService = (*TransitionRecordService)(nil)

// TransitionRecordService reads the append-only state history. Records are
// written only by the workflow store, inside the transition transaction.
type TransitionRecordService struct {
	db *DB
}

func (s *TransitionRecordService) FindTransitionsByInspection(ctx context.Context, inspectionID uuid.UUID) ([]*shopwrench.StateTransitionRecord, error) {
	rows, err := s.db.pool.Query(ctx, `
		SELECT id, inspection_id, from_state, to_state, user_id, reason, validation_passed, created_at
		FROM state_transitions
		WHERE inspection_id = $1
		ORDER BY created_at`,
		inspectionID,
	)
	if err != nil {
		return nil, shopwrench.Internal("Failed to fetch state history", err)
	}
	defer rows.Close()

	var records []*shopwrench.StateTransitionRecord
	for rows.Next() {
		var rec shopwrench.StateTransitionRecord
		if err := rows.Scan(&rec.ID, &rec.InspectionID, &rec.FromState, &rec.ToState,
			&rec.UserID, &rec.Reason, &rec.ValidationPassed, &rec.CreatedAt); err != nil {
			return nil, shopwrench.Internal("Failed to scan state history record", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, shopwrench.Internal("Failed to iterate state history", err)
	}
	return records, nil
}
