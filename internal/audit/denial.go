// Package audit persists the denial log: permission-denied transition
// attempts, recorded outside the inspection state history so rejected
// attempts never pollute it.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/dukerupert/shopwrench/internal/workflow"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Compile-time interface check
var _ workflow.DenialRecorder = (*DenialLog)(nil)

// DenialLog writes denial entries to the denial_log table. Writes run
// asynchronously so a slow insert never delays the caller's response; a
// failed insert falls back to the structured log.
type DenialLog struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewDenialLog creates a denial log backed by the given pool.
func NewDenialLog(db *pgxpool.Pool, logger *slog.Logger) *DenialLog {
	return &DenialLog{
		db:     db,
		logger: logger.With(slog.String("component", "denial_log")),
	}
}

// DenialEntry is one row of the denial log.
type DenialEntry struct {
	ID                uuid.UUID `json:"id"`
	InspectionID      uuid.UUID `json:"inspectionId"`
	ShopID            uuid.UUID `json:"shopId"`
	UserID            uuid.UUID `json:"userId"`
	FromState         string    `json:"fromState"`
	ToState           string    `json:"toState"`
	MissingPermission string    `json:"missingPermission"`
	Reasons           []string  `json:"reasons,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// RecordDenial implements workflow.DenialRecorder. The insert is detached
// from the request context so an already-canceled request still gets its
// denial recorded.
func (l *DenialLog) RecordDenial(ctx context.Context, d workflow.Denial) {
	entry := DenialEntry{
		ID:                uuid.New(),
		InspectionID:      d.InspectionID,
		ShopID:            d.ShopID,
		UserID:            d.UserID,
		FromState:         string(d.FromState),
		ToState:           string(d.ToState),
		MissingPermission: d.MissingPermission,
		Reasons:           d.Reasons,
		CreatedAt:         time.Now(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		_, err := l.db.Exec(ctx, `
			INSERT INTO denial_log (
				id, inspection_id, shop_id, user_id,
				from_state, to_state, missing_permission, reasons, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			entry.ID,
			entry.InspectionID,
			entry.ShopID,
			entry.UserID,
			entry.FromState,
			entry.ToState,
			entry.MissingPermission,
			entry.Reasons,
			entry.CreatedAt,
		)
		if err != nil {
			l.logger.Error("failed to insert denial log entry",
				slog.String("error", err.Error()),
				slog.String("inspection_id", entry.InspectionID.String()),
				slog.String("user_id", entry.UserID.String()),
				slog.String("missing_permission", entry.MissingPermission))
		}
	}()
}

// FindDenialsByInspection returns an inspection's denial entries, newest
// first.
func (l *DenialLog) FindDenialsByInspection(ctx context.Context, inspectionID uuid.UUID, limit, offset int) ([]DenialEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.Query(ctx, `
		SELECT id, inspection_id, shop_id, user_id,
		       from_state, to_state, missing_permission, reasons, created_at
		FROM denial_log
		WHERE inspection_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		inspectionID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDenials(rows)
}

// FindDenialsByUser returns a user's denial entries, newest first. Used to
// investigate repeated unauthorized attempts.
func (l *DenialLog) FindDenialsByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]DenialEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.Query(ctx, `
		SELECT id, inspection_id, shop_id, user_id,
		       from_state, to_state, missing_permission, reasons, created_at
		FROM denial_log
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDenials(rows)
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanDenials(rows pgxRows) ([]DenialEntry, error) {
	var entries []DenialEntry
	for rows.Next() {
		var e DenialEntry
		if err := rows.Scan(
			&e.ID,
			&e.InspectionID,
			&e.ShopID,
			&e.UserID,
			&e.FromState,
			&e.ToState,
			&e.MissingPermission,
			&e.Reasons,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
