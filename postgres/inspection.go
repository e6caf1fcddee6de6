package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/shopwrench"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Compile-time check that InspectionService implements shopwrench.InspectionService.
var _ shopwrench.InspectionService = (*InspectionService)(nil)

// InspectionService implements shopwrench.InspectionService using PostgreSQL.
// Workflow state is written only by the workflow store; this service never
// touches workflow_state, urgency_level, or version after creation.
type InspectionService struct {
	db *DB
}

const inspectionColumns = `
	id, shop_id, vehicle_id, customer_id, technician_id,
	workflow_state, previous_state, state_changed_at, state_changed_by,
	urgency_level, estimated_cost, version, retired_at, created_at, updated_at`

func (s *InspectionService) FindInspectionByID(ctx context.Context, id uuid.UUID) (*shopwrench.Inspection, error) {
	row := s.db.pool.QueryRow(ctx,
		`SELECT`+inspectionColumns+` FROM inspections WHERE id = $1`, id)

	inspection, err := scanInspection(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, shopwrench.NotFound("Inspection not found")
		}
		return nil, shopwrench.Internal("Failed to fetch inspection", err)
	}

	items, err := (&ItemService{db: s.db}).FindItemsByInspection(ctx, id)
	if err != nil {
		return nil, err
	}
	inspection.Items = items
	return inspection, nil
}

func (s *InspectionService) FindInspections(ctx context.Context, filter shopwrench.InspectionFilter) ([]*shopwrench.Inspection, int, error) {
	// Retired inspections are excluded from listings
	conditions := []string{"retired_at IS NULL"}
	var args []any
	argNum := 1

	if filter.ShopID != nil {
		conditions = append(conditions, fmt.Sprintf("shop_id = $%d", argNum))
		args = append(args, *filter.ShopID)
		argNum++
	}
	if filter.TechnicianID != nil {
		conditions = append(conditions, fmt.Sprintf("technician_id = $%d", argNum))
		args = append(args, *filter.TechnicianID)
		argNum++
	}
	if filter.VehicleID != nil {
		conditions = append(conditions, fmt.Sprintf("vehicle_id = $%d", argNum))
		args = append(args, *filter.VehicleID)
		argNum++
	}
	if filter.State != nil {
		conditions = append(conditions, fmt.Sprintf("workflow_state = $%d", argNum))
		args = append(args, *filter.State)
		argNum++
	}
	if filter.Urgency != nil {
		conditions = append(conditions, fmt.Sprintf("urgency_level = $%d", argNum))
		args = append(args, *filter.Urgency)
		argNum++
	}

	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := s.db.pool.QueryRow(ctx, "SELECT COUNT(*) FROM inspections"+where, args...).Scan(&total); err != nil {
		return nil, 0, shopwrench.Internal("Failed to count inspections", err)
	}

	// Queue ordering: most urgent first, oldest first within a level
	query := `SELECT` + inspectionColumns + ` FROM inspections` + where + `
		ORDER BY CASE urgency_level
			WHEN 'critical' THEN 0
			WHEN 'high' THEN 1
			WHEN 'normal' THEN 2
			ELSE 3
		END, created_at`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filter.Limit)
		argNum++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filter.Offset)
	}

	rows, err := s.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, shopwrench.Internal("Failed to fetch inspections", err)
	}
	defer rows.Close()

	var inspections []*shopwrench.Inspection
	for rows.Next() {
		inspection, err := scanInspection(rows)
		if err != nil {
			return nil, 0, shopwrench.Internal("Failed to scan inspection", err)
		}
		inspections = append(inspections, inspection)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, shopwrench.Internal("Failed to iterate inspections", err)
	}
	return inspections, total, nil
}

func (s *InspectionService) CreateInspection(ctx context.Context, inspection *shopwrench.Inspection) error {
	if inspection.ID == uuid.Nil {
		inspection.ID = uuid.New()
	}
	now := time.Now()
	inspection.WorkflowState = shopwrench.StateDraft
	inspection.UrgencyLevel = shopwrench.UrgencyLow
	inspection.Version = 1
	inspection.StateChangedAt = now
	inspection.CreatedAt = now
	inspection.UpdatedAt = now

	_, err := s.db.pool.Exec(ctx, `
		INSERT INTO inspections (
			id, shop_id, vehicle_id, customer_id, technician_id,
			workflow_state, urgency_level, estimated_cost, version,
			state_changed_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		inspection.ID, inspection.ShopID, inspection.VehicleID, inspection.CustomerID,
		inspection.TechnicianID, inspection.WorkflowState, inspection.UrgencyLevel,
		inspection.EstimatedCost, inspection.Version,
		inspection.StateChangedAt, inspection.CreatedAt, inspection.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return shopwrench.NotFound("Referenced shop, vehicle, customer, or technician not found")
		}
		return shopwrench.Internal("Failed to create inspection", err)
	}
	return nil
}

func (s *InspectionService) RetireInspection(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.pool.Exec(ctx, `
		UPDATE inspections
		SET retired_at = now(), updated_at = now(), version = version + 1
		WHERE id = $1 AND retired_at IS NULL`,
		id,
	)
	if err != nil {
		return shopwrench.Internal("Failed to retire inspection", err)
	}
	if tag.RowsAffected() == 0 {
		return shopwrench.NotFound("Inspection not found")
	}
	return nil
}

// scanInspection scans one inspection row. Works for both QueryRow and Rows.
func scanInspection(row pgx.Row) (*shopwrench.Inspection, error) {
	var inspection shopwrench.Inspection
	var changedBy *uuid.UUID
	err := row.Scan(
		&inspection.ID, &inspection.ShopID, &inspection.VehicleID, &inspection.CustomerID,
		&inspection.TechnicianID, &inspection.WorkflowState, &inspection.PreviousState,
		&inspection.StateChangedAt, &changedBy, &inspection.UrgencyLevel,
		&inspection.EstimatedCost, &inspection.Version, &inspection.RetiredAt,
		&inspection.CreatedAt, &inspection.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if changedBy != nil {
		inspection.StateChangedBy = *changedBy
	}
	return &inspection, nil
}
