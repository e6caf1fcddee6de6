package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dukerupert/shopwrench"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Compile-time check that ItemService implements shopwrench.ItemService.
var _ shopwrench.ItemService = (*ItemService)(nil)

// ItemService implements shopwrench.ItemService using PostgreSQL.
type ItemService struct {
	db *DB
}

// defaultChecklist is the standard multi-point checklist seeded onto new
// inspections. Conditions start empty; a technician records them during the
// in_progress state.
var defaultChecklist = []shopwrench.InspectionItem{
	{Category: shopwrench.CategoryBrakes, Component: "Front brake pads", Priority: 1},
	{Category: shopwrench.CategoryBrakes, Component: "Rear brake pads", Priority: 1},
	{Category: shopwrench.CategoryBrakes, Component: "Brake fluid", Priority: 2},
	{Category: shopwrench.CategoryTires, Component: "Front tires", Priority: 1},
	{Category: shopwrench.CategoryTires, Component: "Rear tires", Priority: 1},
	{Category: shopwrench.CategoryBattery, Component: "Battery", Priority: 2},
	{Category: shopwrench.CategoryLights, Component: "Headlights", Priority: 3},
	{Category: shopwrench.CategoryLights, Component: "Brake lights", Priority: 2},
	{Category: shopwrench.CategoryFluids, Component: "Engine oil", Priority: 2},
	{Category: shopwrench.CategoryFluids, Component: "Coolant", Priority: 2},
	{Category: shopwrench.CategoryFilters, Component: "Engine air filter", Priority: 4},
	{Category: shopwrench.CategoryFilters, Component: "Cabin air filter", Priority: 5},
	{Category: shopwrench.CategoryBeltsHoses, Component: "Serpentine belt", Priority: 3},
	{Category: shopwrench.CategoryWipers, Component: "Wiper blades", Priority: 5},
}

func (s *ItemService) FindItemByID(ctx context.Context, id uuid.UUID) (*shopwrench.InspectionItem, error) {
	row := s.db.pool.QueryRow(ctx, `
		SELECT id, inspection_id, category, component, condition, measurements,
		       priority, estimated_cost, requires_immediate_attention, created_at, updated_at
		FROM inspection_items
		WHERE id = $1`,
		id,
	)
	item, err := scanItem(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, shopwrench.NotFound("Item not found")
		}
		return nil, shopwrench.Internal("Failed to fetch item", err)
	}
	return item, nil
}

func (s *ItemService) FindItemsByInspection(ctx context.Context, inspectionID uuid.UUID) ([]*shopwrench.InspectionItem, error) {
	rows, err := s.db.pool.Query(ctx, `
		SELECT id, inspection_id, category, component, condition, measurements,
		       priority, estimated_cost, requires_immediate_attention, created_at, updated_at
		FROM inspection_items
		WHERE inspection_id = $1
		ORDER BY priority, component`,
		inspectionID,
	)
	if err != nil {
		return nil, shopwrench.Internal("Failed to fetch items", err)
	}
	defer rows.Close()

	var items []*shopwrench.InspectionItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, shopwrench.Internal("Failed to scan item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, shopwrench.Internal("Failed to iterate items", err)
	}
	return items, nil
}

func (s *ItemService) CreateItem(ctx context.Context, item *shopwrench.InspectionItem) error {
	state, err := s.inspectionState(ctx, item.InspectionID)
	if err != nil {
		return err
	}
	if !state.IsEditable() {
		return shopwrench.Invalid("inspection in state %s does not accept item changes", state)
	}
	if item.Condition != "" && !item.Condition.Valid() {
		return shopwrench.Invalid("invalid condition %q", item.Condition)
	}

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.Priority == 0 {
		item.Priority = 1
	}
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	measurements, err := json.Marshal(item.Measurements)
	if err != nil {
		return shopwrench.Internal("Failed to encode measurements", err)
	}

	_, err = s.db.pool.Exec(ctx, `
		INSERT INTO inspection_items (
			id, inspection_id, category, component, condition, measurements,
			priority, estimated_cost, requires_immediate_attention, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		item.ID, item.InspectionID, item.Category, item.Component, item.Condition,
		measurements, item.Priority, item.EstimatedCost,
		item.RequiresImmediateAttention, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return shopwrench.NotFound("Inspection not found")
		}
		return shopwrench.Internal("Failed to create item", err)
	}
	return nil
}

func (s *ItemService) CreateItemsFromTemplate(ctx context.Context, inspectionID uuid.UUID) ([]*shopwrench.InspectionItem, error) {
	state, err := s.inspectionState(ctx, inspectionID)
	if err != nil {
		return nil, err
	}
	if !state.IsEditable() {
		return nil, shopwrench.Invalid("inspection in state %s does not accept item changes", state)
	}

	items := make([]*shopwrench.InspectionItem, 0, len(defaultChecklist))
	for _, tmpl := range defaultChecklist {
		item := tmpl
		item.ID = uuid.New()
		item.InspectionID = inspectionID
		now := time.Now()
		item.CreatedAt = now
		item.UpdatedAt = now

		_, err := s.db.pool.Exec(ctx, `
			INSERT INTO inspection_items (
				id, inspection_id, category, component, condition, measurements,
				priority, estimated_cost, requires_immediate_attention, created_at, updated_at
			) VALUES ($1, $2, $3, $4, '', '[]', $5, 0, false, $6, $7)`,
			item.ID, item.InspectionID, item.Category, item.Component,
			item.Priority, item.CreatedAt, item.UpdatedAt,
		)
		if err != nil {
			return nil, shopwrench.Internal("Failed to seed checklist item", err)
		}
		items = append(items, &item)
	}
	return items, nil
}

func (s *ItemService) UpdateItem(ctx context.Context, id uuid.UUID, upd shopwrench.ItemUpdate) (*shopwrench.InspectionItem, error) {
	item, err := s.FindItemByID(ctx, id)
	if err != nil {
		return nil, err
	}

	state, err := s.inspectionState(ctx, item.InspectionID)
	if err != nil {
		return nil, err
	}
	if !state.IsEditable() {
		return nil, shopwrench.Invalid("inspection in state %s does not accept item changes", state)
	}

	if upd.Condition != nil {
		if !upd.Condition.Valid() {
			return nil, shopwrench.Invalid("invalid condition %q", *upd.Condition)
		}
		item.Condition = *upd.Condition
	}
	if upd.Measurements != nil {
		item.Measurements = *upd.Measurements
	}
	if upd.Priority != nil {
		item.Priority = *upd.Priority
	}
	if upd.EstimatedCost != nil {
		item.EstimatedCost = *upd.EstimatedCost
	}
	if upd.RequiresImmediateAttention != nil {
		item.RequiresImmediateAttention = *upd.RequiresImmediateAttention
	}
	item.UpdatedAt = time.Now()

	measurements, err := json.Marshal(item.Measurements)
	if err != nil {
		return nil, shopwrench.Internal("Failed to encode measurements", err)
	}

	_, err = s.db.pool.Exec(ctx, `
		UPDATE inspection_items
		SET condition = $2, measurements = $3, priority = $4, estimated_cost = $5,
		    requires_immediate_attention = $6, updated_at = $7
		WHERE id = $1`,
		item.ID, item.Condition, measurements, item.Priority, item.EstimatedCost,
		item.RequiresImmediateAttention, item.UpdatedAt,
	)
	if err != nil {
		return nil, shopwrench.Internal("Failed to update item", err)
	}
	return item, nil
}

func (s *ItemService) DeleteItem(ctx context.Context, id uuid.UUID) error {
	item, err := s.FindItemByID(ctx, id)
	if err != nil {
		return err
	}

	state, err := s.inspectionState(ctx, item.InspectionID)
	if err != nil {
		return err
	}
	if !state.IsEditable() {
		return shopwrench.Invalid("inspection in state %s does not accept item changes", state)
	}

	_, err = s.db.pool.Exec(ctx, `DELETE FROM inspection_items WHERE id = $1`, id)
	if err != nil {
		return shopwrench.Internal("Failed to delete item", err)
	}
	return nil
}

func (s *ItemService) inspectionState(ctx context.Context, inspectionID uuid.UUID) (shopwrench.WorkflowState, error) {
	var state shopwrench.WorkflowState
	err := s.db.pool.QueryRow(ctx,
		`SELECT workflow_state FROM inspections WHERE id = $1 AND retired_at IS NULL`,
		inspectionID,
	).Scan(&state)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", shopwrench.NotFound("Inspection not found")
		}
		return "", shopwrench.Internal("Failed to fetch inspection state", err)
	}
	return state, nil
}

func scanItem(row pgx.Row) (*shopwrench.InspectionItem, error) {
	var item shopwrench.InspectionItem
	var measurements []byte
	err := row.Scan(
		&item.ID, &item.InspectionID, &item.Category, &item.Component, &item.Condition,
		&measurements, &item.Priority, &item.EstimatedCost,
		&item.RequiresImmediateAttention, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(measurements) > 0 {
		if err := json.Unmarshal(measurements, &item.Measurements); err != nil {
			return nil, err
		}
	}
	return &item, nil
}
