package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dukerupert/shopwrench"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Compile-time check that RuleService implements shopwrench.RuleService.
var _ shopwrench.RuleService = (*RuleService)(nil)

// RuleService implements shopwrench.RuleService using PostgreSQL. Conditions
// and actions are stored as JSONB; the engine tolerates malformed rules, so
// reads decode leniently and leave interpretation to the evaluator.
type RuleService struct {
	db *DB
}

func (s *RuleService) FindActiveRules(ctx context.Context, shopID uuid.UUID) ([]*shopwrench.BusinessRule, error) {
	rows, err := s.db.pool.Query(ctx, `
		SELECT id, shop_id, name, rule_type, priority, active, conditions, action, created_at, updated_at
		FROM business_rules
		WHERE active AND (shop_id = $1 OR shop_id IS NULL)
		ORDER BY priority DESC, created_at`,
		shopID,
	)
	if err != nil {
		return nil, shopwrench.Internal("Failed to fetch rules", err)
	}
	defer rows.Close()

	var rules []*shopwrench.BusinessRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, shopwrench.Internal("Failed to scan rule", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, shopwrench.Internal("Failed to iterate rules", err)
	}
	return rules, nil
}

func (s *RuleService) CreateRule(ctx context.Context, rule *shopwrench.BusinessRule) error {
	switch rule.Type {
	case shopwrench.RuleTypeValidation, shopwrench.RuleTypeStateTransition, shopwrench.RuleTypeCalculation:
	default:
		return shopwrench.Invalid("invalid rule type %q", rule.Type)
	}

	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	now := time.Now()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	conditions, err := json.Marshal(rule.Conditions)
	if err != nil {
		return shopwrench.Internal("Failed to encode rule conditions", err)
	}
	action, err := json.Marshal(rule.Action)
	if err != nil {
		return shopwrench.Internal("Failed to encode rule action", err)
	}

	_, err = s.db.pool.Exec(ctx, `
		INSERT INTO business_rules (id, shop_id, name, rule_type, priority, active, conditions, action, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rule.ID, rule.ShopID, rule.Name, rule.Type, rule.Priority, rule.Active,
		conditions, action, rule.CreatedAt, rule.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return shopwrench.NotFound("Shop not found")
		}
		return shopwrench.Internal("Failed to create rule", err)
	}
	return nil
}

func (s *RuleService) UpdateRule(ctx context.Context, id uuid.UUID, upd shopwrench.RuleUpdate) (*shopwrench.BusinessRule, error) {
	row := s.db.pool.QueryRow(ctx, `
		SELECT id, shop_id, name, rule_type, priority, active, conditions, action, created_at, updated_at
		FROM business_rules
		WHERE id = $1`,
		id,
	)
	rule, err := scanRule(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, shopwrench.NotFound("Rule not found")
		}
		return nil, shopwrench.Internal("Failed to fetch rule", err)
	}

	if upd.Name != nil {
		rule.Name = *upd.Name
	}
	if upd.Priority != nil {
		rule.Priority = *upd.Priority
	}
	if upd.Active != nil {
		rule.Active = *upd.Active
	}
	if upd.Conditions != nil {
		rule.Conditions = *upd.Conditions
	}
	if upd.Action != nil {
		rule.Action = *upd.Action
	}
	rule.UpdatedAt = time.Now()

	conditions, err := json.Marshal(rule.Conditions)
	if err != nil {
		return nil, shopwrench.Internal("Failed to encode rule conditions", err)
	}
	action, err := json.Marshal(rule.Action)
	if err != nil {
		return nil, shopwrench.Internal("Failed to encode rule action", err)
	}

	_, err = s.db.pool.Exec(ctx, `
		UPDATE business_rules
		SET name = $2, priority = $3, active = $4, conditions = $5, action = $6, updated_at = $7
		WHERE id = $1`,
		rule.ID, rule.Name, rule.Priority, rule.Active, conditions, action, rule.UpdatedAt,
	)
	if err != nil {
		return nil, shopwrench.Internal("Failed to update rule", err)
	}
	return rule, nil
}

func (s *RuleService) DeleteRule(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.pool.Exec(ctx, `DELETE FROM business_rules WHERE id = $1`, id)
	if err != nil {
		return shopwrench.Internal("Failed to delete rule", err)
	}
	if tag.RowsAffected() == 0 {
		return shopwrench.NotFound("Rule not found")
	}
	return nil
}

func scanRule(row pgx.Row) (*shopwrench.BusinessRule, error) {
	var rule shopwrench.BusinessRule
	var conditions, action []byte
	err := row.Scan(
		&rule.ID, &rule.ShopID, &rule.Name, &rule.Type, &rule.Priority, &rule.Active,
		&conditions, &action, &rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	// A rule whose stored JSON no longer decodes is still returned; the
	// evaluator treats it as malformed rather than hiding it here.
	_ = json.Unmarshal(conditions, &rule.Conditions)
	_ = json.Unmarshal(action, &rule.Action)
	return &rule, nil
}
