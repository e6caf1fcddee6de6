package shopwrench

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RuleType classifies how the engine consults a business rule.
type RuleType string

const (
	// RuleTypeValidation rules contribute blocking errors to the transition
	// validator when their conditions match.
	RuleTypeValidation RuleType = "validation"

	// RuleTypeStateTransition rules describe automatic follow-on transitions
	// applied after a successful commit.
	RuleTypeStateTransition RuleType = "state_transition"

	// RuleTypeCalculation rules override urgency level thresholds for a shop.
	RuleTypeCalculation RuleType = "calculation"
)

// ConditionKind enumerates the closed set of rule condition kinds. Rules with
// an unrecognized kind are malformed: validation rules fail safe (block), the
// rest are skipped and logged.
type ConditionKind string

const (
	CondAllItemsChecked   ConditionKind = "all_items_checked"
	CondAnyItemCondition  ConditionKind = "any_item_condition"
	CondMinItems          ConditionKind = "min_items"
	CondStateIs           ConditionKind = "state_is"
	CondTargetStateIs     ConditionKind = "target_state_is"
	CondUrgencyAtLeast    ConditionKind = "urgency_at_least"
	CondEstimatedCostOver ConditionKind = "estimated_cost_over"
)

// RuleCondition is one condition of a rule; all of a rule's conditions must
// match. Only the field relevant to the kind is consulted.
type RuleCondition struct {
	Kind      ConditionKind `json:"kind"`
	State     WorkflowState `json:"state,omitempty"`
	Condition ItemCondition `json:"condition,omitempty"`
	Level     UrgencyLevel  `json:"level,omitempty"`
	Count     int           `json:"count,omitempty"`
	Amount    float64       `json:"amount,omitempty"`
}

// ActionKind enumerates the closed set of rule action kinds.
type ActionKind string

const (
	// ActionAdvanceTo moves the inspection to the named state
	// (state_transition rules).
	ActionAdvanceTo ActionKind = "advance_to"

	// ActionBlock adds a blocking validation error (validation rules).
	ActionBlock ActionKind = "block"

	// ActionSetThresholds overrides the urgency level cutoffs
	// (calculation rules). Zero fields keep the default cutoff.
	ActionSetThresholds ActionKind = "set_thresholds"
)

// RuleAction is the action a rule takes when its conditions match.
type RuleAction struct {
	Kind    ActionKind    `json:"kind"`
	State   WorkflowState `json:"state,omitempty"`
	Message string        `json:"message,omitempty"`

	// Threshold overrides for set_thresholds.
	CriticalAt int `json:"criticalAt,omitempty"`
	HighAt     int `json:"highAt,omitempty"`
	NormalAt   int `json:"normalAt,omitempty"`
}

// BusinessRule is a shop-scoped (or global, when ShopID is nil) declarative
// rule consulted by the workflow engine. Rules are created by shop admins and
// never mutated by the engine.
type BusinessRule struct {
	ID         uuid.UUID       `json:"id"`
	ShopID     *uuid.UUID      `json:"shopId,omitempty"`
	Name       string          `json:"name"`
	Type       RuleType        `json:"type"`
	Priority   int             `json:"priority"`
	Active     bool            `json:"active"`
	Conditions []RuleCondition `json:"conditions"`
	Action     RuleAction      `json:"action"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// RuleService defines operations for managing business rules.
type RuleService interface {
	// FindActiveRules returns active rules for a shop plus global rules,
	// ordered by priority (highest first).
	FindActiveRules(ctx context.Context, shopID uuid.UUID) ([]*BusinessRule, error)

	// CreateRule creates a new business rule.
	CreateRule(ctx context.Context, rule *BusinessRule) error

	// UpdateRule updates an existing rule.
	// Returns ENOTFOUND if the rule does not exist.
	UpdateRule(ctx context.Context, id uuid.UUID, upd RuleUpdate) (*BusinessRule, error)

	// DeleteRule removes a rule.
	// Returns ENOTFOUND if the rule does not exist.
	DeleteRule(ctx context.Context, id uuid.UUID) error
}

// RuleUpdate defines fields that can be updated on a business rule.
type RuleUpdate struct {
	Name       *string
	Priority   *int
	Active     *bool
	Conditions *[]RuleCondition
	Action     *RuleAction
}
