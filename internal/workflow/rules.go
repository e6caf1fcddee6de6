package workflow

import (
	"fmt"
	"log/slog"

	"github.com/dukerupert/shopwrench"
	"github.com/dukerupert/shopwrench/internal/urgency"
)

// RuleContext is the snapshot a rule's conditions are matched against.
type RuleContext struct {
	Inspection *shopwrench.Inspection
	Items      []*shopwrench.InspectionItem
	Target     shopwrench.WorkflowState
	Urgency    shopwrench.UrgencyReport
}

// Evaluator interprets shop-configured business rules. Conditions and actions
// form a closed set of kinds; anything outside it is malformed. Malformed
// validation rules fail safe as blocking errors, malformed rules of other
// types are skipped. Both are logged for shop-admin attention, never silently
// ignored.
type Evaluator struct {
	logger *slog.Logger
}

// NewEvaluator creates a rule evaluator.
func NewEvaluator(logger *slog.Logger) *Evaluator {
	return &Evaluator{logger: logger}
}

// ValidationErrors returns blocking errors from matching validation-type
// rules, ordered by rule priority.
func (e *Evaluator) ValidationErrors(rules []*shopwrench.BusinessRule, rctx RuleContext) []shopwrench.ValidationError {
	var errs []shopwrench.ValidationError
	for _, rule := range rules {
		if rule.Type != shopwrench.RuleTypeValidation {
			continue
		}
		matched, err := e.matches(rule, rctx)
		if err != nil {
			e.logger.Warn("malformed validation rule blocks transition",
				slog.String("rule", rule.Name),
				slog.String("error", err.Error()))
			errs = append(errs, shopwrench.ValidationError{
				Code:    shopwrench.ValidationRuleViolation,
				Message: fmt.Sprintf("rule %q could not be evaluated", rule.Name),
			})
			continue
		}
		if !matched {
			continue
		}
		if rule.Action.Kind != shopwrench.ActionBlock {
			e.logger.Warn("validation rule has non-blocking action, skipping",
				slog.String("rule", rule.Name),
				slog.String("action", string(rule.Action.Kind)))
			continue
		}
		msg := rule.Action.Message
		if msg == "" {
			msg = fmt.Sprintf("blocked by rule %q", rule.Name)
		}
		errs = append(errs, shopwrench.ValidationError{
			Code:    shopwrench.ValidationRuleViolation,
			Message: msg,
		})
	}
	return errs
}

// FollowOn returns the automatic follow-on target implied by the first
// matching state_transition rule, if any. Rules arrive priority-ordered, so
// first match wins.
func (e *Evaluator) FollowOn(rules []*shopwrench.BusinessRule, rctx RuleContext) (shopwrench.WorkflowState, bool) {
	for _, rule := range rules {
		if rule.Type != shopwrench.RuleTypeStateTransition {
			continue
		}
		matched, err := e.matches(rule, rctx)
		if err != nil {
			e.logger.Warn("skipping malformed state_transition rule",
				slog.String("rule", rule.Name),
				slog.String("error", err.Error()))
			continue
		}
		if !matched {
			continue
		}
		if rule.Action.Kind != shopwrench.ActionAdvanceTo || !rule.Action.State.Valid() {
			e.logger.Warn("skipping state_transition rule with invalid action",
				slog.String("rule", rule.Name))
			continue
		}
		return rule.Action.State, true
	}
	return "", false
}

// CalculationConfig applies threshold overrides from matching calculation
// rules on top of the base urgency config. Later (lower priority) rules do
// not override earlier ones.
func (e *Evaluator) CalculationConfig(rules []*shopwrench.BusinessRule, base urgency.Config) urgency.Config {
	cfg := base
	applied := false
	for _, rule := range rules {
		if rule.Type != shopwrench.RuleTypeCalculation || applied {
			continue
		}
		if rule.Action.Kind != shopwrench.ActionSetThresholds {
			e.logger.Warn("skipping calculation rule with invalid action",
				slog.String("rule", rule.Name))
			continue
		}
		if rule.Action.CriticalAt > 0 {
			cfg.CriticalAt = rule.Action.CriticalAt
		}
		if rule.Action.HighAt > 0 {
			cfg.HighAt = rule.Action.HighAt
		}
		if rule.Action.NormalAt > 0 {
			cfg.NormalAt = rule.Action.NormalAt
		}
		applied = true
	}
	return cfg
}

// matches reports whether every condition of the rule holds. An unrecognized
// condition kind is an error, not a non-match.
func (e *Evaluator) matches(rule *shopwrench.BusinessRule, rctx RuleContext) (bool, error) {
	for _, c := range rule.Conditions {
		ok, err := e.matchCondition(c, rctx)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (e *Evaluator) matchCondition(c shopwrench.RuleCondition, rctx RuleContext) (bool, error) {
	switch c.Kind {
	case shopwrench.CondAllItemsChecked:
		for _, item := range rctx.Items {
			if !item.IsChecked() {
				return false, nil
			}
		}
		return len(rctx.Items) > 0, nil

	case shopwrench.CondAnyItemCondition:
		if !c.Condition.Valid() {
			return false, fmt.Errorf("any_item_condition: invalid condition %q", c.Condition)
		}
		for _, item := range rctx.Items {
			if item.Condition == c.Condition {
				return true, nil
			}
		}
		return false, nil

	case shopwrench.CondMinItems:
		if c.Count <= 0 {
			return false, fmt.Errorf("min_items: count must be positive, got %d", c.Count)
		}
		return len(rctx.Items) >= c.Count, nil

	case shopwrench.CondStateIs:
		if !c.State.Valid() {
			return false, fmt.Errorf("state_is: invalid state %q", c.State)
		}
		return rctx.Inspection.WorkflowState == c.State, nil

	case shopwrench.CondTargetStateIs:
		if !c.State.Valid() {
			return false, fmt.Errorf("target_state_is: invalid state %q", c.State)
		}
		return rctx.Target == c.State, nil

	case shopwrench.CondUrgencyAtLeast:
		if c.Level.Weight() == 0 {
			return false, fmt.Errorf("urgency_at_least: invalid level %q", c.Level)
		}
		return rctx.Urgency.Level.Weight() >= c.Level.Weight(), nil

	case shopwrench.CondEstimatedCostOver:
		return rctx.Inspection.EstimatedCost > c.Amount, nil

	default:
		return false, fmt.Errorf("unrecognized condition kind %q", c.Kind)
	}
}
