package workflow

import (
	"io"
	"log/slog"
	"testing"

	"github.com/dukerupert/shopwrench"
	"github.com/dukerupert/shopwrench/internal/urgency"
	"github.com/stretchr/testify/assert"
)

func testEvaluator() *Evaluator {
	return NewEvaluator(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func checkedItems(n int) []*shopwrench.InspectionItem {
	items := make([]*shopwrench.InspectionItem, n)
	for i := range items {
		items[i] = &shopwrench.InspectionItem{Condition: shopwrench.ConditionGood}
	}
	return items
}

func ruleCtx(state shopwrench.WorkflowState, items []*shopwrench.InspectionItem) RuleContext {
	return RuleContext{
		Inspection: &shopwrench.Inspection{WorkflowState: state},
		Items:      items,
	}
}

func TestEvaluatorValidationErrors(t *testing.T) {
	eval := testEvaluator()

	t.Run("matching rule blocks with its message", func(t *testing.T) {
		rules := []*shopwrench.BusinessRule{{
			Name: "minimum checklist",
			Type: shopwrench.RuleTypeValidation,
			Conditions: []shopwrench.RuleCondition{
				{Kind: shopwrench.CondTargetStateIs, State: shopwrench.StatePendingReview},
			},
			Action: shopwrench.RuleAction{Kind: shopwrench.ActionBlock, Message: "cannot submit without at least one photo"},
		}}

		rctx := ruleCtx(shopwrench.StateInProgress, nil)
		rctx.Target = shopwrench.StatePendingReview

		errs := eval.ValidationErrors(rules, rctx)
		assert.Len(t, errs, 1)
		assert.Equal(t, shopwrench.ValidationRuleViolation, errs[0].Code)
		assert.Equal(t, "cannot submit without at least one photo", errs[0].Message)
	})

	t.Run("non-matching rule contributes nothing", func(t *testing.T) {
		rules := []*shopwrench.BusinessRule{{
			Name: "big jobs need sign-off",
			Type: shopwrench.RuleTypeValidation,
			Conditions: []shopwrench.RuleCondition{
				{Kind: shopwrench.CondEstimatedCostOver, Amount: 5000},
			},
			Action: shopwrench.RuleAction{Kind: shopwrench.ActionBlock},
		}}

		errs := eval.ValidationErrors(rules, ruleCtx(shopwrench.StateInProgress, nil))
		assert.Empty(t, errs)
	})

	t.Run("malformed validation rule fails safe", func(t *testing.T) {
		rules := []*shopwrench.BusinessRule{{
			Name: "broken",
			Type: shopwrench.RuleTypeValidation,
			Conditions: []shopwrench.RuleCondition{
				{Kind: "does_not_exist"},
			},
			Action: shopwrench.RuleAction{Kind: shopwrench.ActionBlock},
		}}

		errs := eval.ValidationErrors(rules, ruleCtx(shopwrench.StateInProgress, nil))
		assert.Len(t, errs, 1, "malformed rule must block, not be ignored")
	})

	t.Run("other rule types are ignored", func(t *testing.T) {
		rules := []*shopwrench.BusinessRule{{
			Name:   "auto advance",
			Type:   shopwrench.RuleTypeStateTransition,
			Action: shopwrench.RuleAction{Kind: shopwrench.ActionAdvanceTo, State: shopwrench.StatePendingReview},
		}}
		assert.Empty(t, eval.ValidationErrors(rules, ruleCtx(shopwrench.StateInProgress, nil)))
	})
}

func TestEvaluatorFollowOn(t *testing.T) {
	eval := testEvaluator()

	advanceRule := &shopwrench.BusinessRule{
		Name: "auto submit when fully checked",
		Type: shopwrench.RuleTypeStateTransition,
		Conditions: []shopwrench.RuleCondition{
			{Kind: shopwrench.CondStateIs, State: shopwrench.StateInProgress},
			{Kind: shopwrench.CondAllItemsChecked},
		},
		Action: shopwrench.RuleAction{Kind: shopwrench.ActionAdvanceTo, State: shopwrench.StatePendingReview},
	}

	t.Run("matching rule yields the follow-on target", func(t *testing.T) {
		next, ok := eval.FollowOn([]*shopwrench.BusinessRule{advanceRule}, ruleCtx(shopwrench.StateInProgress, checkedItems(3)))
		assert.True(t, ok)
		assert.Equal(t, shopwrench.StatePendingReview, next)
	})

	t.Run("unchecked item prevents the advance", func(t *testing.T) {
		items := checkedItems(2)
		items = append(items, &shopwrench.InspectionItem{})

		_, ok := eval.FollowOn([]*shopwrench.BusinessRule{advanceRule}, ruleCtx(shopwrench.StateInProgress, items))
		assert.False(t, ok)
	})

	t.Run("malformed state_transition rule is skipped", func(t *testing.T) {
		broken := &shopwrench.BusinessRule{
			Name:       "broken",
			Type:       shopwrench.RuleTypeStateTransition,
			Conditions: []shopwrench.RuleCondition{{Kind: shopwrench.CondMinItems, Count: -1}},
			Action:     shopwrench.RuleAction{Kind: shopwrench.ActionAdvanceTo, State: shopwrench.StatePendingReview},
		}

		next, ok := eval.FollowOn([]*shopwrench.BusinessRule{broken, advanceRule}, ruleCtx(shopwrench.StateInProgress, checkedItems(1)))
		assert.True(t, ok, "healthy lower-priority rule should still apply")
		assert.Equal(t, shopwrench.StatePendingReview, next)
	})

	t.Run("invalid advance target is skipped", func(t *testing.T) {
		bogus := &shopwrench.BusinessRule{
			Name:   "bogus target",
			Type:   shopwrench.RuleTypeStateTransition,
			Action: shopwrench.RuleAction{Kind: shopwrench.ActionAdvanceTo, State: "warp_drive"},
		}
		_, ok := eval.FollowOn([]*shopwrench.BusinessRule{bogus}, ruleCtx(shopwrench.StateInProgress, nil))
		assert.False(t, ok)
	})
}

func TestEvaluatorCalculationConfig(t *testing.T) {
	eval := testEvaluator()
	base := urgency.DefaultConfig()

	t.Run("overrides replace only the set cutoffs", func(t *testing.T) {
		rules := []*shopwrench.BusinessRule{{
			Name:   "strict shop",
			Type:   shopwrench.RuleTypeCalculation,
			Action: shopwrench.RuleAction{Kind: shopwrench.ActionSetThresholds, CriticalAt: 75},
		}}

		cfg := eval.CalculationConfig(rules, base)
		assert.Equal(t, 75, cfg.CriticalAt)
		assert.Equal(t, base.HighAt, cfg.HighAt)
		assert.Equal(t, base.NormalAt, cfg.NormalAt)
	})

	t.Run("highest priority rule wins", func(t *testing.T) {
		rules := []*shopwrench.BusinessRule{
			{Name: "first", Type: shopwrench.RuleTypeCalculation, Action: shopwrench.RuleAction{Kind: shopwrench.ActionSetThresholds, CriticalAt: 70}},
			{Name: "second", Type: shopwrench.RuleTypeCalculation, Action: shopwrench.RuleAction{Kind: shopwrench.ActionSetThresholds, CriticalAt: 90}},
		}

		cfg := eval.CalculationConfig(rules, base)
		assert.Equal(t, 70, cfg.CriticalAt)
	})

	t.Run("no rules keeps defaults", func(t *testing.T) {
		assert.Equal(t, base, eval.CalculationConfig(nil, base))
	})
}
