package urgency

import (
	"testing"

	"github.com/dukerupert/shopwrench"
	"github.com/stretchr/testify/assert"
)

func item(cond shopwrench.ItemCondition) *shopwrench.InspectionItem {
	return &shopwrench.InspectionItem{
		Component: "test component",
		Category:  shopwrench.CategoryBeltsHoses,
		Condition: cond,
		Priority:  1,
	}
}

func TestScoreItem(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("needs_immediate scores critical", func(t *testing.T) {
		it := item(shopwrench.ConditionNeedsImmediate)
		it.Category = shopwrench.CategoryBrakes

		r := ScoreItem(it, cfg)
		assert.Equal(t, shopwrench.UrgencyCritical, r.Level)
		assert.Equal(t, 100, r.Score) // 95 * 1.2 clamped
	})

	t.Run("good condition scores low", func(t *testing.T) {
		r := ScoreItem(item(shopwrench.ConditionGood), cfg)
		assert.Equal(t, shopwrench.UrgencyLow, r.Level)
	})

	t.Run("critical measurement adds bonus and factor", func(t *testing.T) {
		it := item(shopwrench.ConditionPoor)
		it.Category = shopwrench.CategoryBrakes
		it.Measurements = []shopwrench.Measurement{
			{Name: "pad_thickness_mm", Value: 1.5, Unit: "mm"},
		}

		r := ScoreItem(it, cfg)
		// 70 base + 40 critical bonus, * 1.2, clamped to 100
		assert.Equal(t, 100, r.Score)
		assert.Equal(t, shopwrench.UrgencyCritical, r.Level)
		assert.NotEmpty(t, r.Factors)
		assert.NotEmpty(t, r.Recommendations)
	})

	t.Run("unknown measurement names are ignored", func(t *testing.T) {
		it := item(shopwrench.ConditionGood)
		it.Category = shopwrench.CategoryTires
		it.Measurements = []shopwrench.Measurement{
			{Name: "sidewall_color", Value: 0},
		}

		r := ScoreItem(it, cfg)
		assert.Empty(t, r.Factors)
	})

	t.Run("priority and cost bonuses", func(t *testing.T) {
		it := item(shopwrench.ConditionFair)
		it.Priority = 5
		it.EstimatedCost = 650

		r := ScoreItem(it, cfg)
		// 40 base + 4*5 priority + 6.5 cost = 66.5 -> 67
		assert.Equal(t, 67, r.Score)
		assert.Equal(t, shopwrench.UrgencyHigh, r.Level)
	})

	t.Run("cost bonus is capped", func(t *testing.T) {
		cheap := item(shopwrench.ConditionFair)
		cheap.EstimatedCost = 1100
		pricey := item(shopwrench.ConditionFair)
		pricey.EstimatedCost = 99000

		assert.Equal(t, ScoreItem(cheap, cfg).Score, ScoreItem(pricey, cfg).Score)
	})

	t.Run("score stays within bounds", func(t *testing.T) {
		it := item(shopwrench.ConditionNeedsImmediate)
		it.Category = shopwrench.CategoryBrakes
		it.Priority = 10
		it.EstimatedCost = 5000
		it.Measurements = []shopwrench.Measurement{
			{Name: "pad_thickness_mm", Value: 0.5},
			{Name: "rotor_thickness_mm", Value: 18},
		}

		r := ScoreItem(it, cfg)
		assert.Equal(t, 100, r.Score)
	})

	t.Run("shop threshold overrides shift levels", func(t *testing.T) {
		strict := Config{CriticalAt: 39, HighAt: 30, NormalAt: 10}
		r := ScoreItem(item(shopwrench.ConditionFair), strict)
		// score 40 crosses the lowered critical cutoff
		assert.Equal(t, shopwrench.UrgencyCritical, r.Level)
	})
}

func TestScoreInspection(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("any needs_immediate item makes the inspection critical", func(t *testing.T) {
		items := []*shopwrench.InspectionItem{
			item(shopwrench.ConditionGood),
			item(shopwrench.ConditionNeedsImmediate),
		}

		r := ScoreInspection(items, cfg)
		assert.Equal(t, shopwrench.UrgencyCritical, r.Level)
		assert.Equal(t, 95, r.Score)
		assert.Contains(t, r.Recommendations, "Do not drive this vehicle until critical items are addressed")
	})

	t.Run("all good items score low", func(t *testing.T) {
		items := []*shopwrench.InspectionItem{
			item(shopwrench.ConditionGood),
			item(shopwrench.ConditionGood),
		}

		r := ScoreInspection(items, cfg)
		assert.Equal(t, shopwrench.UrgencyLow, r.Level)
		assert.Equal(t, 20, r.Score)
	})

	t.Run("three poor items score high", func(t *testing.T) {
		items := []*shopwrench.InspectionItem{
			item(shopwrench.ConditionPoor),
			item(shopwrench.ConditionPoor),
			item(shopwrench.ConditionPoor),
		}

		r := ScoreInspection(items, cfg)
		assert.Equal(t, shopwrench.UrgencyHigh, r.Level)
		assert.Equal(t, 75, r.Score)
	})

	t.Run("two fair items score normal", func(t *testing.T) {
		items := []*shopwrench.InspectionItem{
			item(shopwrench.ConditionFair),
			item(shopwrench.ConditionFair),
		}

		r := ScoreInspection(items, cfg)
		assert.Equal(t, shopwrench.UrgencyNormal, r.Level)
		assert.Equal(t, 50, r.Score)
	})

	t.Run("empty inspection scores low", func(t *testing.T) {
		r := ScoreInspection(nil, cfg)
		assert.Equal(t, shopwrench.UrgencyLow, r.Level)
	})

	t.Run("recomputation is idempotent", func(t *testing.T) {
		items := []*shopwrench.InspectionItem{
			item(shopwrench.ConditionPoor),
			item(shopwrench.ConditionFair),
			item(shopwrench.ConditionGood),
		}

		first := ScoreInspection(items, cfg)
		second := ScoreInspection(items, cfg)
		assert.Equal(t, first.Level, second.Level)
		assert.Equal(t, first.Score, second.Score)
		assert.Equal(t, first.Recommendations, second.Recommendations)
	})

	t.Run("recommendations are deduplicated", func(t *testing.T) {
		bad := func() *shopwrench.InspectionItem {
			it := item(shopwrench.ConditionPoor)
			it.Category = shopwrench.CategoryTires
			it.Measurements = []shopwrench.Measurement{
				{Name: "tread_depth_32nds", Value: 1, Unit: "32nds"},
			}
			return it
		}
		r := ScoreInspection([]*shopwrench.InspectionItem{bad(), bad()}, cfg)

		seen := map[string]int{}
		for _, rec := range r.Recommendations {
			seen[rec]++
			assert.Equal(t, 1, seen[rec], "duplicate recommendation %q", rec)
		}
	})
}
