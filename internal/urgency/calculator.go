// Package urgency derives severity scores for inspection items and whole
// inspections. Scoring is pure: no persistence, no permissions, same inputs
// always produce the same report.
package urgency

import (
	"fmt"
	"math"

	"github.com/dukerupert/shopwrench"
)

// Config holds the item score cutoffs for each urgency level. Shops may
// override these through calculation-type business rules.
type Config struct {
	CriticalAt int
	HighAt     int
	NormalAt   int
}

// DefaultConfig returns the stock level cutoffs.
func DefaultConfig() Config {
	return Config{CriticalAt: 85, HighAt: 65, NormalAt: 35}
}

// Condition base scores.
var baseScores = map[shopwrench.ItemCondition]float64{
	shopwrench.ConditionGood:           10,
	shopwrench.ConditionFair:           40,
	shopwrench.ConditionPoor:           70,
	shopwrench.ConditionNeedsImmediate: 95,
}

// Measurement bonuses by threshold band.
const (
	bonusCritical = 40
	bonusPoor     = 25
	bonusFair     = 10

	// Items cheaper than this contribute no cost bonus.
	costBonusFloor = 100
	costBonusCap   = 10
)

// Fixed inspection-level scores per aggregation band.
const (
	inspectionCriticalScore = 95
	inspectionHighScore     = 75
	inspectionNormalScore   = 50
	inspectionLowScore      = 20
)

// ScoreItem scores a single inspection item.
func ScoreItem(item *shopwrench.InspectionItem, cfg Config) shopwrench.UrgencyReport {
	score := baseScores[item.Condition]

	var factors, recs []string
	prof, hasProfile := profiles[item.Category]

	if hasProfile {
		for _, m := range item.Measurements {
			th, ok := prof.Thresholds[m.Name]
			if !ok {
				continue
			}
			v := normalizedValue(m.Name, m.Value)
			switch {
			case v <= th.Critical:
				score += bonusCritical
				factors = append(factors, fmt.Sprintf("%s at critical level (%g %s)", th.Label, m.Value, m.Unit))
				recs = append(recs, fmt.Sprintf("Replace %s immediately", th.Label))
			case v <= th.Poor:
				score += bonusPoor
				factors = append(factors, fmt.Sprintf("%s is poor (%g %s)", th.Label, m.Value, m.Unit))
				recs = append(recs, fmt.Sprintf("Service %s soon", th.Label))
			case v <= th.Fair:
				score += bonusFair
				factors = append(factors, fmt.Sprintf("%s is marginal (%g %s)", th.Label, m.Value, m.Unit))
				recs = append(recs, fmt.Sprintf("Monitor %s at next visit", th.Label))
			}
		}
	}

	// Priority bonus: technicians rank 1 (routine) through 10 (urgent).
	p := item.Priority
	if p < 1 {
		p = 1
	}
	if p > 10 {
		p = 10
	}
	score += float64(p-1) * 5

	if item.EstimatedCost > costBonusFloor {
		score += math.Min(item.EstimatedCost/100, costBonusCap)
	}

	if hasProfile {
		score *= prof.Multiplier
	}

	final := int(math.Round(math.Min(math.Max(score, 0), 100)))

	return shopwrench.UrgencyReport{
		Score:           final,
		Level:           levelFor(final, cfg),
		Factors:         factors,
		Recommendations: recs,
	}
}

// ScoreInspection aggregates item scores into an inspection-level report.
// Aggregation is categorical over the counts of items at each level rather
// than a max or average, so one urgent system cannot be diluted by many
// healthy ones.
func ScoreInspection(items []*shopwrench.InspectionItem, cfg Config) shopwrench.UrgencyReport {
	var critical, high, normal int
	var factors, recs []string

	for _, item := range items {
		r := ScoreItem(item, cfg)
		switch r.Level {
		case shopwrench.UrgencyCritical:
			critical++
			factors = append(factors, fmt.Sprintf("%s: critical", item.Component))
		case shopwrench.UrgencyHigh:
			high++
			factors = append(factors, fmt.Sprintf("%s: high urgency", item.Component))
		case shopwrench.UrgencyNormal:
			normal++
		}
		recs = append(recs, r.Recommendations...)
	}

	var score int
	var level shopwrench.UrgencyLevel
	switch {
	case critical > 0:
		score, level = inspectionCriticalScore, shopwrench.UrgencyCritical
		recs = append(recs, "Do not drive this vehicle until critical items are addressed", "Schedule immediate service")
	case high >= 3 || (high >= 1 && normal >= 3):
		score, level = inspectionHighScore, shopwrench.UrgencyHigh
		recs = append(recs, "Schedule service within the next week")
	case high >= 1 || normal >= 2:
		score, level = inspectionNormalScore, shopwrench.UrgencyNormal
		recs = append(recs, "Schedule service at your convenience")
	default:
		score, level = inspectionLowScore, shopwrench.UrgencyLow
	}

	return shopwrench.UrgencyReport{
		Score:           score,
		Level:           level,
		Factors:         factors,
		Recommendations: dedupe(recs),
	}
}

func levelFor(score int, cfg Config) shopwrench.UrgencyLevel {
	switch {
	case score >= cfg.CriticalAt:
		return shopwrench.UrgencyCritical
	case score >= cfg.HighAt:
		return shopwrench.UrgencyHigh
	case score >= cfg.NormalAt:
		return shopwrench.UrgencyNormal
	default:
		return shopwrench.UrgencyLow
	}
}

// dedupe preserves first-seen order.
func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
