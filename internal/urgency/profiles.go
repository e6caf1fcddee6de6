package urgency

import "github.com/dukerupert/shopwrench"

// measurementThreshold defines the cutoffs for one named measurement. All
// profiled measurements read "lower is worse": a value at or below Critical
// is critical, at or below Poor is poor, at or below Fair is fair.
type measurementThreshold struct {
	Critical float64
	Poor     float64
	Fair     float64

	// Label is the human-readable component name used in factors.
	Label string
}

// profile tunes scoring for one component category.
type profile struct {
	// Multiplier scales the whole item score. Safety-critical systems score
	// above 1.0, cosmetic ones below.
	Multiplier float64

	Thresholds map[string]measurementThreshold
}

var profiles = map[shopwrench.ItemCategory]profile{
	shopwrench.CategoryBrakes: {
		Multiplier: 1.2,
		Thresholds: map[string]measurementThreshold{
			"pad_thickness_mm":    {Critical: 2, Poor: 4, Fair: 6, Label: "brake pad thickness"},
			"rotor_thickness_mm":  {Critical: 20, Poor: 22, Fair: 24, Label: "rotor thickness"},
			"fluid_moisture_pct":  {Critical: -4, Poor: -3, Fair: -2, Label: "brake fluid moisture"},
		},
	},
	shopwrench.CategoryTires: {
		Multiplier: 1.15,
		Thresholds: map[string]measurementThreshold{
			"tread_depth_32nds": {Critical: 2, Poor: 4, Fair: 6, Label: "tread depth"},
			"pressure_psi":      {Critical: 20, Poor: 26, Fair: 30, Label: "tire pressure"},
		},
	},
	shopwrench.CategoryBattery: {
		Multiplier: 1.0,
		Thresholds: map[string]measurementThreshold{
			"cold_cranking_amps": {Critical: 300, Poor: 400, Fair: 500, Label: "cold cranking amps"},
			"voltage":            {Critical: 11.8, Poor: 12.2, Fair: 12.4, Label: "battery voltage"},
		},
	},
	shopwrench.CategoryLights: {
		Multiplier: 0.8,
	},
	shopwrench.CategoryFluids: {
		Multiplier: 0.9,
		Thresholds: map[string]measurementThreshold{
			"level_pct": {Critical: 20, Poor: 40, Fair: 60, Label: "fluid level"},
		},
	},
	shopwrench.CategoryFilters: {
		Multiplier: 0.7,
	},
	shopwrench.CategoryBeltsHoses: {
		Multiplier: 1.0,
		Thresholds: map[string]measurementThreshold{
			"remaining_life_pct": {Critical: 10, Poor: 25, Fair: 50, Label: "belt remaining life"},
		},
	},
	shopwrench.CategoryWipers: {
		Multiplier: 0.6,
	},
}

// brake fluid moisture is "higher is worse"; stored negated so the shared
// lower-is-worse comparison applies.
func normalizedValue(name string, value float64) float64 {
	if name == "fluid_moisture_pct" {
		return -value
	}
	return value
}
