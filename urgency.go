package shopwrench

// UrgencyLevel is the derived severity classification of an item or an
// inspection, computed from item conditions and measurements.
type UrgencyLevel string

const (
	UrgencyLow      UrgencyLevel = "low"
	UrgencyNormal   UrgencyLevel = "normal"
	UrgencyHigh     UrgencyLevel = "high"
	UrgencyCritical UrgencyLevel = "critical"
)

// Valid returns true if the level is one of the recognized classifications.
func (l UrgencyLevel) Valid() bool {
	switch l {
	case UrgencyLow, UrgencyNormal, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// Weight returns a numeric weight for ordering by urgency.
func (l UrgencyLevel) Weight() int {
	switch l {
	case UrgencyCritical:
		return 4
	case UrgencyHigh:
		return 3
	case UrgencyNormal:
		return 2
	case UrgencyLow:
		return 1
	default:
		return 0
	}
}

// UrgencyReport is the result of scoring an item or an inspection.
type UrgencyReport struct {
	Score           int          `json:"score"`
	Level           UrgencyLevel `json:"level"`
	Factors         []string     `json:"factors,omitempty"`
	Recommendations []string     `json:"recommendations,omitempty"`
}
