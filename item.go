package shopwrench

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// InspectionItem represents one checked component on an inspection, e.g.
// "front brake pads". Every item mutation triggers an urgency recomputation
// for its inspection.
type InspectionItem struct {
	ID                         uuid.UUID     `json:"id"`
	InspectionID               uuid.UUID     `json:"inspectionId"`
	Category                   ItemCategory  `json:"category"`
	Component                  string        `json:"component"`
	Condition                  ItemCondition `json:"condition"`
	Measurements               []Measurement `json:"measurements,omitempty"`
	Priority                   int           `json:"priority"`
	EstimatedCost              float64       `json:"estimatedCost"`
	RequiresImmediateAttention bool          `json:"requiresImmediateAttention"`
	CreatedAt                  time.Time     `json:"createdAt"`
	UpdatedAt                  time.Time     `json:"updatedAt"`
}

// IsChecked returns true once a technician has recorded a condition.
func (i *InspectionItem) IsChecked() bool {
	return i.Condition != ""
}

// Measurement is a named, unit-tagged numeric reading on an item.
type Measurement struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

// ItemCategory groups components for urgency scoring profiles.
type ItemCategory string

const (
	CategoryBrakes     ItemCategory = "brakes"
	CategoryTires      ItemCategory = "tires"
	CategoryBattery    ItemCategory = "battery"
	CategoryLights     ItemCategory = "lights"
	CategoryFluids     ItemCategory = "fluids"
	CategoryFilters    ItemCategory = "filters"
	CategoryBeltsHoses ItemCategory = "belts_hoses"
	CategoryWipers     ItemCategory = "wipers"
)

// ItemCondition is a per-item health rating.
type ItemCondition string

const (
	ConditionGood           ItemCondition = "good"
	ConditionFair           ItemCondition = "fair"
	ConditionPoor           ItemCondition = "poor"
	ConditionNeedsImmediate ItemCondition = "needs_immediate"
)

// Valid returns true if the condition is one of the recognized ratings.
func (c ItemCondition) Valid() bool {
	switch c {
	case ConditionGood, ConditionFair, ConditionPoor, ConditionNeedsImmediate:
		return true
	}
	return false
}

// ItemService defines operations for managing inspection items.
type ItemService interface {
	// FindItemByID retrieves an item by its ID.
	// Returns ENOTFOUND if the item does not exist.
	FindItemByID(ctx context.Context, id uuid.UUID) (*InspectionItem, error)

	// FindItemsByInspection retrieves all items for an inspection.
	FindItemsByInspection(ctx context.Context, inspectionID uuid.UUID) ([]*InspectionItem, error)

	// CreateItem adds an item to an inspection.
	// Returns ENOTFOUND if the inspection does not exist.
	// Returns EINVALID if the inspection is no longer editable.
	CreateItem(ctx context.Context, item *InspectionItem) error

	// CreateItemsFromTemplate seeds an inspection with the standard checklist
	// items for its shop.
	CreateItemsFromTemplate(ctx context.Context, inspectionID uuid.UUID) ([]*InspectionItem, error)

	// UpdateItem updates an existing item. Callers must recompute the
	// inspection's urgency afterward via WorkflowService.RecomputeUrgency.
	// Returns ENOTFOUND if the item does not exist.
	UpdateItem(ctx context.Context, id uuid.UUID, upd ItemUpdate) (*InspectionItem, error)

	// DeleteItem removes an item from an inspection.
	// Returns ENOTFOUND if the item does not exist.
	DeleteItem(ctx context.Context, id uuid.UUID) error
}

// ItemUpdate defines fields that can be updated on an inspection item.
type ItemUpdate struct {
	Condition                  *ItemCondition
	Measurements               *[]Measurement
	Priority                   *int
	EstimatedCost              *float64
	RequiresImmediateAttention *bool
}
