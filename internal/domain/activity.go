package domain

import (
	"time"
)

// ActivityCategory classifies a logged farm operation. The category drives
// both carbon factor lookup and the activity-pattern heuristics used by the
// recommendation step.
type ActivityCategory string

const (
	CategoryPlanting    ActivityCategory = "Planting"
	CategoryIrrigation  ActivityCategory = "Irrigation"
	CategoryFertilizing ActivityCategory = "Fertilizing"
	CategoryPestControl ActivityCategory = "PestControl"
	CategoryHarvesting  ActivityCategory = "Harvesting"
	CategoryOther       ActivityCategory = "Other"
)

// Categories lists every recognized activity category in a stable order.
var Categories = []ActivityCategory{
	CategoryPlanting,
	CategoryIrrigation,
	CategoryFertilizing,
	CategoryPestControl,
	CategoryHarvesting,
	CategoryOther,
}

// ParseCategory normalizes a raw category string. Unrecognized values map to
// CategoryOther rather than failing, matching the carbon model contract.
// Legacy logs use "Pest Control" with a space; both spellings are accepted.
func ParseCategory(s string) ActivityCategory {
	switch s {
	case "Planting":
		return CategoryPlanting
	case "Irrigation":
		return CategoryIrrigation
	case "Fertilizing":
		return CategoryFertilizing
	case "PestControl", "Pest Control":
		return CategoryPestControl
	case "Harvesting":
		return CategoryHarvesting
	default:
		return CategoryOther
	}
}

// Quantity is an optional magnitude recorded with an activity, e.g. 50 kg of
// fertilizer or 200 L of irrigation water.
type Quantity struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// ActivityRecord is a single immutable farm activity log entry. Records are
// created by the caller's write path and only ever read by this engine.
//
// CarbonKg is derived, not source-of-truth: it is computed once at creation
// time and stored alongside for audit, but remains recomputable from the
// category via EstimateCarbon. A nil CarbonKg means no precomputed value was
// stored and the aggregator falls back to the estimator.
type ActivityRecord struct {
	FarmID      string           `json:"farm_id"`
	Category    ActivityCategory `json:"category"`
	Description string           `json:"description,omitempty"`
	Quantity    *Quantity        `json:"quantity,omitempty"`
	OccurredAt  time.Time        `json:"occurred_at"`
	CarbonKg    *float64         `json:"carbon_kg,omitempty"`
}

// Within reports whether the activity occurred inside the half-open window
// (now-d, now].
func (a ActivityRecord) Within(now time.Time, d time.Duration) bool {
	return a.OccurredAt.After(now.Add(-d)) && !a.OccurredAt.After(now)
}
