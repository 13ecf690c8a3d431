package domain

import (
	"math"
)

// emissionFactors is the per-activity CO2-equivalent baseline in kilograms.
// Synthetic fertilizers dominate the table. A quantity-aware model could
// refine these, but the flat baseline is the contract the aggregator and
// audit trail rely on.
var emissionFactors = map[ActivityCategory]float64{
	CategoryPlanting:    1.5,
	CategoryIrrigation:  2.2,
	CategoryFertilizing: 10.0,
	CategoryPestControl: 3.0,
	CategoryHarvesting:  1.8,
	CategoryOther:       0.5,
}

// highFootprintKg is the factor threshold above which an activity counts as
// high-footprint for trend analysis (Fertilizing and PestControl today).
const highFootprintKg = 3.0

// EstimateCarbon returns the estimated CO2e mass in kilograms for one
// activity. Unrecognized categories fall back to the Other factor. Quantity
// and description are accepted for future quantity-aware factors; the
// baseline model ignores them. Pure function, never fails.
func EstimateCarbon(category ActivityCategory, _ *Quantity, _ string) float64 {
	if kg, ok := emissionFactors[category]; ok {
		return kg
	}
	return emissionFactors[CategoryOther]
}

// CarbonSummary is a farm's footprint ledger: a grand total plus per-category
// sums. Only categories with at least one activity appear in ByCategory.
// Recomputed from the full activity set on every request; there is no cached
// running total to drift.
type CarbonSummary struct {
	TotalKg    float64                      `json:"total_kg"`
	ByCategory map[ActivityCategory]float64 `json:"by_category"`
}

// summaryToleranceKg bounds the float accumulation error allowed between the
// total and the category sums before the summary is declared inconsistent.
const summaryToleranceKg = 1e-9

// AggregateCarbon computes a CarbonSummary over an activity set. Activities
// are grouped by category; each contributes its stored CarbonKg, or the
// estimator's value when none was stored. The grand total is the sum of the
// category sums, never computed independently, so the ledger invariant holds
// by construction. Empty input yields a zero summary with an empty map.
func AggregateCarbon(activities []ActivityRecord) CarbonSummary {
	byCategory := make(map[ActivityCategory]float64, len(Categories))
	for _, a := range activities {
		kg := EstimateCarbon(a.Category, a.Quantity, a.Description)
		if a.CarbonKg != nil {
			kg = *a.CarbonKg
		}
		byCategory[a.Category] += kg
	}

	total := 0.0
	for _, kg := range byCategory {
		total += kg
	}

	return CarbonSummary{TotalKg: total, ByCategory: byCategory}
}

// Validate checks the ledger invariant: the total equals the sum of the
// category sums within tolerance, and is non-negative. A violation indicates
// a data-integrity bug in the input, reported as ErrSummaryInconsistent
// rather than silently corrected.
func (s CarbonSummary) Validate() error {
	sum := 0.0
	for _, kg := range s.ByCategory {
		sum += kg
	}
	if math.Abs(sum-s.TotalKg) > summaryToleranceKg || s.TotalKg < 0 {
		return ErrSummaryInconsistent
	}
	return nil
}
