package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateCarbon_FactorTable(t *testing.T) {
	tests := []struct {
		category ActivityCategory
		want     float64
	}{
		{CategoryPlanting, 1.5},
		{CategoryIrrigation, 2.2},
		{CategoryFertilizing, 10.0},
		{CategoryPestControl, 3.0},
		{CategoryHarvesting, 1.8},
		{CategoryOther, 0.5},
	}
	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateCarbon(tt.category, nil, ""))
		})
	}
}

func TestEstimateCarbon_UnknownCategoryFallsBackToOther(t *testing.T) {
	assert.Equal(t, 0.5, EstimateCarbon(ActivityCategory("Composting"), nil, ""))
}

func TestEstimateCarbon_Pure(t *testing.T) {
	qty := &Quantity{Value: 50, Unit: "kg"}
	first := EstimateCarbon(CategoryFertilizing, qty, "urea application")
	for range 10 {
		assert.Equal(t, first, EstimateCarbon(CategoryFertilizing, qty, "urea application"))
	}
}

func TestAggregateCarbon_Empty(t *testing.T) {
	summary := AggregateCarbon(nil)
	assert.Zero(t, summary.TotalKg)
	assert.Empty(t, summary.ByCategory)
	require.NoError(t, summary.Validate())
}

func TestAggregateCarbon_TotalMatchesCategorySums(t *testing.T) {
	stored := 9.25
	activities := []ActivityRecord{
		{Category: CategoryFertilizing, CarbonKg: &stored},
		{Category: CategoryFertilizing}, // no precomputed value, estimator fallback
		{Category: CategoryPlanting},
		{Category: CategoryIrrigation},
		{Category: CategoryIrrigation},
	}

	summary := AggregateCarbon(activities)

	assert.InDelta(t, 9.25+10.0, summary.ByCategory[CategoryFertilizing], 1e-9)
	assert.InDelta(t, 1.5, summary.ByCategory[CategoryPlanting], 1e-9)
	assert.InDelta(t, 4.4, summary.ByCategory[CategoryIrrigation], 1e-9)

	sum := 0.0
	for _, kg := range summary.ByCategory {
		sum += kg
	}
	assert.InDelta(t, sum, summary.TotalKg, 1e-9)
	require.NoError(t, summary.Validate())
}

func TestAggregateCarbon_OmitsEmptyCategories(t *testing.T) {
	summary := AggregateCarbon([]ActivityRecord{{Category: CategoryHarvesting}})
	assert.Len(t, summary.ByCategory, 1)
	assert.NotContains(t, summary.ByCategory, CategoryFertilizing)
}

func TestCarbonSummary_ValidateDetectsTamperedTotal(t *testing.T) {
	summary := AggregateCarbon([]ActivityRecord{{Category: CategoryPlanting}})
	summary.TotalKg += 1
	assert.ErrorIs(t, summary.Validate(), ErrSummaryInconsistent)
}

func TestCarbonSummary_ValidateRejectsNegativeTotal(t *testing.T) {
	s := CarbonSummary{TotalKg: -1, ByCategory: map[ActivityCategory]float64{CategoryOther: -1}}
	assert.ErrorIs(t, s.Validate(), ErrSummaryInconsistent)
}

func TestParseCategory(t *testing.T) {
	assert.Equal(t, CategoryPestControl, ParseCategory("Pest Control"))
	assert.Equal(t, CategoryPestControl, ParseCategory("PestControl"))
	assert.Equal(t, CategoryOther, ParseCategory("fence repair"))
	assert.Equal(t, CategoryPlanting, ParseCategory("Planting"))
}
