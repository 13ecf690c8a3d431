package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func factKeys(facts []Fact) []string {
	keys := make([]string, len(facts))
	for i, f := range facts {
		keys[i] = f.Category + "|" + f.Key
	}
	return keys
}

func TestCollectFacts_FertilizedAndPlantedBeforeDryWeek(t *testing.T) {
	now := trendClock(t)

	// 1mm of rain across the whole week.
	precips := repeat(0)
	precips[0] = 1
	forecast := makeForecast(repeat(26), repeat(15), precips, nil, nil)

	activities := []ActivityRecord{
		activityAt(CategoryFertilizing, now.AddDate(0, 0, -3)),
		activityAt(CategoryPlanting, now.AddDate(0, 0, -2)),
	}
	assessment := Assessment{
		PestRisks:   AssessPestDisease(forecast, ""),
		Water:       AssessWaterStress(forecast),
		CarbonTrend: AssessCarbonTrend(activities, DefaultTrendConfig()),
	}

	facts := CollectFacts(forecast, assessment, activities, "")
	keys := factKeys(facts)

	assert.Contains(t, keys, "activity|high-carbon-fertilizer")
	assert.Contains(t, keys, "activity|planted-dry-week")
	assert.Contains(t, keys, "water|dry-week")
	require.GreaterOrEqual(t, len(facts), 2)
}

func TestCollectFacts_DeduplicatesByCategoryAndKey(t *testing.T) {
	trendClock(t)
	forecast := makeForecast(repeat(35), nil, repeat(0), nil, nil)
	assessment := Assessment{Water: AssessWaterStress(forecast)}

	facts := CollectFacts(forecast, assessment, nil, "Maize")

	seen := make(map[string]bool)
	for _, f := range facts {
		id := f.Category + "|" + f.Key
		assert.False(t, seen[id], "duplicate fact %s", id)
		seen[id] = true
	}
}

func TestCollectFacts_DeterministicOrdering(t *testing.T) {
	now := trendClock(t)
	forecast := makeForecast(repeat(33), repeat(2), repeat(0), repeat(40), nil)
	activities := []ActivityRecord{
		activityAt(CategoryFertilizing, now.AddDate(0, 0, -1)),
		activityAt(CategoryPlanting, now.AddDate(0, 0, -4)),
	}
	assessment := Assessment{
		PestRisks:   AssessPestDisease(forecast, "Maize"),
		Water:       AssessWaterStress(forecast),
		CarbonTrend: AssessCarbonTrend(activities, DefaultTrendConfig()),
	}

	first := CollectFacts(forecast, assessment, activities, "Maize")
	for range 5 {
		again := CollectFacts(forecast, assessment, activities, "Maize")
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("fact set not deterministic (-first +again):\n%s", diff)
		}
	}

	// Priorities must be non-increasing.
	for i := 1; i < len(first); i++ {
		assert.GreaterOrEqual(t, first[i-1].Priority, first[i].Priority)
	}
}

func TestCollectFacts_NoRecentActivityFact(t *testing.T) {
	now := trendClock(t)
	forecast := makeForecast(repeat(22), repeat(12), repeat(4), nil, nil)
	stale := []ActivityRecord{activityAt(CategoryHarvesting, now.AddDate(0, 0, -20))}

	facts := CollectFacts(forecast, Assessment{Water: AssessWaterStress(forecast)}, stale, "")
	assert.Contains(t, factKeys(facts), "activity|no-recent-logs")
}

func TestCollectFacts_PlantedBeforeHeavyRain(t *testing.T) {
	now := trendClock(t)
	precips := repeat(2)
	precips[2] = 30
	forecast := makeForecast(repeat(22), repeat(12), precips, nil, nil)
	activities := []ActivityRecord{activityAt(CategoryPlanting, now.Add(-36 * time.Hour))}

	water := AssessWaterStress(forecast)
	require.True(t, water.ExcessMoisture)

	facts := CollectFacts(forecast, Assessment{Water: water}, activities, "")
	keys := factKeys(facts)
	assert.Contains(t, keys, "activity|planted-heavy-rain")
	assert.Contains(t, keys, "water|heavy-rain")
	assert.NotContains(t, keys, "activity|planted-dry-week")
}

func TestCollectFacts_WorseningTrendProducesCarbonFact(t *testing.T) {
	trendClock(t)
	forecast := makeForecast(repeat(22), repeat(12), repeat(4), nil, nil)
	facts := CollectFacts(forecast, Assessment{Water: WaterAssessment{Stress: RiskLow}, CarbonTrend: TrendWorsening}, nil, "")
	assert.Contains(t, factKeys(facts), "carbon|trend-worsening")
}

func TestCollectFacts_CropContextPropagates(t *testing.T) {
	trendClock(t)
	forecast := makeForecast(repeat(33), nil, repeat(0), nil, nil)
	facts := CollectFacts(forecast, Assessment{PestRisks: AssessPestDisease(forecast, "Maize"), Water: AssessWaterStress(forecast)}, nil, "Maize")

	require.NotEmpty(t, facts)
	for _, f := range facts {
		assert.Equal(t, "Maize", f.Crop)
	}
}

func TestForecastHelpers_AbsentFieldReportsFalse(t *testing.T) {
	f := makeForecast(nil, nil, nil, nil, nil)
	_, ok := f.MaxTemp()
	assert.False(t, ok)
	_, ok = f.TotalPrecipitation()
	assert.False(t, ok)
	_, ok = f.MeanHumidity()
	assert.False(t, ok)
}
