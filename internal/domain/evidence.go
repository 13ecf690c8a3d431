package domain

import (
	"fmt"
	"sort"
	"time"
)

// Fact categories. Category plus Key is a fact's dedupe identity.
const (
	FactPest     = "pest"
	FactWater    = "water"
	FactCarbon   = "carbon"
	FactWeather  = "weather"
	FactActivity = "activity"
)

// Fact is one structured, deduplicated unit of assessment evidence. Summary
// is the deterministic rule-only recommendation text; Detail is the richer
// evidence string handed to the narrative collaborator.
type Fact struct {
	Category string `json:"category"`
	Key      string `json:"key"`
	Priority int    `json:"priority"`
	Summary  string `json:"summary"`
	Detail   string `json:"detail"`
	Crop     string `json:"crop,omitempty"`
}

// recentWindow is the lookback for activity-pattern heuristics.
const recentWindow = 7 * 24 * time.Hour

// Assessment bundles the three rule-set outputs for one farm and forecast.
type Assessment struct {
	PestRisks   map[string]RiskLevel `json:"pest_risks"`
	Water       WaterAssessment      `json:"water"`
	CarbonTrend CarbonTrend          `json:"carbon_trend"`
}

// CollectFacts merges rule assessments, recent-activity heuristics, and
// weather extremes into a deduplicated evidence set, sorted by priority
// descending then key ascending so the output is deterministic for identical
// inputs. Recency is judged against the package clock.
func CollectFacts(forecast Forecast, assessment Assessment, activities []ActivityRecord, crop string) []Fact {
	now := clock.Now()
	facts := make(map[string]Fact)
	addFact := func(f Fact) {
		f.Crop = crop
		facts[f.Category+"|"+f.Key] = f
	}

	for name, level := range assessment.PestRisks {
		if level == RiskLow {
			continue
		}
		priority := 60
		if level == RiskHigh {
			priority = 90
		}
		addFact(Fact{
			Category: FactPest,
			Key:      name,
			Priority: priority,
			Summary:  fmt.Sprintf("%s risk of %s this week. Scout fields early and prepare control measures.", level, name),
			Detail:   fmt.Sprintf("pest/disease rule %q triggered at %s risk for the 7-day forecast", name, level),
		})
	}

	collectWaterFacts(assessment.Water, addFact)
	collectWeatherFacts(forecast, addFact)
	collectActivityFacts(forecast, assessment.Water, activities, now, addFact)

	if assessment.CarbonTrend == TrendWorsening {
		addFact(Fact{
			Category: FactCarbon,
			Key:      "trend-worsening",
			Priority: 50,
			Summary:  "Your recent activity mix is raising the farm's carbon footprint. Favor lower-emission practices where you can.",
			Detail:   "carbon trend assessment is Worsening: high-footprint activities dominate the recent window",
		})
	}

	out := make([]Fact, 0, len(facts))
	for _, f := range facts {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].Category+"|"+out[i].Key < out[j].Category+"|"+out[j].Key
	})
	return out
}

func collectWaterFacts(water WaterAssessment, addFact func(Fact)) {
	switch water.Stress {
	case RiskHigh:
		addFact(Fact{
			Category: FactWater,
			Key:      "dry-week",
			Priority: 85,
			Summary:  "A dry week is expected. Plan your irrigation schedule to conserve water but avoid crop dehydration.",
			Detail:   "water stress is High: forecast rainfall falls well short of crop water demand",
		})
	case RiskMedium:
		addFact(Fact{
			Category: FactWater,
			Key:      "low-rain",
			Priority: 55,
			Summary:  "Rainfall looks light this week. Keep an eye on soil moisture and top up irrigation where needed.",
			Detail:   "water stress is Medium: forecast rainfall is below typical crop demand",
		})
	}

	if water.ExcessMoisture {
		addFact(Fact{
			Category: FactWater,
			Key:      "heavy-rain",
			Priority: 70,
			Summary:  "Heavy rainfall is expected. Ensure proper drainage to prevent waterlogging and check for soil erosion.",
			Detail:   "a single forecast day exceeds the waterlogging threshold",
		})
	}
}

func collectWeatherFacts(forecast Forecast, addFact func(Fact)) {
	if maxT, ok := forecast.MaxTemp(); ok && maxT > 30 {
		addFact(Fact{
			Category: FactWeather,
			Key:      "heat",
			Priority: 65,
			Summary:  "High temperatures detected. Ensure crops have adequate water and check for signs of heat stress.",
			Detail:   fmt.Sprintf("forecast daily maximum reaches %.1f°C", maxT),
		})
	}
	if minT, ok := forecast.MinTemp(); ok && minT < 5 {
		addFact(Fact{
			Category: FactWeather,
			Key:      "frost",
			Priority: 75,
			Summary:  "Low temperatures detected. Protect sensitive crops from potential frost damage, especially overnight.",
			Detail:   fmt.Sprintf("forecast daily minimum drops to %.1f°C", minT),
		})
	}
}

func collectActivityFacts(forecast Forecast, water WaterAssessment, activities []ActivityRecord, now time.Time, addFact func(Fact)) {
	anyRecent := false
	fertilized := false
	planted := false
	for _, a := range activities {
		if !a.Within(now, recentWindow) {
			continue
		}
		anyRecent = true
		switch a.Category {
		case CategoryFertilizing:
			fertilized = true
		case CategoryPlanting:
			planted = true
		}
	}

	if fertilized {
		addFact(Fact{
			Category: FactActivity,
			Key:      "high-carbon-fertilizer",
			Priority: 45,
			Summary:  "You recently used fertilizer, which has a high carbon footprint. Consider switching to organic compost to improve soil health and reduce emissions.",
			Detail:   "a Fertilizing activity was logged within the last 7 days",
		})
	}

	totalPrecip, havePrecip := forecast.TotalPrecipitation()
	if planted && havePrecip && totalPrecip < 2 {
		addFact(Fact{
			Category: FactActivity,
			Key:      "planted-dry-week",
			Priority: 80,
			Summary:  "You've planted recently during a forecasted dry week. Ensure your new seeds get critical irrigation to help them germinate.",
			Detail:   fmt.Sprintf("a Planting activity in the last 7 days coincides with only %.1fmm of forecast rain", totalPrecip),
		})
	}
	if planted && water.ExcessMoisture {
		addFact(Fact{
			Category: FactActivity,
			Key:      "planted-heavy-rain",
			Priority: 72,
			Summary:  "You've planted recently, and heavy rain is coming. Be sure to check for seed washout or soil erosion in your new plots.",
			Detail:   "a Planting activity in the last 7 days coincides with a forecast waterlogging day",
		})
	}

	if !anyRecent {
		addFact(Fact{
			Category: FactActivity,
			Key:      "no-recent-logs",
			Priority: 10,
			Summary:  "No activities logged this week. Remember to log your activities to get more accurate insights and track your carbon footprint.",
			Detail:   "no activity records fall inside the last 7 days",
		})
	}
}

// StableSummary is the single generic message returned when no evidence facts
// exist at all.
const StableSummary = "Weather looks stable and no critical actions detected. It's a good week for routine farm activities."
