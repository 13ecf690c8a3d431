package domain

import (
	"strings"
	"time"
)

// RiskLevel is the ordinal severity scale shared by the pest/disease and
// water-stress assessments.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// rank orders risk levels for prioritization. Unknown levels rank lowest.
func (r RiskLevel) rank() int {
	switch r {
	case RiskHigh:
		return 3
	case RiskMedium:
		return 2
	case RiskLow:
		return 1
	default:
		return 0
	}
}

// CarbonTrend is the direction of a farm's recent emissions pattern.
type CarbonTrend string

const (
	TrendImproving CarbonTrend = "Improving"
	TrendStable    CarbonTrend = "Stable"
	TrendWorsening CarbonTrend = "Worsening"
)

// WaterAssessment carries the dry-stress level plus a non-exclusive
// excess-moisture flag. A week can be both dry overall and hold a single
// flood-risk day, so the two axes are reported separately.
type WaterAssessment struct {
	Stress         RiskLevel `json:"stress"`
	ExcessMoisture bool      `json:"excess_moisture"`
}

// Water-stress thresholds over a 7-day window.
const (
	dryWeekTotalMm     = 2.0  // total precipitation at or below this is severe dryness
	lowRainTotalMm     = 10.0 // below this the week still leans dry
	waterloggingDayMm  = 10.0 // any single day above this risks waterlogging
	et0DeficitSevere   = 0.4  // precip under 40% of ET0 demand
	et0DeficitModerate = 0.8  // precip under 80% of ET0 demand
)

// pestRule is one entry in the declarative pest/disease table. Assess
// evaluates the rule against a forecast and reports (level, true) when the
// trigger holds; (_, false) means the rule did not trigger or a required
// forecast field was absent. Crops empty means crop-agnostic.
type pestRule struct {
	Name   string
	Crops  []string
	Assess func(f Forecast) (RiskLevel, bool)
}

// pestRules holds every known pest/disease rule. Adding or removing a rule is
// a data change here, not a control-flow change in the engine.
var pestRules = []pestRule{
	{
		Name:  "Fall Armyworm",
		Crops: []string{"Maize"},
		Assess: func(f Forecast) (RiskLevel, bool) {
			mean, ok := f.MeanMaxTemp()
			if !ok {
				return "", false
			}
			switch {
			case mean >= 28:
				return RiskHigh, true
			case mean >= 25:
				return RiskMedium, true
			}
			return "", false
		},
	},
	{
		Name:  "Stem Borer",
		Crops: []string{"Maize", "Sorghum"},
		Assess: func(f Forecast) (RiskLevel, bool) {
			maxT, ok := f.MaxTemp()
			if !ok || maxT < 30 {
				return "", false
			}
			if total, ok := f.TotalPrecipitation(); ok && total < 5 {
				return RiskHigh, true
			}
			return RiskMedium, true
		},
	},
	{
		Name: "Fungal Blight",
		Assess: func(f Forecast) (RiskLevel, bool) {
			hum, ok := f.MeanHumidity()
			if !ok {
				return "", false
			}
			if total, ok := f.TotalPrecipitation(); ok && hum >= 80 && total >= 20 {
				return RiskHigh, true
			}
			if hum >= 70 {
				return RiskMedium, true
			}
			return "", false
		},
	},
	{
		Name: "Aphids",
		Assess: func(f Forecast) (RiskLevel, bool) {
			total, okP := f.TotalPrecipitation()
			mean, okT := f.MeanMaxTemp()
			if !okP || !okT {
				return "", false
			}
			if total < 5 && mean >= 25 {
				return RiskMedium, true
			}
			return "", false
		},
	},
	{
		Name:  "Late Blight",
		Crops: []string{"Potato", "Tomato"},
		Assess: func(f Forecast) (RiskLevel, bool) {
			hum, ok := f.MeanHumidity()
			if !ok {
				return "", false
			}
			if hum >= 85 && f.AllMaxTempsBetween(10, 25) {
				return RiskHigh, true
			}
			return "", false
		},
	},
	{
		Name: "Frost Damage",
		Assess: func(f Forecast) (RiskLevel, bool) {
			minT, ok := f.MinTemp()
			if !ok {
				return "", false
			}
			switch {
			case minT < 0:
				return RiskHigh, true
			case minT < 5:
				return RiskMedium, true
			}
			return "", false
		},
	},
}

// AssessPestDisease evaluates the pest/disease rule table against a forecast.
// Crop-specific rules run only when the farm's crop matches (case-insensitive).
// An empty crop evaluates crop-agnostic rules only. Rules whose required
// forecast fields are absent contribute no entry; the assessment itself never
// fails.
func AssessPestDisease(forecast Forecast, crop string) map[string]RiskLevel {
	risks := make(map[string]RiskLevel)
	for _, rule := range pestRules {
		if !rule.appliesTo(crop) {
			continue
		}
		if level, ok := rule.Assess(forecast); ok {
			risks[rule.Name] = level
		}
	}
	return risks
}

func (r pestRule) appliesTo(crop string) bool {
	if len(r.Crops) == 0 {
		return true
	}
	for _, c := range r.Crops {
		if strings.EqualFold(c, crop) {
			return true
		}
	}
	return false
}

// AssessWaterStress classifies the week's dryness and flags excess moisture.
// When evapotranspiration data is present the stress level compares rainfall
// against crop water demand (ET0); otherwise fixed rainfall thresholds apply.
// A forecast with no precipitation data at all yields Low with no flag, since
// none of the water rules can evaluate.
func AssessWaterStress(forecast Forecast) WaterAssessment {
	total, ok := forecast.TotalPrecipitation()
	if !ok {
		return WaterAssessment{Stress: RiskLow}
	}

	assessment := WaterAssessment{Stress: RiskLow}
	if maxDay, ok := forecast.MaxDailyPrecipitation(); ok && maxDay > waterloggingDayMm {
		assessment.ExcessMoisture = true
	}

	if demand, ok := forecast.TotalEvapotranspiration(); ok && demand > 0 {
		switch {
		case total < demand*et0DeficitSevere:
			assessment.Stress = RiskHigh
		case total < demand*et0DeficitModerate:
			assessment.Stress = RiskMedium
		}
		return assessment
	}

	switch {
	case total <= dryWeekTotalMm:
		assessment.Stress = RiskHigh
	case total < lowRainTotalMm:
		assessment.Stress = RiskMedium
	}
	return assessment
}

// TrendConfig tunes the carbon-trend heuristic. Thresholds are deliberately
// configuration, not contract; the defaults below are a starting point for
// field calibration.
type TrendConfig struct {
	// Window is the length of the recent activity window compared against
	// the window immediately before it.
	Window time.Duration
	// Margin is the minimum change in high-footprint share treated as a
	// real shift rather than noise.
	Margin float64
}

// DefaultTrendConfig returns the standard 7-day window with a 15-point margin.
func DefaultTrendConfig() TrendConfig {
	return TrendConfig{Window: 7 * 24 * time.Hour, Margin: 0.15}
}

// AssessCarbonTrend compares the share of high-footprint activities in the
// most recent window against the preceding window of equal length. An empty
// recent window yields Stable, never a fault. With no baseline activity the
// recent window is judged on its own: any high-footprint share above the
// margin reads as Worsening.
func AssessCarbonTrend(activities []ActivityRecord, cfg TrendConfig) CarbonTrend {
	if cfg.Window <= 0 {
		cfg = DefaultTrendConfig()
	}
	now := clock.Now()

	recent := highFootprintShare(activities, now, cfg.Window)
	if recent.total == 0 {
		return TrendStable
	}
	previous := highFootprintShare(activities, now.Add(-cfg.Window), cfg.Window)

	recentShare := recent.share()
	if previous.total == 0 {
		if recentShare > cfg.Margin {
			return TrendWorsening
		}
		return TrendStable
	}

	switch delta := recentShare - previous.share(); {
	case delta > cfg.Margin:
		return TrendWorsening
	case delta < -cfg.Margin:
		return TrendImproving
	default:
		return TrendStable
	}
}

type shareCount struct {
	high  int
	total int
}

func (s shareCount) share() float64 {
	if s.total == 0 {
		return 0
	}
	return float64(s.high) / float64(s.total)
}

func highFootprintShare(activities []ActivityRecord, end time.Time, window time.Duration) shareCount {
	var s shareCount
	for _, a := range activities {
		if !a.Within(end, window) {
			continue
		}
		s.total++
		if EstimateCarbon(a.Category, a.Quantity, a.Description) >= highFootprintKg {
			s.high++
		}
	}
	return s
}
