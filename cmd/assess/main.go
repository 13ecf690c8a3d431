// Command assess runs the rule-only climate assessment offline against
// fixture files. It never touches the network, which makes it useful for
// inspecting rule behavior and for regenerating expected test output.
//
// Usage:
//
//	go run ./cmd/assess \
//	  -forecast data/mock/forecast_hot_dry.json \
//	  -activities data/mock/activities_fertilized.json \
//	  -crop Maize \
//	  -now 2026-03-09T12:00:00Z
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/greenfund/climate-assessment-service/internal/domain"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "assess:", err)
		os.Exit(1)
	}
}

type report struct {
	Assessment      domain.Assessment    `json:"assessment"`
	CarbonSummary   domain.CarbonSummary `json:"carbon_summary"`
	Facts           []domain.Fact        `json:"facts"`
	Recommendations []string             `json:"recommendations"`
}

func run() error {
	forecastPath := flag.String("forecast", "", "path to a forecast JSON fixture")
	activitiesPath := flag.String("activities", "", "path to an activity log JSON fixture (optional)")
	crop := flag.String("crop", "", "primary crop for crop-specific pest rules (optional)")
	nowFlag := flag.String("now", "", "assessment time, RFC3339 (default: current time)")
	maxRecs := flag.Int("max", 3, "maximum recommendations to print")
	flag.Parse()

	if *forecastPath == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -forecast")
	}

	if *nowFlag != "" {
		now, err := time.Parse(time.RFC3339, *nowFlag)
		if err != nil {
			return fmt.Errorf("parse -now: %w", err)
		}
		domain.SetClock(clockwork.NewFakeClockAt(now))
	}

	var forecast domain.Forecast
	if err := readJSON(*forecastPath, &forecast); err != nil {
		return fmt.Errorf("load forecast: %w", err)
	}

	var activities []domain.ActivityRecord
	if *activitiesPath != "" {
		if err := readJSON(*activitiesPath, &activities); err != nil {
			return fmt.Errorf("load activities: %w", err)
		}
	}

	assessment := domain.Assessment{
		PestRisks:   domain.AssessPestDisease(forecast, *crop),
		Water:       domain.AssessWaterStress(forecast),
		CarbonTrend: domain.AssessCarbonTrend(activities, domain.DefaultTrendConfig()),
	}
	facts := domain.CollectFacts(forecast, assessment, activities, *crop)

	recommendations := make([]string, 0, *maxRecs)
	for _, f := range facts {
		recommendations = append(recommendations, f.Summary)
		if len(recommendations) == *maxRecs {
			break
		}
	}
	if len(recommendations) == 0 {
		recommendations = append(recommendations, domain.StableSummary)
	}

	out := report{
		Assessment:      assessment,
		CarbonSummary:   domain.AggregateCarbon(activities),
		Facts:           facts,
		Recommendations: recommendations,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
