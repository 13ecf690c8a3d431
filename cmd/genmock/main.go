// Command genmock writes deterministic forecast and activity-log fixtures
// for the assess CLI and for manual API testing. It uses the actual domain
// types so the fixtures always match what the engine consumes.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/greenfund/climate-assessment-service/internal/domain"
)

// baseDate anchors every fixture so regeneration is reproducible.
var baseDate = time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "", "output directory for fixture files")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}

	fixtures := map[string]any{
		"forecast_hot_dry.json":      forecast(repeat(33, 7), repeat(18, 7), repeat(0, 7), nil, nil),
		"forecast_mild_wet.json":     forecast(repeat(22, 7), repeat(12, 7), repeat(4, 7), repeat(75, 7), nil),
		"forecast_frost.json":        forecast(repeat(8, 7), []float64{3, 1, -1, 2, 4, 3, 2}, repeat(1, 7), nil, nil),
		"forecast_downpour.json":     forecast(repeat(24, 7), repeat(15, 7), []float64{0, 0, 25, 0, 0, 0, 0}, nil, nil),
		"forecast_humid_blight.json": forecast(repeat(20, 7), repeat(12, 7), repeat(4, 7), repeat(88, 7), nil),
		"forecast_et0_deficit.json":  forecast(repeat(28, 7), repeat(16, 7), repeat(1, 7), nil, repeat(5, 7)),
		"activities_fertilized.json": activities(domain.CategoryFertilizing, domain.CategoryPlanting),
		"activities_low_carbon.json": activities(domain.CategoryHarvesting, domain.CategoryIrrigation),
		"activities_empty.json":      []domain.ActivityRecord{},
	}

	for name, v := range fixtures {
		path := filepath.Join(*outDir, name)
		if err := writeJSON(path, v); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		fmt.Println("wrote", path)
	}
	return nil
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// forecast builds a 7-day fixture. Any nil series is omitted entirely, which
// exercises the engine's missing-field handling.
func forecast(maxT, minT, precip, humidity, et0 []float64) domain.Forecast {
	f := domain.Forecast{Latitude: -1.2921, Longitude: 36.8219}
	for i := 0; i < len(maxT); i++ {
		day := domain.ForecastDay{Date: baseDate.AddDate(0, 0, i)}
		day.TempMaxC = ptrAt(maxT, i)
		day.TempMinC = ptrAt(minT, i)
		day.PrecipitationMm = ptrAt(precip, i)
		day.HumidityPct = ptrAt(humidity, i)
		day.EvapotranspirationMm = ptrAt(et0, i)
		f.Days = append(f.Days, day)
	}
	return f
}

func ptrAt(series []float64, i int) *float64 {
	if series == nil {
		return nil
	}
	v := series[i]
	return &v
}

// activities spreads one record per category across the week before baseDate.
func activities(categories ...domain.ActivityCategory) []domain.ActivityRecord {
	records := make([]domain.ActivityRecord, 0, len(categories))
	for i, c := range categories {
		records = append(records, domain.ActivityRecord{
			FarmID:      "farm-1",
			Category:    c,
			Description: fmt.Sprintf("mock %s entry", c),
			OccurredAt:  baseDate.AddDate(0, 0, -(i + 1)).Add(10 * time.Hour),
		})
	}
	return records
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
