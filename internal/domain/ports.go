package domain

import "context"

// ForecastFetcher retrieves a fresh multi-day forecast for a coordinate pair.
// Implementations own their retry policy; a returned error is final.
type ForecastFetcher interface {
	// Fetch requests the named daily fields for the coordinate. Fields the
	// provider does not return stay nil on the forecast days.
	Fetch(ctx context.Context, lat, lon float64, fields []string) (Forecast, error)
}

// NarrativeRequest is the structured evidence payload handed to the narrative
// collaborator.
type NarrativeRequest struct {
	Facts    []Fact `json:"facts"`
	Context  string `json:"context"`
	MaxItems int    `json:"max_items"`
}

// Narrator converts assessment evidence into short, actionable, prioritized
// recommendation text. Implementations must honor the context deadline; any
// response not matching the expected shape is a *NarrativeError. The engine
// treats every Narrator failure as recoverable.
type Narrator interface {
	Narrate(ctx context.Context, req NarrativeRequest) ([]string, error)
}
