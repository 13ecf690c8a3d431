// Package engine orchestrates a complete climate assessment: forecast fetch,
// carbon aggregation, the three rule sets, evidence collection, and
// recommendation synthesis.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/greenfund/climate-assessment-service/internal/domain"
	"github.com/greenfund/climate-assessment-service/internal/observability"
)

// EventPublisher emits an assessment-completed event for downstream
// consumers. Publishing is best-effort; a failure never fails the assessment.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.AssessmentEvent) error
}

// Options tunes synthesis and trend detection.
type Options struct {
	// MaxRecommendations caps the synthesized list. Zero means 3.
	MaxRecommendations int
	// Trend configures the carbon-trend comparison windows.
	Trend domain.TrendConfig
}

func (o Options) withDefaults() Options {
	if o.MaxRecommendations <= 0 {
		o.MaxRecommendations = 3
	}
	if o.Trend.Window <= 0 {
		o.Trend = domain.DefaultTrendConfig()
	}
	return o
}

// Engine runs assessments against a forecast source and an optional
// narrative collaborator. A nil narrator means rule-only synthesis; a nil
// publisher disables event emission.
type Engine struct {
	fetcher   domain.ForecastFetcher
	narrator  domain.Narrator
	publisher EventPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	opts      Options
}

// New creates an Engine. fetcher is required; narrator and publisher may be nil.
func New(fetcher domain.ForecastFetcher, narrator domain.Narrator, publisher EventPublisher, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Engine {
	return &Engine{
		fetcher:   fetcher,
		narrator:  narrator,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		opts:      opts.withDefaults(),
	}
}

// AssessmentRequest is one farm's input to a climate assessment.
type AssessmentRequest struct {
	Latitude   float64
	Longitude  float64
	Crop       string
	Activities []domain.ActivityRecord
}

// AssessmentResult is the complete output of one climate assessment.
type AssessmentResult struct {
	Forecast        domain.Forecast      `json:"forecast"`
	Assessment      domain.Assessment    `json:"assessment"`
	CarbonSummary   domain.CarbonSummary `json:"carbon_summary"`
	Facts           []domain.Fact        `json:"facts"`
	Recommendations []string             `json:"recommendations"`
	// Source is "narrative" when the collaborator produced the list and
	// "rules" when the deterministic fallback did.
	Source string `json:"source"`
}

// CarbonSummary aggregates the footprint of a farm's activity log.
func (e *Engine) CarbonSummary(farmID string, activities []domain.ActivityRecord) (domain.CarbonSummary, error) {
	if strings.TrimSpace(farmID) == "" {
		return domain.CarbonSummary{}, fmt.Errorf("%w: farm id is required", domain.ErrInvalidInput)
	}
	summary := domain.AggregateCarbon(activities)
	if err := summary.Validate(); err != nil {
		return domain.CarbonSummary{}, err
	}
	e.metrics.CarbonSummaries.Inc()
	return summary, nil
}

// ClimateAssessment runs the full pipeline for one request. The forecast
// fetch and the carbon aggregation run concurrently; a forecast failure is
// fatal, everything after it degrades gracefully.
func (e *Engine) ClimateAssessment(ctx context.Context, req AssessmentRequest) (AssessmentResult, error) {
	if err := validateCoordinates(req.Latitude, req.Longitude); err != nil {
		return AssessmentResult{}, err
	}

	start := time.Now()

	summaryCh := make(chan domain.CarbonSummary, 1)
	go func() {
		summaryCh <- domain.AggregateCarbon(req.Activities)
	}()

	forecast, err := e.fetcher.Fetch(ctx, req.Latitude, req.Longitude, domain.AllForecastFields)
	if err != nil {
		return AssessmentResult{}, err
	}
	summary := <-summaryCh

	assessment := domain.Assessment{
		PestRisks:   domain.AssessPestDisease(forecast, req.Crop),
		Water:       domain.AssessWaterStress(forecast),
		CarbonTrend: domain.AssessCarbonTrend(req.Activities, e.opts.Trend),
	}
	facts := domain.CollectFacts(forecast, assessment, req.Activities, req.Crop)
	recommendations, source := e.synthesize(ctx, facts, req)

	result := AssessmentResult{
		Forecast:        forecast,
		Assessment:      assessment,
		CarbonSummary:   summary,
		Facts:           facts,
		Recommendations: recommendations,
		Source:          source,
	}
	e.publish(ctx, req, result)

	e.metrics.AssessmentsTotal.Inc()
	e.metrics.AssessmentDuration.Observe(time.Since(start).Seconds())
	e.logger.Info("assessment complete",
		"lat", req.Latitude,
		"lon", req.Longitude,
		"crop", req.Crop,
		"facts", len(facts),
		"source", source,
	)
	return result, nil
}

func validateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range [-90, 90]", domain.ErrInvalidInput, lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("%w: longitude %v out of range [-180, 180]", domain.ErrInvalidInput, lon)
	}
	return nil
}

// synthesize turns evidence facts into the recommendation list. The
// narrative collaborator gets first refusal; any failure falls back to the
// facts' own rule summaries so the caller always gets a non-empty list.
func (e *Engine) synthesize(ctx context.Context, facts []domain.Fact, req AssessmentRequest) ([]string, string) {
	if len(facts) == 0 {
		return []string{domain.StableSummary}, "rules"
	}

	limit := e.opts.MaxRecommendations
	if e.narrator != nil {
		items, err := e.narrator.Narrate(ctx, domain.NarrativeRequest{
			Facts:    facts,
			Context:  requestContext(req),
			MaxItems: limit,
		})
		if err == nil && len(items) > 0 {
			e.metrics.NarrativeRequests.WithLabelValues("success").Inc()
			return items, "narrative"
		}
		e.metrics.NarrativeRequests.WithLabelValues("fallback").Inc()
		e.logger.Warn("narrative synthesis failed, falling back to rule summaries", "error", err)
	}

	recommendations := make([]string, 0, limit)
	for _, f := range facts {
		recommendations = append(recommendations, f.Summary)
		if len(recommendations) == limit {
			break
		}
	}
	return recommendations, "rules"
}

// requestContext is the free-text farm summary given to the narrator
// alongside structured facts.
func requestContext(req AssessmentRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Farm at latitude %.4f, longitude %.4f.", req.Latitude, req.Longitude)
	if req.Crop != "" {
		fmt.Fprintf(&b, " Primary crop: %s.", req.Crop)
	}
	if cats := recentCategories(req.Activities); len(cats) > 0 {
		fmt.Fprintf(&b, " Activities in the last 7 days: %s.", strings.Join(cats, ", "))
	} else {
		b.WriteString(" No activities logged in the last 7 days.")
	}
	return b.String()
}

// recentCategories lists the distinct categories logged in the recent
// window, in the canonical category order.
func recentCategories(activities []domain.ActivityRecord) []string {
	now := domain.Now()
	seen := make(map[domain.ActivityCategory]bool)
	for _, a := range activities {
		if a.Within(now, 7*24*time.Hour) {
			seen[a.Category] = true
		}
	}
	var out []string
	for _, c := range domain.Categories {
		if seen[c] {
			out = append(out, string(c))
		}
	}
	return out
}

func (e *Engine) publish(ctx context.Context, req AssessmentRequest, result AssessmentResult) {
	if e.publisher == nil {
		return
	}
	event := domain.AssessmentEvent{
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		Crop:            req.Crop,
		PestRisks:       result.Assessment.PestRisks,
		WaterStress:     result.Assessment.Water.Stress,
		ExcessMoisture:  result.Assessment.Water.ExcessMoisture,
		CarbonTrend:     result.Assessment.CarbonTrend,
		TotalCarbonKg:   result.CarbonSummary.TotalKg,
		Recommendations: len(result.Recommendations),
		Source:          result.Source,
		AssessedAt:      domain.Now().UTC(),
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.metrics.EventErrors.Inc()
		e.logger.Warn("assessment event publish failed", "error", err)
		return
	}
	e.metrics.EventsPublished.Inc()
}
