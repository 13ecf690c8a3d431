package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// assessment engine.
type Metrics struct {
	AssessmentsTotal   prometheus.Counter
	AssessmentDuration prometheus.Histogram
	CarbonSummaries    prometheus.Counter

	// Weather provider metrics.
	WeatherRequests *prometheus.CounterVec // labels: outcome={success,connection_error,upstream_error}
	WeatherRetries  prometheus.Counter
	WeatherDuration prometheus.Histogram

	// Narrative collaborator metrics.
	NarrativeRequests *prometheus.CounterVec // labels: outcome={success,fallback}
	NarrativeEnabled  prometheus.Gauge

	// Assessment event publishing metrics.
	EventsPublished prometheus.Counter
	EventErrors     prometheus.Counter
}

// NewMetrics creates and registers all engine metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.AssessmentsTotal,
		m.AssessmentDuration,
		m.CarbonSummaries,
		m.WeatherRequests,
		m.WeatherRetries,
		m.WeatherDuration,
		m.NarrativeRequests,
		m.NarrativeEnabled,
		m.EventsPublished,
		m.EventErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		AssessmentsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_engine",
			Name:      "assessments_total",
			Help:      "Total climate assessment requests served.",
		}),
		AssessmentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "climate_engine",
			Name:      "assessment_duration_seconds",
			Help:      "Duration of a complete climate assessment, including the forecast fetch.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),
		CarbonSummaries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_engine",
			Name:      "carbon_summaries_total",
			Help:      "Total carbon summary computations.",
		}),
		WeatherRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_engine",
			Name:      "weather_requests_total",
			Help:      "Forecast fetches by final outcome.",
		}, []string{"outcome"}),
		WeatherRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_engine",
			Name:      "weather_retries_total",
			Help:      "Forecast fetch attempts beyond the first.",
		}),
		WeatherDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "climate_engine",
			Name:      "weather_request_duration_seconds",
			Help:      "Weather provider request duration per attempt.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}),
		NarrativeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_engine",
			Name:      "narrative_requests_total",
			Help:      "Narrative collaborator calls by outcome; fallback counts recovered failures.",
		}, []string{"outcome"}),
		NarrativeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "climate_engine",
			Name:      "narrative_enabled",
			Help:      "1 when the narrative collaborator is configured, 0 otherwise.",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_engine",
			Name:      "assessment_events_published_total",
			Help:      "Assessment-completed events published to the sink topic.",
		}),
		EventErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_engine",
			Name:      "assessment_event_errors_total",
			Help:      "Failed assessment-event publishes.",
		}),
	}
}
