// Package openmeteo implements domain.ForecastFetcher against the Open-Meteo
// daily forecast API.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/greenfund/climate-assessment-service/internal/domain"
	"github.com/greenfund/climate-assessment-service/internal/observability"
)

// forecastDays is the window length requested from the provider.
const forecastDays = 7

// Options tunes the client's retry policy.
type Options struct {
	// Timeout bounds each individual attempt. Default 15s.
	Timeout time.Duration
	// MaxRetries is the number of additional attempts after the first.
	// Default 2, for 3 total attempts.
	MaxRetries int
	// Backoff is the delay before the first retry; it doubles per retry.
	// Default 1s.
	Backoff time.Duration
	// Clock drives the backoff sleeps. Defaults to the real clock; tests
	// inject a fake.
	Clock clockwork.Clock
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = 15 * time.Second
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.Backoff <= 0 {
		o.Backoff = time.Second
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	return o
}

// Client fetches daily forecasts over HTTP with bounded retries and
// exponential backoff. It performs no caching: every Fetch re-queries the
// provider.
type Client struct {
	httpClient *http.Client
	baseURL    string
	opts       Options
	clock      clockwork.Clock
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an Open-Meteo client.
func NewClient(baseURL string, opts Options, metrics *observability.Metrics, logger *slog.Logger) *Client {
	opts = opts.withDefaults()
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		baseURL:    baseURL,
		opts:       opts,
		clock:      opts.Clock,
		metrics:    metrics,
		logger:     logger,
	}
}

// Fetch retrieves a 7-day forecast for the coordinate. Transient failures
// (connection errors, timeouts, 429, 5xx) are retried up to the configured
// budget with doubling backoff; other provider errors fail immediately. The
// backoff sleep aborts as soon as the caller's context is cancelled.
func (c *Client) Fetch(ctx context.Context, lat, lon float64, fields []string) (domain.Forecast, error) {
	params := url.Values{
		"latitude":      {fmt.Sprintf("%.4f", lat)},
		"longitude":     {fmt.Sprintf("%.4f", lon)},
		"daily":         {strings.Join(fields, ",")},
		"timezone":      {"auto"},
		"forecast_days": {fmt.Sprintf("%d", forecastDays)},
	}
	fullURL := c.baseURL + "?" + params.Encode()

	var lastErr *domain.WeatherUnavailableError
	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.opts.Backoff << (attempt - 1)
			c.metrics.WeatherRetries.Inc()
			c.logger.Warn("weather fetch failed, retrying",
				"attempt", attempt,
				"max_attempts", c.opts.MaxRetries+1,
				"delay", delay,
				"error", lastErr,
			)
			select {
			case <-ctx.Done():
				return domain.Forecast{}, ctx.Err()
			case <-c.clock.After(delay):
			}
		}

		forecast, ferr := c.attempt(ctx, fullURL, lat, lon)
		if ferr == nil {
			c.metrics.WeatherRequests.WithLabelValues("success").Inc()
			return forecast, nil
		}
		if ctx.Err() != nil {
			return domain.Forecast{}, ctx.Err()
		}
		lastErr = ferr
		if !retryable(ferr) {
			break
		}
	}

	c.metrics.WeatherRequests.WithLabelValues(string(lastErr.Cause) + "_error").Inc()
	return domain.Forecast{}, lastErr
}

// attempt performs a single provider request.
func (c *Client) attempt(ctx context.Context, fullURL string, lat, lon float64) (domain.Forecast, *domain.WeatherUnavailableError) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.Forecast{}, &domain.WeatherUnavailableError{Cause: domain.CauseConnection, Err: err}
	}

	start := c.clock.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.WeatherDuration.Observe(c.clock.Since(start).Seconds())
	if err != nil {
		return domain.Forecast{}, &domain.WeatherUnavailableError{
			Cause: domain.CauseConnection,
			Err:   fmt.Errorf("forecast request: %w", err),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Forecast{}, &domain.WeatherUnavailableError{
			Cause:      domain.CauseUpstream,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("provider returned status %d", resp.StatusCode),
		}
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Forecast{}, &domain.WeatherUnavailableError{
			Cause:      domain.CauseUpstream,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}

	forecast, err := body.toForecast(lat, lon)
	if err != nil {
		return domain.Forecast{}, &domain.WeatherUnavailableError{
			Cause:      domain.CauseUpstream,
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}
	return forecast, nil
}

// retryable reports whether the failure is worth another attempt: connection
// errors and timeouts always, upstream errors only for rate limits and
// 5xx-class statuses. Malformed bodies and other 4xx statuses fail fast.
func retryable(err *domain.WeatherUnavailableError) bool {
	if err.Cause == domain.CauseConnection {
		return true
	}
	return err.StatusCode == http.StatusTooManyRequests || err.StatusCode >= 500
}

// Open-Meteo API response types. The daily object maps field names to
// same-length arrays indexed by forecast day; nulls inside an array leave
// that day's field unset.

type response struct {
	Daily daily `json:"daily"`
}

type daily struct {
	Time               []string   `json:"time"`
	TempMax            []*float64 `json:"temperature_2m_max"`
	TempMin            []*float64 `json:"temperature_2m_min"`
	Precipitation      []*float64 `json:"precipitation_sum"`
	HumidityMean       []*float64 `json:"relative_humidity_2m_mean"`
	Evapotranspiration []*float64 `json:"et0_fao_evapotranspiration"`
}

func (r response) toForecast(lat, lon float64) (domain.Forecast, error) {
	if len(r.Daily.Time) == 0 {
		return domain.Forecast{}, fmt.Errorf("response carries no daily data")
	}

	forecast := domain.Forecast{
		Latitude:  lat,
		Longitude: lon,
		Days:      make([]domain.ForecastDay, len(r.Daily.Time)),
	}
	for i, ds := range r.Daily.Time {
		date, err := time.Parse("2006-01-02", ds)
		if err != nil {
			return domain.Forecast{}, fmt.Errorf("parse forecast date %q: %w", ds, err)
		}
		forecast.Days[i] = domain.ForecastDay{
			Date:                 date,
			TempMaxC:             at(r.Daily.TempMax, i),
			TempMinC:             at(r.Daily.TempMin, i),
			PrecipitationMm:      at(r.Daily.Precipitation, i),
			HumidityPct:          at(r.Daily.HumidityMean, i),
			EvapotranspirationMm: at(r.Daily.Evapotranspiration, i),
		}
	}
	return forecast, nil
}

func at(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}
