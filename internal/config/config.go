package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Weather provider configuration.
	WeatherBaseURL    string
	WeatherTimeout    time.Duration // per-attempt deadline
	WeatherMaxRetries int           // additional attempts after the first
	WeatherBackoff    time.Duration // initial backoff, doubles per retry

	// Narrative collaborator configuration. Leaving the API key unset runs
	// the engine on the deterministic rule-only fallback.
	GeminiAPIKey       string
	GeminiModel        string
	NarrativeEnabled   bool
	NarrativeTimeout   time.Duration
	MaxRecommendations int

	// Assessment event publishing (optional).
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string

	// Carbon trend tuning.
	TrendWindowDays int
	TrendMargin     float64
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	weatherTimeout, err := parseDuration("WEATHER_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	weatherBackoff, err := parseDuration("WEATHER_BACKOFF", "1s")
	if err != nil {
		return nil, err
	}
	narrativeTimeout, err := parseDuration("NARRATIVE_TIMEOUT", "20s")
	if err != nil {
		return nil, err
	}

	weatherRetries, err := parseInt("WEATHER_MAX_RETRIES", 2)
	if err != nil {
		return nil, err
	}
	maxRecs, err := parseInt("MAX_RECOMMENDATIONS", 3)
	if err != nil {
		return nil, err
	}
	trendWindow, err := parseInt("TREND_WINDOW_DAYS", 7)
	if err != nil {
		return nil, err
	}
	trendMargin, err := parseFloat("TREND_MARGIN", 0.15)
	if err != nil {
		return nil, err
	}

	geminiKey := os.Getenv("GEMINI_API_KEY")
	narrativeEnabled := geminiKey != ""
	if v := os.Getenv("NARRATIVE_ENABLED"); v != "" {
		narrativeEnabled = v == "true"
	}

	kafkaEnabled := os.Getenv("KAFKA_ENABLED") == "true"

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		WeatherBaseURL:    envOrDefault("WEATHER_BASE_URL", "https://api.open-meteo.com/v1/forecast"),
		WeatherTimeout:    weatherTimeout,
		WeatherMaxRetries: weatherRetries,
		WeatherBackoff:    weatherBackoff,

		GeminiAPIKey:       geminiKey,
		GeminiModel:        envOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		NarrativeEnabled:   narrativeEnabled,
		NarrativeTimeout:   narrativeTimeout,
		MaxRecommendations: maxRecs,

		KafkaEnabled: kafkaEnabled,
		KafkaBrokers: parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "climate-assessments"),

		TrendWindowDays: trendWindow,
		TrendMargin:     trendMargin,
	}

	if cfg.WeatherBaseURL == "" {
		return nil, errors.New("WEATHER_BASE_URL is required")
	}
	if cfg.WeatherMaxRetries < 0 {
		return nil, errors.New("WEATHER_MAX_RETRIES must not be negative")
	}
	if cfg.MaxRecommendations <= 0 {
		return nil, errors.New("MAX_RECOMMENDATIONS must be positive")
	}
	if cfg.TrendWindowDays <= 0 {
		return nil, errors.New("TREND_WINDOW_DAYS must be positive")
	}
	if cfg.NarrativeEnabled && cfg.GeminiAPIKey == "" {
		return nil, errors.New("NARRATIVE_ENABLED is true but GEMINI_API_KEY is not set")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_TOPIC is empty")
	}

	return cfg, nil
}

// TrendWindow returns the carbon-trend window as a duration.
func (c *Config) TrendWindow() time.Duration {
	return time.Duration(c.TrendWindowDays) * 24 * time.Hour
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return f, nil
}

func parseBrokers(s string) []string {
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
