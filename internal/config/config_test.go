package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)

	assert.Equal(t, "https://api.open-meteo.com/v1/forecast", cfg.WeatherBaseURL)
	assert.Equal(t, 15*time.Second, cfg.WeatherTimeout)
	assert.Equal(t, 2, cfg.WeatherMaxRetries)
	assert.Equal(t, time.Second, cfg.WeatherBackoff)

	assert.False(t, cfg.NarrativeEnabled)
	assert.Empty(t, cfg.GeminiAPIKey)
	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	assert.Equal(t, 20*time.Second, cfg.NarrativeTimeout)
	assert.Equal(t, 3, cfg.MaxRecommendations)

	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "climate-assessments", cfg.KafkaTopic)

	assert.Equal(t, 7, cfg.TrendWindowDays)
	assert.Equal(t, 7*24*time.Hour, cfg.TrendWindow())
	assert.InDelta(t, 0.15, cfg.TrendMargin, 1e-9)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("WEATHER_BASE_URL", "http://localhost:8081/v1/forecast")
	t.Setenv("WEATHER_TIMEOUT", "5s")
	t.Setenv("WEATHER_MAX_RETRIES", "4")
	t.Setenv("WEATHER_BACKOFF", "500ms")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_MODEL", "gemini-2.5-pro")
	t.Setenv("NARRATIVE_TIMEOUT", "8s")
	t.Setenv("MAX_RECOMMENDATIONS", "2")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "assessments")
	t.Setenv("TREND_WINDOW_DAYS", "14")
	t.Setenv("TREND_MARGIN", "0.25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "http://localhost:8081/v1/forecast", cfg.WeatherBaseURL)
	assert.Equal(t, 5*time.Second, cfg.WeatherTimeout)
	assert.Equal(t, 4, cfg.WeatherMaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.WeatherBackoff)
	assert.True(t, cfg.NarrativeEnabled)
	assert.Equal(t, "gemini-2.5-pro", cfg.GeminiModel)
	assert.Equal(t, 8*time.Second, cfg.NarrativeTimeout)
	assert.Equal(t, 2, cfg.MaxRecommendations)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "assessments", cfg.KafkaTopic)
	assert.Equal(t, 14, cfg.TrendWindowDays)
	assert.InDelta(t, 0.25, cfg.TrendMargin, 1e-9)
}

func TestLoad_APIKeyEnablesNarrative(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.NarrativeEnabled)
}

func TestLoad_NarrativeOptOut(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("NARRATIVE_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.NarrativeEnabled)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad shutdown timeout", "SHUTDOWN_TIMEOUT", "soon"},
		{"negative weather timeout", "WEATHER_TIMEOUT", "-1s"},
		{"bad retries", "WEATHER_MAX_RETRIES", "many"},
		{"negative retries", "WEATHER_MAX_RETRIES", "-1"},
		{"zero recommendations", "MAX_RECOMMENDATIONS", "0"},
		{"zero trend window", "TREND_WINDOW_DAYS", "0"},
		{"bad trend margin", "TREND_MARGIN", "wide"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_NarrativeEnabledWithoutKeyFails(t *testing.T) {
	t.Setenv("NARRATIVE_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestLoad_KafkaEnabledWithoutBrokersFails(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", " ")
	_, err := Load()
	assert.Error(t, err)
}
