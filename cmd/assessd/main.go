package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/greenfund/climate-assessment-service/internal/adapter/gemini"
	"github.com/greenfund/climate-assessment-service/internal/adapter/httpapi"
	kafkaadapter "github.com/greenfund/climate-assessment-service/internal/adapter/kafka"
	"github.com/greenfund/climate-assessment-service/internal/adapter/openmeteo"
	"github.com/greenfund/climate-assessment-service/internal/config"
	"github.com/greenfund/climate-assessment-service/internal/domain"
	"github.com/greenfund/climate-assessment-service/internal/engine"
	"github.com/greenfund/climate-assessment-service/internal/observability"
)

func main() {
	// Optional .env for local development; real deployments set env vars.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fetcher := openmeteo.NewClient(cfg.WeatherBaseURL, openmeteo.Options{
		Timeout:    cfg.WeatherTimeout,
		MaxRetries: cfg.WeatherMaxRetries,
		Backoff:    cfg.WeatherBackoff,
	}, metrics, logger)

	// Narrative synthesis is feature-flagged; without it the engine falls
	// back to deterministic rule summaries.
	var narrator domain.Narrator
	if cfg.NarrativeEnabled {
		n, err := gemini.NewNarrator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.NarrativeTimeout, logger)
		if err != nil {
			logger.Error("failed to init narrative collaborator", "error", err)
			os.Exit(1)
		}
		narrator = n
		metrics.NarrativeEnabled.Set(1)
		logger.Info("narrative synthesis enabled", "model", cfg.GeminiModel, "timeout", cfg.NarrativeTimeout)
	} else {
		logger.Info("narrative synthesis disabled, using rule summaries")
	}

	var publisher engine.EventPublisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg, logger)
		publisher = kafkaPublisher
		logger.Info("assessment events enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("assessment events disabled")
	}

	eng := engine.New(fetcher, narrator, publisher, logger, metrics, engine.Options{
		MaxRecommendations: cfg.MaxRecommendations,
		Trend: domain.TrendConfig{
			Window: cfg.TrendWindow(),
			Margin: cfg.TrendMargin,
		},
	})

	srv := httpapi.NewServer(cfg.HTTPAddr, eng, nil, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
