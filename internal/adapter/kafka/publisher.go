// Package kafka publishes assessment-completed events for downstream
// consumers (notifications, analytics). Publishing is optional and
// fire-and-forget from the engine's point of view.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/greenfund/climate-assessment-service/internal/config"
	"github.com/greenfund/climate-assessment-service/internal/domain"
)

// Publisher produces assessment events to a Kafka topic.
// It implements engine.EventPublisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured assessment topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish serializes and writes one assessment event.
func (p *Publisher) Publish(ctx context.Context, event domain.AssessmentEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals an assessment event into a Kafka message. The
// key is the rounded coordinate pair so repeated assessments for one farm
// land on one partition in order.
func serializeToMessage(event domain.AssessmentEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize assessment event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(fmt.Sprintf("%.4f|%.4f", event.Latitude, event.Longitude)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte(event.Source)},
			{Key: "assessed_at", Value: []byte(event.AssessedAt.Format(time.RFC3339))},
		},
	}, nil
}
