// Package kafka publishes research run lifecycle events.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/rankforge/rankforge/internal/config"
	"github.com/rankforge/rankforge/internal/infrastructure/monitoring/logging"
	apperrors "github.com/rankforge/rankforge/pkg/errors"
	"github.com/rankforge/rankforge/pkg/types/common"
)

// Topic names.
const (
	TopicRunEvents = "rankforge.research.runs"
)

// Event types carried on TopicRunEvents.
const (
	EventRunStarted   = "run.started"
	EventRunCompleted = "run.completed"
	EventRunFailed    = "run.failed"
)

// EventEnvelope is the wire format for every published event.
type EventEnvelope struct {
	ID        common.ID       `json:"id"`
	Type      string          `json:"type"`
	Source    string          `json:"source"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// RunEventPayload describes a run state change.
type RunEventPayload struct {
	RunID        common.ID `json:"run_id"`
	ProjectID    common.ID `json:"project_id"`
	Status       string    `json:"status"`
	TotalFound   int       `json:"total_found,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// Publisher is the outbound event port. A nil-safe no-op implementation
// backs deployments without Kafka.
type Publisher interface {
	PublishRunEvent(ctx context.Context, eventType string, payload RunEventPayload) error
	Close() error
}

// ---
// Kafka-backed publisher
// ---

// Producer publishes envelopes to Kafka.
type Producer struct {
	writer *kafka.Writer
	logger logging.Logger
}

// NewProducer builds a Producer from config.
func NewProducer(cfg config.KafkaConfig, logger logging.Logger) *Producer {
	if logger == nil {
		logger = logging.NewNop()
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        TopicRunEvents,
		Balancer:     &kafka.Hash{},
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		MaxAttempts:  cfg.MaxRetries,
		RequiredAcks: kafka.RequireOne,
	}
	return &Producer{writer: writer, logger: logger}
}

// PublishRunEvent wraps the payload in an envelope and writes it, keyed by
// run id so one run's events stay ordered within a partition.
func (p *Producer) PublishRunEvent(ctx context.Context, eventType string, payload RunEventPayload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "marshal run event payload")
	}
	envelope := EventEnvelope{
		ID:        common.NewID(),
		Type:      eventType,
		Source:    "rankforge.research",
		Timestamp: time.Now().UTC(),
		Payload:   raw,
	}
	value, err := json.Marshal(envelope)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "marshal event envelope")
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(payload.RunID.String()),
		Value: value,
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeExternalService, "publish run event")
	}
	p.logger.Debug("published run event",
		logging.String("type", eventType),
		logging.String("run_id", payload.RunID.String()))
	return nil
}

// Close flushes and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}

// ---
// No-op publisher
// ---

// NopPublisher drops every event. Used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishRunEvent(context.Context, string, RunEventPayload) error { return nil }
func (NopPublisher) Close() error                                                   { return nil }
