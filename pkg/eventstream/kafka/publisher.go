// Package kafka publishes document sync events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/papercomputeco/folio/pkg/eventstream"
)

// Publisher writes JSON-encoded document events to a Kafka topic.
// Events are keyed by document path so consumers see per-document ordering.
type Publisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// Config holds configuration for the Kafka publisher.
type Config struct {
	// Brokers are the Kafka bootstrap addresses.
	Brokers []string

	// Topic is the destination topic.
	Topic string
}

// NewPublisher creates a Kafka-backed event publisher.
func NewPublisher(c Config, logger *zap.Logger) (*Publisher, error) {
	if len(c.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	if c.Topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(c.Brokers...),
		Topic:        c.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  3,
		RequiredAcks: kafka.RequireAll,
		Async:        false,
	}

	return &Publisher{writer: w, logger: logger}, nil
}

// PublishDocument serializes one event and writes it to Kafka synchronously.
func (p *Publisher) PublishDocument(ctx context.Context, event *eventstream.DocumentSyncedEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.EmittedAt.IsZero() {
		event.EmittedAt = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Path),
		Value: value,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish document event",
			zap.String("path", event.Path),
			zap.Error(err),
		)
		return fmt.Errorf("publishing to kafka: %w", err)
	}

	p.logger.Debug("document event published",
		zap.String("path", event.Path),
		zap.String("outcome", event.Outcome),
	)
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ eventstream.Publisher = (*Publisher)(nil)
