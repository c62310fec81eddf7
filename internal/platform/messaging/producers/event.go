package producers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/garage-sale-marketplace/internal/config"
	"github.com/garage-sale-marketplace/internal/domain/event"
	"github.com/segmentio/kafka-go"
)

const (
	HeaderEventType     = "event-type"
	HeaderCorrelationID = "correlation-id"
)

// EventProducer publishes marketplace events keyed by aggregate id, so events
// for one seller or listing stay ordered on a single partition
type EventProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

func NewEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*EventProducer, error) {
	if cfg.EventsTopic == "" {
		return nil, fmt.Errorf("kafka events topic is not configured")
	}

	if err := ensureTopic(cfg.Brokers, cfg.EventsTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure events topic %s exists: %w", cfg.EventsTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.EventsTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.MaxWait,
	}

	return NewEventProducerWithWriter(logger, writer, cfg.EventsTopic), nil
}

func NewEventProducerWithWriter(logger *slog.Logger, writer KafkaWriter, topic string) *EventProducer {
	return &EventProducer{
		logger: logger,
		writer: writer,
		topic:  topic,
	}
}

func (p *EventProducer) Publish(ctx context.Context, evt *event.Event) error {
	value, err := evt.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", evt.ID, err)
	}

	msg := kafka.Message{
		Key:   []byte(evt.AggregateID),
		Value: value,
		Headers: []kafka.Header{
			{Key: HeaderEventType, Value: []byte(evt.Type)},
			{Key: HeaderCorrelationID, Value: []byte(evt.CorrelationID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish event",
			"topic", p.topic,
			"event_id", evt.ID.String(),
			"event_type", string(evt.Type),
			"error", err,
		)
		return fmt.Errorf("failed to publish event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published event",
		"topic", p.topic,
		"event_id", evt.ID.String(),
		"event_type", string(evt.Type),
		"key", evt.AggregateID,
	)
	return nil
}

func (p *EventProducer) Close() error {
	p.logger.Info("Closing Kafka event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
