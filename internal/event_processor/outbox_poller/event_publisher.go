package outbox_poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/garage-sale-marketplace/internal/domain/outbox"
	"github.com/garage-sale-marketplace/internal/domain/shared"
	"github.com/garage-sale-marketplace/internal/platform/messaging/producers"
)

// ErrUndeliverable marks outbox rows that can never be published. They are already FAILED_TO_PUBLISH.
var ErrUndeliverable = errors.New("outbox message cannot be delivered")

// OutboxPublisher publishes outbox messages to the events topic
type OutboxPublisher interface {
	PublishMessage(ctx context.Context, message *outbox.Message) error
}

// EventPublisherImpl implements OutboxPublisher on top of the Kafka event producer
type EventPublisherImpl struct {
	outboxRepo outbox.Repository
	producer   producers.EventPublisher
	logger     *slog.Logger
}

// NewEventPublisher creates a new publisher
func NewEventPublisher(
	outboxRepo outbox.Repository,
	producer producers.EventPublisher,
	logger *slog.Logger,
) OutboxPublisher {
	return &EventPublisherImpl{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// PublishMessage writes the stored envelope to Kafka and marks the row PROCESSED
func (p *EventPublisherImpl) PublishMessage(ctx context.Context, message *outbox.Message) error {
	evt, err := message.Event()
	if err != nil {
		p.logger.Error("Failed to decode event from outbox payload",
			"outbox_id", message.ID, "event_id", message.EventID.String(), "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after decode error", "outbox_id", message.ID, "update_error", updateErr)
			return fmt.Errorf("decode payload for outbox %d failed: %w", message.ID, err)
		}
		return fmt.Errorf("%w: outbox %d: %v", ErrUndeliverable, message.ID, err)
	}

	logger := p.logger
	if evt.CorrelationID != "" {
		logger = p.logger.With("correlation_id", evt.CorrelationID)
	}

	logger.Info("Publishing outbox message", "outbox_id", message.ID, "event_id", evt.ID.String(), "event_type", string(evt.Type))

	if err := p.producer.Publish(ctx, evt); err != nil {
		logger.Error("Failed to publish outbox event to Kafka", "outbox_id", message.ID, "event_id", evt.ID.String(), "error", err)
		return fmt.Errorf("failed to publish event %s: %w", evt.ID.String(), err)
	}

	// The row stays PENDING on failure, so the event is published again on a later tick
	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "event_id", evt.ID.String(), "error", err,
		)
		return fmt.Errorf("event %s published, but failed to mark outbox %d as PROCESSED: %w", evt.ID.String(), message.ID, err)
	}

	logger.Info("Outbox message published and marked as PROCESSED", "outbox_id", message.ID, "event_id", evt.ID.String())
	return nil
}
