package consumer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/garage-sale-marketplace/internal/domain/event"
	"github.com/garage-sale-marketplace/internal/event_processor/service"
	"github.com/garage-sale-marketplace/internal/logger"
	"github.com/garage-sale-marketplace/internal/platform/messaging/producers"
)

// EventHandler handles marketplace event messages from Kafka
type EventHandler struct {
	processingService service.ProcessingService
	producer          producers.DeadLetterPublisher
	logger            *slog.Logger
}

// NewEventHandler creates a new handler
func NewEventHandler(
	logger *slog.Logger,
	processingService service.ProcessingService,
	producer producers.DeadLetterPublisher,
) *EventHandler {
	return &EventHandler{
		processingService: processingService,
		producer:          producer,
		logger:            logger,
	}
}

// HandleMessage processes Kafka messages. A nil return commits the offset.
func (h *EventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	evt, err := event.Decode(value)
	if err != nil {
		decodeErrorMsg := "Failed to decode event envelope from Kafka message"
		h.logger.Error(decodeErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", decodeErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after decode error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
			} else {
				h.logger.Info("Published undecodable message to DLQ", "message_key", string(key), "reason", dlqReason)
				return nil
			}
		}
		return fmt.Errorf("failed to decode message value: %w", err)
	}

	if evt.CorrelationID != "" {
		ctx = logger.WithCorrelationID(ctx, evt.CorrelationID)
	}
	log := logger.FromContext(ctx, h.logger)

	log.Info("Received event for processing",
		"event_id", evt.ID.String(),
		"event_type", string(evt.Type),
		"aggregate_id", evt.AggregateID,
	)

	if err := h.processingService.ProcessEvent(ctx, evt); err != nil {
		log.Error("Failed to process event",
			"event_id", evt.ID.String(),
			"event_type", string(evt.Type),
			"error", err,
		)
		return fmt.Errorf("processing event %s failed: %w", evt.ID.String(), err)
	}

	log.Info("Successfully processed event", "event_id", evt.ID.String())
	return nil
}
