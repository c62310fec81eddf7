package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/garage-sale-marketplace/internal/domain/event"
	"github.com/garage-sale-marketplace/internal/logger"
)

type ProcessingServiceImpl struct {
	stats    StatsRefresher
	notifier Notifier
	logger   *slog.Logger
}

func NewProcessingService(
	stats StatsRefresher,
	notifier Notifier,
	logger *slog.Logger,
) ProcessingService {
	return &ProcessingServiceImpl{
		stats:    stats,
		notifier: notifier,
		logger:   logger,
	}
}

// ProcessEvent dispatches on the event type. A returned error leaves the Kafka offset
// uncommitted so the message is redelivered.
func (s *ProcessingServiceImpl) ProcessEvent(ctx context.Context, evt *event.Event) error {
	if evt.CorrelationID != "" {
		ctx = logger.WithCorrelationID(ctx, evt.CorrelationID)
	}
	log := logger.FromContext(ctx, s.logger).With("event_id", evt.ID.String(), "event_type", string(evt.Type))

	log.Info("Processing event", "aggregate_id", evt.AggregateID)

	switch evt.Type {
	case event.TypeSaleRecorded:
		payload, err := evt.SaleRecorded()
		if err != nil {
			// Malformed payloads never become valid on redelivery
			log.Error("Discarding sale.recorded event with invalid payload", "error", err)
			return nil
		}
		return s.processSaleRecorded(ctx, log, payload)

	case event.TypeListingPaid:
		payload, err := evt.ListingPaid()
		if err != nil {
			log.Error("Discarding listing.paid event with invalid payload", "error", err)
			return nil
		}
		s.processListingPaid(ctx, log, payload)
		return nil

	default:
		log.Warn("Ignoring event of unknown type")
		return nil
	}
}

func (s *ProcessingServiceImpl) processSaleRecorded(ctx context.Context, log *slog.Logger, payload *event.SaleRecorded) error {
	if payload.StatsPending {
		stats, err := s.stats.Refresh(ctx, payload.SellerID)
		if err != nil {
			log.Error("Failed to refresh seller stats", "seller_id", payload.SellerID, "error", err)
			return fmt.Errorf("refreshing stats for seller %s failed: %w", payload.SellerID, err)
		}
		log.Info("Seller stats refreshed",
			"seller_id", payload.SellerID,
			"total_sales", stats.TotalSales,
			"total_earnings", stats.TotalEarnings.String(),
		)
	}

	if err := s.notifier.NotifySaleRecorded(ctx, payload); err != nil {
		log.Warn("Failed to send sale receipt", "sale_id", payload.SaleID, "seller_id", payload.SellerID, "error", err)
	}
	return nil
}

func (s *ProcessingServiceImpl) processListingPaid(ctx context.Context, log *slog.Logger, payload *event.ListingPaid) {
	if err := s.notifier.NotifyListingPaid(ctx, payload); err != nil {
		log.Warn("Failed to send listing payment email", "listing_id", payload.ListingID, "owner_id", payload.OwnerID, "error", err)
	}
}
