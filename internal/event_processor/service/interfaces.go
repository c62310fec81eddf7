package service

import (
	"context"

	"github.com/garage-sale-marketplace/internal/domain/event"
	"github.com/garage-sale-marketplace/internal/domain/sale"
)

// ProcessingService defines the interface for processing marketplace events.
type ProcessingService interface {
	ProcessEvent(ctx context.Context, evt *event.Event) error
}

// StatsRefresher rebuilds a seller aggregate that the API could not update inline
type StatsRefresher interface {
	Refresh(ctx context.Context, sellerID string) (*sale.SellerStats, error)
}

// Notifier sends the emails triggered by processed events
type Notifier interface {
	NotifySaleRecorded(ctx context.Context, payload *event.SaleRecorded) error
	NotifyListingPaid(ctx context.Context, payload *event.ListingPaid) error
}
