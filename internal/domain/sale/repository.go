package sale

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository persists sale records
type Repository interface {
	// Create inserts the sale, assigning its ID and Timestamp
	Create(ctx context.Context, s *Sale) error
	// GetBySellerID returns the seller's most recent sales, newest first
	GetBySellerID(ctx context.Context, sellerID string, limit int) ([]*Sale, error)
}

// StatsRepository maintains the per-seller aggregate
type StatsRepository interface {
	// Increment atomically adds amount to totalEarnings and 1 to totalSales, creating the document if absent
	Increment(ctx context.Context, sellerID string, amount decimal.Decimal) error
	// Get returns EmptyStats when the seller has no aggregate yet
	Get(ctx context.Context, sellerID string) (*SellerStats, error)
	// Recompute rebuilds the aggregate from the sales collection
	Recompute(ctx context.Context, sellerID string) (*SellerStats, error)
}
