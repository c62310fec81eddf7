package listing

import (
	"context"

	"github.com/garage-sale-marketplace/internal/domain/shared"
	"github.com/jackc/pgx/v5"
)

// Repository defines listing persistence operations
type Repository interface {
	Create(ctx context.Context, l *Listing) error
	GetByID(ctx context.Context, id string) (*Listing, error)
	// ListByStatus returns listings in the given status, newest first
	ListByStatus(ctx context.Context, status string, limit int) ([]*Listing, error)
	UpdateStatus(ctx context.Context, id, status, paymentStatus string) error
	WithTx(tx pgx.Tx) Repository
}

// SavedRepository stores user bookmarks
type SavedRepository interface {
	// Save is idempotent, saving the same listing twice is not an error
	Save(ctx context.Context, userID, listingID string) error
	ListByUser(ctx context.Context, userID string) ([]SavedListing, error)
}

// ErrListingNotFound indicates a missing listing
type ErrListingNotFound struct {
	ListingID string
}

func (e ErrListingNotFound) Error() string {
	return "listing not found: " + e.ListingID
}

// Is matches any ErrListingNotFound with an empty ID, and the shared not-found category
func (e ErrListingNotFound) Is(target error) bool {
	if target == shared.ErrNotFound {
		return true
	}
	t, ok := target.(ErrListingNotFound)
	if !ok {
		return false
	}
	return t.ListingID == "" || t.ListingID == e.ListingID
}
