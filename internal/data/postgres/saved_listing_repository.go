package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/garage-sale-marketplace/internal/domain/listing"
	"github.com/garage-sale-marketplace/internal/platform/persistence"
)

// SavedListingRepository implements listing.SavedRepository for PostgreSQL
type SavedListingRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewSavedListingRepository(logger *slog.Logger, db *persistence.PostgresDB) listing.SavedRepository {
	return &SavedListingRepository{
		querier: db.Querier(),
		logger:  logger,
	}
}

func (r *SavedListingRepository) Save(ctx context.Context, userID, listingID string) error {
	query := `
		INSERT INTO saved_listings (user_id, garage_sale_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, garage_sale_id) DO NOTHING
	`

	if _, err := r.querier.Exec(ctx, query, userID, listingID); err != nil {
		r.logger.Error("Failed to save listing",
			"user_id", userID,
			"listing_id", listingID,
			"error", err,
		)
		return fmt.Errorf("failed to save listing: %w", err)
	}
	return nil
}

func (r *SavedListingRepository) ListByUser(ctx context.Context, userID string) ([]listing.SavedListing, error) {
	query := `
		SELECT user_id, garage_sale_id, created_at
		FROM saved_listings
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.querier.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to list saved listings", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list saved listings: %w", err)
	}
	defer rows.Close()

	saved := []listing.SavedListing{}
	for rows.Next() {
		var (
			s  listing.SavedListing
			id string
		)
		if err := rows.Scan(&s.UserID, &id, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan saved listing: %w", err)
		}
		s.GarageSaleID = id
		saved = append(saved, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over saved listings: %w", err)
	}

	return saved, nil
}
