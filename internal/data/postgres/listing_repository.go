package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/garage-sale-marketplace/internal/domain/listing"
	"github.com/garage-sale-marketplace/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const listingColumns = `id, owner_id, title, description, sale_type, address, postcode, latitude, longitude,
		status, payment_status, start_date, end_date, created_at, updated_at`

// ListingRepository implements listing.Repository for PostgreSQL
type ListingRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewListingRepository(logger *slog.Logger, db *persistence.PostgresDB) listing.Repository {
	return &ListingRepository{
		querier: db.Querier(),
		logger:  logger,
	}
}

func (r *ListingRepository) WithTx(tx pgx.Tx) listing.Repository {
	return &ListingRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create assigns a new id when the listing has none
func (r *ListingRepository) Create(ctx context.Context, l *listing.Listing) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}

	query := `
		INSERT INTO garage_sales (` + listingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.querier.Exec(ctx, query,
		l.ID,
		l.OwnerID,
		l.Title,
		l.Description,
		l.SaleType,
		l.Address,
		l.Postcode,
		l.Latitude,
		l.Longitude,
		l.Status,
		l.PaymentStatus,
		l.StartDate,
		l.EndDate,
		l.CreatedAt,
		l.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create listing", "owner_id", l.OwnerID, "error", err)
		return fmt.Errorf("failed to create listing: %w", err)
	}
	return nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id string) (*listing.Listing, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, listing.ErrListingNotFound{ListingID: id}
	}

	query := `SELECT ` + listingColumns + ` FROM garage_sales WHERE id = $1`

	l, err := scanListing(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, listing.ErrListingNotFound{ListingID: id}
		}
		r.logger.Error("Failed to get listing", "listing_id", id, "error", err)
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return l, nil
}

func (r *ListingRepository) ListByStatus(ctx context.Context, status string, limit int) ([]*listing.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM garage_sales WHERE status = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.querier.Query(ctx, query, status, limit)
	if err != nil {
		r.logger.Error("Failed to list listings", "status", status, "error", err)
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	defer rows.Close()

	listings := []*listing.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			r.logger.Error("Failed to scan listing", "error", err)
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over listings: %w", err)
	}

	return listings, nil
}

func (r *ListingRepository) UpdateStatus(ctx context.Context, id, status, paymentStatus string) error {
	query := `
		UPDATE garage_sales
		SET status = $1, payment_status = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := r.querier.Exec(ctx, query, status, paymentStatus, time.Now().UTC(), id)
	if err != nil {
		r.logger.Error("Failed to update listing status",
			"listing_id", id,
			"status", status,
			"error", err,
		)
		return fmt.Errorf("failed to update listing status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return listing.ErrListingNotFound{ListingID: id}
	}
	return nil
}

func scanListing(row pgx.Row) (*listing.Listing, error) {
	var l listing.Listing
	err := row.Scan(
		&l.ID,
		&l.OwnerID,
		&l.Title,
		&l.Description,
		&l.SaleType,
		&l.Address,
		&l.Postcode,
		&l.Latitude,
		&l.Longitude,
		&l.Status,
		&l.PaymentStatus,
		&l.StartDate,
		&l.EndDate,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
