package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/garage-sale-marketplace/internal/domain/payment"
	"github.com/garage-sale-marketplace/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// PaymentRepository implements payment.Repository for PostgreSQL
type PaymentRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewPaymentRepository(logger *slog.Logger, db *persistence.PostgresDB) payment.Repository {
	return &PaymentRepository{
		querier: db.Querier(),
		logger:  logger,
	}
}

func (r *PaymentRepository) WithTx(tx pgx.Tx) payment.Repository {
	return &PaymentRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create is idempotent on session_id
func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) (bool, error) {
	query := `
		INSERT INTO payments (id, session_id, listing_id, user_id, amount, currency, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (session_id) DO NOTHING
	`

	result, err := r.querier.Exec(ctx, query,
		p.ID,
		p.SessionID,
		p.ListingID,
		p.UserID,
		p.Amount,
		p.Currency,
		p.Status,
		p.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create payment",
			"session_id", p.SessionID,
			"listing_id", p.ListingID,
			"error", err,
		)
		return false, fmt.Errorf("failed to create payment: %w", err)
	}

	return result.RowsAffected() == 1, nil
}
