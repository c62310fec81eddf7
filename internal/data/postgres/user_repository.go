// Package postgres provides PostgreSQL implementations of the domain repositories
// for profiles, listings, bookmarks, checkout payments and the event outbox.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/garage-sale-marketplace/internal/domain/shared"
	"github.com/garage-sale-marketplace/internal/domain/user"
	"github.com/garage-sale-marketplace/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// UserRepository implements user.Repository for PostgreSQL
type UserRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewUserRepository(logger *slog.Logger, db *persistence.PostgresDB) user.Repository {
	return &UserRepository{
		querier: db.Querier(),
		logger:  logger,
	}
}

// Upsert never changes role or stripe_account_id of an existing row
func (r *UserRepository) Upsert(ctx context.Context, p *user.Profile) error {
	query := `
		INSERT INTO users (id, email, display_name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email, display_name = EXCLUDED.display_name, updated_at = NOW()
		RETURNING role, COALESCE(stripe_account_id, ''), created_at, updated_at
	`

	err := r.querier.QueryRow(ctx, query, p.ID, p.Email, p.DisplayName, shared.RoleUser).
		Scan(&p.Role, &p.StripeAccountID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to upsert user", "user_id", p.ID, "error", err)
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.Profile, error) {
	query := `
		SELECT id, email, display_name, role, COALESCE(stripe_account_id, ''), created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var p user.Profile
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Email,
		&p.DisplayName,
		&p.Role,
		&p.StripeAccountID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound{UserID: id}
		}
		r.logger.Error("Failed to get user", "user_id", id, "error", err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &p, nil
}

// Delete removes the profile and its bookmarks. Deleting a missing user returns ErrUserNotFound.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.querier.Exec(ctx, `DELETE FROM saved_listings WHERE user_id = $1`, id); err != nil {
		r.logger.Error("Failed to delete saved listings", "user_id", id, "error", err)
		return fmt.Errorf("failed to delete saved listings: %w", err)
	}

	result, err := r.querier.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete user", "user_id", id, "error", err)
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return user.ErrUserNotFound{UserID: id}
	}
	return nil
}
