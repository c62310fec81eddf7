package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const StatusCompleted = "completed"

// Payment records a paid listing publication fee. SessionID is unique.
type Payment struct {
	ID        uuid.UUID       `json:"id"`
	SessionID string          `json:"session_id"`
	ListingID string          `json:"listing_id"`
	UserID    string          `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewPayment(sessionID, listingID, userID string, amount decimal.Decimal, currency string) *Payment {
	return &Payment{
		ID:        uuid.New(),
		SessionID: sessionID,
		ListingID: listingID,
		UserID:    userID,
		Amount:    amount,
		Currency:  currency,
		Status:    StatusCompleted,
		CreatedAt: time.Now().UTC(),
	}
}

// Repository stores checkout payments
type Repository interface {
	// Create inserts the payment. created is false when a payment for the session already exists.
	Create(ctx context.Context, p *Payment) (created bool, err error)
	WithTx(tx pgx.Tx) Repository
}
