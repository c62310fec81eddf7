// Package event defines the envelope published on the marketplace events topic
// and the payloads carried for each event type.
package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type names an event kind
type Type string

const (
	TypeSaleRecorded Type = "sale.recorded"
	TypeListingPaid  Type = "listing.paid"
)

var ErrInvalidEvent = errors.New("invalid event")

// Event is the envelope written to Kafka. Payload holds one of the typed payloads below.
type Event struct {
	ID            uuid.UUID       `json:"id"`
	Type          Type            `json:"type"`
	AggregateID   string          `json:"aggregate_id"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// SaleRecorded is emitted after a sale document is stored.
// StatsPending is set when the seller aggregate could not be updated inline.
type SaleRecorded struct {
	SaleID        string          `json:"sale_id"`
	SellerID      string          `json:"seller_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaymentMethod string          `json:"payment_method"`
	Description   string          `json:"description,omitempty"`
	NetEarnings   *string         `json:"net_earnings,omitempty"`
	StatsPending  bool            `json:"stats_pending"`
}

// ListingPaid is emitted once the listing publication fee is confirmed
type ListingPaid struct {
	ListingID string          `json:"listing_id"`
	OwnerID   string          `json:"owner_id"`
	SessionID string          `json:"session_id"`
	Title     string          `json:"title"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
}

// New builds an envelope around payload
func New(eventType Type, aggregateID, correlationID string, payload any) (*Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return &Event{
		ID:            uuid.New(),
		Type:          eventType,
		AggregateID:   aggregateID,
		CorrelationID: correlationID,
		OccurredAt:    time.Now().UTC(),
		Payload:       raw,
	}, nil
}

// Decode parses an envelope and checks the mandatory fields
func Decode(data []byte) (*Event, error) {
	var evt Event
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if evt.ID == uuid.Nil || evt.Type == "" {
		return nil, fmt.Errorf("%w: missing id or type", ErrInvalidEvent)
	}
	return &evt, nil
}

func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// SaleRecorded decodes the payload of a sale.recorded event
func (e *Event) SaleRecorded() (*SaleRecorded, error) {
	if e.Type != TypeSaleRecorded {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrInvalidEvent, TypeSaleRecorded, e.Type)
	}
	var p SaleRecorded
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if p.SellerID == "" {
		return nil, fmt.Errorf("%w: sale.recorded without seller_id", ErrInvalidEvent)
	}
	return &p, nil
}

// ListingPaid decodes the payload of a listing.paid event
func (e *Event) ListingPaid() (*ListingPaid, error) {
	if e.Type != TypeListingPaid {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrInvalidEvent, TypeListingPaid, e.Type)
	}
	var p ListingPaid
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if p.ListingID == "" {
		return nil, fmt.Errorf("%w: listing.paid without listing_id", ErrInvalidEvent)
	}
	return &p, nil
}
