// Package payments talks to the payment gateway: payment intents for seller sales and
// hosted checkout sessions for the listing publication fee.
package payments

import "context"

// Gateway statuses read by the sale and checkout workflows
const (
	IntentStatusSucceeded = "succeeded"
	SessionStatusPaid     = "paid"
)

// Metadata keys attached to gateway objects
const (
	MetadataSellerID      = "seller_id"
	MetadataDescription   = "description"
	MetadataPaymentMethod = "payment_method"
	MetadataListingID     = "listing_id"
	MetadataUserID        = "user_id"
)

// Gateway is the payment processor as seen by the services
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	// GetPaymentIntent reads the intent as connectedAccount; empty means the platform account
	GetPaymentIntent(ctx context.Context, id, connectedAccount string) (*Intent, error)
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error)
	GetCheckoutSession(ctx context.Context, id, connectedAccount string) (*Session, error)
}

type IntentRequest struct {
	AmountMinor        int64
	Currency           string
	Description        string
	Metadata           map[string]string
	PaymentMethodTypes []string // empty lets the gateway choose
	ConnectedAccount   string   // scopes the intent to the seller's sub-account when set
	IdempotencyKey     string
}

type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	AmountMinor  int64
	Currency     string
	Metadata     map[string]string
}

// Succeeded reports whether funds for the intent were captured
func (i *Intent) Succeeded() bool {
	return i != nil && i.Status == IntentStatusSucceeded
}

type SessionRequest struct {
	AmountMinor       int64
	Currency          string
	ProductName       string
	SuccessURL        string
	CancelURL         string
	ClientReferenceID string
	Metadata          map[string]string
}

type Session struct {
	ID            string
	URL           string
	PaymentStatus string
	AmountTotal   int64
	Currency      string
	Metadata      map[string]string
}

// Paid reports whether the hosted checkout collected the payment
func (s *Session) Paid() bool {
	return s != nil && s.PaymentStatus == SessionStatusPaid
}
