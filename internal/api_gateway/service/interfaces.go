package service

import (
	"context"

	"github.com/garage-sale-marketplace/internal/domain/geo"
	"github.com/garage-sale-marketplace/internal/domain/listing"
	"github.com/garage-sale-marketplace/internal/domain/sale"
	"github.com/garage-sale-marketplace/internal/domain/user"
	"github.com/garage-sale-marketplace/internal/platform/identity"
	"github.com/shopspring/decimal"
)

// SaleService records seller sales and serves the seller dashboard
type SaleService interface {
	// CreatePaymentIntent starts a card or tap-to-pay charge for the seller.
	// Fails with ErrConfiguration when no gateway key is set.
	CreatePaymentIntent(ctx context.Context, in CreatePaymentIntentInput) (*PaymentIntentResult, error)

	// RecordSale stores one sale after confirming the payment where the method requires it.
	// ErrIdentityMismatch when the body seller differs from the verified caller.
	RecordSale(ctx context.Context, in RecordSaleInput) (*RecordSaleResult, error)

	// RecordTapToPaySale records an in-person card sale with its processing fee
	RecordTapToPaySale(ctx context.Context, in TapToPayInput) (*RecordSaleResult, error)

	// GetSellerStats returns a zeroed aggregate when the seller has no sales yet
	GetSellerStats(ctx context.Context, callerID, sellerID string) (*sale.SellerStats, error)

	// GetSales returns the seller's most recent sales, newest first
	GetSales(ctx context.Context, callerID, sellerID string) ([]*sale.Sale, error)
}

// CheckoutService collects the listing publication fee through hosted checkout
type CheckoutService interface {
	// CreateSession returns the hosted checkout URL
	CreateSession(ctx context.Context, userID, listingID, title string) (string, error)

	// VerifySession confirms the session is paid and marks the listing as paid. Safe to repeat.
	VerifySession(ctx context.Context, userID, sessionID, listingID string) error
}

// UserService manages profiles and roles
type UserService interface {
	UpsertProfile(ctx context.Context, id *identity.Identity, displayName string) (*user.Profile, error)

	// DeleteUser removes targetID from the identity provider and the profile store. Admin only.
	DeleteUser(ctx context.Context, callerID, targetID string) error

	// IsAdmin is false for subjects without a profile
	IsAdmin(ctx context.Context, uid string) (bool, error)
}

// GeoService resolves free text to coordinates, never failing the caller
type GeoService interface {
	Coordinates(ctx context.Context, query string) *geo.Location
}

// ListingService publishes, searches and bookmarks garage sale listings
type ListingService interface {
	Create(ctx context.Context, in CreateListingInput) (*listing.Listing, error)
	Search(ctx context.Context, userID string, criteria *listing.FilterCriteria) ([]*ListingView, error)
	Clusters(ctx context.Context, userID string, criteria *listing.FilterCriteria) ([]*ListingCluster, error)
	Save(ctx context.Context, userID, listingID string) error
	Approve(ctx context.Context, adminID, listingID string) (*ApprovalResult, error)
}

type CreatePaymentIntentInput struct {
	SellerID       string
	Amount         decimal.Decimal
	Description    string
	Currency       string
	PaymentMethod  string
	IdempotencyKey string
}

type PaymentIntentResult struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

type RecordSaleInput struct {
	VerifiedSellerID string // subject of the bearer token
	SellerID         string // as supplied in the request body
	Amount           decimal.Decimal
	Description      string
	PaymentMethod    string
	PaymentIntentID  string
	Currency         string
}

type TapToPayInput struct {
	SellerID        string
	Amount          decimal.Decimal
	Description     string
	PaymentIntentID string
	Currency        string
}

type RecordSaleResult struct {
	SaleID string
	Sale   *sale.Sale
}

type CreateListingInput struct {
	OwnerID     string
	Title       string
	Description string
	SaleType    string
	Address     string
	Postcode    string
	Latitude    *float64
	Longitude   *float64
	StartDate   *string
	EndDate     *string
}

// ListingView is a listing as shown to one user
type ListingView struct {
	*listing.Listing
	Saved bool `json:"saved"`
}

type ListingCluster struct {
	Key      string         `json:"key"`
	Count    int            `json:"count"`
	Listings []*ListingView `json:"listings"`
}

type ApprovalResult struct {
	Listing    *listing.Listing `json:"listing"`
	EmailSent  bool             `json:"emailSent"`
	EmailError string           `json:"emailError,omitempty"`
}
