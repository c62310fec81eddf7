package listing

import (
	"errors"
	"strings"
	"time"
)

// Sale types a listing can advertise
const (
	SaleTypeAll        = "all" // filter wildcard, never stored
	SaleTypeGarageSale = "garage_sale"
	SaleTypeEstateSale = "estate_sale"
	SaleTypeMovingSale = "moving_sale"
	SaleTypeYardSale   = "yard_sale"
)

// Listing lifecycle: pending_payment -> pending_approval (fee paid) -> active (admin approved)
const (
	StatusPendingPayment  = "pending_payment"
	StatusPendingApproval = "pending_approval"
	StatusActive          = "active"

	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"
)

var (
	ErrEmptyTitle      = errors.New("title cannot be empty")
	ErrInvalidSaleType = errors.New("unknown sale type")
	ErrMissingLocation = errors.New("address or postcode is required")
	ErrInvalidDates    = errors.New("end date must not be before start date")
)

// Listing is a published garage sale
type Listing struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"owner_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	SaleType      string     `json:"sale_type"`
	Address       string     `json:"address"`
	Postcode      string     `json:"postcode"`
	Latitude      float64    `json:"latitude"`
	Longitude     float64    `json:"longitude"`
	Status        string     `json:"status"`
	PaymentStatus string     `json:"payment_status"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ValidSaleType reports whether t can be stored on a listing
func ValidSaleType(t string) bool {
	switch t {
	case SaleTypeGarageSale, SaleTypeEstateSale, SaleTypeMovingSale, SaleTypeYardSale:
		return true
	}
	return false
}

// NewListing validates the basic fields and returns a listing awaiting its publication fee.
// Coordinates are filled in by the caller.
func NewListing(ownerID, title, description, saleType, address, postcode string, start, end *time.Time) (*Listing, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrEmptyTitle
	}
	if !ValidSaleType(saleType) {
		return nil, ErrInvalidSaleType
	}
	if strings.TrimSpace(address) == "" && strings.TrimSpace(postcode) == "" {
		return nil, ErrMissingLocation
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, ErrInvalidDates
	}

	now := time.Now().UTC()
	return &Listing{
		OwnerID:       ownerID,
		Title:         strings.TrimSpace(title),
		Description:   description,
		SaleType:      saleType,
		Address:       strings.TrimSpace(address),
		Postcode:      strings.TrimSpace(postcode),
		Status:        StatusPendingPayment,
		PaymentStatus: PaymentStatusUnpaid,
		StartDate:     start,
		EndDate:       end,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// GeocodeQuery is the text sent to the geocoder for this listing
func (l *Listing) GeocodeQuery() string {
	parts := make([]string, 0, 2)
	if l.Address != "" {
		parts = append(parts, l.Address)
	}
	if l.Postcode != "" {
		parts = append(parts, l.Postcode)
	}
	return strings.Join(parts, " ")
}

// SavedListing is a user's bookmark of a listing. GarageSaleID keeps whatever type
// the source produced so comparisons stay type-strict.
type SavedListing struct {
	UserID       string    `json:"user_id"`
	GarageSaleID any       `json:"garage_sale_id"`
	CreatedAt    time.Time `json:"created_at"`
}
