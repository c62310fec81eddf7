package handler

import (
	"encoding/json"

	"github.com/garage-sale-marketplace/internal/api_gateway/service"
	"github.com/gin-gonic/gin/binding"
	"github.com/shopspring/decimal"
)

func init() {
	// Bodies with fields the API does not know are rejected as invalid input
	binding.EnableDecoderDisallowUnknownFields = true
}

// CreatePaymentIntentRequest starts a card or tap-to-pay charge
type CreatePaymentIntentRequest struct {
	Amount         *decimal.Decimal `json:"amount" binding:"required"`
	Description    string           `json:"description"`
	Currency       string           `json:"currency" binding:"omitempty,len=3"`
	PaymentMethod  string           `json:"paymentMethod" binding:"omitempty,oneof=card tap_to_pay"`
	IdempotencyKey string           `json:"idempotencyKey" binding:"omitempty,max=255"`
}

// RecordSaleRequest records a card, cash or tap-to-pay sale
type RecordSaleRequest struct {
	SellerID        string           `json:"sellerId" binding:"required"`
	Amount          *decimal.Decimal `json:"amount" binding:"required"`
	Description     string           `json:"description"`
	PaymentMethod   string           `json:"paymentMethod" binding:"omitempty,oneof=card cash tap_to_pay"`
	PaymentIntentID string           `json:"paymentIntentId"`
	Currency        string           `json:"currency" binding:"omitempty,len=3"`
}

// RecordSaleResponse is returned by recordSale
type RecordSaleResponse struct {
	SaleID  string `json:"saleId"`
	Success bool   `json:"success"`
}

// RecordTapToPaySaleRequest records an in-person card sale
type RecordTapToPaySaleRequest struct {
	Amount          *decimal.Decimal `json:"amount" binding:"required"`
	Description     string           `json:"description"`
	PaymentIntentID string           `json:"paymentIntentId" binding:"required"`
	Currency        string           `json:"currency" binding:"omitempty,len=3"`
}

// TapToPaySaleResponse echoes the stored sale with its fee breakdown
type TapToPaySaleResponse struct {
	Success  bool         `json:"success"`
	SaleID   string       `json:"saleId"`
	SaleData SaleResponse `json:"saleData"`
}

// SaleResponse represents a sale in API responses. Money is a JSON number with two decimals.
type SaleResponse struct {
	ID              string       `json:"id"`
	SellerID        string       `json:"sellerId"`
	Amount          json.Number  `json:"amount"`
	Currency        string       `json:"currency"`
	Description     string       `json:"description"`
	PaymentMethod   string       `json:"paymentMethod"`
	PaymentIntentID *string      `json:"paymentIntentId"`
	Status          string       `json:"status"`
	TransactionFee  *json.Number `json:"transactionFee,omitempty"`
	NetEarnings     *json.Number `json:"netEarnings,omitempty"`
	Timestamp       string       `json:"timestamp"`
}

// SaleListResponse represents a seller's sales history
type SaleListResponse struct {
	Sales []SaleResponse `json:"sales"`
}

// SellerStatsResponse represents the seller dashboard aggregate
type SellerStatsResponse struct {
	SellerID      string      `json:"sellerId"`
	TotalEarnings json.Number `json:"totalEarnings"`
	TotalSales    int64       `json:"totalSales"`
	LastUpdated   *string     `json:"lastUpdated"`
}

// CreateCheckoutRequest opens a hosted checkout for a listing fee
type CreateCheckoutRequest struct {
	SaleID    string `json:"saleId" binding:"required"`
	SaleTitle string `json:"saleTitle"`
}

// CheckoutURLResponse carries the hosted checkout redirect
type CheckoutURLResponse struct {
	URL string `json:"url"`
}

// VerifyCheckoutRequest confirms a completed hosted checkout
type VerifyCheckoutRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	SaleID    string `json:"saleId" binding:"required"`
}

// DeleteUserRequest removes a user account
type DeleteUserRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// UpsertProfileRequest creates or refreshes the caller's profile
type UpsertProfileRequest struct {
	DisplayName string `json:"displayName" binding:"max=100"`
}

// CoordinatesQuery is the query string of /geo/coordinates
type CoordinatesQuery struct {
	Query string `form:"query"`
}

// CreateListingRequest publishes a new garage sale listing
type CreateListingRequest struct {
	Title       string   `json:"title" binding:"required,max=200"`
	Description string   `json:"description" binding:"max=5000"`
	SaleType    string   `json:"sale_type" binding:"required"`
	Address     string   `json:"address"`
	Postcode    string   `json:"postcode"`
	Latitude    *float64 `json:"latitude" binding:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" binding:"omitempty,longitude"`
	StartDate   *string  `json:"start_date"`
	EndDate     *string  `json:"end_date"`
}

// ListingSearchQuery is the query string of the search and cluster endpoints
type ListingSearchQuery struct {
	SaleType  string   `form:"saleType"`
	Postcode  string   `form:"postcode"`
	Distance  *float64 `form:"distance" binding:"omitempty,gt=0"`
	Latitude  *float64 `form:"lat" binding:"omitempty,latitude"`
	Longitude *float64 `form:"lng" binding:"omitempty,longitude"`
}

// SaveListingRequest bookmarks a listing for the caller
type SaveListingRequest struct {
	ListingID string `json:"listingId" binding:"required"`
}

// ApproveListingRequest activates a paid listing
type ApproveListingRequest struct {
	ListingID string `json:"listingId" binding:"required"`
}

// ListingListResponse represents search results
type ListingListResponse struct {
	Listings []*service.ListingView `json:"listings"`
}

// ClusterListResponse represents map clusters in first-seen order
type ClusterListResponse struct {
	Clusters []*service.ListingCluster `json:"clusters"`
}
