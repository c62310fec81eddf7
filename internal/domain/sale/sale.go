package sale

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/garage-sale-marketplace/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrMissingSeller   = errors.New("seller id is required")
	ErrInvalidCurrency = errors.New("currency must be a 3-letter code")
	ErrInvalidMethod   = errors.New("payment method must be one of card, cash, tap_to_pay")
	ErrMissingIntent   = errors.New("payment intent id is required for card and tap_to_pay")
)

// MaxAmount is the largest single charge the payment gateway accepts
var MaxAmount = decimal.RequireFromString("999999.99")

// Tap-to-pay processing fee schedule: 2.9% plus 30 cents
var (
	tapToPayFeeRate  = decimal.RequireFromString("0.029")
	tapToPayFeeFixed = decimal.RequireFromString("0.30")
)

// Sale is one recorded transaction in the sales collection. Created once, never mutated.
type Sale struct {
	ID              string               `json:"id"`
	SellerID        string               `json:"sellerId"`
	Amount          decimal.Decimal      `json:"amount"`
	Currency        string               `json:"currency"`
	Description     string               `json:"description"`
	PaymentMethod   shared.PaymentMethod `json:"paymentMethod"`
	PaymentIntentID *string              `json:"paymentIntentId"`
	Status          shared.SaleStatus    `json:"status"`
	TransactionFee  *decimal.Decimal     `json:"transactionFee,omitempty"`
	NetEarnings     *decimal.Decimal     `json:"netEarnings,omitempty"`
	Timestamp       time.Time            `json:"timestamp"`
}

// NewSale validates the inputs and builds an unsaved sale. ID and Timestamp are
// assigned by the repository when the record is inserted.
func NewSale(sellerID string, amount decimal.Decimal, currency, description string, method shared.PaymentMethod, paymentIntentID string) (*Sale, error) {
	if strings.TrimSpace(sellerID) == "" {
		return nil, ErrMissingSeller
	}
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	if len(currency) != 3 {
		return nil, ErrInvalidCurrency
	}
	if !method.Valid() {
		return nil, ErrInvalidMethod
	}

	s := &Sale{
		SellerID:      sellerID,
		Amount:        amount,
		Currency:      strings.ToLower(currency),
		Description:   description,
		PaymentMethod: method,
		Status:        shared.SaleStatusRecorded,
	}

	if method.RequiresGateway() {
		if paymentIntentID == "" {
			return nil, ErrMissingIntent
		}
		s.PaymentIntentID = &paymentIntentID
		s.Status = shared.SaleStatusCompleted
	}

	if method == shared.PaymentMethodTapToPay {
		fee, net := TapToPayFee(amount)
		s.TransactionFee = &fee
		s.NetEarnings = &net
	}

	return s, nil
}

// TapToPayFee returns the processing fee and the seller's net for an in-person card sale.
// Both are rounded half away from zero to 2 places; net is derived from the rounded fee so
// fee + net equals amount exactly for amounts with at most 2 decimal places.
func TapToPayFee(amount decimal.Decimal) (fee decimal.Decimal, net decimal.Decimal) {
	fee = amount.Mul(tapToPayFeeRate).Add(tapToPayFeeFixed).Round(2)
	net = amount.Sub(fee).Round(2)
	return fee, net
}

// ValidateAmount accepts positive amounts up to MaxAmount
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: must not exceed %s", ErrInvalidAmount, MaxAmount.StringFixed(2))
	}
	return nil
}

// ToMinorUnits converts a major-unit amount into integer minor units (cents).
// Every currency is treated as having 2 decimal places. Callers validate the amount
// with ValidateAmount first so the result always fits in an int64.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
