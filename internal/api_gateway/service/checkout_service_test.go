package service

import (
	"context"
	"errors"
	"testing"

	"github.com/garage-sale-marketplace/internal/config"
	"github.com/garage-sale-marketplace/internal/domain/event"
	"github.com/garage-sale-marketplace/internal/domain/listing"
	"github.com/garage-sale-marketplace/internal/domain/outbox"
	"github.com/garage-sale-marketplace/internal/domain/payment"
	"github.com/garage-sale-marketplace/internal/domain/shared"
	"github.com/garage-sale-marketplace/internal/platform/payments"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testCheckoutCfg = config.CheckoutConfig{
	ListingFee:  decimal.RequireFromString("5.00"),
	Currency:    "aud",
	ProductName: "Listing fee",
	SuccessURL:  "https://app.example/success",
	CancelURL:   "https://app.example/cancel",
}

type checkoutMocks struct {
	tx       *fakeTxRunner
	listings *MockListingRepository
	payments *MockPaymentRepository
	outbox   *MockOutboxRepository
	gateway  *MockGateway
}

func newCheckoutServiceWithMocks() (CheckoutService, *checkoutMocks) {
	m := &checkoutMocks{
		tx:       &fakeTxRunner{},
		listings: new(MockListingRepository),
		payments: new(MockPaymentRepository),
		outbox:   new(MockOutboxRepository),
		gateway:  new(MockGateway),
	}
	svc := NewCheckoutService(newTestLogger(), testCheckoutCfg, m.tx, m.listings, m.payments, m.outbox, m.gateway)
	return svc, m
}

func unpaidListing() *listing.Listing {
	return &listing.Listing{
		ID:            "listing-1",
		OwnerID:       "user-1",
		Title:         "Moving sale",
		Status:        listing.StatusPendingPayment,
		PaymentStatus: listing.PaymentStatusUnpaid,
	}
}

func TestCheckoutService_CreateSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, m := newCheckoutServiceWithMocks()
		m.listings.On("GetByID", ctx, "listing-1").Return(unpaidListing(), nil).Once()
		m.gateway.On("CreateCheckoutSession", ctx, mock.MatchedBy(func(req payments.SessionRequest) bool {
			return req.AmountMinor == 500 &&
				req.Currency == "aud" &&
				req.ProductName == "Listing fee: Moving sale" &&
				req.ClientReferenceID == "listing-1" &&
				req.Metadata[payments.MetadataListingID] == "listing-1" &&
				req.Metadata[payments.MetadataUserID] == "user-1"
		})).Return(&payments.Session{ID: "cs_1", URL: "https://checkout.example/cs_1"}, nil).Once()

		url, err := svc.CreateSession(ctx, "user-1", "listing-1", "")
		require.NoError(t, err)
		assert.Equal(t, "https://checkout.example/cs_1", url)
	})

	t.Run("MissingSaleID", func(t *testing.T) {
		svc, m := newCheckoutServiceWithMocks()
		_, err := svc.CreateSession(ctx, "user-1", " ", "")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		m.listings.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("UnknownListing", func(t *testing.T) {
		svc, m := newCheckoutServiceWithMocks()
		m.listings.On("GetByID", ctx, "listing-9").Return(nil, listing.ErrListingNotFound{ListingID: "listing-9"}).Once()

		_, err := svc.CreateSession(ctx, "user-1", "listing-9", "")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("NotOwner", func(t *testing.T) {
		svc, m := newCheckoutServiceWithMocks()
		m.listings.On("GetByID", ctx, "listing-1").Return(unpaidListing(), nil).Once()

		_, err := svc.CreateSession(ctx, "user-2", "listing-1", "")
		assert.ErrorIs(t, err, shared.ErrIdentityMismatch)
		m.gateway.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
	})

	t.Run("AlreadyPaid", func(t *testing.T) {
		svc, m := newCheckoutServiceWithMocks()
		paid := unpaidListing()
		paid.PaymentStatus = listing.PaymentStatusPaid
		m.listings.On("GetByID", ctx, "listing-1").Return(paid, nil).Once()

		_, err := svc.CreateSession(ctx, "user-1", "listing-1", "")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func paidSession() *payments.Session {
	return &payments.Session{
		ID:            "cs_1",
		PaymentStatus: "paid",
		AmountTotal:   500,
		Currency:      "aud",
		Metadata:      map[string]string{"listing_id": "listing-1", "user_id": "user-1"},
	}
}

func TestCheckoutService_VerifySession(t *testing.T) {
	ctx := context.Background()

	t.Run("RecordsPaymentAndEnqueuesEvent", func(t *testing.T) {
		svc, m := newCheckoutServiceWithMocks()
		m.gateway.On("GetCheckoutSession", ctx, "cs_1", "").Return(paidSession(), nil).Once()
		m.listings.On("GetByID", ctx, "listing-1").Return(unpaidListing(), nil).Once()
		m.payments.On("Create", ctx, mock.MatchedBy(func(p *payment.Payment) bool {
			return p.SessionID == "cs_1" && p.ListingID == "listing-1" && p.UserID == "user-1" &&
				p.Amount.Equal(decimal.RequireFromString("5")) && p.Currency == "aud"
		})).Return(true, nil).Once()
		m.listings.On("UpdateStatus", ctx, "listing-1", listing.StatusPendingApproval, listing.PaymentStatusPaid).Return(nil).Once()
		m.outbox.On("Create", ctx, mock.MatchedBy(func(msg *outbox.Message) bool {
			evt, err := msg.Event()
			if err != nil || msg.EventType != event.TypeListingPaid || msg.Status != shared.OutboxStatusPending {
				return false
			}
			p, err := evt.ListingPaid()
			return err == nil && p.ListingID == "listing-1" && p.OwnerID == "user-1" && p.Title == "Moving sale"
		})).Return(nil).Once()

		require.NoError(t, svc.VerifySession(ctx, "user-1", "cs_1", "listing-1"))
		assert.Equal(t, 1, m.tx.calls)
		m.payments.AssertExpectations(t)
		m.listings.AssertExpectations(t)
		m.outbox.AssertExpectations(t)
	})

	t.Run("RepeatIsIdempotent", func(t *testing.T) {
		svc, m := newCheckoutServiceWithMocks()
		m.gateway.On("GetCheckoutSession", ctx, "cs_1", "").Return(paidSession(), nil).Once()
		m.listings.On("GetByID", ctx, "listing-1").Return(unpaidListing(), nil).Once()
		m.payments.On("Create", ctx, mock.Anything).Return(false, nil).Once()

		require.NoError(t, svc.VerifySession(ctx, "user-1", "cs_1", "listing-1"))
		m.listings.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		m.outbox.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("NotPaid", func(t *testing.T) {
		svc, m := newCheckoutServiceWithMocks()
		unpaid := paidSession()
		unpaid.PaymentStatus = "unpaid"
		m.gateway.On("GetCheckoutSession", ctx, "cs_1", "").Return(unpaid, nil).Once()

		err := svc.VerifySession(ctx, "user-1", "cs_1", "listing-1")
		assert.ErrorIs(t, err, shared.ErrPaymentNotConfirmed)
		assert.Equal(t, 0, m.tx.calls)
	})

	t.Run("SessionForOtherListing", func(t *testing.T) {
		svc, m := newCheckoutServiceWithMocks()
		m.gateway.On("GetCheckoutSession", ctx, "cs_1", "").Return(paidSession(), nil).Once()

		err := svc.VerifySession(ctx, "user-1", "cs_1", "listing-2")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		assert.Equal(t, 0, m.tx.calls)
	})

	t.Run("SessionOfOtherUser", func(t *testing.T) {
		svc, m := newCheckoutServiceWithMocks()
		m.gateway.On("GetCheckoutSession", ctx, "cs_1", "").Return(paidSession(), nil).Once()

		err := svc.VerifySession(ctx, "user-2", "cs_1", "listing-1")
		assert.ErrorIs(t, err, shared.ErrIdentityMismatch)
	})

	t.Run("MissingParams", func(t *testing.T) {
		svc, m := newCheckoutServiceWithMocks()
		assert.ErrorIs(t, svc.VerifySession(ctx, "user-1", "", "listing-1"), shared.ErrInvalidInput)
		assert.ErrorIs(t, svc.VerifySession(ctx, "user-1", "cs_1", ""), shared.ErrInvalidInput)
		m.gateway.AssertNotCalled(t, "GetCheckoutSession", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("OutboxFailureFailsTransaction", func(t *testing.T) {
		svc, m := newCheckoutServiceWithMocks()
		m.gateway.On("GetCheckoutSession", ctx, "cs_1", "").Return(paidSession(), nil).Once()
		m.listings.On("GetByID", ctx, "listing-1").Return(unpaidListing(), nil).Once()
		m.payments.On("Create", ctx, mock.Anything).Return(true, nil).Once()
		m.listings.On("UpdateStatus", ctx, "listing-1", mock.Anything, mock.Anything).Return(nil).Once()
		m.outbox.On("Create", ctx, mock.Anything).Return(errors.New("disk full")).Once()

		err := svc.VerifySession(ctx, "user-1", "cs_1", "listing-1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
	})
}
