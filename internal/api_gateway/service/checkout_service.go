package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/garage-sale-marketplace/internal/config"
	"github.com/garage-sale-marketplace/internal/domain/event"
	"github.com/garage-sale-marketplace/internal/domain/listing"
	"github.com/garage-sale-marketplace/internal/domain/outbox"
	"github.com/garage-sale-marketplace/internal/domain/payment"
	"github.com/garage-sale-marketplace/internal/domain/sale"
	"github.com/garage-sale-marketplace/internal/domain/shared"
	"github.com/garage-sale-marketplace/internal/logger"
	"github.com/garage-sale-marketplace/internal/platform/payments"
	"github.com/garage-sale-marketplace/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// CheckoutServiceImpl implements the CheckoutService interface
type CheckoutServiceImpl struct {
	db       persistence.TxRunner
	listings listing.Repository
	payments payment.Repository
	outbox   outbox.Repository
	gateway  payments.Gateway
	cfg      config.CheckoutConfig
	logger   *slog.Logger
}

func NewCheckoutService(
	logger *slog.Logger,
	cfg config.CheckoutConfig,
	db persistence.TxRunner,
	listings listing.Repository,
	paymentRepo payment.Repository,
	outboxRepo outbox.Repository,
	gateway payments.Gateway,
) CheckoutService {
	return &CheckoutServiceImpl{
		db:       db,
		listings: listings,
		payments: paymentRepo,
		outbox:   outboxRepo,
		gateway:  gateway,
		cfg:      cfg,
		logger:   logger,
	}
}

func (s *CheckoutServiceImpl) CreateSession(ctx context.Context, userID, listingID, title string) (string, error) {
	log := logger.FromContext(ctx, s.logger).With("user_id", userID, "listing_id", listingID)

	if userID == "" {
		return "", fmt.Errorf("%w: missing caller identity", shared.ErrUnauthorized)
	}
	if strings.TrimSpace(listingID) == "" {
		return "", fmt.Errorf("%w: saleId is required", shared.ErrInvalidInput)
	}

	l, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return "", err
	}
	if l.OwnerID != userID {
		return "", fmt.Errorf("%w: listing belongs to another user", shared.ErrIdentityMismatch)
	}
	if l.PaymentStatus == listing.PaymentStatusPaid {
		return "", fmt.Errorf("%w: listing fee already paid", shared.ErrInvalidInput)
	}

	if title == "" {
		title = l.Title
	}
	productName := s.cfg.ProductName
	if title != "" {
		productName = productName + ": " + title
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, payments.SessionRequest{
		AmountMinor:       sale.ToMinorUnits(s.cfg.ListingFee),
		Currency:          s.cfg.Currency,
		ProductName:       productName,
		SuccessURL:        s.cfg.SuccessURL,
		CancelURL:         s.cfg.CancelURL,
		ClientReferenceID: listingID,
		Metadata: map[string]string{
			payments.MetadataListingID: listingID,
			payments.MetadataUserID:    userID,
		},
	})
	if err != nil {
		return "", err
	}

	log.Info("Checkout session created", "session_id", session.ID)
	return session.URL, nil
}

func (s *CheckoutServiceImpl) VerifySession(ctx context.Context, userID, sessionID, listingID string) error {
	log := logger.FromContext(ctx, s.logger).With("user_id", userID, "listing_id", listingID, "session_id", sessionID)

	if userID == "" {
		return fmt.Errorf("%w: missing caller identity", shared.ErrUnauthorized)
	}
	if strings.TrimSpace(sessionID) == "" || strings.TrimSpace(listingID) == "" {
		return fmt.Errorf("%w: sessionId and saleId are required", shared.ErrInvalidInput)
	}

	session, err := s.gateway.GetCheckoutSession(ctx, sessionID, "")
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("%w: checkout session %s does not exist", shared.ErrPaymentNotConfirmed, sessionID)
		}
		return err
	}
	if !session.Paid() {
		return fmt.Errorf("%w: checkout session has payment status %s", shared.ErrPaymentNotConfirmed, session.PaymentStatus)
	}
	if session.Metadata[payments.MetadataListingID] != listingID {
		return fmt.Errorf("%w: checkout session was not created for this listing", shared.ErrInvalidInput)
	}
	if owner := session.Metadata[payments.MetadataUserID]; owner != "" && owner != userID {
		return fmt.Errorf("%w: checkout session belongs to another user", shared.ErrIdentityMismatch)
	}

	l, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return err
	}

	amount := decimal.New(session.AmountTotal, -2)
	currency := session.Currency
	if currency == "" {
		currency = s.cfg.Currency
	}

	err = s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		created, err := s.payments.WithTx(tx).Create(ctx, payment.NewPayment(sessionID, listingID, userID, amount, currency))
		if err != nil {
			return err
		}
		if !created {
			log.Info("Checkout session already verified")
			return nil
		}

		if err := s.listings.WithTx(tx).UpdateStatus(ctx, listingID, listing.StatusPendingApproval, listing.PaymentStatusPaid); err != nil {
			return err
		}

		evt, err := event.New(event.TypeListingPaid, listingID, logger.CorrelationID(ctx), event.ListingPaid{
			ListingID: listingID,
			OwnerID:   l.OwnerID,
			SessionID: sessionID,
			Title:     l.Title,
			Amount:    amount,
			Currency:  currency,
		})
		if err != nil {
			return err
		}
		msg, err := outbox.NewMessage(evt)
		if err != nil {
			return err
		}
		return s.outbox.WithTx(tx).Create(ctx, msg)
	})
	if err != nil {
		log.Error("Failed to record checkout payment", "error", err)
		return fmt.Errorf("failed to record checkout payment: %w", err)
	}

	log.Info("Listing fee paid", "amount", amount.StringFixed(2), "currency", currency)
	return nil
}
