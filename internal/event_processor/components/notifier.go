package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/garage-sale-marketplace/internal/domain/event"
	"github.com/garage-sale-marketplace/internal/domain/shared"
	"github.com/garage-sale-marketplace/internal/domain/user"
	"github.com/garage-sale-marketplace/internal/event_processor/service"
	"github.com/garage-sale-marketplace/internal/logger"
	"github.com/garage-sale-marketplace/internal/platform/email"
)

// EventMailer is the part of email.Mailer used by the processor
type EventMailer interface {
	SendSaleReceipt(ctx context.Context, to email.Recipient, data email.SaleReceipt) error
	SendListingPaid(ctx context.Context, to email.Recipient, data email.ListingPaid) error
}

type NotifierImpl struct {
	users  user.Repository
	mailer EventMailer
	logger *slog.Logger
}

func NewNotifier(users user.Repository, mailer EventMailer, logger *slog.Logger) service.Notifier {
	return &NotifierImpl{
		users:  users,
		mailer: mailer,
		logger: logger,
	}
}

// NotifySaleRecorded emails the seller a receipt. Sellers without a stored email are skipped.
func (n *NotifierImpl) NotifySaleRecorded(ctx context.Context, payload *event.SaleRecorded) error {
	to, ok, err := n.recipient(ctx, payload.SellerID)
	if err != nil || !ok {
		return err
	}

	data := email.SaleReceipt{
		SaleID:        payload.SaleID,
		Amount:        payload.Amount.StringFixed(2),
		Currency:      strings.ToUpper(payload.Currency),
		PaymentMethod: strings.ReplaceAll(payload.PaymentMethod, "_", " "),
		Description:   payload.Description,
	}
	if payload.NetEarnings != nil {
		data.NetEarnings = *payload.NetEarnings
	}

	if err := n.mailer.SendSaleReceipt(ctx, to, data); err != nil {
		return fmt.Errorf("send sale receipt for %s: %w", payload.SaleID, err)
	}
	logger.FromContext(ctx, n.logger).Info("Sale receipt sent", "sale_id", payload.SaleID, "seller_id", payload.SellerID)
	return nil
}

// NotifyListingPaid tells the owner the publication fee was received
func (n *NotifierImpl) NotifyListingPaid(ctx context.Context, payload *event.ListingPaid) error {
	to, ok, err := n.recipient(ctx, payload.OwnerID)
	if err != nil || !ok {
		return err
	}

	data := email.ListingPaid{
		ListingID: payload.ListingID,
		Title:     payload.Title,
		Amount:    payload.Amount.StringFixed(2),
		Currency:  strings.ToUpper(payload.Currency),
	}
	if err := n.mailer.SendListingPaid(ctx, to, data); err != nil {
		return fmt.Errorf("send listing payment email for %s: %w", payload.ListingID, err)
	}
	logger.FromContext(ctx, n.logger).Info("Listing payment email sent", "listing_id", payload.ListingID, "owner_id", payload.OwnerID)
	return nil
}

// recipient resolves a profile to an address; ok is false when there is nobody to email
func (n *NotifierImpl) recipient(ctx context.Context, userID string) (email.Recipient, bool, error) {
	log := logger.FromContext(ctx, n.logger)

	if userID == "" {
		return email.Recipient{}, false, nil
	}
	profile, err := n.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			log.Info("No profile for notification recipient, skipping email", "user_id", userID)
			return email.Recipient{}, false, nil
		}
		return email.Recipient{}, false, fmt.Errorf("load profile %s: %w", userID, err)
	}
	if profile.Email == "" {
		log.Info("Profile has no email address, skipping email", "user_id", userID)
		return email.Recipient{}, false, nil
	}
	return email.Recipient{Email: profile.Email, Name: profile.DisplayName}, true, nil
}
