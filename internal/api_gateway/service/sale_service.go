package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/garage-sale-marketplace/internal/config"
	"github.com/garage-sale-marketplace/internal/domain/event"
	"github.com/garage-sale-marketplace/internal/domain/sale"
	"github.com/garage-sale-marketplace/internal/domain/shared"
	"github.com/garage-sale-marketplace/internal/domain/user"
	"github.com/garage-sale-marketplace/internal/logger"
	"github.com/garage-sale-marketplace/internal/platform/messaging/producers"
	"github.com/garage-sale-marketplace/internal/platform/payments"
)

const checkoutSessionPrefix = "cs_"

// SaleServiceImpl implements the SaleService interface
type SaleServiceImpl struct {
	sales     sale.Repository
	stats     sale.StatsRepository
	users     user.Repository
	gateway   payments.Gateway
	publisher producers.EventPublisher
	salesCfg  config.SalesConfig
	statsCfg  config.StatsConfig
	logger    *slog.Logger
}

func NewSaleService(
	logger *slog.Logger,
	salesCfg config.SalesConfig,
	statsCfg config.StatsConfig,
	sales sale.Repository,
	stats sale.StatsRepository,
	users user.Repository,
	gateway payments.Gateway,
	publisher producers.EventPublisher,
) SaleService {
	return &SaleServiceImpl{
		sales:     sales,
		stats:     stats,
		users:     users,
		gateway:   gateway,
		publisher: publisher,
		salesCfg:  salesCfg,
		statsCfg:  statsCfg,
		logger:    logger,
	}
}

func (s *SaleServiceImpl) CreatePaymentIntent(ctx context.Context, in CreatePaymentIntentInput) (*PaymentIntentResult, error) {
	log := logger.FromContext(ctx, s.logger).With("seller_id", in.SellerID)

	if in.SellerID == "" {
		return nil, fmt.Errorf("%w: missing seller identity", shared.ErrUnauthorized)
	}
	if err := sale.ValidateAmount(in.Amount); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	method := shared.PaymentMethod(in.PaymentMethod)
	if method == "" {
		method = shared.PaymentMethodCard
	}
	if !method.RequiresGateway() {
		return nil, fmt.Errorf("%w: payment intents are only created for card and tap_to_pay", shared.ErrInvalidInput)
	}
	currency, err := s.currency(in.Currency)
	if err != nil {
		return nil, err
	}

	profile, err := s.sellerProfile(ctx, in.SellerID)
	if err != nil {
		log.Error("Failed to load seller profile", "error", err)
		return nil, err
	}

	req := payments.IntentRequest{
		AmountMinor: sale.ToMinorUnits(in.Amount),
		Currency:    currency,
		Description: in.Description,
		Metadata: map[string]string{
			payments.MetadataSellerID:      in.SellerID,
			payments.MetadataDescription:   in.Description,
			payments.MetadataPaymentMethod: string(method),
		},
		ConnectedAccount: profile.ConnectedAccount(),
		IdempotencyKey:   in.IdempotencyKey,
	}
	if method == shared.PaymentMethodTapToPay {
		req.PaymentMethodTypes = []string{"card_present"}
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, req)
	if err != nil {
		return nil, err
	}

	log.Info("Payment intent created",
		"payment_intent_id", intent.ID,
		"amount_minor", req.AmountMinor,
		"connected_account", req.ConnectedAccount != "",
	)
	return &PaymentIntentResult{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	}, nil
}

func (s *SaleServiceImpl) RecordSale(ctx context.Context, in RecordSaleInput) (*RecordSaleResult, error) {
	if in.VerifiedSellerID == "" {
		return nil, fmt.Errorf("%w: missing seller identity", shared.ErrUnauthorized)
	}
	if strings.TrimSpace(in.SellerID) == "" {
		return nil, fmt.Errorf("%w: sellerId is required", shared.ErrInvalidInput)
	}
	if in.SellerID != in.VerifiedSellerID {
		return nil, fmt.Errorf("%w: sellerId does not match the authenticated user", shared.ErrIdentityMismatch)
	}

	method := shared.PaymentMethod(in.PaymentMethod)
	if method == "" {
		method = shared.PaymentMethodCard
	}
	currency := in.Currency
	if currency == "" {
		currency = s.salesCfg.HomeCurrency
	}

	record, err := sale.NewSale(in.SellerID, in.Amount, currency, in.Description, method, in.PaymentIntentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	return s.record(ctx, record)
}

func (s *SaleServiceImpl) RecordTapToPaySale(ctx context.Context, in TapToPayInput) (*RecordSaleResult, error) {
	return s.RecordSale(ctx, RecordSaleInput{
		VerifiedSellerID: in.SellerID,
		SellerID:         in.SellerID,
		Amount:           in.Amount,
		Description:      in.Description,
		PaymentMethod:    string(shared.PaymentMethodTapToPay),
		PaymentIntentID:  in.PaymentIntentID,
		Currency:         in.Currency,
	})
}

// record confirms the payment, stores the sale, then updates the aggregate.
// Nothing is written when the payment is not confirmed.
func (s *SaleServiceImpl) record(ctx context.Context, record *sale.Sale) (*RecordSaleResult, error) {
	log := logger.FromContext(ctx, s.logger).With("seller_id", record.SellerID, "payment_method", string(record.PaymentMethod))

	if record.PaymentMethod.RequiresGateway() {
		if err := s.confirmPayment(ctx, record.SellerID, *record.PaymentIntentID); err != nil {
			log.Warn("Payment not confirmed", "payment_intent_id", *record.PaymentIntentID, "error", err)
			return nil, err
		}
	}

	if err := s.sales.Create(ctx, record); err != nil {
		log.Error("Failed to store sale", "error", err)
		return nil, fmt.Errorf("failed to record sale: %w", err)
	}
	log = log.With("sale_id", record.ID)

	statsPending := s.incrementStats(ctx, log, record)
	if statsPending {
		log.Warn("Seller stats uncertain, scheduling recompute", "amount", record.Amount.String())
	}

	s.publishRecorded(ctx, log, record, statsPending)

	log.Info("Sale recorded", "amount", record.Amount.String(), "currency", record.Currency)
	return &RecordSaleResult{SaleID: record.ID, Sale: record}, nil
}

// confirmPayment accepts succeeded payment intents and paid checkout sessions. A payment that
// carries a seller in its metadata must belong to sellerID. Payments are read on the seller's
// connected account when they have one, matching where CreatePaymentIntent created them.
func (s *SaleServiceImpl) confirmPayment(ctx context.Context, sellerID, paymentID string) error {
	var (
		metadata  map[string]string
		confirmed bool
		status    string
	)

	profile, err := s.sellerProfile(ctx, sellerID)
	if err != nil {
		return err
	}
	account := profile.ConnectedAccount()

	if strings.HasPrefix(paymentID, checkoutSessionPrefix) {
		session, err := s.gateway.GetCheckoutSession(ctx, paymentID, account)
		if err != nil {
			return notConfirmedIfMissing(paymentID, err)
		}
		metadata, confirmed, status = session.Metadata, session.Paid(), session.PaymentStatus
	} else {
		intent, err := s.gateway.GetPaymentIntent(ctx, paymentID, account)
		if err != nil {
			return notConfirmedIfMissing(paymentID, err)
		}
		metadata, confirmed, status = intent.Metadata, intent.Succeeded(), intent.Status
	}

	if !confirmed {
		return fmt.Errorf("%w: payment %s has status %s", shared.ErrPaymentNotConfirmed, paymentID, status)
	}
	if owner := metadata[payments.MetadataSellerID]; owner != "" && owner != sellerID {
		return fmt.Errorf("%w: payment %s belongs to another seller", shared.ErrIdentityMismatch, paymentID)
	}
	return nil
}

// sellerProfile returns nil without error for sellers that never onboarded
func (s *SaleServiceImpl) sellerProfile(ctx context.Context, sellerID string) (*user.Profile, error) {
	profile, err := s.users.GetByID(ctx, sellerID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to load seller profile: %w", err)
	}
	return profile, nil
}

func notConfirmedIfMissing(paymentID string, err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("%w: payment %s does not exist", shared.ErrPaymentNotConfirmed, paymentID)
	}
	return err
}

// incrementStats retries the atomic increment a bounded number of times and reports whether
// the aggregate needs a rebuild from the sales collection. A failed attempt may still have been
// applied server side, so any retry marks the stats pending as well as giving up does.
func (s *SaleServiceImpl) incrementStats(ctx context.Context, log *slog.Logger, record *sale.Sale) (pending bool) {
	attempts := max(s.statsCfg.MaxRetryAttempts, 1)

	for attempt := 1; attempt <= attempts; attempt++ {
		err := s.stats.Increment(ctx, record.SellerID, record.Amount)
		if err == nil {
			return attempt > 1
		}
		log.Warn("Failed to update seller stats", "attempt", attempt, "max_attempts", attempts, "error", err)

		if attempt == attempts || s.statsCfg.RetryBackoff <= 0 {
			continue
		}
		timer := time.NewTimer(s.statsCfg.RetryBackoff * time.Duration(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return true
		case <-timer.C:
		}
	}
	return true
}

func (s *SaleServiceImpl) publishRecorded(ctx context.Context, log *slog.Logger, record *sale.Sale, statsPending bool) {
	payload := event.SaleRecorded{
		SaleID:        record.ID,
		SellerID:      record.SellerID,
		Amount:        record.Amount,
		Currency:      record.Currency,
		PaymentMethod: string(record.PaymentMethod),
		Description:   record.Description,
		StatsPending:  statsPending,
	}
	if record.NetEarnings != nil {
		net := record.NetEarnings.StringFixed(2)
		payload.NetEarnings = &net
	}

	evt, err := event.New(event.TypeSaleRecorded, record.SellerID, logger.CorrelationID(ctx), payload)
	if err != nil {
		log.Error("Failed to build sale event", "error", err)
		return
	}
	// Publish failures are logged only, the sale is already stored
	if err := s.publisher.Publish(ctx, evt); err != nil {
		log.Error("Failed to publish sale event", "event_id", evt.ID.String(), "stats_pending", statsPending, "error", err)
	}
}

func (s *SaleServiceImpl) GetSellerStats(ctx context.Context, callerID, sellerID string) (*sale.SellerStats, error) {
	if err := s.authorizeSellerRead(ctx, callerID, sellerID); err != nil {
		return nil, err
	}

	stats, err := s.stats.Get(ctx, sellerID)
	if err != nil {
		logger.FromContext(ctx, s.logger).Error("Failed to get seller stats", "seller_id", sellerID, "error", err)
		return nil, fmt.Errorf("failed to get seller stats: %w", err)
	}
	return stats, nil
}

func (s *SaleServiceImpl) GetSales(ctx context.Context, callerID, sellerID string) ([]*sale.Sale, error) {
	if err := s.authorizeSellerRead(ctx, callerID, sellerID); err != nil {
		return nil, err
	}

	sales, err := s.sales.GetBySellerID(ctx, sellerID, s.salesCfg.HistoryLimit)
	if err != nil {
		logger.FromContext(ctx, s.logger).Error("Failed to get sales", "seller_id", sellerID, "error", err)
		return nil, fmt.Errorf("failed to get sales: %w", err)
	}
	return sales, nil
}

// authorizeSellerRead lets sellers read their own dashboard and admins read any
func (s *SaleServiceImpl) authorizeSellerRead(ctx context.Context, callerID, sellerID string) error {
	if callerID == "" {
		return fmt.Errorf("%w: missing caller identity", shared.ErrUnauthorized)
	}
	if strings.TrimSpace(sellerID) == "" {
		return fmt.Errorf("%w: sellerId is required", shared.ErrInvalidInput)
	}
	if callerID == sellerID {
		return nil
	}

	profile, err := s.users.GetByID(ctx, callerID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("failed to load caller profile: %w", err)
	}
	if !profile.IsAdmin() {
		return fmt.Errorf("%w: cannot read another seller's sales", shared.ErrIdentityMismatch)
	}
	return nil
}

func (s *SaleServiceImpl) currency(requested string) (string, error) {
	if requested == "" {
		return s.salesCfg.HomeCurrency, nil
	}
	if len(requested) != 3 {
		return "", fmt.Errorf("%w: currency must be a 3-letter code", shared.ErrInvalidInput)
	}
	return strings.ToLower(requested), nil
}
