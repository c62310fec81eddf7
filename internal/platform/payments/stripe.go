package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"

	"github.com/garage-sale-marketplace/internal/config"
	"github.com/garage-sale-marketplace/internal/domain/shared"
)

const providerName = "payment gateway"

// StripeGateway implements Gateway on the Stripe API
type StripeGateway struct {
	api    *client.API
	logger *slog.Logger
}

// NewStripeGateway never fails. Without a secret key every call returns shared.ErrConfiguration,
// so the API process can start and serve the routes that do not take payments.
func NewStripeGateway(logger *slog.Logger, cfg *config.StripeConfig) *StripeGateway {
	g := &StripeGateway{logger: logger}
	if cfg.SecretKey == "" {
		logger.Warn("Payment gateway secret key is not configured, payment calls will fail")
		return g
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	backendConfig := func() *stripe.BackendConfig {
		bc := &stripe.BackendConfig{
			HTTPClient:        httpClient,
			MaxNetworkRetries: stripe.Int64(0),
			LeveledLogger:     &leveledLogger{logger: logger},
		}
		if cfg.BaseURL != "" {
			bc.URL = stripe.String(cfg.BaseURL)
		}
		return bc
	}

	backends := &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig()),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendConfig()),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendConfig()),
	}
	g.api = client.New(cfg.SecretKey, backends)
	return g
}

func (g *StripeGateway) ready() error {
	if g.api == nil {
		return fmt.Errorf("%w: payment gateway secret key is not configured", shared.ErrConfiguration)
	}
	return nil
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}

	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(req.AmountMinor),
		Currency:    stripe.String(req.Currency),
		Description: stripe.String(req.Description),
	}
	params.Context = ctx
	if len(req.PaymentMethodTypes) > 0 {
		params.PaymentMethodTypes = stripe.StringSlice(req.PaymentMethodTypes)
	} else {
		params.AutomaticPaymentMethods = &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		}
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.ConnectedAccount != "" {
		params.SetStripeAccount(req.ConnectedAccount)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		g.logger.Error("Failed to create payment intent", "amount_minor", req.AmountMinor, "currency", req.Currency, "error", err)
		return nil, g.classify(err)
	}
	return toIntent(pi), nil
}

func (g *StripeGateway) GetPaymentIntent(ctx context.Context, id, connectedAccount string) (*Intent, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	if connectedAccount != "" {
		params.SetStripeAccount(connectedAccount)
	}
	pi, err := g.api.PaymentIntents.Get(id, params)
	if err != nil {
		g.logger.Error("Failed to retrieve payment intent", "payment_intent_id", id, "connected_account", connectedAccount != "", "error", err)
		return nil, g.classify(err)
	}
	return toIntent(pi), nil
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(req.Currency),
					UnitAmount: stripe.Int64(req.AmountMinor),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.ProductName),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	if req.ClientReferenceID != "" {
		params.ClientReferenceID = stripe.String(req.ClientReferenceID)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	cs, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		g.logger.Error("Failed to create checkout session", "error", err)
		return nil, g.classify(err)
	}
	return toSession(cs), nil
}

func (g *StripeGateway) GetCheckoutSession(ctx context.Context, id, connectedAccount string) (*Session, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	if connectedAccount != "" {
		params.SetStripeAccount(connectedAccount)
	}
	cs, err := g.api.CheckoutSessions.Get(id, params)
	if err != nil {
		g.logger.Error("Failed to retrieve checkout session", "session_id", id, "error", err)
		return nil, g.classify(err)
	}
	return toSession(cs), nil
}

// classify maps gateway failures onto the shared error categories, keeping the gateway's message
func (g *StripeGateway) classify(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &shared.UpstreamError{Provider: providerName, Message: "request timed out", Err: shared.ErrUpstreamTimeout}
	}

	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.HTTPStatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", shared.ErrNotFound, stripeErr.Msg)
		}
		return &shared.UpstreamError{Provider: providerName, Message: stripeErr.Msg, Err: shared.ErrUpstreamUnavailable}
	}

	return &shared.UpstreamError{Provider: providerName, Message: err.Error(), Err: shared.ErrUpstreamUnavailable}
}

func toIntent(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		AmountMinor:  pi.Amount,
		Currency:     string(pi.Currency),
		Metadata:     pi.Metadata,
	}
}

func toSession(cs *stripe.CheckoutSession) *Session {
	return &Session{
		ID:            cs.ID,
		URL:           cs.URL,
		PaymentStatus: string(cs.PaymentStatus),
		AmountTotal:   cs.AmountTotal,
		Currency:      string(cs.Currency),
		Metadata:      cs.Metadata,
	}
}

// leveledLogger routes the client library's own logging into slog
type leveledLogger struct {
	logger *slog.Logger
}

func (l *leveledLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...), "component", "stripe")
}

func (l *leveledLogger) Infof(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...), "component", "stripe")
}

func (l *leveledLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, v...), "component", "stripe")
}

func (l *leveledLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...), "component", "stripe")
}
