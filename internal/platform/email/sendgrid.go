// Package email renders and delivers transactional notifications.
package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"resty.dev/v3"

	"github.com/garage-sale-marketplace/internal/config"
	"github.com/garage-sale-marketplace/internal/domain/shared"
)

const providerName = "email"

// Recipient is an addressee of a message
type Recipient struct {
	Email string
	Name  string
}

// Message is a rendered email ready for delivery
type Message struct {
	To      Recipient
	Subject string
	HTML    string
}

// Sender delivers rendered messages. Delivery is best effort; callers decide whether a failure matters.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SendGridClient posts to a SendGrid v3 compatible mail endpoint
type SendGridClient struct {
	client *resty.Client
	apiKey string
	from   Recipient
	logger *slog.Logger
}

type mailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type mailPersonalization struct {
	To []mailAddress `json:"to"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type mailRequest struct {
	Personalizations []mailPersonalization `json:"personalizations"`
	From             mailAddress           `json:"from"`
	Subject          string                `json:"subject"`
	Content          []mailContent         `json:"content"`
}

func NewSendGridClient(logger *slog.Logger, cfg *config.EmailConfig) *SendGridClient {
	if cfg.APIKey == "" {
		logger.Warn("Email API key is not configured, notifications will not be delivered")
	}

	return &SendGridClient{
		client: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout).
			SetHeader("Content-Type", "application/json"),
		apiKey: cfg.APIKey,
		from:   Recipient{Email: cfg.FromAddress, Name: cfg.FromName},
		logger: logger,
	}
}

func (c *SendGridClient) Send(ctx context.Context, msg Message) error {
	if c.apiKey == "" {
		return fmt.Errorf("%w: email API key is not configured", shared.ErrConfiguration)
	}
	if strings.TrimSpace(msg.To.Email) == "" {
		return fmt.Errorf("%w: recipient email is required", shared.ErrInvalidInput)
	}

	body := mailRequest{
		Personalizations: []mailPersonalization{
			{To: []mailAddress{{Email: msg.To.Email, Name: msg.To.Name}}},
		},
		From:    mailAddress{Email: c.from.Email, Name: c.from.Name},
		Subject: msg.Subject,
		Content: []mailContent{{Type: "text/html", Value: msg.HTML}},
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetBody(body).
		Post("/v3/mail/send")
	if err != nil {
		c.logger.Error("Failed to send email", "subject", msg.Subject, "error", err)
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return &shared.UpstreamError{Provider: providerName, Message: "request timed out", Err: shared.ErrUpstreamTimeout}
		}
		return &shared.UpstreamError{Provider: providerName, Message: err.Error(), Err: shared.ErrUpstreamUnavailable}
	}
	if resp.IsError() {
		c.logger.Error("Email provider rejected message",
			"subject", msg.Subject,
			"status", resp.StatusCode(),
			"body", resp.String(),
		)
		return &shared.UpstreamError{
			Provider: providerName,
			Message:  fmt.Sprintf("provider returned status %d", resp.StatusCode()),
			Err:      shared.ErrUpstreamUnavailable,
		}
	}

	c.logger.Info("Email sent", "subject", msg.Subject)
	return nil
}

func (c *SendGridClient) Close() error {
	return c.client.Close()
}
