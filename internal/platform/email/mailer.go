package email

import (
	"context"
	"strings"
)

// Mailer renders the marketplace notifications and hands them to a Sender
type Mailer struct {
	sender Sender
}

func NewMailer(sender Sender) *Mailer {
	return &Mailer{sender: sender}
}

func (m *Mailer) SendSaleReceipt(ctx context.Context, to Recipient, data SaleReceipt) error {
	data.SellerName = greetingName(to, data.SellerName)
	html, err := render("sale_receipt", data)
	if err != nil {
		return err
	}
	return m.sender.Send(ctx, Message{To: to, Subject: "Sale recorded: " + data.Amount + " " + strings.ToUpper(data.Currency), HTML: html})
}

func (m *Mailer) SendListingPaid(ctx context.Context, to Recipient, data ListingPaid) error {
	data.OwnerName = greetingName(to, data.OwnerName)
	html, err := render("listing_paid", data)
	if err != nil {
		return err
	}
	return m.sender.Send(ctx, Message{To: to, Subject: "Payment received for " + data.Title, HTML: html})
}

func (m *Mailer) SendListingApproved(ctx context.Context, to Recipient, data ListingApproved) error {
	data.OwnerName = greetingName(to, data.OwnerName)
	html, err := render("listing_approved", data)
	if err != nil {
		return err
	}
	return m.sender.Send(ctx, Message{To: to, Subject: "Your listing is live: " + data.Title, HTML: html})
}

func greetingName(to Recipient, name string) string {
	if name != "" {
		return name
	}
	if to.Name != "" {
		return to.Name
	}
	return "there"
}
