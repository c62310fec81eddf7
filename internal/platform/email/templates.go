package email

import (
	"bytes"
	"fmt"
	"html/template"
)

var templates = template.Must(template.New("email").Parse(`
{{define "sale_receipt"}}<p>Hi {{.SellerName}},</p>
<p>A {{.PaymentMethod}} sale of <strong>{{.Amount}} {{.Currency}}</strong> was recorded{{if .Description}} for "{{.Description}}"{{end}}.</p>
{{if .NetEarnings}}<p>After processing fees you will receive {{.NetEarnings}} {{.Currency}}.</p>{{end}}
<p>Reference: {{.SaleID}}</p>{{end}}

{{define "listing_paid"}}<p>Hi {{.OwnerName}},</p>
<p>We received your payment of {{.Amount}} {{.Currency}} for "{{.Title}}".</p>
<p>Your listing is now waiting for approval and will go live once it has been reviewed.</p>{{end}}

{{define "listing_approved"}}<p>Hi {{.OwnerName}},</p>
<p>Good news, "{{.Title}}" has been approved and is now visible to buyers.</p>{{end}}
`))

type SaleReceipt struct {
	SellerName    string
	SaleID        string
	Amount        string
	Currency      string
	PaymentMethod string
	Description   string
	NetEarnings   string
}

type ListingPaid struct {
	OwnerName string
	ListingID string
	Title     string
	Amount    string
	Currency  string
}

type ListingApproved struct {
	OwnerName string
	ListingID string
	Title     string
}

func render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", name, err)
	}
	return buf.String(), nil
}
