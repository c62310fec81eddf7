package user

import (
	"time"

	"github.com/garage-sale-marketplace/internal/domain/shared"
)

// Profile is the stored record of an authenticated user. The role is never set through the API.
type Profile struct {
	ID              string      `json:"id"`
	Email           string      `json:"email"`
	DisplayName     string      `json:"display_name"`
	Role            shared.Role `json:"role"`
	StripeAccountID string      `json:"stripe_account_id,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == shared.RoleAdmin
}

// ConnectedAccount returns the seller's connected gateway account, or "" for the platform account
func (p *Profile) ConnectedAccount() string {
	if p == nil {
		return ""
	}
	return p.StripeAccountID
}
