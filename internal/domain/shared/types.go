package shared

// PaymentMethod is how a buyer paid for a sale
type PaymentMethod string

const (
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodTapToPay PaymentMethod = "tap_to_pay"
)

// Valid reports whether m is a known payment method
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodCash, PaymentMethodTapToPay:
		return true
	}
	return false
}

// RequiresGateway reports whether the payment must be confirmed with the payment gateway
func (m PaymentMethod) RequiresGateway() bool {
	return m == PaymentMethodCard || m == PaymentMethodTapToPay
}

// SaleStatus is set once when a sale is recorded
type SaleStatus string

const (
	SaleStatusCompleted SaleStatus = "completed" // card and tap_to_pay
	SaleStatusRecorded  SaleStatus = "recorded"  // cash
)

// Role is a user's privilege level
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
