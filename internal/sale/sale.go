package sale

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of a sale. Gateway statuses that have no
// internal meaning (in_process, authorized, ...) are stored verbatim.
type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusRejected Status = "rejected"
)

// Gateway statuses reported by Mercado Pago that map onto internal states.
const (
	GatewayApproved = "approved"
	GatewayRejected = "rejected"
)

// Sale tracks one checkout attempt and its payment lifecycle.
type Sale struct {
	ID         uuid.UUID
	PromoterID string
	BuyerID    string
	CreatorID  string
	Title      string

	FinalPrice decimal.Decimal
	BasePrice  decimal.Decimal
	Commission decimal.Decimal // referring party's share
	Net        decimal.Decimal // platform's share
	Policy     string

	Status  Status
	Gateway GatewayRef

	CheckoutURL        string
	SandboxCheckoutURL string

	CreatedAt time.Time
	UpdatedAt *time.Time
	PaidAt    *time.Time
}

// GatewayRef holds the payment provider identifiers for a sale.
type GatewayRef struct {
	PreferenceID string
	PaymentID    string
	Status       string
	StatusDetail string
}

// PreferenceRef is written once the gateway has created the checkout preference.
type PreferenceRef struct {
	PreferenceID       string
	CheckoutURL        string
	SandboxCheckoutURL string
}

// PaymentUpdate is the merge-write applied by webhook processing. Fields not present
// here are never touched; a nil PaidAt leaves any stored value in place.
type PaymentUpdate struct {
	PaymentID     string
	GatewayStatus string
	StatusDetail  string
	Status        *Status
	PaidAt        *time.Time
	UpdatedAt     time.Time
	// KeepTerminal makes the store refuse, with ErrStale, a Status that CanTransition
	// rejects. The check and the write happen atomically.
	KeepTerminal bool
}

// IsTerminal reports whether s is a state that is not expected to change again.
func (s Status) IsTerminal() bool {
	return s == StatusPaid || s == StatusRejected
}

// MapGatewayStatus translates a gateway payment status into a sale status.
func MapGatewayStatus(gatewayStatus string) Status {
	switch gatewayStatus {
	case GatewayApproved:
		return StatusPaid
	case GatewayRejected:
		return StatusRejected
	default:
		return Status(gatewayStatus)
	}
}
