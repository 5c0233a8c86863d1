package mercadopago

import (
	"strings"
)

type PreferenceRequest struct {
	Items             []Item         `json:"items"`
	BackURLs          BackURLs       `json:"back_urls"`
	AutoReturn        string         `json:"auto_return,omitempty"`
	Metadata          map[string]any `json:"metadata,omitempty"`
	ExternalReference string         `json:"external_reference,omitempty"`
	NotificationURL   string         `json:"notification_url,omitempty"`

	// IdempotencyKey is sent as a header, not in the body.
	IdempotencyKey string `json:"-"`
}

type Item struct {
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id,omitempty"`
}

type BackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

// Preference is the subset of the checkout preference we use.
type Preference struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

type Payment struct {
	ID                int64          `json:"id"`
	Status            string         `json:"status"`
	StatusDetail      string         `json:"status_detail"`
	ExternalReference string         `json:"external_reference"`
	TransactionAmount float64        `json:"transaction_amount"`
	CurrencyID        string         `json:"currency_id"`
	Metadata          map[string]any `json:"metadata"`
	Payer             Payer          `json:"payer"`
}

type Payer struct {
	Email string `json:"email"`
}

// MetadataSaleID is the metadata key that carries the sale id. Mercado Pago
// returns metadata keys in snake_case regardless of how they were sent.
const MetadataSaleID = "sale_id"

// SaleID returns the sale the payment belongs to, preferring metadata over
// external_reference. Empty when the payment cannot be attributed.
func (p *Payment) SaleID() string {
	if v, ok := p.Metadata[MetadataSaleID].(string); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}

	return strings.TrimSpace(p.ExternalReference)
}
