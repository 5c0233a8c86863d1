package sale

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/playtimeuy/payments/internal/sale"
)

type saleResponse struct {
	ID                 uuid.UUID       `json:"id"`
	PromoterID         string          `json:"promoter_id,omitempty"`
	BuyerID            string          `json:"buyer_id,omitempty"`
	CreatorID          string          `json:"creator_id,omitempty"`
	Title              string          `json:"title"`
	FinalPrice         decimal.Decimal `json:"final_price"`
	BasePrice          decimal.Decimal `json:"base_price"`
	Commission         decimal.Decimal `json:"commission"`
	Net                decimal.Decimal `json:"net"`
	Policy             string          `json:"policy"`
	Status             sale.Status     `json:"status"`
	Gateway            gatewayResponse `json:"gateway"`
	CheckoutURL        string          `json:"checkout_url,omitempty"`
	SandboxCheckoutURL string          `json:"sandbox_checkout_url,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          *time.Time      `json:"updated_at,omitempty"`
	PaidAt             *time.Time      `json:"paid_at,omitempty"`
}

type gatewayResponse struct {
	PreferenceID string `json:"preference_id,omitempty"`
	PaymentID    string `json:"payment_id,omitempty"`
	Status       string `json:"status,omitempty"`
	StatusDetail string `json:"status_detail,omitempty"`
}

func toResponse(sl *sale.Sale) saleResponse {
	return saleResponse{
		ID:         sl.ID,
		PromoterID: sl.PromoterID,
		BuyerID:    sl.BuyerID,
		CreatorID:  sl.CreatorID,
		Title:      sl.Title,
		FinalPrice: sl.FinalPrice,
		BasePrice:  sl.BasePrice,
		Commission: sl.Commission,
		Net:        sl.Net,
		Policy:     sl.Policy,
		Status:     sl.Status,
		Gateway: gatewayResponse{
			PreferenceID: sl.Gateway.PreferenceID,
			PaymentID:    sl.Gateway.PaymentID,
			Status:       sl.Gateway.Status,
			StatusDetail: sl.Gateway.StatusDetail,
		},
		CheckoutURL:        sl.CheckoutURL,
		SandboxCheckoutURL: sl.SandboxCheckoutURL,
		CreatedAt:          sl.CreatedAt,
		UpdatedAt:          sl.UpdatedAt,
		PaidAt:             sl.PaidAt,
	}
}

func toResponseList(sales []*sale.Sale) []saleResponse {
	resp := make([]saleResponse, len(sales))
	for i, sl := range sales {
		resp[i] = toResponse(sl)
	}

	return resp
}
