package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/playtimeuy/payments/internal/apperr"
	"github.com/playtimeuy/payments/internal/mercadopago"
	"github.com/playtimeuy/payments/internal/sale"
)

// Mode selects the validation rules of a checkout request.
type Mode string

const (
	// ModeReferral requires a promoter and a final price that covers the base price.
	ModeReferral Mode = "referral"
	// ModeCreator accepts any positive price and defaults to the base price.
	ModeCreator Mode = "creator"
)

//go:generate mockgen -source=service.go -destination=gateway_mock.go -package=checkout
type Gateway interface {
	CreatePreference(ctx context.Context, req mercadopago.PreferenceRequest) (*mercadopago.Preference, error)
}

// Config carries one split policy per mode: referral sales pay the promoter the
// markup over the base price while creator sales split any positive price.
type Config struct {
	ReferralPolicy  sale.SplitPolicy
	CreatorPolicy   sale.SplitPolicy
	BasePrice       decimal.Decimal
	Currency        string
	DefaultTitle    string
	SiteURL         string
	NotificationURL string
	PublicKey       string
}

type Service struct {
	sales    *sale.Service
	gateway  Gateway
	cfg      Config
	validate *validator.Validate
	logger   *slog.Logger
}

func NewService(sales *sale.Service, gateway Gateway, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		sales:    sales,
		gateway:  gateway,
		cfg:      cfg,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

type Request struct {
	Mode       Mode             `validate:"oneof=referral creator"`
	PromoterID string           `validate:"required_if=Mode referral,max=128"`
	BuyerID    string           `validate:"max=128"`
	CreatorID  string           `validate:"max=128"`
	Title      string           `validate:"max=256"`
	FinalPrice *decimal.Decimal `validate:"required_if=Mode referral"`
}

type Result struct {
	SaleID             string
	PreferenceID       string
	CheckoutURL        string
	SandboxCheckoutURL string
	PublicKey          string
}

// CreatePreference validates the request, stores a pending sale and asks the gateway
// for a checkout preference. A gateway failure leaves the pending sale in place.
func (s *Service) CreatePreference(ctx context.Context, req Request) (*Result, error) {
	price, err := s.validateRequest(req)
	if err != nil {
		return nil, err
	}

	policy := s.policyFor(req.Mode)

	split, err := policy.Split(price)
	if err != nil {
		if errors.Is(err, sale.ErrBelowBasePrice) {
			return nil, apperr.ValidationErr(fmt.Sprintf("finalPrice must be >= %s", s.cfg.BasePrice))
		}
		return nil, apperr.ValidationErr("finalPrice is invalid")
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = s.cfg.DefaultTitle
	}

	sl, err := s.sales.Create(ctx, sale.CreateParams{
		PromoterID: req.PromoterID,
		BuyerID:    req.BuyerID,
		CreatorID:  req.CreatorID,
		Title:      title,
		FinalPrice: price,
		BasePrice:  s.cfg.BasePrice,
		Split:      split,
		Policy:     policy.Name(),
	})
	if err != nil {
		return nil, apperr.StoreErr("could not register sale", err)
	}

	saleID := sl.ID.String()
	logger := s.logger.With("sale_id", saleID, "promoter_id", req.PromoterID)

	pref, err := s.gateway.CreatePreference(ctx, s.preferenceRequest(sl))
	if err != nil {
		logger.ErrorContext(ctx, "failed to create preference", "error", err)
		return nil, apperr.GatewayErr("could not create payment preference", err)
	}

	err = s.sales.AttachPreference(ctx, sl.ID, sale.PreferenceRef{
		PreferenceID:       pref.ID,
		CheckoutURL:        pref.InitPoint,
		SandboxCheckoutURL: pref.SandboxInitPoint,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to attach preference", "preference_id", pref.ID, "error", err)
		return nil, apperr.StoreErr("could not update sale", err)
	}

	logger.InfoContext(ctx, "preference created",
		"preference_id", pref.ID,
		"final_price", price.String(),
		"commission", split.Commission.String(),
		"policy", policy.Name(),
	)

	return &Result{
		SaleID:             saleID,
		PreferenceID:       pref.ID,
		CheckoutURL:        pref.InitPoint,
		SandboxCheckoutURL: pref.SandboxInitPoint,
		PublicKey:          s.cfg.PublicKey,
	}, nil
}

func (s *Service) policyFor(mode Mode) sale.SplitPolicy {
	if mode == ModeCreator {
		return s.cfg.CreatorPolicy
	}
	return s.cfg.ReferralPolicy
}

func (s *Service) validateRequest(req Request) (decimal.Decimal, error) {
	if err := s.validate.Struct(req); err != nil {
		return decimal.Decimal{}, apperr.ValidationErr(describe(err))
	}

	if req.Mode == ModeCreator && req.FinalPrice == nil {
		return s.cfg.BasePrice, nil
	}

	price := *req.FinalPrice
	if !price.IsPositive() {
		return decimal.Decimal{}, apperr.ValidationErr("finalPrice must be positive")
	}

	if req.Mode == ModeReferral && price.LessThan(s.cfg.BasePrice) {
		return decimal.Decimal{}, apperr.ValidationErr(fmt.Sprintf("finalPrice must be >= %s", s.cfg.BasePrice))
	}

	return price, nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required_if", "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "oneof":
			msgs = append(msgs, fe.Field()+" must be one of "+fe.Param())
		case "max":
			msgs = append(msgs, fe.Field()+" is too long")
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}

	return strings.Join(msgs, "; ")
}

func (s *Service) preferenceRequest(sl *sale.Sale) mercadopago.PreferenceRequest {
	saleID := sl.ID.String()
	unitPrice, _ := sl.FinalPrice.Float64()

	return mercadopago.PreferenceRequest{
		Items: []mercadopago.Item{{
			Title:      sl.Title,
			Quantity:   1,
			UnitPrice:  unitPrice,
			CurrencyID: s.cfg.Currency,
		}},
		BackURLs: mercadopago.BackURLs{
			Success: s.backURL("success", saleID),
			Failure: s.backURL("failure", saleID),
			Pending: s.backURL("pending", saleID),
		},
		AutoReturn: "approved",
		Metadata: map[string]any{
			mercadopago.MetadataSaleID: saleID,
			"promoter_id":              sl.PromoterID,
			"creator_id":               sl.CreatorID,
			"final_price":              sl.FinalPrice.String(),
			"base_price":               sl.BasePrice.String(),
			"commission":               sl.Commission.String(),
		},
		ExternalReference: saleID,
		NotificationURL:   s.cfg.NotificationURL,
		IdempotencyKey:    saleID,
	}
}

func (s *Service) backURL(outcome, saleID string) string {
	return strings.TrimRight(s.cfg.SiteURL, "/") + "/pago/" + outcome + "?venta=" + url.QueryEscape(saleID)
}
