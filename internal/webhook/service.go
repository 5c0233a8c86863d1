package webhook

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/playtimeuy/payments/internal/apperr"
	"github.com/playtimeuy/payments/internal/mercadopago"
	"github.com/playtimeuy/payments/internal/sale"
)

const TypePayment = "payment"

// Notification is a gateway webhook delivery reduced to the fields we act on.
type Notification struct {
	ID     string
	Type   string
	Action string
	DataID string
}

// Result describes what a delivery did. Every Result is acknowledged with 200.
type Result string

const (
	ResultApplied      Result = "ok"
	ResultIgnored      Result = "ignored"
	ResultDuplicate    Result = "duplicate"
	ResultUnattributed Result = "no sale"
	ResultStale        Result = "stale"
)

//go:generate mockgen -source=service.go -destination=gateway_mock.go -package=webhook
type Gateway interface {
	GetPayment(ctx context.Context, id string) (*mercadopago.Payment, error)
}

// Deduper records notification ids that were already processed.
type Deduper interface {
	// Claim returns false when key was claimed before and has not expired.
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

type Service struct {
	sales   *sale.Service
	gateway Gateway
	dedup   Deduper
	logger  *slog.Logger
}

func NewService(sales *sale.Service, gateway Gateway, dedup Deduper, logger *slog.Logger) *Service {
	if dedup == nil {
		dedup = NopDeduper{}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		sales:   sales,
		gateway: gateway,
		dedup:   dedup,
		logger:  logger,
	}
}

// Handle processes one notification. Errors mean the delivery should be retried
// by the gateway, except validation errors which are the sender's fault.
func (s *Service) Handle(ctx context.Context, n Notification) (Result, error) {
	if n.Type != TypePayment {
		s.logger.InfoContext(ctx, "ignoring notification", "type", n.Type, "action", n.Action)
		return ResultIgnored, nil
	}

	if n.DataID == "" {
		return "", apperr.ValidationErr("missing payment id")
	}

	key := dedupKey(n)
	if key != "" {
		claimed, err := s.dedup.Claim(ctx, key)

		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "dedup unavailable, processing anyway", "notification_id", n.ID, "error", err)
		case !claimed:
			s.logger.InfoContext(ctx, "duplicate notification", "notification_id", n.ID, "payment_id", n.DataID)
			return ResultDuplicate, nil
		}
	}

	res, err := s.process(ctx, n)
	if err != nil && key != "" {
		if relErr := s.dedup.Release(ctx, key); relErr != nil {
			s.logger.WarnContext(ctx, "failed to release dedup claim", "notification_id", n.ID, "error", relErr)
		}
	}

	return res, err
}

func (s *Service) process(ctx context.Context, n Notification) (Result, error) {
	logger := s.logger.With("payment_id", n.DataID)

	payment, err := s.gateway.GetPayment(ctx, n.DataID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to fetch payment", "error", err)
		return "", apperr.GatewayErr("could not fetch payment", err)
	}

	rawID := payment.SaleID()
	if rawID == "" {
		logger.WarnContext(ctx, "payment has no sale reference", "status", payment.Status)
		return ResultUnattributed, nil
	}

	saleID, err := uuid.Parse(rawID)
	if err != nil {
		logger.WarnContext(ctx, "payment references a malformed sale id", "sale_ref", rawID)
		return ResultUnattributed, nil
	}

	logger = logger.With("sale_id", saleID.String())

	outcome, err := s.sales.ApplyPayment(ctx, saleID, sale.PaymentResult{
		PaymentID:     n.DataID,
		GatewayStatus: payment.Status,
		StatusDetail:  payment.StatusDetail,
	})
	if err != nil {
		if errors.Is(err, sale.ErrNotFound) {
			logger.WarnContext(ctx, "payment references an unknown sale")
			return ResultUnattributed, nil
		}

		logger.ErrorContext(ctx, "failed to apply payment", "error", err)

		return "", apperr.StoreErr("could not update sale", err)
	}

	if outcome == sale.OutcomeStale {
		logger.WarnContext(ctx, "skipped status regression on terminal sale", "gateway_status", payment.Status)
		return ResultStale, nil
	}

	logger.InfoContext(ctx, "payment applied",
		"gateway_status", payment.Status,
		"status", sale.MapGatewayStatus(payment.Status),
	)

	return ResultApplied, nil
}

func dedupKey(n Notification) string {
	if n.ID == "" {
		return ""
	}

	return "mp:notification:" + n.ID
}
