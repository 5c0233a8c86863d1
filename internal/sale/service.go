package sale

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("sale not found")
	// ErrStale is returned by MergePayment when the update was refused because it
	// would move a terminal sale backwards.
	ErrStale = errors.New("sale: stale payment update")
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=sale
type Repository interface {
	CreateSale(ctx context.Context, s *Sale) error
	GetSale(ctx context.Context, id uuid.UUID) (*Sale, error)
	ListSales(ctx context.Context, filter ListFilter) ([]*Sale, error)
	AttachPreference(ctx context.Context, id uuid.UUID, ref PreferenceRef) error
	MergePayment(ctx context.Context, id uuid.UUID, update PaymentUpdate) error
}

type ListFilter struct {
	Status      *Status
	PromoterID  *string
	BuyerID     *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type Options struct {
	// StickyTerminal keeps paid sales paid and only lets rejected sales move to paid.
	// When false every webhook overwrites the status (last writer wins).
	StickyTerminal bool
}

type Service struct {
	repo Repository
	opts Options
}

func NewService(repo Repository, opts Options) *Service {
	return &Service{repo: repo, opts: opts}
}

type CreateParams struct {
	PromoterID string
	BuyerID    string
	CreatorID  string
	Title      string
	FinalPrice decimal.Decimal
	BasePrice  decimal.Decimal
	Split      Split
	Policy     string
}

// Create stores a new pending sale. The gateway preference is attached later.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Sale, error) {
	sale := &Sale{
		PromoterID: params.PromoterID,
		BuyerID:    params.BuyerID,
		CreatorID:  params.CreatorID,
		Title:      params.Title,
		FinalPrice: params.FinalPrice,
		BasePrice:  params.BasePrice,
		Commission: params.Split.Commission,
		Net:        params.Split.Net,
		Policy:     params.Policy,
		Status:     StatusPending,
	}
	if err := s.repo.CreateSale(ctx, sale); err != nil {
		return nil, err
	}

	return sale, nil
}

func (s *Service) AttachPreference(ctx context.Context, id uuid.UUID, ref PreferenceRef) error {
	return s.repo.AttachPreference(ctx, id, ref)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Sale, error) {
	return s.repo.GetSale(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Sale, error) {
	return s.repo.ListSales(ctx, filter)
}

// PaymentResult is the gateway's view of a payment attributed to a sale.
type PaymentResult struct {
	PaymentID     string
	GatewayStatus string
	StatusDetail  string
}

type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	// OutcomeStale means the update would have moved a terminal sale backwards and was skipped.
	OutcomeStale Outcome = "stale"
)

// ApplyPayment maps the gateway status and merge-writes it into the sale.
// Returns ErrNotFound when the sale does not exist.
func (s *Service) ApplyPayment(ctx context.Context, id uuid.UUID, res PaymentResult) (Outcome, error) {
	status := MapGatewayStatus(res.GatewayStatus)

	now := time.Now().UTC()
	update := PaymentUpdate{
		PaymentID:     res.PaymentID,
		GatewayStatus: res.GatewayStatus,
		StatusDetail:  res.StatusDetail,
		Status:        &status,
		UpdatedAt:     now,
		KeepTerminal:  s.opts.StickyTerminal,
	}

	if status == StatusPaid {
		update.PaidAt = &now
	}

	err := s.repo.MergePayment(ctx, id, update)
	if errors.Is(err, ErrStale) {
		return OutcomeStale, nil
	}

	if err != nil {
		return "", fmt.Errorf("merging payment %s: %w", res.PaymentID, err)
	}

	return OutcomeApplied, nil
}

// CanTransition reports whether a sticky sale may move from one status to another.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPaid:
		return to == StatusPaid
	case StatusRejected:
		// a buyer may retry with another card on the same preference
		return to == StatusRejected || to == StatusPaid
	default:
		return true
	}
}
