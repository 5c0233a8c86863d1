package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/playtimeuy/payments/internal/sale"
)

// Memory is an in-process sale repository for local runs and tests.
type Memory struct {
	mu sync.RWMutex
	m  map[uuid.UUID]*sale.Sale
}

func NewMemory() *Memory {
	return &Memory{
		m: map[uuid.UUID]*sale.Sale{},
	}
}

func (l *Memory) CreateSale(_ context.Context, sl *sale.Sale) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	sl.ID = uuid.New()
	sl.CreatedAt = time.Now().UTC()

	cp := *sl
	l.m[sl.ID] = &cp

	return nil
}

func (l *Memory) GetSale(_ context.Context, id uuid.UUID) (*sale.Sale, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	sl, ok := l.m[id]
	if !ok {
		return nil, sale.ErrNotFound
	}

	cp := *sl

	return &cp, nil
}

func (l *Memory) ListSales(_ context.Context, filter sale.ListFilter) ([]*sale.Sale, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	sales := make([]*sale.Sale, 0, len(l.m))

	for _, sl := range l.m {
		if filter.Status != nil && sl.Status != *filter.Status {
			continue
		}

		if filter.PromoterID != nil && sl.PromoterID != *filter.PromoterID {
			continue
		}

		if filter.BuyerID != nil && sl.BuyerID != *filter.BuyerID {
			continue
		}

		if filter.CreatedFrom != nil && sl.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}

		if filter.CreatedTo != nil && sl.CreatedAt.After(*filter.CreatedTo) {
			continue
		}

		cp := *sl
		sales = append(sales, &cp)
	}

	sort.Slice(sales, func(i, j int) bool {
		return sales[i].CreatedAt.After(sales[j].CreatedAt)
	})

	return sales, nil
}

func (l *Memory) AttachPreference(_ context.Context, id uuid.UUID, ref sale.PreferenceRef) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	sl, ok := l.m[id]
	if !ok {
		return sale.ErrNotFound
	}

	now := time.Now().UTC()
	sl.Gateway.PreferenceID = ref.PreferenceID
	sl.CheckoutURL = ref.CheckoutURL
	sl.SandboxCheckoutURL = ref.SandboxCheckoutURL
	sl.UpdatedAt = &now

	return nil
}

func (l *Memory) MergePayment(_ context.Context, id uuid.UUID, u sale.PaymentUpdate) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	sl, ok := l.m[id]
	if !ok {
		return sale.ErrNotFound
	}

	if u.KeepTerminal && u.Status != nil && !sale.CanTransition(sl.Status, *u.Status) {
		return sale.ErrStale
	}

	sl.Gateway.PaymentID = u.PaymentID
	sl.Gateway.Status = u.GatewayStatus
	sl.Gateway.StatusDetail = u.StatusDetail

	if u.Status != nil {
		sl.Status = *u.Status
	}

	if sl.PaidAt == nil && u.PaidAt != nil {
		sl.PaidAt = new(*u.PaidAt)
	}

	sl.UpdatedAt = new(u.UpdatedAt)

	return nil
}
