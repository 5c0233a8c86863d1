package checkout_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/playtimeuy/payments/internal/apperr"
	"github.com/playtimeuy/payments/internal/checkout"
	"github.com/playtimeuy/payments/internal/mercadopago"
	"github.com/playtimeuy/payments/internal/sale"
	"github.com/playtimeuy/payments/internal/sale/store"
)

var basePrice = decimal.NewFromInt(750)

func testConfig() checkout.Config {
	return checkout.Config{
		ReferralPolicy:  sale.FlatPolicy{Base: basePrice},
		CreatorPolicy:   sale.PercentagePolicy{PlatformShare: decimal.RequireFromString("0.20")},
		BasePrice:       basePrice,
		Currency:        "UYU",
		DefaultTitle:    "Suscripción mensual PlayTimeUY",
		SiteURL:         "https://playtimeuy.web.app/",
		NotificationURL: "https://api.playtimeuy.test/mp/webhook",
		PublicKey:       "APP_USR-public",
	}
}

type fixture struct {
	svc     *checkout.Service
	gateway *checkout.MockGateway
	repo    *store.Memory
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := store.NewMemory()
	gw := checkout.NewMockGateway(ctrl)
	svc := checkout.NewService(sale.NewService(repo, sale.Options{}), gw, testConfig(), nil)

	return fixture{svc: svc, gateway: gw, repo: repo}
}

func listAll(t *testing.T, repo *store.Memory) []*sale.Sale {
	t.Helper()

	sales, err := repo.ListSales(context.Background(), sale.ListFilter{})
	require.NoError(t, err)

	return sales
}

func TestService_CreatePreference_Referral(t *testing.T) {
	f := newFixture(t)

	f.gateway.EXPECT().
		CreatePreference(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req mercadopago.PreferenceRequest) (*mercadopago.Preference, error) {
			saleID := req.ExternalReference
			require.NotEmpty(t, saleID)

			assert.Equal(t, saleID, req.Metadata[mercadopago.MetadataSaleID])
			assert.Equal(t, saleID, req.IdempotencyKey)
			assert.Equal(t, "p1", req.Metadata["promoter_id"])
			assert.Equal(t, "250", req.Metadata["commission"])
			assert.Equal(t, "https://api.playtimeuy.test/mp/webhook", req.NotificationURL)
			assert.Equal(t, "https://playtimeuy.web.app/pago/success?venta="+saleID, req.BackURLs.Success)
			assert.Equal(t, "approved", req.AutoReturn)
			require.Len(t, req.Items, 1)
			assert.Equal(t, 1000.0, req.Items[0].UnitPrice)
			assert.Equal(t, "UYU", req.Items[0].CurrencyID)
			assert.Equal(t, "Suscripción mensual PlayTimeUY", req.Items[0].Title)

			return &mercadopago.Preference{ID: "PREF123", InitPoint: "https://mp/init"}, nil
		})

	res, err := f.svc.CreatePreference(context.Background(), checkout.Request{
		Mode:       checkout.ModeReferral,
		PromoterID: "p1",
		FinalPrice: new(decimal.NewFromInt(1000)),
	})
	require.NoError(t, err)
	assert.Equal(t, "PREF123", res.PreferenceID)
	assert.Equal(t, "https://mp/init", res.CheckoutURL)
	assert.Equal(t, "APP_USR-public", res.PublicKey)

	sales := listAll(t, f.repo)
	require.Len(t, sales, 1)

	sl := sales[0]
	assert.Equal(t, res.SaleID, sl.ID.String())
	assert.Equal(t, sale.StatusPending, sl.Status)
	assert.Equal(t, "750", sl.BasePrice.String())
	assert.Equal(t, "250", sl.Commission.String())
	assert.Equal(t, sale.PolicyFlat, sl.Policy)
	assert.Equal(t, "PREF123", sl.Gateway.PreferenceID)
	assert.Nil(t, sl.PaidAt)
}

func TestService_CreatePreference_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		req  checkout.Request
	}{
		{
			name: "BelowBasePrice",
			req:  checkout.Request{Mode: checkout.ModeReferral, PromoterID: "p1", FinalPrice: new(decimal.NewFromInt(749))},
		},
		{
			name: "MissingPromoter",
			req:  checkout.Request{Mode: checkout.ModeReferral, FinalPrice: new(decimal.NewFromInt(1000))},
		},
		{
			name: "MissingPrice",
			req:  checkout.Request{Mode: checkout.ModeReferral, PromoterID: "p1"},
		},
		{
			name: "NegativeCreatorPrice",
			req:  checkout.Request{Mode: checkout.ModeCreator, FinalPrice: new(decimal.NewFromInt(-5))},
		},
		{
			name: "UnknownMode",
			req:  checkout.Request{Mode: "bulk", PromoterID: "p1", FinalPrice: new(decimal.NewFromInt(1000))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			res, err := f.svc.CreatePreference(context.Background(), tt.req)

			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, apperr.IsKind(err, apperr.Validation), "got %v", err)
			assert.Empty(t, listAll(t, f.repo), "no sale may be created")
		})
	}
}

func TestService_CreatePreference_CreatorDefaultsToBasePrice(t *testing.T) {
	f := newFixture(t)

	f.gateway.EXPECT().
		CreatePreference(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req mercadopago.PreferenceRequest) (*mercadopago.Preference, error) {
			assert.Equal(t, 750.0, req.Items[0].UnitPrice)
			assert.Equal(t, "Sesión privada", req.Items[0].Title)

			return &mercadopago.Preference{ID: "PREF1", InitPoint: "https://mp/init"}, nil
		})

	res, err := f.svc.CreatePreference(context.Background(), checkout.Request{
		Mode:      checkout.ModeCreator,
		CreatorID: "c1",
		Title:     "Sesión privada",
	})
	require.NoError(t, err)

	sales := listAll(t, f.repo)
	require.Len(t, sales, 1)
	assert.Equal(t, res.SaleID, sales[0].ID.String())
	assert.Equal(t, "c1", sales[0].CreatorID)
	assert.Equal(t, "750", sales[0].FinalPrice.String())
	assert.Equal(t, "150", sales[0].Net.String())
	assert.Equal(t, "600", sales[0].Commission.String())
	assert.Equal(t, sale.PolicyPercentage, sales[0].Policy)
}

func TestService_CreatePreference_CreatorPriceBelowBase(t *testing.T) {
	f := newFixture(t)

	f.gateway.EXPECT().
		CreatePreference(gomock.Any(), gomock.Any()).
		Return(&mercadopago.Preference{ID: "PREF1"}, nil)

	_, err := f.svc.CreatePreference(context.Background(), checkout.Request{
		Mode:       checkout.ModeCreator,
		CreatorID:  "c1",
		FinalPrice: new(decimal.NewFromInt(500)),
	})
	require.NoError(t, err)

	sales := listAll(t, f.repo)
	require.Len(t, sales, 1)
	assert.Equal(t, "500", sales[0].FinalPrice.String())
	assert.Equal(t, "100", sales[0].Net.String())
	assert.Equal(t, "400", sales[0].Commission.String())
	assert.Equal(t, sale.PolicyPercentage, sales[0].Policy)
}

func TestService_CreatePreference_GatewayFailureLeavesPendingSale(t *testing.T) {
	f := newFixture(t)

	f.gateway.EXPECT().
		CreatePreference(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("connection reset"))

	res, err := f.svc.CreatePreference(context.Background(), checkout.Request{
		Mode:       checkout.ModeReferral,
		PromoterID: "p1",
		FinalPrice: new(decimal.NewFromInt(1000)),
	})

	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, apperr.IsKind(err, apperr.Gateway))

	sales := listAll(t, f.repo)
	require.Len(t, sales, 1)
	assert.Equal(t, sale.StatusPending, sales[0].Status)
	assert.Empty(t, sales[0].Gateway.PreferenceID)
}

func TestService_CreatePreference_NotIdempotent(t *testing.T) {
	f := newFixture(t)

	f.gateway.EXPECT().
		CreatePreference(gomock.Any(), gomock.Any()).
		Return(&mercadopago.Preference{ID: "PREF-A"}, nil)
	f.gateway.EXPECT().
		CreatePreference(gomock.Any(), gomock.Any()).
		Return(&mercadopago.Preference{ID: "PREF-B"}, nil)

	req := checkout.Request{Mode: checkout.ModeReferral, PromoterID: "p1", FinalPrice: new(decimal.NewFromInt(900))}

	first, err := f.svc.CreatePreference(context.Background(), req)
	require.NoError(t, err)

	second, err := f.svc.CreatePreference(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, first.SaleID, second.SaleID)
	assert.Len(t, listAll(t, f.repo), 2)
}
