package mercadopago_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playtimeuy/payments/internal/mercadopago"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *mercadopago.Client {
	t.Helper()

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	c, err := mercadopago.NewClient(mercadopago.Config{AccessToken: "TEST-token", BaseURL: ts.URL})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return c
}

func TestNewClient_RequiresToken(t *testing.T) {
	_, err := mercadopago.NewClient(mercadopago.Config{})
	assert.Error(t, err)
}

func TestClient_CreatePreference(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/checkout/preferences", r.URL.Path)
		assert.Equal(t, "Bearer TEST-token", r.Header.Get("Authorization"))
		assert.Equal(t, "sale-1", r.Header.Get("X-Idempotency-Key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "sale-1", body["external_reference"])
		assert.Equal(t, "approved", body["auto_return"])

		items := body["items"].([]any)
		require.Len(t, items, 1)
		assert.InDelta(t, 1000.0, items[0].(map[string]any)["unit_price"], 0.001)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"PREF123","init_point":"https://mp/init","sandbox_init_point":"https://sandbox/init"}`))
	})

	pref, err := c.CreatePreference(context.Background(), mercadopago.PreferenceRequest{
		Items:             []mercadopago.Item{{Title: "Plan", Quantity: 1, UnitPrice: 1000, CurrencyID: "UYU"}},
		AutoReturn:        "approved",
		ExternalReference: "sale-1",
		IdempotencyKey:    "sale-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "PREF123", pref.ID)
	assert.Equal(t, "https://mp/init", pref.InitPoint)
	assert.Equal(t, "https://sandbox/init", pref.SandboxInitPoint)
}

func TestClient_CreatePreference_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"invalid unit_price","error":"bad_request","status":400}`))
	})

	_, err := c.CreatePreference(context.Background(), mercadopago.PreferenceRequest{})
	require.Error(t, err)

	var apiErr *mercadopago.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "invalid unit_price", apiErr.Message)
	assert.Equal(t, "bad_request", apiErr.Code)
}

func TestClient_GetPayment(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/payments/PAY999", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": 999,
			"status": "approved",
			"status_detail": "accredited",
			"external_reference": "ext-ref",
			"transaction_amount": 1000,
			"metadata": {"sale_id": "abc"},
			"payer": {"email": "buyer@example.com"}
		}`))
	})

	p, err := c.GetPayment(context.Background(), "PAY999")
	require.NoError(t, err)
	assert.Equal(t, int64(999), p.ID)
	assert.Equal(t, "approved", p.Status)
	assert.Equal(t, "accredited", p.StatusDetail)
	assert.Equal(t, "abc", p.SaleID())
	assert.Equal(t, "buyer@example.com", p.Payer.Email)
}

func TestClient_GetPayment_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Payment not found","error":"not_found","status":404}`))
	})

	_, err := c.GetPayment(context.Background(), "missing")

	var apiErr *mercadopago.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestPayment_SaleID(t *testing.T) {
	tests := []struct {
		name    string
		payment mercadopago.Payment
		want    string
	}{
		{name: "Metadata", payment: mercadopago.Payment{Metadata: map[string]any{"sale_id": "s1"}, ExternalReference: "s2"}, want: "s1"},
		{name: "ExternalReference", payment: mercadopago.Payment{ExternalReference: " s2 "}, want: "s2"},
		{name: "NonStringMetadata", payment: mercadopago.Payment{Metadata: map[string]any{"sale_id": 12.0}}, want: ""},
		{name: "Empty", payment: mercadopago.Payment{}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.payment.SaleID())
		})
	}
}
