package mercadopago_test

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/playtimeuy/payments/internal/mercadopago"
)

func TestVerifySignature(t *testing.T) {
	const (
		secret = "whsec"
		ts     = "1704908010"
	)

	now := time.Unix(1704908010, 0)
	valid := mercadopago.Sign(secret, "req-1", "PAY999", ts)

	tests := []struct {
		name      string
		header    string
		requestID string
		dataID    string
		tolerance time.Duration
		wantErr   bool
	}{
		{name: "Valid", header: valid, requestID: "req-1", dataID: "PAY999"},
		{name: "DataIDCaseInsensitive", header: mercadopago.Sign(secret, "req-1", "pay999", ts), requestID: "req-1", dataID: "PAY999"},
		{name: "WrongDataID", header: valid, requestID: "req-1", dataID: "PAY1", wantErr: true},
		{name: "WrongRequestID", header: valid, requestID: "req-2", dataID: "PAY999", wantErr: true},
		{name: "WrongSecret", header: mercadopago.Sign("other", "req-1", "PAY999", ts), requestID: "req-1", dataID: "PAY999", wantErr: true},
		{name: "MissingV1", header: "ts=1704908010", requestID: "req-1", dataID: "PAY999", wantErr: true},
		{name: "NotHex", header: "ts=1,v1=zz", requestID: "req-1", dataID: "PAY999", wantErr: true},
		{name: "Empty", header: "", wantErr: true},
		{name: "WithinTolerance", header: valid, requestID: "req-1", dataID: "PAY999", tolerance: 5 * time.Minute},
		{
			name:      "MillisecondsWithinTolerance",
			header:    mercadopago.Sign(secret, "req-1", "PAY999", "1704908010000"),
			requestID: "req-1",
			dataID:    "PAY999",
			tolerance: 5 * time.Minute,
		},
		{
			name:      "Expired",
			header:    mercadopago.Sign(secret, "req-1", "PAY999", strconv.FormatInt(now.Add(-10*time.Minute).Unix(), 10)),
			requestID: "req-1",
			dataID:    "PAY999",
			tolerance: 5 * time.Minute,
			wantErr:   true,
		},
		{
			name:      "FromTheFuture",
			header:    mercadopago.Sign(secret, "req-1", "PAY999", strconv.FormatInt(now.Add(10*time.Minute).Unix(), 10)),
			requestID: "req-1",
			dataID:    "PAY999",
			tolerance: 5 * time.Minute,
			wantErr:   true,
		},
		{
			name:      "NonNumericTimestamp",
			header:    mercadopago.Sign(secret, "req-1", "PAY999", "yesterday"),
			requestID: "req-1",
			dataID:    "PAY999",
			tolerance: 5 * time.Minute,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mercadopago.VerifySignature(secret, tt.header, tt.requestID, tt.dataID, now, tt.tolerance)
			if tt.wantErr {
				assert.ErrorIs(t, err, mercadopago.ErrInvalidSignature)
				return
			}

			assert.NoError(t, err)
		})
	}
}
