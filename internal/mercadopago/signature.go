package mercadopago

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidSignature = errors.New("mercadopago: invalid webhook signature")

// VerifySignature checks the x-signature header Mercado Pago attaches to webhook
// notifications. The header has the form "ts=<ts>,v1=<hex hmac>" and the HMAC-SHA256
// is computed over "id:<dataID>;request-id:<requestID>;ts:<ts>;", omitting empty parts.
// A ts further than tolerance from now is rejected; a zero tolerance skips that check.
func VerifySignature(secret, xSignature, xRequestID, dataID string, now time.Time, tolerance time.Duration) error {
	var ts, v1 string

	for part := range strings.SplitSeq(xSignature, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}

		switch key {
		case "ts":
			ts = value
		case "v1":
			v1 = value
		}
	}

	if ts == "" || v1 == "" {
		return ErrInvalidSignature
	}

	if tolerance > 0 {
		signedAt, err := parseTimestamp(ts)
		if err != nil {
			return ErrInvalidSignature
		}

		if d := now.Sub(signedAt); d > tolerance || d < -tolerance {
			return fmt.Errorf("%w: ts %s outside tolerance", ErrInvalidSignature, ts)
		}
	}

	got, err := hex.DecodeString(v1)
	if err != nil {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signatureManifest(dataID, xRequestID, ts)))

	if !hmac.Equal(got, mac.Sum(nil)) {
		return ErrInvalidSignature
	}

	return nil
}

// Sign produces an x-signature header value for the given parts.
func Sign(secret, xRequestID, dataID, ts string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signatureManifest(dataID, xRequestID, ts)))

	return "ts=" + ts + ",v1=" + hex.EncodeToString(mac.Sum(nil))
}

// parseTimestamp accepts ts in seconds or milliseconds since the epoch.
func parseTimestamp(ts string) (time.Time, error) {
	n, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return time.Time{}, err
	}

	if n > 1e12 {
		return time.UnixMilli(n), nil
	}

	return time.Unix(n, 0), nil
}

func signatureManifest(dataID, requestID, ts string) string {
	var sb strings.Builder

	if dataID != "" {
		sb.WriteString("id:" + strings.ToLower(dataID) + ";")
	}

	if requestID != "" {
		sb.WriteString("request-id:" + requestID + ";")
	}

	sb.WriteString("ts:" + ts + ";")

	return sb.String()
}
