package mercadopago

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resty.dev/v3"
)

const DefaultBaseURL = "https://api.mercadopago.com"

type Config struct {
	AccessToken string
	BaseURL     string
	Timeout     time.Duration
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mercadopago: status %d: %s (%s)", e.StatusCode, e.Message, e.Code)
}

type apiErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Status  int    `json:"status"`
}

// Client talks to the Mercado Pago REST API. Safe for concurrent use.
type Client struct {
	http *resty.Client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.AccessToken == "" {
		return nil, errors.New("mercadopago: access token is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}

	c := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.AccessToken).
		SetHeader("Accept", "application/json")

	return &Client{http: c}, nil
}

func (c *Client) Close() error {
	return c.http.Close()
}

// CreatePreference creates a Checkout Pro preference.
func (c *Client) CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error) {
	var (
		out     Preference
		errBody apiErrorBody
	)

	r := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&errBody)

	if req.IdempotencyKey != "" {
		r.SetHeader("X-Idempotency-Key", req.IdempotencyKey)
	}

	resp, err := r.Post("/checkout/preferences")
	if err != nil {
		return nil, fmt.Errorf("creating preference: %w", err)
	}

	if resp.IsError() {
		return nil, toAPIError(resp.StatusCode(), errBody, resp.String())
	}

	if out.ID == "" {
		return nil, errors.New("creating preference: empty preference id in response")
	}

	return &out, nil
}

// GetPayment fetches a payment by id.
func (c *Client) GetPayment(ctx context.Context, id string) (*Payment, error) {
	var (
		out     Payment
		errBody apiErrorBody
	)

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetResult(&out).
		SetError(&errBody).
		Get("/v1/payments/{id}")
	if err != nil {
		return nil, fmt.Errorf("getting payment %s: %w", id, err)
	}

	if resp.IsError() {
		return nil, toAPIError(resp.StatusCode(), errBody, resp.String())
	}

	return &out, nil
}

func toAPIError(status int, body apiErrorBody, raw string) *APIError {
	msg := body.Message
	if msg == "" {
		msg = raw
	}

	return &APIError{StatusCode: status, Message: msg, Code: body.Error}
}
