package webhook

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/playtimeuy/payments/internal/apperr"
	"github.com/playtimeuy/payments/internal/mercadopago"
	"github.com/playtimeuy/payments/internal/webhook"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	svc       *webhook.Service
	secret    string
	tolerance time.Duration
	now       func() time.Time
}

// NewHandler returns the notification endpoint. When secret is empty the
// x-signature header is not checked.
func NewHandler(svc *webhook.Service, secret string, tolerance time.Duration) *Handler {
	return &Handler{svc: svc, secret: secret, tolerance: tolerance, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/mp/webhook", h.notify)
	r.Post("/webhook", h.notify)
}

// flexibleID decodes ids sent either as JSON strings or numbers.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}

		*f = flexibleID(s)

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}

	*f = flexibleID(n.String())

	return nil
}

type notificationRequest struct {
	ID     flexibleID `json:"id"`
	Type   string     `json:"type"`
	Topic  string     `json:"topic"`
	Action string     `json:"action"`
	Data   struct {
		ID flexibleID `json:"id"`
	} `json:"data"`
}

func (h *Handler) notify(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	var req notificationRequest
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
	}

	n := toNotification(req, r)

	if h.secret != "" {
		err := mercadopago.VerifySignature(h.secret, r.Header.Get("x-signature"), r.Header.Get("x-request-id"), n.DataID, h.now(), h.tolerance)
		if err != nil {
			slog.WarnContext(r.Context(), "rejected webhook with invalid signature", "payment_id", n.DataID)
			http.Error(w, "invalid signature", http.StatusForbidden)

			return
		}
	}

	res, err := h.svc.Handle(r.Context(), n)
	if err != nil {
		http.Error(w, apperr.PublicMessage(err), apperr.HTTPStatus(err))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, string(res))
}

// toNotification merges the JSON body with the query string. Body fields win.
// Legacy IPN deliveries use ?topic=payment&id=<payment id>.
func toNotification(req notificationRequest, r *http.Request) webhook.Notification {
	q := r.URL.Query()

	n := webhook.Notification{
		ID:     string(req.ID),
		Type:   req.Type,
		Action: req.Action,
		DataID: string(req.Data.ID),
	}

	if n.Type == "" {
		n.Type = req.Topic
	}

	if n.Type == "" {
		n.Type = q.Get("type")
	}

	if n.Type == "" {
		n.Type = q.Get("topic")
	}

	if n.DataID == "" {
		n.DataID = q.Get("data.id")
	}

	if n.DataID == "" && q.Get("topic") != "" {
		n.DataID = q.Get("id")
	}

	return n
}
