package checkout

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/playtimeuy/payments/internal/apperr"
	"github.com/playtimeuy/payments/internal/checkout"
)

type Handler struct {
	svc *checkout.Service
}

func NewHandler(svc *checkout.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/mp/create-preference", h.createReferral)
	r.Post("/crear-preferencia", h.createCreator)
}

// referralRequest accepts precioFinal as a JSON number or a numeric string.
type referralRequest struct {
	PromoterID string           `json:"promotorId"`
	FinalPrice *decimal.Decimal `json:"precioFinal"`
	BuyerID    string           `json:"compradorUid"`
	CreatorID  string           `json:"creadorId"`
}

type creatorRequest struct {
	Title     string           `json:"titulo"`
	Price     *decimal.Decimal `json:"precio"`
	CreatorID string           `json:"creadora_id"`
}

type preferenceResponse struct {
	OK               bool   `json:"ok"`
	PreferenceID     string `json:"preferenceId,omitempty"`
	InitPoint        string `json:"init_point,omitempty"`
	SandboxInitPoint string `json:"sandbox_init_point,omitempty"`
	PublicKey        string `json:"publicKey,omitempty"`
	SaleID           string `json:"ventaId,omitempty"`
	Error            string `json:"error,omitempty"`
}

func (h *Handler) createReferral(w http.ResponseWriter, r *http.Request) {
	var req referralRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, preferenceResponse{Error: "invalid request body"})
		return
	}

	h.create(w, r, checkout.Request{
		Mode:       checkout.ModeReferral,
		PromoterID: req.PromoterID,
		BuyerID:    req.BuyerID,
		CreatorID:  req.CreatorID,
		FinalPrice: req.FinalPrice,
	})
}

func (h *Handler) createCreator(w http.ResponseWriter, r *http.Request) {
	var req creatorRequest

	// an empty body buys the default subscription
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, preferenceResponse{Error: "invalid request body"})
		return
	}

	h.create(w, r, checkout.Request{
		Mode:       checkout.ModeCreator,
		CreatorID:  req.CreatorID,
		Title:      req.Title,
		FinalPrice: req.Price,
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, req checkout.Request) {
	res, err := h.svc.CreatePreference(r.Context(), req)
	if err != nil {
		status := apperr.HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			slog.ErrorContext(r.Context(), "checkout failed", "mode", req.Mode, "error", err)
		}

		writeJSON(w, status, preferenceResponse{Error: apperr.PublicMessage(err)})

		return
	}

	writeJSON(w, http.StatusOK, preferenceResponse{
		OK:               true,
		PreferenceID:     res.PreferenceID,
		InitPoint:        res.CheckoutURL,
		SandboxInitPoint: res.SandboxCheckoutURL,
		PublicKey:        res.PublicKey,
		SaleID:           res.SaleID,
	})
}

func writeJSON(w http.ResponseWriter, status int, body preferenceResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
