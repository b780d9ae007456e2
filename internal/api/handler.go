// Package api provides the HTTP handlers for the notification endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/TheRibeiro/ApiWp/internal/whatsapp"
	"github.com/go-chi/chi/v5"
)

// Sender is the delivery operation the handlers depend on. Implemented by
// *whatsapp.Manager; tests substitute a fake.
type Sender interface {
	SendText(ctx context.Context, number, text string) (jid string, err error)
}

// Handler serves the notification endpoints.
type Handler struct {
	sender Sender
}

// NewHandler creates a new Handler.
func NewHandler(sender Sender) *Handler {
	return &Handler{sender: sender}
}

// RegisterRoutes registers the notification routes. The caller is expected
// to mount these behind the shared-secret middleware.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/v1/send-otp", h.SendOTP)
	r.Post("/v1/notify-billing", h.NotifyBilling)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

type otpRequest struct {
	Number string `json:"number"`
	Code   string `json:"code"`
}

// SendOTP handles POST /v1/send-otp.
func (h *Handler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Number == "" || req.Code == "" {
		Error(w, http.StatusBadRequest, "number and code are required")
		return
	}

	h.deliver(w, r, req.Number, otpMessage(req.Code))
}

type billingRequest struct {
	Number  string `json:"number"`
	Type    string `json:"type"`
	Service string `json:"service"`
	Value   string `json:"value"`
	PixKey  string `json:"pixKey"`
}

// NotifyBilling handles POST /v1/notify-billing.
func (h *Handler) NotifyBilling(w http.ResponseWriter, r *http.Request) {
	var req billingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Number == "" || req.Type == "" || req.Service == "" || req.Value == "" || req.PixKey == "" {
		Error(w, http.StatusBadRequest, "number, type, service, value and pixKey are required")
		return
	}

	text, ok := billingMessage(req.Type, req.Service, req.Value, req.PixKey)
	if !ok {
		Error(w, http.StatusBadRequest, "type must be one of D-1, D0, D+1")
		return
	}

	h.deliver(w, r, req.Number, text)
}

// deliver forwards the message to the sender and translates its errors:
// a missing session is 503, any other transport failure surfaces as 502
// with no retry.
func (h *Handler) deliver(w http.ResponseWriter, r *http.Request, number, text string) {
	jid, err := h.sender.SendText(r.Context(), number, text)
	if errors.Is(err, whatsapp.ErrNotConnected) {
		Error(w, http.StatusServiceUnavailable, "whatsapp session not connected")
		return
	}
	if err != nil {
		slog.Error("Message delivery failed", "error", err)
		Error(w, http.StatusBadGateway, err.Error())
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"sent": true,
		"to":   jid,
	})
}
