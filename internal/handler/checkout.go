// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/landingpress/internal/checkout"
	"github.com/olegiv/landingpress/internal/config"
	"github.com/olegiv/landingpress/internal/store"
	"github.com/olegiv/landingpress/internal/stripe"
)

// Fallbacks applied when a session request arrives without a usable price,
// mirroring the client-side payload builder.
const (
	fallbackAmount   = 4999
	fallbackCurrency = "usd"
	fallbackProduct  = "Landing page checkout"
)

// CheckoutHandler serves the payment endpoints: session creation, status
// retrieval, and phone persistence.
type CheckoutHandler struct {
	contentFile *store.ContentFile
	secrets     *store.SecretsFile
	orders      *store.OrderStore
	clients     *stripe.Cache
	cfg         *config.Config
}

// NewCheckoutHandler creates a checkout handler.
func NewCheckoutHandler(contentFile *store.ContentFile, secrets *store.SecretsFile,
	orders *store.OrderStore, clients *stripe.Cache, cfg *config.Config) *CheckoutHandler {
	return &CheckoutHandler{
		contentFile: contentFile,
		secrets:     secrets,
		orders:      orders,
		clients:     clients,
		cfg:         cfg,
	}
}

// CreateSession handles POST /create-checkout-session. The request body is
// the client payload; missing pieces fall back to defaults so a hand-rolled
// call still produces a valid session.
func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req checkout.SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid JSON.")
		return
	}
	normalizeSessionRequest(&req, h.cfg.DefaultPriceID)

	client, err := h.stripeClient(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	item := stripe.LineItem{Quantity: req.Quantity}
	if req.PriceID != "" {
		item.PriceID = req.PriceID
	} else {
		item.Currency = req.Currency
		item.UnitAmount = req.Amount
		item.ProductName = req.Description
	}

	session, err := client.CreateCheckoutSession(r.Context(), stripe.CreateSessionParams{
		LineItems:    []stripe.LineItem{item},
		ReturnURL:    h.returnURL(r),
		Metadata:     req.Metadata,
		AutomaticTax: h.cfg.AutomaticTax,
	})
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		slog.Error("creating checkout session", "error", err)
		writeJSONError(w, http.StatusBadGateway, providerMessage(err, "Unable to prepare checkout."))
		return
	}

	order := &store.Order{
		SessionID:  session.ID,
		OptionID:   req.Metadata["optionId"],
		OptionName: req.Metadata["optionName"],
		Amount:     req.Amount,
		Currency:   req.Currency,
		Quantity:   req.Quantity,
	}
	if err := h.orders.Create(r.Context(), order); err != nil {
		// The session exists at the provider; losing the local row is
		// recoverable through session-status reconciliation.
		slog.Error("recording order", "session_id", session.ID, "error", err)
	}

	writeJSON(w, http.StatusOK, checkout.SessionResult{
		ClientSecret: session.ClientSecret,
		SessionID:    session.ID,
	})
}

// SessionStatus handles GET /session-status - retrieves the provider's view
// of a session with its payment intent expanded, and reconciles the local
// order on the way through.
func (h *CheckoutHandler) SessionStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeJSONError(w, http.StatusBadRequest, "Missing session_id.")
		return
	}

	client, err := h.stripeClient(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := client.GetSession(r.Context(), sessionID)
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		slog.Error("retrieving checkout session", "session_id", sessionID, "error", err)
		writeJSONError(w, http.StatusBadGateway, providerMessage(err, "Unable to retrieve checkout session."))
		return
	}

	state := checkout.SessionState{
		ID:            session.ID,
		Status:        session.Status,
		PaymentStatus: session.PaymentStatus,
	}
	if session.PaymentIntent != nil {
		state.PaymentIntentID = session.PaymentIntent.ID
		state.PaymentIntentStatus = session.PaymentIntent.Status
	}

	err = h.orders.SetStatus(r.Context(), sessionID, session.Status, session.PaymentStatus, state.PaymentIntentID)
	if err != nil && !errors.Is(err, store.ErrOrderNotFound) {
		slog.Warn("reconciling order", "session_id", sessionID, "error", err)
	}

	writeJSON(w, http.StatusOK, state)
}

// phoneRequest is the body of a phone-persistence call.
type phoneRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

// SavePhone handles POST /checkout-session/{id}/phone - records the
// customer's phone number on the order and mirrors it into the provider
// session metadata best-effort.
func (h *CheckoutHandler) SavePhone(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	var req phoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid JSON.")
		return
	}
	phone := strings.TrimSpace(req.PhoneNumber)
	if phone == "" {
		writeJSONError(w, http.StatusBadRequest, "Missing phone number.")
		return
	}

	if err := h.orders.SetPhone(r.Context(), sessionID, phone); err != nil {
		if errors.Is(err, store.ErrOrderNotFound) {
			writeJSONError(w, http.StatusNotFound, "Unknown checkout session.")
			return
		}
		slog.Error("saving order phone", "session_id", sessionID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to save phone number.")
		return
	}

	if client, err := h.stripeClient(r.Context()); err == nil {
		metadata := map[string]string{
			"customer_phone": phone,
			"phone_number":   phone,
		}
		if err := client.UpdateSessionMetadata(r.Context(), sessionID, metadata); err != nil {
			slog.Warn("updating session metadata", "session_id", sessionID, "error", err)
		}
	}

	writeJSONSuccess(w, nil)
}

// stripeClient resolves the active mode from the content document and
// returns a client for the matching secret key. The returned error message
// is safe to show to the caller.
func (h *CheckoutHandler) stripeClient(ctx context.Context) (*stripe.Client, error) {
	mode := h.activeMode(ctx)

	keys, err := h.secrets.Load(ctx)
	if err != nil {
		slog.Error("loading stripe secrets", "error", err)
		return nil, errors.New("Payment configuration is unavailable.")
	}

	key := keys.KeyForMode(mode)
	if key == "" {
		return nil, fmt.Errorf("Add a Stripe secret key for %s mode in the dashboard.", mode)
	}

	return h.clients.Get(key), nil
}

// activeMode reads checkout.stripe.mode from the content document.
// Anything but an explicit "live" means test mode.
func (h *CheckoutHandler) activeMode(ctx context.Context) string {
	raw, err := h.contentFile.Load(ctx)
	if err != nil {
		return "test"
	}

	var doc struct {
		Checkout struct {
			Stripe struct {
				Mode string `json:"mode"`
			} `json:"stripe"`
		} `json:"checkout"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "test"
	}
	if doc.Checkout.Stripe.Mode == "live" {
		return "live"
	}
	return "test"
}

// returnURL builds the address the provider sends the customer back to.
// The configured base wins; otherwise it derives from the request.
func (h *CheckoutHandler) returnURL(r *http.Request) string {
	base := h.cfg.ReturnURLBase
	if base == "" {
		scheme := "http"
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			scheme = "https"
		}
		base = scheme + "://" + r.Host
	}
	return strings.TrimRight(base, "/") + "/complete?session_id={CHECKOUT_SESSION_ID}"
}

// normalizeSessionRequest applies the same defaults the client payload
// builder uses, so direct API callers get valid sessions too.
func normalizeSessionRequest(req *checkout.SessionRequest, defaultPriceID string) {
	if req.Quantity <= 0 {
		req.Quantity = 1
	}
	if req.PriceID != "" {
		return
	}

	req.Currency = strings.ToLower(strings.TrimSpace(req.Currency))
	if req.Currency == "" {
		req.Currency = fallbackCurrency
	}
	if req.Amount <= 0 {
		if defaultPriceID != "" {
			req.PriceID = defaultPriceID
			return
		}
		req.Amount = fallbackAmount
	}
	if req.Description == "" {
		req.Description = fallbackProduct
	}
}

// providerMessage extracts a user-facing message from a provider error.
func providerMessage(err error, fallback string) string {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Message != "" {
		return stripeErr.Message
	}
	return fallback
}
