// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/olegiv/landingpress/internal/store"
)

// SecretsHandler manages the Stripe secret keys stored outside the content
// document.
type SecretsHandler struct {
	secrets *store.SecretsFile
}

// NewSecretsHandler creates a secrets handler.
func NewSecretsHandler(secrets *store.SecretsFile) *SecretsHandler {
	return &SecretsHandler{secrets: secrets}
}

// Get handles GET /api/stripe-secrets.
func (h *SecretsHandler) Get(w http.ResponseWriter, r *http.Request) {
	keys, err := h.secrets.Load(r.Context())
	if err != nil {
		slog.Error("loading stripe secrets", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to load secret keys.")
		return
	}

	writeJSON(w, http.StatusOK, keys)
}

// updateSecretsRequest carries a partial update: only the fields present
// in the body are written, so the test and live keys save independently.
type updateSecretsRequest struct {
	TestSecretKey *string `json:"testSecretKey"`
	LiveSecretKey *string `json:"liveSecretKey"`
}

// Put handles PUT /api/stripe-secrets.
func (h *SecretsHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req updateSecretsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid JSON.")
		return
	}

	keys, err := h.secrets.Load(r.Context())
	if err != nil {
		slog.Error("loading stripe secrets", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to load secret keys.")
		return
	}

	if req.TestSecretKey != nil {
		keys.TestSecretKey = *req.TestSecretKey
	}
	if req.LiveSecretKey != nil {
		keys.LiveSecretKey = *req.LiveSecretKey
	}

	if err := h.secrets.Save(r.Context(), keys); err != nil {
		slog.Error("saving stripe secrets", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to save secret keys.")
		return
	}

	writeJSONSuccess(w, nil)
}
