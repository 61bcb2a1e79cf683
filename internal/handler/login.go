// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/olegiv/landingpress/internal/auth"
	"github.com/olegiv/landingpress/internal/middleware"
)

// LoginHandler verifies dashboard credentials. The dashboard calls it once
// to validate the pair it will replay as a Basic header on admin requests.
type LoginHandler struct {
	adminEmail    string
	adminPassword string
	protection    *middleware.LoginProtection
}

// NewLoginHandler creates a login handler.
func NewLoginHandler(adminEmail, adminPassword string, protection *middleware.LoginProtection) *LoginHandler {
	return &LoginHandler{
		adminEmail:    adminEmail,
		adminPassword: adminPassword,
		protection:    protection,
	}
}

// loginRequest is the JSON body alternative to a Basic header.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/login.
func (h *LoginHandler) Login(w http.ResponseWriter, r *http.Request) {
	email, password, ok := r.BasicAuth()
	if !ok {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
			h.reject(w)
			return
		}
		email, password = req.Email, req.Password
	}

	if h.protection != nil {
		if locked, _ := h.protection.IsAccountLocked(email); locked {
			writeJSONError(w, http.StatusTooManyRequests, "Account temporarily locked. Try again later.")
			return
		}
	}

	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(h.adminEmail)) == 1
	passOK := auth.VerifyCredential(password, h.adminPassword)

	if !emailOK || !passOK {
		if h.protection != nil {
			h.protection.RecordFailedAttempt(email)
		}
		slog.Warn("dashboard login failed", "email", email)
		h.reject(w)
		return
	}

	if h.protection != nil {
		h.protection.RecordSuccessfulLogin(email)
	}

	writeJSONSuccess(w, map[string]any{"email": email})
}

func (h *LoginHandler) reject(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="Dashboard", charset="UTF-8"`)
	writeJSONError(w, http.StatusUnauthorized, "Invalid credentials.")
}
