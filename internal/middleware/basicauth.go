// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/olegiv/landingpress/internal/auth"
)

const basicAuthRealm = `Basic realm="Dashboard", charset="UTF-8"`

// BasicAuth protects admin routes with HTTP Basic authentication against the
// configured admin credentials. Failed attempts feed the login protection so
// repeated guessing locks the account and rate limits the source IP.
func BasicAuth(adminEmail, adminPassword string, protection *LoginProtection) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getClientIP(r)

			if protection != nil && !protection.CheckIPRateLimit(ip) {
				slog.Warn("admin auth rate limit exceeded", "ip", ip)
				writeRateLimitError(w)
				return
			}

			user, pass, ok := r.BasicAuth()
			if !ok {
				requireAuth(w)
				return
			}

			if protection != nil {
				if locked, remaining := protection.IsAccountLocked(user); locked {
					slog.Warn("admin account locked", "ip", ip, "remaining", remaining)
					writeAuthError(w, http.StatusTooManyRequests,
						"Account temporarily locked. Try again later.")
					return
				}
			}

			emailOK := subtle.ConstantTimeCompare([]byte(user), []byte(adminEmail)) == 1
			passOK := auth.VerifyCredential(pass, adminPassword)

			if !emailOK || !passOK {
				if protection != nil {
					protection.RecordFailedAttempt(user)
				}
				slog.Warn("admin auth failed", "ip", ip)
				requireAuth(w)
				return
			}

			if protection != nil {
				protection.RecordSuccessfulLogin(user)
			}

			next.ServeHTTP(w, r)
		})
	}
}

func requireAuth(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", basicAuthRealm)
	writeAuthError(w, http.StatusUnauthorized, "Authentication required.")
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
