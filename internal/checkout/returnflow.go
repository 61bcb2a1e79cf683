// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package checkout

import (
	"context"
	"net/url"
	"strings"
)

// ReturnStatus is the outcome of the post-payment return view.
type ReturnStatus int

const (
	ReturnLoading ReturnStatus = iota
	ReturnSuccess
	ReturnError
)

func (s ReturnStatus) String() string {
	switch s {
	case ReturnLoading:
		return "loading"
	case ReturnSuccess:
		return "success"
	case ReturnError:
		return "error"
	default:
		return "unknown"
	}
}

// ReturnResult is what the confirmation view renders: the outcome, the
// session details for the failure table, and a provider dashboard link
// when a payment intent exists.
type ReturnResult struct {
	Status       ReturnStatus
	Message      string
	Session      SessionState
	DashboardURL string
}

// StatusSource resolves a session id to its current state.
type StatusSource interface {
	SessionStatus(ctx context.Context, sessionID string) (*SessionState, error)
}

const dashboardPaymentsURL = "https://dashboard.stripe.com/payments/"

// SessionIDFromURL extracts the session_id query parameter from a page
// URL, or "" when absent.
func SessionIDFromURL(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	return u.Query().Get("session_id")
}

// StripSessionID removes the session_id query parameter from a page URL.
// Idempotent: a URL without the parameter comes back unchanged, so the
// cleanup can run again on refresh without effect.
func StripSessionID(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return pageURL
	}
	q := u.Query()
	if !q.Has("session_id") {
		return pageURL
	}
	q.Del("session_id")
	u.RawQuery = q.Encode()
	return u.String()
}

// ResolveReturn runs the return flow for a page URL carrying a session
// reference: fetch the session's status, map "complete" to Success and
// everything else to Error, and strip the session_id parameter from the
// URL on success. The returned string is the cleaned URL to show.
func ResolveReturn(ctx context.Context, api StatusSource, pageURL string) (ReturnResult, string) {
	sessionID := SessionIDFromURL(pageURL)
	if sessionID == "" {
		return ReturnResult{
			Status:  ReturnError,
			Message: "Missing session reference.",
		}, pageURL
	}

	state, err := api.SessionStatus(ctx, sessionID)
	if err != nil {
		return ReturnResult{
			Status:  ReturnError,
			Message: errorMessage(err, "Unable to retrieve checkout session."),
		}, pageURL
	}

	result := ReturnResult{Session: *state}
	if state.PaymentIntentID != "" {
		result.DashboardURL = dashboardPaymentsURL + state.PaymentIntentID
	}

	if state.Status == "complete" {
		result.Status = ReturnSuccess
		return result, StripSessionID(pageURL)
	}

	result.Status = ReturnError
	result.Message = "Something went wrong, please try again."
	return result, pageURL
}

// errorMessage unwraps the client's "checkout: " prefix for display, or
// falls back to a generic message.
func errorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	msg := strings.TrimPrefix(err.Error(), "checkout: ")
	if msg == "" {
		return fallback
	}
	return msg
}
