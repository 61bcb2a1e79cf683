// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package checkout

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeStatusSource struct {
	state *SessionState
	err   error
}

func (f *fakeStatusSource) SessionStatus(ctx context.Context, sessionID string) (*SessionState, error) {
	if f.err != nil {
		return nil, f.err
	}
	state := *f.state
	state.ID = sessionID
	return &state, nil
}

func TestResolveReturnComplete(t *testing.T) {
	api := &fakeStatusSource{state: &SessionState{Status: "complete", PaymentStatus: "paid"}}
	pageURL := "https://example.com/complete?session_id=sess_1&utm=spring"

	result, cleaned := ResolveReturn(context.Background(), api, pageURL)

	if result.Status != ReturnSuccess {
		t.Fatalf("status = %v, want success", result.Status)
	}
	if strings.Contains(cleaned, "session_id") {
		t.Errorf("cleaned URL still carries session_id: %q", cleaned)
	}
	if !strings.Contains(cleaned, "utm=spring") {
		t.Errorf("cleaned URL lost unrelated parameters: %q", cleaned)
	}
	if result.Session.ID != "sess_1" {
		t.Errorf("session id = %q", result.Session.ID)
	}
}

func TestResolveReturnOpenSession(t *testing.T) {
	api := &fakeStatusSource{state: &SessionState{
		Status:              "open",
		PaymentIntentID:     "pi_123",
		PaymentIntentStatus: "requires_payment_method",
	}}
	pageURL := "https://example.com/complete?session_id=sess_1"

	result, cleaned := ResolveReturn(context.Background(), api, pageURL)

	if result.Status != ReturnError {
		t.Fatalf("status = %v, want error", result.Status)
	}
	// The failure view keeps the payment intent for display and links to
	// the provider dashboard.
	if result.Session.PaymentIntentID != "pi_123" {
		t.Errorf("payment intent = %q", result.Session.PaymentIntentID)
	}
	if result.DashboardURL != "https://dashboard.stripe.com/payments/pi_123" {
		t.Errorf("dashboard URL = %q", result.DashboardURL)
	}
	if !strings.Contains(cleaned, "session_id=sess_1") {
		t.Errorf("failure must keep session_id for retry: %q", cleaned)
	}
}

func TestResolveReturnMissingSessionID(t *testing.T) {
	result, _ := ResolveReturn(context.Background(), &fakeStatusSource{}, "https://example.com/complete")
	if result.Status != ReturnError || result.Message != "Missing session reference." {
		t.Errorf("result = %+v", result)
	}
}

func TestResolveReturnBackendError(t *testing.T) {
	api := &fakeStatusSource{err: errors.New("checkout: Stripe secret key is not configured.")}
	result, _ := ResolveReturn(context.Background(), api, "https://example.com/complete?session_id=sess_1")

	if result.Status != ReturnError {
		t.Fatalf("status = %v", result.Status)
	}
	if result.Message != "Stripe secret key is not configured." {
		t.Errorf("message = %q", result.Message)
	}
}

func TestStripSessionIDIdempotent(t *testing.T) {
	once := StripSessionID("https://example.com/complete?session_id=sess_1")
	twice := StripSessionID(once)
	if once != twice {
		t.Errorf("strip not idempotent: %q vs %q", once, twice)
	}

	untouched := "https://example.com/complete?foo=bar"
	if StripSessionID(untouched) != untouched {
		t.Error("URL without session_id changed")
	}
}
