// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package checkout

import (
	"context"
	"errors"
	"strings"
)

// Provider is the payment provider's hosted-session capability surface.
// It accepts exactly one call shape per operation; dealing with the
// provider SDK's dual-shape arguments happens inside the implementation,
// not here.
type Provider interface {
	UpdateEmail(ctx context.Context, email string) error
	UpdatePhoneNumber(ctx context.Context, phone string) error
	Confirm(ctx context.Context, metadata map[string]string) error
}

// ProviderError is a structured failure from the payment provider.
type ProviderError struct {
	Code    string
	Param   string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

// phoneCollectionParam is the session setting the provider reports when a
// phone number is pushed to a session that never enabled collection.
const phoneCollectionParam = "phone_number_collection.enabled"

// phoneCollectionDisabled reports whether the error means the session has
// phone collection turned off. Treated as success by callers: the number
// is still persisted through our own backend. Checks the structured param
// first and falls back to message matching for providers that only report
// text; the text match mirrors observed provider behavior and is not a
// documented contract.
func phoneCollectionDisabled(err error) bool {
	if err == nil {
		return false
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		if pe.Param == phoneCollectionParam {
			return true
		}
		return strings.Contains(strings.ToLower(pe.Message), phoneCollectionParam)
	}
	return strings.Contains(strings.ToLower(err.Error()), phoneCollectionParam)
}
