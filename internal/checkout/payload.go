// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package checkout

import (
	"fmt"
	"math"
	"strings"
)

const (
	// sourceTag marks sessions created by this site in provider metadata.
	sourceTag = "landingpress"

	// fallbackAmount is charged (in minor units) when an option carries
	// neither a provider price reference nor a usable price.
	fallbackAmount = 4999

	fallbackCurrency    = "usd"
	fallbackDescription = "Landing page checkout"
)

// SessionRequest is the body of a session-creation call. When PriceID is
// set the provider-managed price drives the amount and the Amount,
// Currency, and Description fields are omitted.
type SessionRequest struct {
	PriceID     string            `json:"priceId,omitempty"`
	Quantity    int               `json:"quantity"`
	Amount      int64             `json:"amount,omitempty"`
	Currency    string            `json:"currency,omitempty"`
	Description string            `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// BuildPayload turns an option plus the section-level defaults into a
// session-creation request. A nil option builds the fallback request used
// when the page sells a single implicit product; fallbackPriceID is only
// consulted in that case.
func BuildPayload(cfg Config, opt *Option, fallbackPriceID string) SessionRequest {
	var o Option
	if opt != nil {
		o = *opt
	}

	quantity := normQuantity(o.Quantity)

	currency := o.Currency
	if currency == "" {
		currency = cfg.Currency
	}
	if currency == "" {
		currency = fallbackCurrency
	}
	currency = strings.ToLower(currency)

	priceID := o.PriceID
	if priceID == "" && opt == nil {
		priceID = fallbackPriceID
	}

	metadata := map[string]string{"source": sourceTag}
	mergeMetadata(metadata, cfg.Metadata)
	mergeMetadata(metadata, o.Metadata)
	if o.ID != "" {
		metadata["optionId"] = o.ID
	}
	if o.Name != "" {
		metadata["optionName"] = o.Name
	}

	if priceID != "" {
		return SessionRequest{
			PriceID:  priceID,
			Quantity: quantity,
			Metadata: metadata,
		}
	}

	amount := int64(math.Round(o.Price * 100))
	if amount <= 0 {
		amount = fallbackAmount
	}

	description := o.CheckoutDescription
	if description == "" {
		description = o.Name
	}
	if description == "" {
		description = cfg.Title
	}
	if description == "" {
		description = fallbackDescription
	}

	return SessionRequest{
		Quantity:    quantity,
		Amount:      amount,
		Currency:    currency,
		Description: description,
		Metadata:    metadata,
	}
}

// mergeMetadata folds a document metadata bag into dst, stringifying
// scalar values. Later merges win on key collisions.
func mergeMetadata(dst map[string]string, src map[string]any) {
	for k, v := range src {
		switch val := v.(type) {
		case string:
			dst[k] = val
		case float64:
			if val == math.Trunc(val) {
				dst[k] = fmt.Sprintf("%d", int64(val))
			} else {
				dst[k] = fmt.Sprintf("%g", val)
			}
		case bool:
			dst[k] = fmt.Sprintf("%t", val)
		case nil:
			// skip
		default:
			dst[k] = fmt.Sprintf("%v", val)
		}
	}
}
