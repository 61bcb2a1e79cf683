// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package checkout

import (
	"encoding/json"
	"testing"
)

func TestDefaultOptionID(t *testing.T) {
	options := []Option{
		{ID: "starter"},
		{ID: "bundle", BestValue: true},
		{ID: "deluxe", Default: true},
	}

	tests := []struct {
		name    string
		options []Option
		forced  string
		want    string
	}{
		{"forced valid id wins", options, "deluxe", "deluxe"},
		{"forced unknown id ignored", options, "nope", "bundle"},
		{"best value preferred", options, "", "bundle"},
		{"default flag counts", []Option{{ID: "a"}, {ID: "b", Default: true}}, "", "b"},
		{"first option fallback", []Option{{ID: "a"}, {ID: "b"}}, "", "a"},
		{"no options", nil, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultOptionID(tt.options, tt.forced); got != tt.want {
				t.Errorf("DefaultOptionID = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildPayloadPriceID(t *testing.T) {
	opt := &Option{ID: "bundle", Name: "Full Bundle", PriceID: "price_123", Price: 49.99}
	payload := BuildPayload(Config{}, opt, "")

	if payload.PriceID != "price_123" {
		t.Errorf("priceId = %q", payload.PriceID)
	}
	if payload.Quantity != 1 {
		t.Errorf("quantity = %d, want 1", payload.Quantity)
	}

	// A priceId request must not carry an independently computed amount.
	raw, _ := json.Marshal(payload)
	var decoded map[string]any
	_ = json.Unmarshal(raw, &decoded)
	for _, key := range []string{"amount", "currency", "description"} {
		if _, present := decoded[key]; present {
			t.Errorf("priceId payload carries %q", key)
		}
	}
}

func TestBuildPayloadAmount(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
		want int64
	}{
		{"price to minor units", Option{Price: 49.99}, 4999},
		{"rounding", Option{Price: 19.999}, 2000},
		{"zero price falls back", Option{Price: 0}, 4999},
		{"negative price falls back", Option{Price: -5}, 4999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := BuildPayload(Config{}, &tt.opt, "")
			if payload.Amount != tt.want {
				t.Errorf("amount = %d, want %d", payload.Amount, tt.want)
			}
		})
	}
}

func TestBuildPayloadQuantityAndCurrency(t *testing.T) {
	payload := BuildPayload(Config{Currency: "EUR"}, &Option{Price: 10, Quantity: 3}, "")
	if payload.Quantity != 3 {
		t.Errorf("quantity = %d, want 3", payload.Quantity)
	}
	if payload.Currency != "eur" {
		t.Errorf("currency = %q, want lowercased section default", payload.Currency)
	}

	payload = BuildPayload(Config{}, &Option{Price: 10, Quantity: 2.5, Currency: "GBP"}, "")
	if payload.Quantity != 1 {
		t.Errorf("fractional quantity = %d, want fallback 1", payload.Quantity)
	}
	if payload.Currency != "gbp" {
		t.Errorf("currency = %q, want option currency", payload.Currency)
	}

	payload = BuildPayload(Config{}, &Option{Price: 10}, "")
	if payload.Currency != "usd" {
		t.Errorf("currency = %q, want usd fallback", payload.Currency)
	}
}

func TestBuildPayloadDescription(t *testing.T) {
	cfg := Config{Title: "Section Title"}

	payload := BuildPayload(cfg, &Option{Price: 10, Name: "Starter", CheckoutDescription: "Starter kit, shipped"}, "")
	if payload.Description != "Starter kit, shipped" {
		t.Errorf("description = %q", payload.Description)
	}

	payload = BuildPayload(cfg, &Option{Price: 10, Name: "Starter"}, "")
	if payload.Description != "Starter" {
		t.Errorf("description = %q, want option name", payload.Description)
	}

	payload = BuildPayload(cfg, &Option{Price: 10}, "")
	if payload.Description != "Section Title" {
		t.Errorf("description = %q, want section title", payload.Description)
	}
}

func TestBuildPayloadMetadataMerge(t *testing.T) {
	cfg := Config{
		Metadata: map[string]any{"campaign": "spring", "tier": "doc"},
	}
	opt := &Option{
		ID:       "bundle",
		Name:     "Full Bundle",
		Price:    49.99,
		Metadata: map[string]any{"tier": "option", "count": float64(3)},
	}

	payload := BuildPayload(cfg, opt, "")

	want := map[string]string{
		"source":     sourceTag,
		"campaign":   "spring",
		"tier":       "option",
		"count":      "3",
		"optionId":   "bundle",
		"optionName": "Full Bundle",
	}
	for k, v := range want {
		if payload.Metadata[k] != v {
			t.Errorf("metadata[%q] = %q, want %q", k, payload.Metadata[k], v)
		}
	}
}

func TestBuildPayloadNilOptionUsesFallbackPrice(t *testing.T) {
	payload := BuildPayload(Config{}, nil, "price_default")
	if payload.PriceID != "price_default" {
		t.Errorf("priceId = %q, want configured fallback", payload.PriceID)
	}

	// The fallback price reference never applies to an explicit option.
	payload = BuildPayload(Config{}, &Option{Price: 10}, "price_default")
	if payload.PriceID != "" {
		t.Errorf("priceId = %q, want empty for explicit option", payload.PriceID)
	}
}

func TestParseConfig(t *testing.T) {
	doc := map[string]any{
		"checkout": map[string]any{
			"title":    "Buy now",
			"currency": "usd",
			"options": []any{
				map[string]any{
					"id":        "starter",
					"name":      "Starter",
					"price":     float64(29.99),
					"quantity":  float64(2),
					"bestValue": true,
					"metadata":  map[string]any{"sku": "ST-1"},
				},
				"not an object",
				map[string]any{"id": "cleared", "price": "19.5"},
			},
		},
	}

	cfg := ParseConfig(doc)

	if cfg.Title != "Buy now" || len(cfg.Options) != 2 {
		t.Fatalf("cfg = %+v", cfg)
	}
	starter := cfg.Options[0]
	if starter.Price != 29.99 || starter.Quantity != 2 || !starter.BestValue {
		t.Errorf("starter = %+v", starter)
	}
	if starter.Metadata["sku"] != "ST-1" {
		t.Errorf("metadata = %v", starter.Metadata)
	}
	if cfg.Options[1].Price != 19.5 {
		t.Errorf("string price parsed as %v", cfg.Options[1].Price)
	}
}
