// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package checkout orchestrates the purchase flow: selecting a purchasable
// option from the content document, requesting a payment client secret,
// validating contact details, confirming through the payment provider, and
// resolving the post-payment return view.
package checkout

import (
	"math"
	"strconv"
	"strings"
)

// Option is one purchasable entry from the content document's checkout
// section. Exactly one of Price and PriceID drives the charged amount:
// a non-empty PriceID references a provider-managed price and wins.
type Option struct {
	ID                  string
	Name                string
	Description         string
	CheckoutDescription string
	Price               float64
	PriceID             string
	Currency            string
	Quantity            float64
	Badge               string
	DisplayPrice        string
	Subcopy             string
	Metadata            map[string]any
	BestValue           bool
	Default             bool
}

// Config is the checkout section of the content document.
type Config struct {
	Title    string
	Currency string
	Metadata map[string]any
	Options  []Option
}

// ParseConfig extracts the checkout configuration from a decoded content
// document. Missing or malformed pieces yield zero values rather than
// errors; the document is convention-shaped, not schema-validated.
func ParseConfig(doc any) Config {
	root, _ := doc.(map[string]any)
	section, _ := root["checkout"].(map[string]any)

	cfg := Config{
		Title:    str(section["title"]),
		Currency: str(section["currency"]),
	}
	if meta, ok := section["metadata"].(map[string]any); ok {
		cfg.Metadata = meta
	}

	rawOptions, _ := section["options"].([]any)
	for _, raw := range rawOptions {
		obj, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		opt := Option{
			ID:                  str(obj["id"]),
			Name:                str(obj["name"]),
			Description:         str(obj["description"]),
			CheckoutDescription: str(obj["checkoutDescription"]),
			Price:               num(obj["price"]),
			PriceID:             str(obj["priceId"]),
			Currency:            str(obj["currency"]),
			Quantity:            num(obj["quantity"]),
			Badge:               str(obj["badge"]),
			DisplayPrice:        str(obj["displayPrice"]),
			Subcopy:             str(obj["subcopy"]),
			BestValue:           boolean(obj["bestValue"]),
			Default:             boolean(obj["default"]),
		}
		if meta, ok := obj["metadata"].(map[string]any); ok {
			opt.Metadata = meta
		}
		cfg.Options = append(cfg.Options, opt)
	}
	return cfg
}

// DefaultOptionID picks the initially selected option: a valid forced id
// wins, then the first option flagged bestValue or default, then the first
// option, then none.
func DefaultOptionID(options []Option, forced string) string {
	if forced != "" {
		for _, opt := range options {
			if opt.ID == forced {
				return forced
			}
		}
	}
	for _, opt := range options {
		if opt.BestValue || opt.Default {
			return opt.ID
		}
	}
	if len(options) > 0 {
		return options[0].ID
	}
	return ""
}

// OptionByID returns the option with the given id, or nil.
func OptionByID(options []Option, id string) *Option {
	for i := range options {
		if options[i].ID == id {
			return &options[i]
		}
	}
	return nil
}

// normQuantity coerces a document quantity to a positive integer count,
// defaulting to 1.
func normQuantity(q float64) int {
	if q > 0 && q == math.Trunc(q) {
		return int(q)
	}
	return 1
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

// num reads a document number. The editor stores cleared numeric fields as
// strings, so parseable strings count too; anything else is 0.
func num(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func boolean(v any) bool {
	b, _ := v.(bool)
	return b
}
