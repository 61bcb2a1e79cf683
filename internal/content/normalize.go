// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Normalize deep-copies the document and repairs the shapes the rest of the
// system assumes by convention: sale banners, favicon, checkout options and
// stripe settings, thank-you block, and the legal page blocks. The input is
// never mutated. A non-object document is returned as-is.
func Normalize(doc any) any {
	obj, ok := doc.(map[string]any)
	if !ok {
		return doc
	}

	clone := DeepCopy(obj)

	if branding, ok := clone["branding"].(map[string]any); ok {
		normalizeBranding(branding)
	}
	if checkout, ok := clone["checkout"].(map[string]any); ok {
		normalizeCheckout(checkout)
	}
	clone["privacyPolicy"] = normalizeLegal(clone["privacyPolicy"])
	clone["termsOfService"] = normalizeLegal(clone["termsOfService"])

	return clone
}

// DeepCopy clones a decoded JSON document through a marshal round-trip so
// the copy shares no containers with the original.
func DeepCopy(doc map[string]any) map[string]any {
	raw, err := json.Marshal(doc)
	if err != nil {
		// Decoded JSON always re-marshals; a failure means the caller fed
		// us something that never came from a JSON document.
		panic(fmt.Sprintf("content: document not JSON-representable: %v", err))
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(fmt.Sprintf("content: document round-trip failed: %v", err))
	}
	return out
}

func normalizeBranding(branding map[string]any) {
	if banners, ok := branding["saleBanners"].([]any); ok {
		for i, banner := range banners {
			switch b := banner.(type) {
			case map[string]any:
				if _, isStr := b["message"].(string); !isStr {
					b["message"] = coerceString(b["message"])
				}
			case string:
				banners[i] = map[string]any{"id": "", "message": b}
			default:
				banners[i] = map[string]any{"id": "", "message": ""}
			}
		}
	}

	branding["favicon"] = normalizeImage(branding["favicon"])
}

func normalizeCheckout(checkout map[string]any) {
	if options, ok := checkout["options"].([]any); ok {
		for i, option := range options {
			opt, isObj := option.(map[string]any)
			if !isObj {
				options[i] = EmptyClone(arrayTemplates["checkout.options"])
				continue
			}

			opt["image"] = normalizeImage(opt["image"])

			if s, isStr := opt["price"].(string); isStr {
				if f, err := strconv.ParseFloat(s, 64); err == nil {
					opt["price"] = f
				} else {
					opt["price"] = ""
				}
			}
			if s, isStr := opt["quantity"].(string); isStr {
				if f, err := strconv.ParseFloat(s, 64); err == nil {
					opt["quantity"] = math.Max(1, math.Round(f))
				} else {
					opt["quantity"] = float64(1)
				}
			}
		}
	}

	if _, isStr := checkout["checkoutPageTitle"].(string); !isStr {
		checkout["checkoutPageTitle"] = ""
	}

	stripe, isObj := checkout["stripe"].(map[string]any)
	if !isObj {
		checkout["stripe"] = map[string]any{
			"mode":               "test",
			"testPublishableKey": "",
			"livePublishableKey": "",
		}
	} else {
		mode := "test"
		if stripe["mode"] == "live" {
			mode = "live"
		}
		checkout["stripe"] = map[string]any{
			"mode":               mode,
			"testPublishableKey": stringOr(stripe["testPublishableKey"], ""),
			"livePublishableKey": stringOr(stripe["livePublishableKey"], ""),
		}
	}

	if thankYou, ok := checkout["thankYou"].(map[string]any); ok {
		cta, isObj := thankYou["cta"].(map[string]any)
		if !isObj {
			thankYou["cta"] = map[string]any{"label": "", "href": ""}
		} else {
			thankYou["cta"] = map[string]any{
				"label": stringOr(cta["label"], ""),
				"href":  stringOr(cta["href"], ""),
			}
		}
		thankYou["image"] = normalizeImage(thankYou["image"])
	}
}

// normalizeLegal repairs a privacyPolicy/termsOfService section down to
// {title, lastUpdated, blocks:[{title, paragraph}]}.
func normalizeLegal(section any) map[string]any {
	src, isObj := section.(map[string]any)
	if !isObj {
		return map[string]any{
			"title":       "",
			"lastUpdated": "",
			"blocks":      []any{},
		}
	}

	out := map[string]any{
		"title":       stringOr(src["title"], ""),
		"lastUpdated": stringOr(src["lastUpdated"], ""),
	}

	blocks, isArr := src["blocks"].([]any)
	if !isArr {
		out["blocks"] = []any{}
		return out
	}
	normalized := make([]any, len(blocks))
	for i, block := range blocks {
		b, isObj := block.(map[string]any)
		if !isObj {
			normalized[i] = map[string]any{"title": "", "paragraph": ""}
			continue
		}
		normalized[i] = map[string]any{
			"title":     stringOr(b["title"], ""),
			"paragraph": stringOr(b["paragraph"], ""),
		}
	}
	out["blocks"] = normalized
	return out
}

// normalizeImage coerces a value into the {src, alt} shape.
func normalizeImage(v any) map[string]any {
	img, isObj := v.(map[string]any)
	if !isObj {
		return map[string]any{"src": "", "alt": ""}
	}
	return map[string]any{
		"src": stringOr(img["src"], ""),
		"alt": stringOr(img["alt"], ""),
	}
}

// stringOr returns v when it is a non-empty string, else fallback.
func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

// coerceString renders any scalar as a string; nil becomes "".
func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
