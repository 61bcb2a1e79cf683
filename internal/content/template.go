// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

// arrayTemplates maps dotted array paths to the shape of a fresh element.
// Used when an "add item" operation targets an empty array, so new items
// stay schema-consistent without a declared schema.
var arrayTemplates = map[string]any{
	"branding.saleBanners": map[string]any{
		"id":      "",
		"message": "",
	},
	"testimonials.cards": map[string]any{
		"name":  "",
		"badge": "",
		"quote": "",
		"image": map[string]any{
			"src": "",
			"alt": "",
		},
	},
	"checkout.options": map[string]any{
		"id":                  "",
		"name":                "",
		"description":         "",
		"checkoutDescription": "",
		"price":               float64(0),
		"priceId":             "",
		"currency":            "",
		"quantity":            float64(1),
		"badge":               "",
		"displayPrice":        "",
		"subcopy":             "",
		"metadata":            map[string]any{},
		"image": map[string]any{
			"src": "",
			"alt": "",
		},
	},
	"privacyPolicy.blocks": map[string]any{
		"title":     "",
		"paragraph": "",
	},
	"termsOfService.blocks": map[string]any{
		"title":     "",
		"paragraph": "",
	},
}

// EmptyClone produces a structurally identical copy of sample with every
// primitive leaf reset to its zero value: "" for strings (and nils), 0 for
// numbers, false for booleans, an empty array for arrays, and a recursively
// emptied object for objects.
func EmptyClone(sample any) any {
	switch v := sample.(type) {
	case nil:
		return ""
	case string:
		return ""
	case bool:
		return false
	case float64, float32, int, int64, int32:
		return float64(0)
	case []any:
		return []any{}
	case map[string]any:
		result := make(map[string]any, len(v))
		for k, child := range v {
			result[k] = EmptyClone(child)
		}
		return result
	default:
		return ""
	}
}

// NewItem synthesizes a fresh element for the array at path. A non-empty
// array contributes the structure of its first element; an empty array
// falls back to the path-specific template table; anything else yields an
// empty string. Either source is run through EmptyClone so new items start
// blank.
func NewItem(p Path, current any) any {
	if arr, ok := current.([]any); ok && len(arr) > 0 {
		return EmptyClone(arr[0])
	}
	if tpl, ok := arrayTemplates[p.String()]; ok {
		return EmptyClone(tpl)
	}
	return ""
}

// Template returns the registered template for a dotted array path, if any.
func Template(dotted string) (any, bool) {
	tpl, ok := arrayTemplates[dotted]
	return tpl, ok
}
