// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package editor turns the schemaless content document into an editable
// form model. Widget selection is heuristic: the field's label, its path,
// and the value's shape decide how it is presented, so the dashboard can
// edit any document without a declared schema.
package editor

import (
	"strings"

	"github.com/olegiv/landingpress/internal/content"
)

// WidgetKind is the presentation chosen for one node of the document.
type WidgetKind int

const (
	WidgetText WidgetKind = iota
	WidgetTextarea
	WidgetNumber
	WidgetToggle
	WidgetImage
	WidgetImageUpload
	WidgetList
	WidgetGroup
)

func (k WidgetKind) String() string {
	switch k {
	case WidgetText:
		return "text"
	case WidgetTextarea:
		return "textarea"
	case WidgetNumber:
		return "number"
	case WidgetToggle:
		return "toggle"
	case WidgetImage:
		return "image"
	case WidgetImageUpload:
		return "image-upload"
	case WidgetList:
		return "list"
	case WidgetGroup:
		return "group"
	default:
		return "text"
	}
}

// textareaThreshold is the string length beyond which a single-line input
// becomes a multi-line one.
const textareaThreshold = 160

// hiddenPaths are dotted paths excluded from the generic form entirely.
// They are managed by dedicated controls (Stripe settings) or are legacy
// flags no longer surfaced.
var hiddenPaths = map[string]struct{}{
	"hero.testimonial.rating":    {},
	"testimonials.rating":        {},
	"hero.stripeCheckoutEnabled": {},
	"checkout.stripe":            {},
}

// itemLabels overrides the per-item caption for well-known array keys.
var itemLabels = map[string]string{
	"cards":       "Card",
	"saleBanners": "Banner",
	"options":     "Option",
	"blocks":      "Block",
}

// Hidden reports whether the dotted path is excluded from rendering.
func Hidden(dotted string) bool {
	_, ok := hiddenPaths[dotted]
	return ok
}

// ItemLabel returns the caption for elements of the array named key,
// falling back to the field's own label.
func ItemLabel(key, fallback string) string {
	if label, ok := itemLabels[key]; ok {
		return label
	}
	if fallback != "" {
		return fallback
	}
	return "Item"
}

// Classify decides the widget for a value at a path. First match wins:
// arrays and objects recurse, booleans toggle, numbers (including fields
// that were numeric in the original document but have been cleared) get a
// numeric input, image-looking strings get an image widget, long or
// multi-line strings a textarea, everything else a single-line input.
func Classify(label string, p content.Path, value, original any) WidgetKind {
	switch value.(type) {
	case []any:
		return WidgetList
	case map[string]any:
		return WidgetGroup
	case bool:
		return WidgetToggle
	}

	if isNumber(value) || isNumber(original) {
		return WidgetNumber
	}

	if isImageField(label, p) {
		if uploadOnly(p) {
			return WidgetImageUpload
		}
		return WidgetImage
	}

	s := coerce(value)
	if len(s) > textareaThreshold || strings.Contains(s, "\n") {
		return WidgetTextarea
	}
	return WidgetText
}

func isNumber(v any) bool {
	_, ok := v.(float64)
	return ok
}

// isImageField applies the name heuristics: "alt" and "label" are never
// images; anything mentioning "avatar" or "image", a bare "src", or a
// field whose grandparent segment mentions "image" is.
func isImageField(label string, p content.Path) bool {
	key := strings.ToLower(label)
	if key == "alt" || key == "label" {
		return false
	}
	if strings.Contains(key, "avatar") {
		return true
	}
	if strings.Contains(key, "image") || key == "src" {
		return true
	}

	if len(p) >= 2 {
		prev := p[len(p)-2]
		if !prev.InArray && strings.Contains(strings.ToLower(prev.Key), "image") {
			return true
		}
	}
	return false
}

// uploadOnly restricts certain image fields to file upload with no manual
// URL entry: the product image, testimonial card images, and the hero
// testimonial avatar.
func uploadOnly(p content.Path) bool {
	if p.String() == "hero.testimonial.avatar" {
		return true
	}

	var hasProductImage, hasTestimonials, hasImage bool
	for _, s := range p {
		if s.InArray {
			continue
		}
		switch s.Key {
		case "productImage":
			hasProductImage = true
		case "testimonials":
			hasTestimonials = true
		case "image":
			hasImage = true
		}
	}
	if hasProductImage {
		return true
	}
	if hasTestimonials && hasImage && len(p) > 0 {
		last := p[len(p)-1]
		return !last.InArray && last.Key == "src"
	}
	return false
}

// coerce renders a scalar for string-widget purposes; nil becomes "".
func coerce(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return ""
	}
}
