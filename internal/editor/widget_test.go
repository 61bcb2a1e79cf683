// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

import (
	"strings"
	"testing"

	"github.com/olegiv/landingpress/internal/content"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		path     string
		value    any
		original any
		want     WidgetKind
	}{
		{"array", "cards", "testimonials.cards", []any{}, nil, WidgetList},
		{"object", "hero", "hero", map[string]any{}, nil, WidgetGroup},
		{"bool", "enabled", "hero.enabled", true, nil, WidgetToggle},
		{"number", "price", "checkout.options.0.price", float64(29.99), nil, WidgetNumber},
		{"cleared number keeps numeric widget", "price", "checkout.options.0.price", "", float64(29.99), WidgetNumber},
		{"short string", "title", "hero.title", "Glow up", nil, WidgetText},
		{"string with newline", "body", "faq.body", "line one\nline two", nil, WidgetTextarea},
		{"long string", "body", "faq.body", strings.Repeat("x", 161), nil, WidgetTextarea},
		{"boundary string stays text", "body", "faq.body", strings.Repeat("x", 160), nil, WidgetText},
		{"image by label", "backgroundImage", "hero.backgroundImage", "/img/bg.webp", nil, WidgetImage},
		{"avatar", "authorAvatar", "faq.authorAvatar", "", nil, WidgetImage},
		{"src under image parent", "src", "branding.favicon.src", "", nil, WidgetImage},
		{"alt never image", "alt", "hero.image.alt", "", nil, WidgetText},
		{"label never image", "label", "hero.image.label", "", nil, WidgetText},
		{"product image upload only", "productImage", "checkout.productImage", "", nil, WidgetImageUpload},
		{"testimonial card image upload only", "src", "testimonials.cards.0.image.src", "", nil, WidgetImageUpload},
		{"hero testimonial avatar upload only", "avatar", "hero.testimonial.avatar", "", nil, WidgetImageUpload},
		{"nil leaf", "note", "footer.note", nil, nil, WidgetText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.label, content.ParsePath(tt.path), tt.value, tt.original)
			if got != tt.want {
				t.Errorf("Classify(%q, %s) = %v, want %v", tt.label, tt.path, got, tt.want)
			}
		})
	}
}

func TestHidden(t *testing.T) {
	for _, dotted := range []string{
		"hero.testimonial.rating",
		"testimonials.rating",
		"hero.stripeCheckoutEnabled",
		"checkout.stripe",
	} {
		if !Hidden(dotted) {
			t.Errorf("Hidden(%q) = false", dotted)
		}
	}
	if Hidden("hero.title") {
		t.Error("hero.title unexpectedly hidden")
	}
}

func TestItemLabel(t *testing.T) {
	tests := []struct {
		key, fallback, want string
	}{
		{"cards", "cards", "Card"},
		{"saleBanners", "banners", "Banner"},
		{"options", "options", "Option"},
		{"blocks", "blocks", "Block"},
		{"bullets", "bullets", "bullets"},
		{"", "", "Item"},
	}
	for _, tt := range tests {
		if got := ItemLabel(tt.key, tt.fallback); got != tt.want {
			t.Errorf("ItemLabel(%q, %q) = %q, want %q", tt.key, tt.fallback, got, tt.want)
		}
	}
}
