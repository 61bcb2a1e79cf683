// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"errors"
	"log/slog"
)

// starterDocument is the content written by SeedContent for a fresh
// install. It covers every section the editor knows how to render so
// the dashboard is usable before any real copy exists.
func starterDocument() map[string]any {
	return map[string]any{
		"branding": map[string]any{
			"siteTitle":   "Your Product",
			"logoText":    "Your Product",
			"faviconUrl":  "",
			"saleBanners": []any{},
		},
		"hero": map[string]any{
			"eyebrow":  "New",
			"title":    "Launch your landing page",
			"subtitle": "Edit every section of this page from the dashboard.",
			"ctaLabel": "Buy now",
			"image":    map[string]any{"src": "", "alt": ""},
		},
		"benefits": map[string]any{
			"title": "Why it works",
			"items": []any{
				map[string]any{"title": "Fast", "description": "Single JSON document, no page builder."},
				map[string]any{"title": "Simple", "description": "One admin, one page, one checkout."},
			},
		},
		"faq": map[string]any{
			"title": "Questions",
			"items": []any{
				map[string]any{"question": "How do I change this text?", "answer": "Open the dashboard and edit any field."},
			},
		},
		"checkout": map[string]any{
			"title":    "Get started",
			"subtitle": "One-time purchase, instant access.",
			"options": []any{
				map[string]any{
					"id":          "starter",
					"name":        "Starter",
					"description": "Everything you need to launch.",
					"price":       49.99,
					"currency":    "usd",
				},
			},
			"stripe": map[string]any{
				"mode":               "test",
				"testPublishableKey": "",
				"livePublishableKey": "",
			},
			"thankYou": map[string]any{
				"title":   "Thank you!",
				"message": "Your order is confirmed. Check your inbox for details.",
			},
		},
		"footer": map[string]any{
			"text": "© Your Company",
		},
		"privacyPolicy":  map[string]any{"title": "Privacy Policy", "lastUpdated": "", "blocks": []any{}},
		"termsOfService": map[string]any{"title": "Terms of Service", "lastUpdated": "", "blocks": []any{}},
	}
}

// SeedContent writes the starter document when seeding is enabled and no
// content file exists yet. An existing file is never overwritten.
func SeedContent(ctx context.Context, file *ContentFile, doSeed bool) error {
	if !doSeed {
		return nil
	}

	if _, err := file.Load(ctx); err == nil {
		return nil
	} else if !errors.Is(err, ErrContentMissing) {
		return err
	}

	slog.Info("seeding starter content", "path", file.Path())
	return file.Save(ctx, starterDocument())
}
