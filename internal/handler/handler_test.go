// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/olegiv/landingpress/internal/cache"
	"github.com/olegiv/landingpress/internal/config"
	"github.com/olegiv/landingpress/internal/imaging"
	"github.com/olegiv/landingpress/internal/store"
	"github.com/olegiv/landingpress/internal/stripe"
)

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "correct-horse-battery"
)

// testDeps builds a full dependency set over temp files and an in-memory
// request pipeline. stripeSrv may be nil when a test never reaches Stripe.
func testDeps(t *testing.T, stripeSrv *httptest.Server) Deps {
	t.Helper()

	dir := t.TempDir()

	db, err := store.NewDB(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	var clientOpts []stripe.Option
	if stripeSrv != nil {
		clientOpts = []stripe.Option{
			stripe.WithBaseURL(stripeSrv.URL),
			stripe.WithHTTPClient(stripeSrv.Client()),
		}
	}

	memCache := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = memCache.Close() })

	cfg := &config.Config{
		Env:            "development",
		AdminEmail:     testAdminEmail,
		AdminPassword:  testAdminPassword,
		UploadsDir:     filepath.Join(dir, "uploads"),
		UploadMaxBytes: 8 << 20,
	}

	return Deps{
		Cfg:          cfg,
		DB:           db,
		ContentFile:  store.NewContentFile(filepath.Join(dir, "landing-content.json")),
		Secrets:      store.NewSecretsFile(filepath.Join(dir, "stripe-secrets.json")),
		Orders:       store.NewOrderStore(db),
		Clients:      stripe.NewCache(clientOpts...),
		ContentCache: cache.NewContentCache(memCache, time.Minute),
		Processor:    imaging.NewProcessor(filepath.Join(dir, "uploads")),
	}
}

// seedContent writes a small but representative content document.
func seedContent(t *testing.T, d Deps) {
	t.Helper()
	doc := map[string]any{
		"hero": map[string]any{
			"title":    "Glow Serum",
			"subtitle": "Wake up brighter",
		},
		"checkout": map[string]any{
			"title":    "Glow Serum",
			"currency": "USD",
			"stripe": map[string]any{
				"mode":               "test",
				"testPublishableKey": "pk_test_1",
				"livePublishableKey": "",
			},
			"options": []any{
				map[string]any{
					"id":    "starter",
					"name":  "Starter",
					"price": float64(19.99),
					"image": map[string]any{"path": "", "alt": ""},
				},
			},
		},
	}
	if err := d.ContentFile.Save(context.Background(), doc); err != nil {
		t.Fatalf("seeding content: %v", err)
	}
}

// seedSecrets stores a test-mode secret key.
func seedSecrets(t *testing.T, d Deps) {
	t.Helper()
	err := d.Secrets.Save(context.Background(), store.StripeSecrets{TestSecretKey: "sk_test_123"})
	if err != nil {
		t.Fatalf("seeding secrets: %v", err)
	}
}

// decodeBody decodes a JSON response body into a map.
func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response %q: %v", rr.Body.String(), err)
	}
	return body
}
