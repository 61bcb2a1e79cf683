// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func TestContentFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "landing-content.json")
	cf := NewContentFile(path)
	ctx := context.Background()

	if _, err := cf.Load(ctx); !errors.Is(err, ErrContentMissing) {
		t.Fatalf("Load on missing file = %v, want ErrContentMissing", err)
	}

	doc := map[string]any{"hero": map[string]any{"title": "Glow up"}}
	if err := cf.Save(ctx, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, err := cf.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// Pretty-printed with two-space indent and a trailing newline.
	want := "{\n  \"hero\": {\n    \"title\": \"Glow up\"\n  }\n}\n"
	if string(raw) != want {
		t.Errorf("file contents = %q, want %q", raw, want)
	}
}

func TestContentFileStripsBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "landing-content.json")
	bom := []byte{0xEF, 0xBB, 0xBF}
	if err := os.WriteFile(path, append(bom, []byte(`{"a": 1}`)...), 0o644); err != nil {
		t.Fatal(err)
	}

	raw, err := NewContentFile(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if strings.HasPrefix(string(raw), "\xef\xbb\xbf") {
		t.Error("BOM not stripped")
	}
}

func TestContentFileSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	cf := NewContentFile(filepath.Join(dir, "landing-content.json"))

	if err := cf.Save(context.Background(), map[string]any{"a": float64(1)}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory contains %v, want only the content file", names)
	}
}

func TestSecretsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stripe-secrets.json")
	sf := NewSecretsFile(path)
	ctx := context.Background()

	// Missing file is empty keys, not an error.
	secrets, err := sf.Load(ctx)
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if secrets.TestSecretKey != "" || secrets.LiveSecretKey != "" {
		t.Errorf("secrets = %+v, want empty", secrets)
	}

	if err := sf.Save(ctx, StripeSecrets{TestSecretKey: "  sk_test_1  ", LiveSecretKey: "sk_live_1"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	secrets, err = sf.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if secrets.TestSecretKey != "sk_test_1" {
		t.Errorf("test key = %q, want trimmed", secrets.TestSecretKey)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("secrets file mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestSecretsKeyForMode(t *testing.T) {
	secrets := StripeSecrets{TestSecretKey: "sk_test_1", LiveSecretKey: "sk_live_1"}
	if secrets.KeyForMode("live") != "sk_live_1" {
		t.Error("live mode key")
	}
	if secrets.KeyForMode("test") != "sk_test_1" {
		t.Error("test mode key")
	}
	if secrets.KeyForMode("") != "sk_test_1" {
		t.Error("unknown mode should fall back to test")
	}
}

func TestOrderStoreLifecycle(t *testing.T) {
	orders := NewOrderStore(testDB(t))
	ctx := context.Background()

	order := &Order{
		SessionID:  "sess_1",
		OptionID:   "starter",
		OptionName: "Starter",
		Amount:     2999,
		Currency:   "usd",
	}
	if err := orders.Create(ctx, order); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if order.ID == "" {
		t.Fatal("order not assigned an id")
	}

	if err := orders.SetPhone(ctx, "sess_1", "+15550100"); err != nil {
		t.Fatalf("SetPhone: %v", err)
	}
	if err := orders.SetStatus(ctx, "sess_1", "complete", "paid", "pi_1"); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	got, err := orders.BySession(ctx, "sess_1")
	if err != nil {
		t.Fatalf("BySession: %v", err)
	}
	if got.Phone != "+15550100" || got.Status != "complete" || got.PaymentIntentID != "pi_1" {
		t.Errorf("order = %+v", got)
	}
	if got.Quantity != 1 {
		t.Errorf("quantity = %d, want defaulted 1", got.Quantity)
	}

	if _, err := orders.BySession(ctx, "sess_missing"); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("missing order err = %v", err)
	}
	if err := orders.SetPhone(ctx, "sess_missing", "x"); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("SetPhone on missing order = %v", err)
	}
}

func TestOrderStorePruneStale(t *testing.T) {
	db := testDB(t)
	orders := NewOrderStore(db)
	ctx := context.Background()

	stale := &Order{SessionID: "sess_old"}
	fresh := &Order{SessionID: "sess_new"}
	paid := &Order{SessionID: "sess_paid", Status: "complete"}
	for _, o := range []*Order{stale, fresh, paid} {
		if err := orders.Create(ctx, o); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	old := time.Now().UTC().Add(-48 * time.Hour)
	if _, err := db.ExecContext(ctx, `UPDATE orders SET created_at = ? WHERE session_id IN ('sess_old', 'sess_paid')`, old); err != nil {
		t.Fatal(err)
	}

	n, err := orders.PruneStale(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("PruneStale: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d orders, want only the stale open one", n)
	}

	// Completed orders survive regardless of age.
	if _, err := orders.BySession(ctx, "sess_paid"); err != nil {
		t.Errorf("paid order pruned: %v", err)
	}
	if _, err := orders.BySession(ctx, "sess_old"); !errors.Is(err, ErrOrderNotFound) {
		t.Error("stale open order not pruned")
	}
}

func TestEventStore(t *testing.T) {
	events := NewEventStore(testDB(t))
	ctx := context.Background()

	if err := events.Insert(ctx, Event{Level: EventLevelError, Message: "save failed"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := events.Insert(ctx, Event{Level: EventLevelWarning, Category: "auth", Message: "login throttled"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	recent, err := events.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("len(recent) = %d", len(recent))
	}
	if recent[0].Message != "login throttled" {
		t.Errorf("newest first: got %q", recent[0].Message)
	}
	if recent[1].Category != "general" {
		t.Errorf("default category = %q", recent[1].Category)
	}

	n, err := events.Prune(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 2 {
		t.Errorf("pruned %d events, want 2", n)
	}
}
