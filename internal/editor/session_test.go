// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

import (
	"context"
	"errors"
	"testing"

	"github.com/olegiv/landingpress/internal/content"
)

type fakeStore struct {
	raw     []byte
	saved   map[string]any
	saveErr error
	loadErr error
}

func (f *fakeStore) Load(ctx context.Context) ([]byte, error) {
	return f.raw, f.loadErr
}

func (f *fakeStore) Save(ctx context.Context, doc map[string]any) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = doc
	return nil
}

const testDoc = `{
  "hero": {
    "title": "Glow up",
    "subtitle": "Better skin"
  },
  "branding": {
    "saleBanners": ["Spring sale"]
  },
  "checkout": {
    "options": [
      {"id": "starter", "price": 29.99, "quantity": 1}
    ]
  }
}`

func loadedSession(t *testing.T) (*Session, *fakeStore) {
	t.Helper()
	store := &fakeStore{raw: []byte(testDoc)}
	s := NewSession(store)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s, store
}

func TestSessionCleanAfterLoad(t *testing.T) {
	s, _ := loadedSession(t)
	if s.Dirty() {
		t.Error("dirty immediately after load")
	}
}

func TestSessionDirtyAfterEdit(t *testing.T) {
	s, _ := loadedSession(t)

	s.Apply(content.ParsePath("hero.title"), "New title")
	if !s.Dirty() {
		t.Error("not dirty after edit")
	}

	// Reverting to the original value clears the flag again.
	s.Apply(content.ParsePath("hero.title"), "Glow up")
	if s.Dirty() {
		t.Error("dirty after reverting edit")
	}
}

func TestSessionDirtyAfterRemoveAndAdd(t *testing.T) {
	s, _ := loadedSession(t)

	s.Remove(content.ParsePath("branding.saleBanners.0"))
	if !s.Dirty() {
		t.Error("not dirty after remove")
	}

	s, _ = loadedSession(t)
	s.AddItem(content.ParsePath("checkout.options"))
	if !s.Dirty() {
		t.Error("not dirty after add")
	}
	opts, _ := content.Get(s.Draft(), content.ParsePath("checkout.options"))
	if len(opts.([]any)) != 2 {
		t.Errorf("len(options) = %d, want 2", len(opts.([]any)))
	}
}

func TestSessionApplyNumber(t *testing.T) {
	s, _ := loadedSession(t)
	pricePath := content.ParsePath("checkout.options.0.price")

	s.ApplyNumber(pricePath, "49.5")
	if v, _ := content.Get(s.Draft(), pricePath); v != float64(49.5) {
		t.Errorf("price = %v, want 49.5", v)
	}

	// Non-numeric input is ignored.
	s.ApplyNumber(pricePath, "abc")
	if v, _ := content.Get(s.Draft(), pricePath); v != float64(49.5) {
		t.Errorf("price after bad input = %v, want unchanged 49.5", v)
	}

	// Empty string is a valid cleared value.
	s.ApplyNumber(pricePath, "")
	if v, _ := content.Get(s.Draft(), pricePath); v != "" {
		t.Errorf("cleared price = %v, want empty string", v)
	}
	// And the field still classifies as numeric against the original.
	orig, _ := content.Get(s.Original(), pricePath)
	if Classify("price", pricePath, "", orig) != WidgetNumber {
		t.Error("cleared numeric field lost its numeric widget")
	}
}

func TestSessionSavePromotesDraft(t *testing.T) {
	s, store := loadedSession(t)

	s.Apply(content.ParsePath("hero.title"), "Saved title")
	if err := s.Save(context.Background()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if s.Dirty() {
		t.Error("dirty after save")
	}
	if store.saved["hero"].(map[string]any)["title"] != "Saved title" {
		t.Error("store did not receive the draft")
	}

	// Further edits must not leak into the promoted original.
	s.Apply(content.ParsePath("hero.title"), "Another edit")
	if v, _ := content.Get(s.Original(), content.ParsePath("hero.title")); v != "Saved title" {
		t.Errorf("original title = %v, want Saved title", v)
	}
}

func TestSessionSaveErrorKeepsDirty(t *testing.T) {
	s, store := loadedSession(t)
	store.saveErr = errors.New("disk full")

	s.Apply(content.ParsePath("hero.title"), "Doomed edit")
	if err := s.Save(context.Background()); err == nil {
		t.Fatal("Save succeeded with failing store")
	}
	if !s.Dirty() {
		t.Error("failed save cleared the dirty flag")
	}
}

func TestSessionDiscard(t *testing.T) {
	s, _ := loadedSession(t)

	s.Apply(content.ParsePath("hero.title"), "Throwaway")
	s.Discard()

	if s.Dirty() {
		t.Error("dirty after discard")
	}
	if v, _ := content.Get(s.Draft(), content.ParsePath("hero.title")); v != "Glow up" {
		t.Errorf("title after discard = %v, want original", v)
	}
}

func TestSessionSaveBeforeLoad(t *testing.T) {
	s := NewSession(&fakeStore{})
	if err := s.Save(context.Background()); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Save before Load = %v, want ErrNotLoaded", err)
	}
}

func TestSessionLoadRejectsInvalidJSON(t *testing.T) {
	s := NewSession(&fakeStore{raw: []byte("{broken")})
	if err := s.Load(context.Background()); err == nil {
		t.Error("Load accepted invalid JSON")
	}
}
