// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestContentGetMissing(t *testing.T) {
	d := testDeps(t, nil)
	h := NewContentHandler(d.ContentFile, d.ContentCache)

	rr := httptest.NewRecorder()
	h.Get(rr, httptest.NewRequest(http.MethodGet, "/api/content", nil))

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestContentGet(t *testing.T) {
	d := testDeps(t, nil)
	seedContent(t, d)
	h := NewContentHandler(d.ContentFile, d.ContentCache)

	rr := httptest.NewRecorder()
	h.Get(rr, httptest.NewRequest(http.MethodGet, "/api/content", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	body := decodeBody(t, rr)
	hero, _ := body["hero"].(map[string]any)
	if hero["title"] != "Glow Serum" {
		t.Errorf("hero.title = %v, want Glow Serum", hero["title"])
	}

	// Second request is served from the cache
	if _, ok := d.ContentCache.Get(context.Background()); !ok {
		t.Error("document not cached after first request")
	}
	rr = httptest.NewRecorder()
	h.Get(rr, httptest.NewRequest(http.MethodGet, "/api/content", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("cached status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestContentPutRejectsNonObject(t *testing.T) {
	d := testDeps(t, nil)
	h := NewContentHandler(d.ContentFile, d.ContentCache)

	tests := []struct {
		name string
		body string
	}{
		{"array", `[1, 2, 3]`},
		{"string", `"hello"`},
		{"number", `42`},
		{"invalid json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/api/content", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			h.Put(rr, req)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestContentPutSanitizesAndNormalizes(t *testing.T) {
	d := testDeps(t, nil)
	seedContent(t, d)
	h := NewContentHandler(d.ContentFile, d.ContentCache)

	// Warm the cache so the save has something to invalidate
	getRR := httptest.NewRecorder()
	h.Get(getRR, httptest.NewRequest(http.MethodGet, "/api/content", nil))

	body := `{
		"hero": {"title": "Fresh <script>alert(1)</script> Start"},
		"checkout": {"options": [{"price": "29.99"}]}
	}`
	req := httptest.NewRequest(http.MethodPut, "/api/content", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Put(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	raw, err := d.ContentFile.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decoding saved document: %v", err)
	}

	hero := doc["hero"].(map[string]any)
	title, _ := hero["title"].(string)
	if strings.Contains(title, "<script>") {
		t.Errorf("script tag survived sanitization: %q", title)
	}

	// Normalization coerced the string price to a number
	checkout := doc["checkout"].(map[string]any)
	options := checkout["options"].([]any)
	opt := options[0].(map[string]any)
	if price, ok := opt["price"].(float64); !ok || price != 29.99 {
		t.Errorf("options[0].price = %v, want 29.99", opt["price"])
	}

	// Cache was invalidated
	if _, ok := d.ContentCache.Get(context.Background()); ok {
		t.Error("cache still holds the old document after save")
	}
}

func TestContentForm(t *testing.T) {
	d := testDeps(t, nil)
	seedContent(t, d)
	h := NewContentHandler(d.ContentFile, d.ContentCache)

	rr := httptest.NewRecorder()
	h.Form(rr, httptest.NewRequest(http.MethodGet, "/api/content/form", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var form struct {
		Sections []struct {
			Key string `json:"key"`
		} `json:"sections"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &form); err != nil {
		t.Fatalf("decoding form: %v", err)
	}
	if len(form.Sections) == 0 {
		t.Fatal("form has no sections")
	}

	keys := make([]string, 0, len(form.Sections))
	for _, s := range form.Sections {
		keys = append(keys, s.Key)
	}
	found := false
	for _, k := range keys {
		if k == "hero" {
			found = true
		}
	}
	if !found {
		t.Errorf("sections = %v, want to contain hero", keys)
	}
}

func TestContentFormMissing(t *testing.T) {
	d := testDeps(t, nil)
	h := NewContentHandler(d.ContentFile, d.ContentCache)

	rr := httptest.NewRecorder()
	h.Form(rr, httptest.NewRequest(http.MethodGet, "/api/content/form", nil))

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestSanitizeValue(t *testing.T) {
	in := map[string]any{
		"clean": "plain text",
		"nested": map[string]any{
			"bad": `<img src=x onerror="alert(1)">ok`,
		},
		"list":   []any{"<script>x</script>safe"},
		"number": float64(3),
		"flag":   true,
	}

	out := sanitizeValue(in).(map[string]any)

	if out["clean"] != "plain text" {
		t.Errorf("clean = %v", out["clean"])
	}
	nested := out["nested"].(map[string]any)
	if s := nested["bad"].(string); strings.Contains(s, "onerror") {
		t.Errorf("onerror survived: %q", s)
	}
	list := out["list"].([]any)
	if s := list[0].(string); strings.Contains(s, "<script>") {
		t.Errorf("script survived: %q", s)
	}
	if out["number"] != float64(3) || out["flag"] != true {
		t.Error("non-string leaves were modified")
	}
}
