// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/landingpress/internal/cache"
	"github.com/olegiv/landingpress/internal/content"
	"github.com/olegiv/landingpress/internal/editor"
	"github.com/olegiv/landingpress/internal/store"
)

// maxContentBytes limits the size of an uploaded content document.
const maxContentBytes = 2 << 20 // 2MB

// htmlSanitizer strips unsafe markup from string leaves before the
// document is saved. UGCPolicy allows the formatting tags the landing
// sections render while removing scripts and event handlers.
var htmlSanitizer = bluemonday.UGCPolicy()

// ContentHandler serves and updates the landing page content document.
type ContentHandler struct {
	file  *store.ContentFile
	cache *cache.ContentCache
}

// NewContentHandler creates a content handler.
func NewContentHandler(file *store.ContentFile, contentCache *cache.ContentCache) *ContentHandler {
	return &ContentHandler{file: file, cache: contentCache}
}

// Get handles GET /api/content - returns the whole content document.
func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.cache != nil {
		if data, ok := h.cache.Get(r.Context()); ok {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(data)
			return
		}
	}

	raw, err := h.file.Load(r.Context())
	if errors.Is(err, store.ErrContentMissing) {
		writeJSONError(w, http.StatusNotFound, "Content not found.")
		return
	}
	if err != nil {
		slog.Error("loading content document", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to load content.")
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(r.Context(), raw); err != nil {
			slog.Warn("caching content document", "error", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(raw)
}

// Put handles PUT /api/content - replaces the content document wholesale.
// String leaves are sanitized and the document is normalized before the
// atomic write; the response cache is invalidated on success.
func (h *ContentHandler) Put(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxContentBytes+1))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Failed to read request body.")
		return
	}
	if len(body) > maxContentBytes {
		writeJSONError(w, http.StatusRequestEntityTooLarge, "Content document too large.")
		return
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid JSON.")
		return
	}

	doc, ok := decoded.(map[string]any)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "Content must be a JSON object.")
		return
	}

	sanitized, _ := sanitizeValue(doc).(map[string]any)
	normalized, _ := content.Normalize(sanitized).(map[string]any)

	if err := h.file.Save(r.Context(), normalized); err != nil {
		slog.Error("saving content document", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to save content.")
		return
	}

	if h.cache != nil {
		if err := h.cache.Invalidate(r.Context()); err != nil {
			slog.Warn("invalidating content cache", "error", err)
		}
	}

	writeJSONSuccess(w, nil)
}

// Form handles GET /api/content/form - returns the editor form tree built
// from the stored document, with field order following the file.
func (h *ContentHandler) Form(w http.ResponseWriter, r *http.Request) {
	raw, err := h.file.Load(r.Context())
	if errors.Is(err, store.ErrContentMissing) {
		writeJSONError(w, http.StatusNotFound, "Content not found.")
		return
	}
	if err != nil {
		slog.Error("loading content document", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to load content.")
		return
	}

	order, err := content.ParseDocument(raw)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Content document is not valid JSON.")
		return
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Content document is not valid JSON.")
		return
	}

	writeJSON(w, http.StatusOK, editor.Build(doc, doc, order))
}

// sanitizeValue walks a decoded JSON value and sanitizes every string leaf.
func sanitizeValue(v any) any {
	switch val := v.(type) {
	case string:
		return htmlSanitizer.Sanitize(val)
	case map[string]any:
		for k, child := range val {
			val[k] = sanitizeValue(child)
		}
		return val
	case []any:
		for i, child := range val {
			val[i] = sanitizeValue(child)
		}
		return val
	default:
		return v
	}
}
