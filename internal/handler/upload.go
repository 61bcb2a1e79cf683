// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/olegiv/landingpress/internal/imaging"
	"github.com/olegiv/landingpress/internal/util"
)

// UploadHandler accepts dashboard image uploads and runs them through the
// imaging pipeline.
type UploadHandler struct {
	processor *imaging.Processor
	maxBytes  int64
}

// NewUploadHandler creates an upload handler. maxBytes caps the accepted
// request size.
func NewUploadHandler(processor *imaging.Processor, maxBytes int64) *UploadHandler {
	return &UploadHandler{processor: processor, maxBytes: maxBytes}
}

// Upload handles POST /api/upload-image - accepts a multipart "file" part,
// processes it, and returns the public path of the stored image.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "File too large.")
			return
		}
		writeJSONError(w, http.StatusBadRequest, "Invalid multipart form.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "No file uploaded.")
		return
	}
	defer file.Close()

	filename := util.UploadFilename(header.Filename)

	result, err := h.processor.Process(file, filename)
	if err != nil {
		slog.Warn("image upload rejected", "filename", header.Filename, "error", err)
		writeJSONError(w, http.StatusBadRequest, "Unsupported or corrupt image file.")
		return
	}

	variants := make([]map[string]any, 0, len(result.Variants))
	for _, v := range result.Variants {
		variants = append(variants, map[string]any{
			"path":  "/uploads/" + v.Filename,
			"width": v.Width,
		})
	}

	slog.Info("image uploaded", "filename", result.Filename, "size", result.Size)

	writeJSONSuccess(w, map[string]any{
		"path":     "/uploads/" + result.Filename,
		"filename": result.Filename,
		"width":    result.Width,
		"height":   result.Height,
		"mimeType": result.MimeType,
		"variants": variants,
	})
}
