// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrContentMissing is returned by Load when no content file exists yet.
var ErrContentMissing = errors.New("store: content file does not exist")

// ContentFile persists the landing content document as a single JSON file.
// Saves are atomic (temp file plus rename) and serialized, so a reader
// never observes a half-written document.
type ContentFile struct {
	path string
	mu   sync.Mutex
}

// NewContentFile creates a store backed by the file at path.
func NewContentFile(path string) *ContentFile {
	return &ContentFile{path: path}
}

// Path returns the file's location.
func (c *ContentFile) Path() string {
	return c.path
}

// Load reads the raw document bytes with any UTF-8 BOM stripped.
func (c *ContentFile) Load(_ context.Context) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrContentMissing
		}
		return nil, fmt.Errorf("reading content file: %w", err)
	}
	return bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF}), nil
}

// Save writes the whole document, pretty-printed with two-space indent and
// a trailing newline so the file diffs cleanly under version control.
func (c *ContentFile) Save(_ context.Context, doc map[string]any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding content: %w", err)
	}
	data = append(data, '\n')

	c.mu.Lock()
	defer c.mu.Unlock()
	return writeFileAtomic(c.path, data, 0o644)
}

// writeFileAtomic writes data to a sibling temp file and renames it over
// path, so crashes leave either the old or the new file, never a mix.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing file: %w", err)
	}
	return nil
}
