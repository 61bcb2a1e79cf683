// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/olegiv/landingpress/internal/content"
)

// ContentStore is the persistence boundary of an editing session. Load
// returns the raw document bytes so key order survives into the form;
// Save persists the whole document wholesale.
type ContentStore interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, doc map[string]any) error
}

var (
	// ErrNotLoaded is returned by operations invoked before Load.
	ErrNotLoaded = errors.New("editor: session not loaded")
	// ErrNoContent is returned by Save when the draft is not an object.
	ErrNoContent = errors.New("editor: no content to save")
)

// Session holds the two snapshots of an editing session: the draft being
// mutated and the original it is compared against. All mutating operations
// go through path-addressed set/delete, so the draft is replaced rather
// than mutated in place and intermediate snapshots stay valid.
type Session struct {
	store    ContentStore
	draft    any
	original any
	order    content.Node
	loaded   bool
}

// NewSession creates a session over the given store. Call Load before
// anything else.
func NewSession(store ContentStore) *Session {
	return &Session{store: store}
}

// Load fetches the document, normalizes its shapes, and resets both
// snapshots to the normalized state. The dirty flag is false afterwards.
func (s *Session) Load(ctx context.Context) error {
	raw, err := s.store.Load(ctx)
	if err != nil {
		return err
	}

	node, err := content.ParseDocument(raw)
	if err != nil {
		return err
	}

	doc := content.Normalize(node.Value())
	s.draft = doc
	s.original = snapshot(doc)
	s.order = node
	s.loaded = true
	return nil
}

// Draft returns the current working copy.
func (s *Session) Draft() any {
	return s.draft
}

// Original returns the last-persisted snapshot.
func (s *Session) Original() any {
	return s.original
}

// Form builds the renderable form model for the current draft.
func (s *Session) Form() Form {
	return Build(s.draft, s.original, s.order)
}

// Apply writes a value at path, producing a new draft.
func (s *Session) Apply(p content.Path, value any) {
	s.draft = content.Set(s.draft, p, value)
}

// ApplyNumber handles numeric-input edits: an empty string is accepted as
// a cleared value, a parseable number is stored as float64, and anything
// else is ignored without touching the draft.
func (s *Session) ApplyNumber(p content.Path, raw string) {
	if raw == "" {
		s.Apply(p, "")
		return
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return
	}
	s.Apply(p, f)
}

// Remove deletes the node at path. Array siblings after the removed index
// shift down by one.
func (s *Session) Remove(p content.Path) {
	s.draft = content.Delete(s.draft, p)
}

// AddItem appends a freshly templated element to the array at path.
func (s *Session) AddItem(p content.Path) {
	current, _ := content.Get(s.draft, p)
	s.draft = content.Append(s.draft, p, content.NewItem(p, current))
}

// Dirty reports whether the draft differs from the original, compared by
// serialization. Reverting an edit back to the original value clears it.
func (s *Session) Dirty() bool {
	if !s.loaded {
		return false
	}
	draft, err1 := json.Marshal(s.draft)
	original, err2 := json.Marshal(s.original)
	if err1 != nil || err2 != nil {
		return true
	}
	return !bytes.Equal(draft, original)
}

// Save persists the draft wholesale and promotes it to the new original.
func (s *Session) Save(ctx context.Context) error {
	if !s.loaded {
		return ErrNotLoaded
	}
	doc, ok := s.draft.(map[string]any)
	if !ok {
		return ErrNoContent
	}
	if err := s.store.Save(ctx, doc); err != nil {
		return err
	}
	s.original = snapshot(s.draft)
	return nil
}

// Discard throws the draft away and restores the original snapshot.
func (s *Session) Discard() {
	s.draft = snapshot(s.original)
}

// snapshot deep-copies a document value so the two session snapshots never
// share containers.
func snapshot(doc any) any {
	if obj, ok := doc.(map[string]any); ok {
		return content.DeepCopy(obj)
	}
	return doc
}
