// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content implements path-addressed operations over the schemaless
// JSON content document that drives the landing page. Documents are plain
// decoded JSON values (map[string]any, []any, string, float64, bool, nil);
// all mutating operations return a new document and shallow-copy only the
// containers along the edited path, so untouched siblings are shared.
package content

import (
	"strconv"
	"strings"
)

// Step addresses one level of a document: an object key or an array index.
type Step struct {
	Key     string
	Index   int
	InArray bool
}

// Key returns a Step addressing an object field.
func Key(k string) Step {
	return Step{Key: k}
}

// Index returns a Step addressing an array element.
func Index(i int) Step {
	return Step{Index: i, InArray: true}
}

// Path is an ordered sequence of steps identifying a node in a document.
// A path is only meaningful against a specific document snapshot: array
// indices shift after a deletion or insertion at a lower index.
type Path []Step

// Child returns a new path extended with an object key.
func (p Path) Child(k string) Path {
	next := make(Path, len(p), len(p)+1)
	copy(next, p)
	return append(next, Key(k))
}

// At returns a new path extended with an array index.
func (p Path) At(i int) Path {
	next := make(Path, len(p), len(p)+1)
	copy(next, p)
	return append(next, Index(i))
}

// String renders the path in dotted notation ("checkout.options.0.price").
func (p Path) String() string {
	var b strings.Builder
	for i, s := range p {
		if i > 0 {
			b.WriteByte('.')
		}
		if s.InArray {
			b.WriteString(strconv.Itoa(s.Index))
		} else {
			b.WriteString(s.Key)
		}
	}
	return b.String()
}

// ParsePath parses dotted notation into a Path. Purely numeric segments are
// treated as array indices.
func ParsePath(s string) Path {
	if s == "" {
		return nil
	}
	segments := strings.Split(s, ".")
	p := make(Path, 0, len(segments))
	for _, seg := range segments {
		if i, err := strconv.Atoi(seg); err == nil && seg == strconv.Itoa(i) && i >= 0 {
			p = append(p, Index(i))
			continue
		}
		p = append(p, Key(seg))
	}
	return p
}

// Get returns the value at path, descending through objects and arrays.
// A missing or mistyped segment yields (nil, false); Get never panics.
func Get(doc any, p Path) (any, bool) {
	cur := doc
	for _, s := range p {
		switch node := cur.(type) {
		case map[string]any:
			if s.InArray {
				return nil, false
			}
			v, ok := node[s.Key]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			if !s.InArray || s.Index < 0 || s.Index >= len(node) {
				return nil, false
			}
			cur = node[s.Index]
		default:
			return nil, false
		}
	}
	return cur, true
}

// Set returns a new document with value placed at path. Every container
// along the path is shallow-copied; an empty path replaces the document
// wholesale. Missing intermediate containers are created to match the next
// step (object for a key, array grown with nils for an index).
func Set(doc any, p Path, value any) any {
	if len(p) == 0 {
		return value
	}

	head, tail := p[0], p[1:]
	if head.InArray {
		src, _ := doc.([]any)
		size := len(src)
		if head.Index >= size {
			size = head.Index + 1
		}
		clone := make([]any, size)
		copy(clone, src)
		clone[head.Index] = Set(clone[head.Index], tail, value)
		return clone
	}

	src, _ := doc.(map[string]any)
	clone := make(map[string]any, len(src)+1)
	for k, v := range src {
		clone[k] = v
	}
	clone[head.Key] = Set(clone[head.Key], tail, value)
	return clone
}

// Delete returns a new document with the node at path removed. When the
// parent is an array the element is spliced out, shifting later siblings
// down by one index; callers must not reuse sibling paths captured before
// the delete. A missing path returns the document unchanged.
func Delete(doc any, p Path) any {
	if len(p) == 0 {
		return doc
	}

	head, tail := p[0], p[1:]
	if head.InArray {
		src, ok := doc.([]any)
		if !ok || head.Index < 0 || head.Index >= len(src) {
			return doc
		}
		if len(tail) == 0 {
			clone := make([]any, 0, len(src)-1)
			clone = append(clone, src[:head.Index]...)
			clone = append(clone, src[head.Index+1:]...)
			return clone
		}
		clone := make([]any, len(src))
		copy(clone, src)
		clone[head.Index] = Delete(clone[head.Index], tail)
		return clone
	}

	src, ok := doc.(map[string]any)
	if !ok {
		return doc
	}
	if _, exists := src[head.Key]; !exists {
		return doc
	}
	clone := make(map[string]any, len(src))
	for k, v := range src {
		clone[k] = v
	}
	if len(tail) == 0 {
		delete(clone, head.Key)
		return clone
	}
	clone[head.Key] = Delete(clone[head.Key], tail)
	return clone
}

// Append returns a new document with value appended to the array at path.
// A missing or non-array node at path is replaced by a one-element array.
func Append(doc any, p Path, value any) any {
	existing, _ := Get(doc, p)
	src, _ := existing.([]any)
	next := make([]any, 0, len(src)+1)
	next = append(next, src...)
	next = append(next, value)
	return Set(doc, p, next)
}
