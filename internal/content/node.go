// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Kind discriminates the three JSON shapes the editor understands.
type Kind int

const (
	KindScalar Kind = iota
	KindList
	KindObject
)

// Node is a tagged variant over a JSON document. Unlike a bare
// map[string]any it preserves object key order, which the form builder
// relies on to keep field ordering stable across sessions.
type Node interface {
	Kind() Kind
	// Value converts the node back to a plain decoded-JSON value.
	Value() any
}

// Scalar holds a string, float64, bool, or nil leaf.
type Scalar struct {
	Val any
}

// List holds an ordered sequence of child nodes.
type List struct {
	Items []Node
}

// Object holds named children in document order.
type Object struct {
	Keys   []string
	Fields map[string]Node
}

func (Scalar) Kind() Kind { return KindScalar }
func (List) Kind() Kind   { return KindList }
func (Object) Kind() Kind { return KindObject }

func (s Scalar) Value() any {
	return s.Val
}

func (l List) Value() any {
	out := make([]any, len(l.Items))
	for i, item := range l.Items {
		out[i] = item.Value()
	}
	return out
}

func (o Object) Value() any {
	out := make(map[string]any, len(o.Keys))
	for _, k := range o.Keys {
		out[k] = o.Fields[k].Value()
	}
	return out
}

// Get returns the named field and whether it exists.
func (o Object) Get(key string) (Node, bool) {
	n, ok := o.Fields[key]
	return n, ok
}

// FromValue builds a Node tree from a decoded JSON value. Object key order
// is not recoverable from a map; use ParseDocument when order matters.
func FromValue(v any) Node {
	switch val := v.(type) {
	case []any:
		items := make([]Node, len(val))
		for i, item := range val {
			items[i] = FromValue(item)
		}
		return List{Items: items}
	case map[string]any:
		obj := Object{Fields: make(map[string]Node, len(val))}
		for k, child := range val {
			obj.Keys = append(obj.Keys, k)
			obj.Fields[k] = FromValue(child)
		}
		return obj
	default:
		return Scalar{Val: val}
	}
}

// ParseDocument decodes raw JSON into a Node tree, preserving object key
// order as written in the source.
func ParseDocument(raw []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(stripBOM(raw)))
	dec.UseNumber()
	node, err := decodeNode(dec)
	if err != nil {
		return nil, fmt.Errorf("parsing content document: %w", err)
	}
	// Reject trailing garbage after the top-level value.
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("parsing content document: unexpected trailing data")
	}
	return node, nil
}

func decodeNode(dec *json.Decoder) (Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeFromToken(dec, tok)
}

func decodeFromToken(dec *json.Decoder, tok json.Token) (Node, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := Object{Fields: make(map[string]Node)}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is not a string")
				}
				child, err := decodeNode(dec)
				if err != nil {
					return nil, err
				}
				if _, seen := obj.Fields[key]; !seen {
					obj.Keys = append(obj.Keys, key)
				}
				obj.Fields[key] = child
			}
			// Consume closing '}'
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			list := List{}
			for dec.More() {
				child, err := decodeNode(dec)
				if err != nil {
					return nil, err
				}
				list.Items = append(list.Items, child)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return list, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return Scalar{Val: f}, nil
	default:
		return Scalar{Val: t}, nil
	}
}

// stripBOM removes a UTF-8 byte order mark, which some editors prepend to
// the content file.
func stripBOM(raw []byte) []byte {
	return bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})
}
