// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/olegiv/landingpress/internal/content"
)

// Form is the renderable model of an editing session: one section per
// top-level key of the content document.
type Form struct {
	Sections []Section `json:"sections"`
}

// Section groups the fields under one top-level document key.
type Section struct {
	Key    string  `json:"key"`
	Fields []Field `json:"fields"`
}

// Field describes one editable node. Leaf widgets carry Value; groups
// carry Children; lists carry Items plus the caption new or existing
// elements are labeled with.
type Field struct {
	ID        string   `json:"id"`
	Label     string   `json:"label"`
	Path      string   `json:"path"`
	Widget    string   `json:"widget"`
	Value     any      `json:"value,omitempty"`
	ItemLabel string   `json:"itemLabel,omitempty"`
	Children  []Field  `json:"children,omitempty"`
	Items     []Field  `json:"items,omitempty"`
}

// Build walks the draft and produces the form model. The original document
// supplies type memory for cleared numeric fields, and order supplies the
// on-disk key order so field ordering stays stable across sessions; keys
// added since load sort alphabetically after the known ones.
func Build(draft, original any, order content.Node) Form {
	obj, ok := draft.(map[string]any)
	if !ok {
		return Form{}
	}

	form := Form{Sections: make([]Section, 0, len(obj))}
	for _, key := range orderedKeys(obj, order) {
		section := Section{Key: key}
		p := content.Path{content.Key(key)}
		if !Hidden(p.String()) {
			orig, _ := content.Get(original, p)
			section.Fields = append(section.Fields, buildField(key, p, obj[key], orig, original, childOrder(order, key)))
		}
		form.Sections = append(form.Sections, section)
	}
	return form
}

func buildField(label string, p content.Path, value, origValue, original any, order content.Node) Field {
	field := Field{
		ID:     fieldID(p),
		Label:  label,
		Path:   p.String(),
		Widget: Classify(label, p, value, origValue).String(),
	}

	switch v := value.(type) {
	case []any:
		key := ""
		if len(p) > 0 && !p[len(p)-1].InArray {
			key = p[len(p)-1].Key
		}
		field.ItemLabel = ItemLabel(key, label)
		for i, item := range v {
			itemPath := p.At(i)
			itemOrig, _ := content.Get(original, itemPath)
			child := buildField(label, itemPath, item, itemOrig, original, listOrder(order, i))
			child.Label = fmt.Sprintf("%s %d", field.ItemLabel, i+1)
			field.Items = append(field.Items, child)
		}
	case map[string]any:
		for _, key := range orderedKeys(v, order) {
			childPath := p.Child(key)
			if Hidden(childPath.String()) {
				continue
			}
			childOrig, _ := content.Get(original, childPath)
			field.Children = append(field.Children, buildField(key, childPath, v[key], childOrig, original, childOrder(order, key)))
		}
	default:
		field.Value = value
	}
	return field
}

// orderedKeys returns the object's keys, preferring the order recorded at
// load time, with unknown keys appended alphabetically.
func orderedKeys(obj map[string]any, order content.Node) []string {
	keys := make([]string, 0, len(obj))
	seen := make(map[string]struct{}, len(obj))

	if node, ok := order.(content.Object); ok {
		for _, k := range node.Keys {
			if _, exists := obj[k]; exists {
				keys = append(keys, k)
				seen[k] = struct{}{}
			}
		}
	}

	var rest []string
	for k := range obj {
		if _, done := seen[k]; !done {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func childOrder(order content.Node, key string) content.Node {
	if node, ok := order.(content.Object); ok {
		if child, exists := node.Get(key); exists {
			return child
		}
	}
	return nil
}

func listOrder(order content.Node, index int) content.Node {
	if node, ok := order.(content.List); ok && index < len(node.Items) {
		return node.Items[index]
	}
	return nil
}

// fieldID builds the DOM-style identifier for a path, matching the
// "dashboard__section__field" convention the dashboard uses.
func fieldID(p content.Path) string {
	var b strings.Builder
	b.WriteString("dashboard")
	for _, s := range p {
		b.WriteString("__")
		if s.InArray {
			fmt.Fprintf(&b, "%d", s.Index)
		} else {
			b.WriteString(s.Key)
		}
	}
	return b.String()
}
