// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Devflow - Devflow scaffolds content-management component schemas and reconciles them against a remote content API.
It normalizes loosely-typed component descriptions, diffs them against remote state, and applies them idempotently.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package schema defines the canonical component model and the closed
// vocabulary of field types the remote content API accepts.
package schema

import (
	"bytes"
	"fmt"
	"slices"

	json "github.com/goccy/go-json"
)

// FieldType is a field type identifier.
type FieldType string

const (
	TypeBloks      FieldType = "bloks"
	TypeText       FieldType = "text"
	TypeTextarea   FieldType = "textarea"
	TypeRichtext   FieldType = "richtext"
	TypeMarkdown   FieldType = "markdown"
	TypeNumber     FieldType = "number"
	TypeDatetime   FieldType = "datetime"
	TypeBoolean    FieldType = "boolean"
	TypeOption     FieldType = "option"
	TypeOptions    FieldType = "options"
	TypeAsset      FieldType = "asset"
	TypeMultiasset FieldType = "multiasset"
	TypeMultilink  FieldType = "multilink"
	TypeTable      FieldType = "table"
	TypeSection    FieldType = "section"
	TypeCustom     FieldType = "custom"
)

var canonicalTypes = []FieldType{
	TypeBloks,
	TypeText,
	TypeTextarea,
	TypeRichtext,
	TypeMarkdown,
	TypeNumber,
	TypeDatetime,
	TypeBoolean,
	TypeOption,
	TypeOptions,
	TypeAsset,
	TypeMultiasset,
	TypeMultilink,
	TypeTable,
	TypeSection,
	TypeCustom,
}

// CanonicalTypes returns the closed set of field types.
func CanonicalTypes() []FieldType {
	return slices.Clone(canonicalTypes)
}

// IsCanonical reports whether t belongs to the canonical set.
func (t FieldType) IsCanonical() bool {
	return slices.Contains(canonicalTypes, t)
}

// Field is one schema entry.
//
// RestrictType and ComponentWhitelist only carry meaning on bloks fields.
// A non-nil empty RestrictType means "any component of the whitelist".
type Field struct {
	Type               FieldType `json:"type"`
	DisplayName        string    `json:"display_name,omitempty"`
	Description        string    `json:"description,omitempty"`
	Required           bool      `json:"required,omitempty"`
	Options            *Object   `json:"options,omitempty"`
	DefaultValue       any       `json:"default_value,omitempty"`
	RestrictType       *string   `json:"restrict_type,omitempty"`
	ComponentWhitelist []string  `json:"component_whitelist,omitempty"`
}

// Entry pairs a field key with its definition.
type Entry struct {
	Key   string
	Field Field
}

// Schema maps field keys to fields. Keys are unique; order is kept for display.
type Schema []Entry

// Keys returns the field keys in order.
func (s Schema) Keys() []string {
	keys := make([]string, 0, len(s))
	for _, e := range s {
		keys = append(keys, e.Key)
	}
	return keys
}

// Index returns the position of key, or -1.
func (s Schema) Index(key string) int {
	return slices.IndexFunc(s, func(e Entry) bool { return e.Key == key })
}

// Get returns the field stored under key.
func (s Schema) Get(key string) (Field, bool) {
	if i := s.Index(key); i >= 0 {
		return s[i].Field, true
	}
	return Field{}, false
}

// Set replaces the field under key, or appends it.
func (s *Schema) Set(key string, f Field) {
	if i := s.Index(key); i >= 0 {
		(*s)[i].Field = f
		return
	}
	*s = append(*s, Entry{Key: key, Field: f})
}

// MarshalJSON encodes the schema as an object keyed by field name, in order.
func (s Schema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		fb, err := json.Marshal(e.Field)
		if err != nil {
			return nil, fmt.Errorf("encoding field %q: %w", e.Key, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(fb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Component is a named content-type definition. Name is its identity within a space.
type Component struct {
	Name        string  `json:"name"`
	DisplayName *string `json:"display_name,omitempty"`
	IsRoot      bool    `json:"is_root"`
	IsNestable  bool    `json:"is_nestable"`
	Schema      Schema  `json:"schema"`
}

// Object converts the component back into its loosely-typed form.
func (c Component) Object() (*Object, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("schema: encoding component %q: %w", c.Name, err)
	}
	return ParseObject(data)
}
