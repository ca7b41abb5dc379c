// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Devflow - Component schema scaffolding and reconciliation for headless CMS spaces

Copyright (C) 2025  Bartek Kus

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.

*/

// Package normalize coerces loosely-typed candidate components into the
// canonical schema model.
//
// Normalization is a two-phase transform: best-effort coercion of aliases,
// names and field types, followed by the strict allow-list projection in
// schema.Decode. It has no side effects and never mutates its input.
package normalize

import (
	"fmt"
	"strings"

	"github.com/bartekus/devflow/internal/schema"
)

type alias struct {
	from    string
	to      string
	boolean bool
}

// The first present spelling wins when several aliases target the same key.
var aliases = []alias{
	{from: "displayName", to: "display_name"},
	{from: "isRoot", to: "is_root", boolean: true},
	{from: "root", to: "is_root", boolean: true},
	{from: "isNestable", to: "is_nestable", boolean: true},
	{from: "nestable", to: "is_nestable", boolean: true},
}

// Normalize turns raw into a valid Component.
//
// A *schema.ValidationError is returned when raw is structurally unsalvageable,
// for example when schema is present but not a mapping.
func Normalize(raw *schema.Object) (schema.Component, error) {
	if raw == nil {
		return schema.Component{}, &schema.ValidationError{Path: "component", Expected: "mapping", Got: "null"}
	}

	obj := raw.Clone()
	resolveAliases(obj)

	name, isString := obj.String("name")
	if isString {
		name = SanitizeName(name)
		obj.Set("name", name)
	}

	if v, ok := obj.Get("schema"); ok && v != nil {
		// Non-mapping schemas are left for Decode to reject.
		if fields, ok := v.(*schema.Object); ok {
			out := schema.NewObject()
			for _, key := range fields.Keys() {
				fv, _ := fields.Get(key)
				f, err := normalizeField(name, key, fv)
				if err != nil {
					return schema.Component{}, err
				}
				out.Set(key, f)
			}
			obj.Set("schema", out)
		}
	}

	return schema.Decode(obj)
}

// Peek reports the sanitized name and root flag of raw without validating it.
func Peek(raw *schema.Object) (name string, isRoot bool) {
	if raw == nil {
		return "", false
	}
	obj := raw.Clone()
	resolveAliases(obj)
	n, _ := obj.String("name")
	v, _ := obj.Get("is_root")
	b, _ := v.(bool)
	return SanitizeName(n), b
}

// SanitizeName lowercases s and joins its whitespace-separated words with underscores.
func SanitizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "_")
}

// Truthy reports whether v is one of true, "true", 1 or "1".
func Truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		return s == "true" || s == "1"
	case float64:
		return t == 1
	case int:
		return t == 1
	case int64:
		return t == 1
	default:
		return false
	}
}

func resolveAliases(obj *schema.Object) {
	obj.Delete("is")

	for _, a := range aliases {
		v, ok := obj.Get(a.from)
		if !ok {
			continue
		}
		obj.Delete(a.from)
		if obj.Has(a.to) {
			continue
		}
		if a.boolean {
			v = Truthy(v)
		}
		obj.Set(a.to, v)
	}

	for _, key := range []string{"is_root", "is_nestable"} {
		v, ok := obj.Get(key)
		if !ok {
			continue
		}
		switch v.(type) {
		case nil:
			obj.Delete(key)
		case string, float64:
			obj.Set(key, Truthy(v))
		}
	}
}

func normalizeField(component, key string, raw any) (*schema.Object, error) {
	var f *schema.Object
	switch v := raw.(type) {
	case nil:
		f = schema.NewObject()
	case string:
		// Shorthand: "title": "text".
		f = schema.NewObject()
		f.Set("type", v)
	case *schema.Object:
		f = v.Clone()
	default:
		return nil, &schema.ValidationError{
			Component: component,
			Path:      "schema." + key,
			Expected:  "mapping",
			Got:       schema.TypeName(raw),
		}
	}

	f.Delete("name")

	given := ""
	if t, ok := f.Get("type"); ok && t != nil {
		if s, ok := t.(string); ok {
			given = strings.TrimSpace(s)
		} else {
			given = fmt.Sprint(t)
		}
	}

	typ := schema.TypeText
	if given != "" {
		typ = FieldType(given)
	}
	if typ == schema.TypeText {
		if inferred, ok := Infer(key); ok {
			typ = inferred
		}
	}
	f.Set("type", string(typ))
	return f, nil
}
