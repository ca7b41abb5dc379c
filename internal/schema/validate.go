// SPDX-License-Identifier: AGPL-3.0-or-later

package schema

import (
	"fmt"
	"strings"
)

// ValidationError reports a candidate that cannot be coerced into a valid Component.
type ValidationError struct {
	Component string
	Path      string
	Expected  string
	Got       string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s: expected %s", e.Path, e.Expected)
	if e.Got != "" {
		msg += ", got " + e.Got
	}
	if e.Component != "" {
		return fmt.Sprintf("schema: component %q: %s", e.Component, msg)
	}
	return "schema: " + msg
}

func invalid(component, path, expected string, got any) *ValidationError {
	return &ValidationError{Component: component, Path: path, Expected: expected, Got: TypeName(got)}
}

func expectedTypes() string {
	names := make([]string, 0, len(canonicalTypes))
	for _, t := range canonicalTypes {
		names = append(names, string(t))
	}
	return "one of " + strings.Join(names, "|")
}

// Decode projects obj onto the recognized component attributes and validates them.
//
// Only allow-listed keys are read at component and field level; everything else,
// including an inner field "name", is dropped. is_root defaults to false and
// is_nestable to true.
func Decode(obj *Object) (Component, error) {
	if obj == nil {
		return Component{}, &ValidationError{Path: "component", Expected: "mapping", Got: "null"}
	}

	rawName, _ := obj.Get("name")
	name, ok := rawName.(string)
	if !ok {
		return Component{}, invalid("", "name", "string", rawName)
	}
	if strings.TrimSpace(name) == "" {
		return Component{}, &ValidationError{Path: "name", Expected: "non-empty string", Got: "empty string"}
	}

	c := Component{Name: name, IsNestable: true, Schema: Schema{}}

	if v, ok := obj.Get("display_name"); ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return Component{}, invalid(name, "display_name", "string or null", v)
		}
		c.DisplayName = &s
	}
	if v, ok := obj.Get("is_root"); ok {
		b, ok := v.(bool)
		if !ok {
			return Component{}, invalid(name, "is_root", "boolean", v)
		}
		c.IsRoot = b
	}
	if v, ok := obj.Get("is_nestable"); ok {
		b, ok := v.(bool)
		if !ok {
			return Component{}, invalid(name, "is_nestable", "boolean", v)
		}
		c.IsNestable = b
	}

	v, ok := obj.Get("schema")
	if !ok || v == nil {
		return c, nil
	}
	fields, ok := v.(*Object)
	if !ok {
		return Component{}, invalid(name, "schema", "mapping", v)
	}
	for _, key := range fields.Keys() {
		raw, _ := fields.Get(key)
		f, err := decodeField(name, "schema."+key, raw)
		if err != nil {
			return Component{}, err
		}
		c.Schema = append(c.Schema, Entry{Key: key, Field: f})
	}
	return c, nil
}

func decodeField(component, path string, raw any) (Field, error) {
	obj, ok := raw.(*Object)
	if !ok || obj == nil {
		return Field{}, invalid(component, path, "mapping", raw)
	}

	var f Field
	t, ok := obj.Get("type")
	ts, isString := t.(string)
	if !ok || !isString || !FieldType(ts).IsCanonical() {
		e := invalid(component, path+".type", expectedTypes(), t)
		if isString {
			e.Got = fmt.Sprintf("%q", ts)
		} else if !ok {
			e.Got = "missing"
		}
		return Field{}, e
	}
	f.Type = FieldType(ts)

	for _, attr := range []struct {
		key string
		dst *string
	}{
		{"display_name", &f.DisplayName},
		{"description", &f.Description},
	} {
		v, ok := obj.Get(attr.key)
		if !ok || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return Field{}, invalid(component, path+"."+attr.key, "string", v)
		}
		*attr.dst = s
	}

	if v, ok := obj.Get("required"); ok && v != nil {
		b, ok := v.(bool)
		if !ok {
			return Field{}, invalid(component, path+".required", "boolean", v)
		}
		f.Required = b
	}
	if v, ok := obj.Get("options"); ok && v != nil {
		o, ok := v.(*Object)
		if !ok {
			return Field{}, invalid(component, path+".options", "mapping", v)
		}
		f.Options = o.Clone()
	}
	if v, ok := obj.Get("default_value"); ok {
		f.DefaultValue = cloneValue(v)
	}
	if v, ok := obj.Get("restrict_type"); ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return Field{}, invalid(component, path+".restrict_type", "string", v)
		}
		f.RestrictType = &s
	}
	if v, ok := obj.Get("component_whitelist"); ok && v != nil {
		items, ok := v.([]any)
		if !ok {
			return Field{}, invalid(component, path+".component_whitelist", "list of strings", v)
		}
		f.ComponentWhitelist = make([]string, 0, len(items))
		for i, item := range items {
			s, ok := item.(string)
			if !ok {
				return Field{}, invalid(component, fmt.Sprintf("%s.component_whitelist[%d]", path, i), "string", item)
			}
			f.ComponentWhitelist = append(f.ComponentWhitelist, s)
		}
	}
	return f, nil
}

// Validate checks an already-typed component against the canonical model.
func Validate(c Component) error {
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Path: "name", Expected: "non-empty string", Got: "empty string"}
	}
	seen := make(map[string]bool, len(c.Schema))
	for _, e := range c.Schema {
		if seen[e.Key] {
			return &ValidationError{Component: c.Name, Path: "schema." + e.Key, Expected: "unique field key", Got: "duplicate"}
		}
		seen[e.Key] = true
		if !e.Field.Type.IsCanonical() {
			return &ValidationError{
				Component: c.Name,
				Path:      "schema." + e.Key + ".type",
				Expected:  expectedTypes(),
				Got:       fmt.Sprintf("%q", e.Field.Type),
			}
		}
	}
	return nil
}
