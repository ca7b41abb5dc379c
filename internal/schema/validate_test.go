// SPDX-License-Identifier: AGPL-3.0-or-later

package schema

import (
	"errors"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustObject(t *testing.T, src string) *Object {
	t.Helper()
	obj, err := ParseObject([]byte(src))
	require.NoError(t, err)
	return obj
}

func TestDecode_DefaultsAndProjection(t *testing.T) {
	obj := mustObject(t, `{
		"name": "hero",
		"component_group_uuid": "dropped",
		"schema": {
			"title": {"type": "text", "name": "title", "pos": 0, "required": true},
			"items": {"type": "bloks", "restrict_type": "", "component_whitelist": ["card"]}
		}
	}`)

	c, err := Decode(obj)
	require.NoError(t, err)

	assert.Equal(t, "hero", c.Name)
	assert.Nil(t, c.DisplayName)
	assert.False(t, c.IsRoot)
	assert.True(t, c.IsNestable)
	assert.Equal(t, []string{"title", "items"}, c.Schema.Keys())

	title, ok := c.Schema.Get("title")
	require.True(t, ok)
	assert.Equal(t, Field{Type: TypeText, Required: true}, title)

	items, _ := c.Schema.Get("items")
	require.NotNil(t, items.RestrictType)
	assert.Equal(t, "", *items.RestrictType)
	assert.Equal(t, []string{"card"}, items.ComponentWhitelist)

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "hero",
		"is_root": false,
		"is_nestable": true,
		"schema": {
			"title": {"type": "text", "required": true},
			"items": {"type": "bloks", "restrict_type": "", "component_whitelist": ["card"]}
		}
	}`, string(data))
}

func TestDecode_EmptySchema(t *testing.T) {
	c, err := Decode(mustObject(t, `{"name": "empty", "schema": null}`))
	require.NoError(t, err)
	assert.Equal(t, Schema{}, c.Schema)

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"empty","is_root":false,"is_nestable":true,"schema":{}}`, string(data))
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		path     string
		expected string
	}{
		{"missing name", `{"schema": {}}`, "name", "string"},
		{"blank name", `{"name": "  "}`, "name", "non-empty string"},
		{"is_root not bool", `{"name": "a", "is_root": "yes"}`, "is_root", "boolean"},
		{"schema not mapping", `{"name": "a", "schema": ["title"]}`, "schema", "mapping"},
		{"field not mapping", `{"name": "a", "schema": {"title": 3}}`, "schema.title", "mapping"},
		{"unknown type", `{"name": "a", "schema": {"title": {"type": "headline"}}}`, "schema.title.type", expectedTypes()},
		{"missing type", `{"name": "a", "schema": {"title": {}}}`, "schema.title.type", expectedTypes()},
		{"options not mapping", `{"name": "a", "schema": {"o": {"type": "option", "options": "x"}}}`, "schema.o.options", "mapping"},
		{"whitelist entry", `{"name": "a", "schema": {"b": {"type": "bloks", "component_whitelist": ["x", 1]}}}`, "schema.b.component_whitelist[1]", "string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(mustObject(t, tt.src))
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.path, verr.Path)
			assert.Equal(t, tt.expected, verr.Expected)
		})
	}
}

func TestValidate(t *testing.T) {
	ok := Component{Name: "hero", IsNestable: true, Schema: Schema{{Key: "title", Field: Field{Type: TypeText}}}}
	require.NoError(t, Validate(ok))

	bad := ok
	bad.Schema = Schema{{Key: "title", Field: Field{Type: "image"}}}
	err := Validate(bad)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "schema.title.type", verr.Path)

	dup := ok
	dup.Schema = Schema{{Key: "a", Field: Field{Type: TypeText}}, {Key: "a", Field: Field{Type: TypeText}}}
	require.Error(t, Validate(dup))

	require.Error(t, Validate(Component{}))
}

func TestCanonicalTypes(t *testing.T) {
	types := CanonicalTypes()
	assert.Len(t, types, 16)
	for _, ft := range types {
		assert.True(t, ft.IsCanonical(), ft)
	}
	assert.False(t, FieldType("image").IsCanonical())
}

func TestSchema_SetReplacesInPlace(t *testing.T) {
	var s Schema
	s.Set("a", Field{Type: TypeText})
	s.Set("b", Field{Type: TypeAsset})
	s.Set("a", Field{Type: TypeRichtext})

	assert.Equal(t, []string{"a", "b"}, s.Keys())
	a, _ := s.Get("a")
	assert.Equal(t, TypeRichtext, a.Type)
	assert.Equal(t, -1, s.Index("missing"))
}

func TestComponent_ObjectRoundTrip(t *testing.T) {
	c := Component{Name: "faq", IsNestable: true, Schema: Schema{
		{Key: "question", Field: Field{Type: TypeText}},
		{Key: "answer", Field: Field{Type: TypeRichtext, Description: "Answer content"}},
	}}
	obj, err := c.Object()
	require.NoError(t, err)

	back, err := Decode(obj)
	require.NoError(t, err)
	assert.Equal(t, c, back)
}
