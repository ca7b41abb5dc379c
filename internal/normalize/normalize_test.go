// SPDX-License-Identifier: AGPL-3.0-or-later

package normalize

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartekus/devflow/internal/schema"
)

func parse(t *testing.T, src string) *schema.Object {
	t.Helper()
	obj, err := schema.ParseObject([]byte(src))
	require.NoError(t, err)
	return obj
}

func fieldType(t *testing.T, c schema.Component, key string) schema.FieldType {
	t.Helper()
	f, ok := c.Schema.Get(key)
	require.True(t, ok, "field %q missing", key)
	return f.Type
}

func TestNormalize_HeroBanner(t *testing.T) {
	c, err := Normalize(parse(t, `{"name": "Hero Banner", "schema": {"Title": {"type": "headline"}, "cover": {}}}`))
	require.NoError(t, err)

	assert.Equal(t, "hero_banner", c.Name)
	assert.False(t, c.IsRoot)
	assert.True(t, c.IsNestable)
	assert.Equal(t, []string{"Title", "cover"}, c.Schema.Keys())
	assert.Equal(t, schema.TypeText, fieldType(t, c, "Title"))
	assert.Equal(t, schema.TypeAsset, fieldType(t, c, "cover"))
}

func TestNormalize_SynonymClosure(t *testing.T) {
	documented := map[string]schema.FieldType{
		"rich":        schema.TypeRichtext,
		"rte":         schema.TypeRichtext,
		"link":        schema.TypeMultilink,
		"url":         schema.TypeMultilink,
		"href":        schema.TypeMultilink,
		"date":        schema.TypeDatetime,
		"timestamp":   schema.TypeDatetime,
		"image":       schema.TypeAsset,
		"file":        schema.TypeAsset,
		"photo":       schema.TypeAsset,
		"blocks":      schema.TypeBloks,
		"nested":      schema.TypeBloks,
		"dropdown":    schema.TypeOption,
		"select":      schema.TypeOption,
		"checkboxes":  schema.TypeOptions,
		"multichoice": schema.TypeOptions,
		"images":      schema.TypeMultiasset,
		"gallery":     schema.TypeMultiasset,
		"relation":    schema.TypeMultilink,
		"ref":         schema.TypeMultilink,
	}
	table := Synonyms()
	for synonym, want := range documented {
		assert.Equal(t, want, table[synonym], synonym)
	}

	for synonym, want := range table {
		t.Run(synonym, func(t *testing.T) {
			raw := schema.NewObject()
			raw.Set("name", "x")
			field := schema.NewObject()
			field.Set("type", synonym)
			fields := schema.NewObject()
			fields.Set("f", field)
			raw.Set("schema", fields)

			c, err := Normalize(raw)
			require.NoError(t, err)
			assert.Equal(t, want, fieldType(t, c, "f"))
		})
	}
}

func TestFieldType_Spellings(t *testing.T) {
	tests := map[string]schema.FieldType{
		"Rich Text":     schema.TypeRichtext,
		"RICH_TEXT":     schema.TypeRichtext,
		"single-option": schema.TypeOption,
		"Multi Options": schema.TypeOptions,
		" markdown ":    schema.TypeMarkdown,
		"multiasset":    schema.TypeMultiasset,
		"headline":      schema.TypeText,
		"":              schema.TypeText,
	}
	for in, want := range tests {
		assert.Equal(t, want, FieldType(in), "%q", in)
	}
	for _, ct := range schema.CanonicalTypes() {
		assert.Equal(t, ct, FieldType(string(ct)))
	}
}

func TestInfer(t *testing.T) {
	tests := []struct {
		key  string
		want schema.FieldType
		ok   bool
	}{
		{"published_at", schema.TypeDatetime, true},
		{"Date", schema.TypeDatetime, true},
		{"avatar", schema.TypeAsset, true},
		{"cover_image", schema.TypeAsset, true},
		{"image_url", schema.TypeAsset, true},
		{"website", schema.TypeMultilink, true},
		{"bio", schema.TypeRichtext, true},
		{"body_text", schema.TypeRichtext, true},
		{"price", schema.TypeNumber, true},
		{"is_featured", schema.TypeBoolean, true},
		{"has_image", schema.TypeBoolean, true},
		{"is_logo", schema.TypeBoolean, true},
		{"has_thumbnail", schema.TypeBoolean, true},
		{"hero_thumbnail", schema.TypeAsset, true},
		{"enabled", schema.TypeBoolean, true},
		{"author", schema.TypeMultilink, true},
		{"tags", schema.TypeMultilink, true},
		{"title", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := Infer(tt.key)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_InferenceNeverOverridesExplicitType(t *testing.T) {
	c, err := Normalize(parse(t, `{"name": "card", "schema": {
		"image_url": {"type": "richtext"},
		"cover_image": {},
		"logo": {"type": "text"},
		"price": {"type": "Rich Text"}
	}}`))
	require.NoError(t, err)

	assert.Equal(t, schema.TypeRichtext, fieldType(t, c, "image_url"))
	assert.Equal(t, schema.TypeAsset, fieldType(t, c, "cover_image"))
	assert.Equal(t, schema.TypeAsset, fieldType(t, c, "logo"), "explicit text is the generic default and may be refined")
	assert.Equal(t, schema.TypeRichtext, fieldType(t, c, "price"))
}

func TestNormalize_Aliases(t *testing.T) {
	c, err := Normalize(parse(t, `{
		"name": "  Landing   Page ",
		"displayName": "Landing",
		"isRoot": "true",
		"nestable": 0,
		"is": "artifact",
		"schema": {"Body": {"type": "blocks", "name": "Body", "pos": 3}}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "landing_page", c.Name)
	require.NotNil(t, c.DisplayName)
	assert.Equal(t, "Landing", *c.DisplayName)
	assert.True(t, c.IsRoot)
	assert.False(t, c.IsNestable)
	assert.Equal(t, schema.TypeBloks, fieldType(t, c, "Body"))
}

func TestNormalize_CanonicalKeyBeatsAlias(t *testing.T) {
	c, err := Normalize(parse(t, `{"name": "a", "is_root": false, "root": true, "is_nestable": "1"}`))
	require.NoError(t, err)
	assert.False(t, c.IsRoot)
	assert.True(t, c.IsNestable)
}

func TestNormalize_FieldShorthand(t *testing.T) {
	c, err := Normalize(parse(t, `{"name": "a", "schema": {"title": "text", "summary": null, "when": "date"}}`))
	require.NoError(t, err)
	assert.Equal(t, schema.TypeText, fieldType(t, c, "title"))
	assert.Equal(t, schema.TypeText, fieldType(t, c, "summary"))
	assert.Equal(t, schema.TypeDatetime, fieldType(t, c, "when"))
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		`{"name": "Hero Banner", "schema": {"Title": {"type": "headline"}, "cover": {}}}`,
		`{"name": "post", "displayName": "Post", "isRoot": 1, "schema": {
			"published_at": {}, "body": {"type": "rte", "required": true},
			"tags": {"type": "relation", "options": {"source": "internal"}},
			"items": {"type": "nested", "restrict_type": "", "component_whitelist": ["card"]},
			"rating": {"type": "number", "default_value": 3}
		}}`,
	}
	for _, src := range inputs {
		first, err := Normalize(parse(t, src))
		require.NoError(t, err)

		obj, err := first.Object()
		require.NoError(t, err)
		second, err := Normalize(obj)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	}
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	raw := parse(t, `{"name": "Hero", "is": 1, "schema": {"cover": {"name": "cover"}}}`)
	before, err := raw.MarshalJSON()
	require.NoError(t, err)

	_, err = Normalize(raw)
	require.NoError(t, err)
	_, err = Normalize(raw)
	require.NoError(t, err)

	after, err := raw.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestNormalize_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		path string
	}{
		{"schema not mapping", `{"name": "a", "schema": ["title"]}`, "schema"},
		{"field not mapping", `{"name": "a", "schema": {"title": 42}}`, "schema.title"},
		{"missing name", `{"schema": {}}`, "name"},
		{"blank name", `{"name": "   "}`, "name"},
		{"root not scalar", `{"name": "a", "is_root": {"x": 1}}`, "is_root"},
		{"bad whitelist", `{"name": "a", "schema": {"b": {"type": "bloks", "component_whitelist": "card"}}}`, "schema.b.component_whitelist"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(parse(t, tt.src))
			var verr *schema.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.path, verr.Path)
		})
	}

	_, err := Normalize(nil)
	require.Error(t, err)
}

func TestPeek(t *testing.T) {
	name, root := Peek(parse(t, `{"name": "Page", "isRoot": "1"}`))
	assert.Equal(t, "page", name)
	assert.True(t, root)

	name, root = Peek(parse(t, `{"name": "FAQ Item"}`))
	assert.Equal(t, "faq_item", name)
	assert.False(t, root)

	name, root = Peek(nil)
	assert.Empty(t, name)
	assert.False(t, root)
}

func TestTruthy(t *testing.T) {
	for _, v := range []any{true, "true", "TRUE", 1.0, "1", 1} {
		assert.True(t, Truthy(v), "%v", v)
	}
	for _, v := range []any{false, "false", "yes", 0.0, 2.0, nil, "", []any{}} {
		assert.False(t, Truthy(v), "%v", v)
	}
}
