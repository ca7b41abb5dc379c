// SPDX-License-Identifier: AGPL-3.0-or-later

// Package schemadiff classifies the delta between a remote component and a
// normalized candidate with the same name.
package schemadiff

import (
	"github.com/bartekus/devflow/internal/schema"
)

// safeUpgrades lists the only type changes that keep stored content readable.
// The relation is one-directional.
var safeUpgrades = map[schema.FieldType][]schema.FieldType{
	schema.TypeText:     {schema.TypeTextarea, schema.TypeRichtext, schema.TypeMarkdown},
	schema.TypeTextarea: {schema.TypeRichtext, schema.TypeMarkdown},
	schema.TypeAsset:    {schema.TypeMultiasset},
	schema.TypeOption:   {schema.TypeOptions},
}

// Change is a type change of a field present on both sides.
type Change struct {
	Field    string           `json:"field"`
	OldType  schema.FieldType `json:"old_type"`
	NewType  schema.FieldType `json:"new_type"`
	Breaking bool             `json:"breaking"`
}

// Diff is the structured delta between an existing and a candidate component.
type Diff struct {
	Added              []string `json:"added"`
	Removed            []string `json:"removed"`
	Changed            []Change `json:"changed"`
	HasBreakingChanges bool     `json:"has_breaking_changes"`
}

// Empty reports whether nothing was added, removed or changed.
func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// IsBreaking reports whether changing a field from old to new can invalidate stored content.
func IsBreaking(old, new schema.FieldType) bool {
	if old == new {
		return false
	}
	for _, t := range safeUpgrades[old] {
		if t == new {
			return false
		}
	}
	return true
}

// Compare diffs the raw schema of existing against candidate.
//
// Added keeps candidate order; Removed and Changed keep existing order.
// A field whose existing type is missing or not a string is compared as "".
func Compare(existing *schema.Object, candidate schema.Component) Diff {
	d := Diff{Added: []string{}, Removed: []string{}, Changed: []Change{}}

	old := existingTypes(existing)
	oldKeys := make(map[string]bool, len(old))
	for _, e := range old {
		oldKeys[e.key] = true
	}

	for _, key := range candidate.Schema.Keys() {
		if !oldKeys[key] {
			d.Added = append(d.Added, key)
		}
	}

	for _, e := range old {
		f, ok := candidate.Schema.Get(e.key)
		if !ok {
			d.Removed = append(d.Removed, e.key)
			d.HasBreakingChanges = true
			continue
		}
		if f.Type == e.typ {
			continue
		}
		c := Change{Field: e.key, OldType: e.typ, NewType: f.Type, Breaking: IsBreaking(e.typ, f.Type)}
		d.Changed = append(d.Changed, c)
		if c.Breaking {
			d.HasBreakingChanges = true
		}
	}
	return d
}

type typedKey struct {
	key string
	typ schema.FieldType
}

func existingTypes(existing *schema.Object) []typedKey {
	if existing == nil {
		return nil
	}
	fields, ok := existing.Object("schema")
	if !ok {
		return nil
	}
	out := make([]typedKey, 0, fields.Len())
	for _, key := range fields.Keys() {
		tk := typedKey{key: key}
		if f, ok := fields.Object(key); ok {
			if s, ok := f.String("type"); ok {
				tk.typ = schema.FieldType(s)
			}
		}
		out = append(out, tk)
	}
	return out
}
