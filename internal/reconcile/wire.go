// SPDX-License-Identifier: AGPL-3.0-or-later

package reconcile

import (
	"github.com/bartekus/devflow/internal/normalize"
	"github.com/bartekus/devflow/internal/schema"
)

// RootName is the conventional name of the root page component.
const RootName = "page"

// WireRootPage anchors a generated batch under a root page.
//
// When no candidate is a root named "page", one is prepended with a single
// bloks field whose whitelist is every non-root sibling name other than
// "page" itself. Otherwise every bloks field of the existing page is rewired
// to the same whitelist.
// Wiring depends only on the batch; candidates are never mutated.
func WireRootPage(candidates []*schema.Object) []*schema.Object {
	siblings := make([]any, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	pageAt := -1
	for i, c := range candidates {
		name, root := normalize.Peek(c)
		if root {
			if name == RootName && pageAt < 0 {
				pageAt = i
			}
			continue
		}
		// a non-root "page" is never a child of the root page
		if name == "" || name == RootName || seen[name] {
			continue
		}
		seen[name] = true
		siblings = append(siblings, name)
	}

	out := make([]*schema.Object, 0, len(candidates)+1)
	if pageAt < 0 {
		out = append(out, rootPage(siblings))
		return append(out, candidates...)
	}

	out = append(out, candidates...)
	out[pageAt] = rewire(candidates[pageAt], siblings)
	return out
}

func rootPage(siblings []any) *schema.Object {
	body := schema.NewObject()
	body.Set("type", string(schema.TypeBloks))
	body.Set("description", "Page content blocks")
	body.Set("restrict_type", "")
	body.Set("component_whitelist", siblings)

	fields := schema.NewObject()
	fields.Set("body", body)

	page := schema.NewObject()
	page.Set("name", RootName)
	page.Set("display_name", "Page")
	page.Set("is_root", true)
	page.Set("is_nestable", false)
	page.Set("schema", fields)
	return page
}

func rewire(page *schema.Object, siblings []any) *schema.Object {
	page = page.Clone()
	fields, ok := page.Object("schema")
	if !ok {
		return page
	}
	for _, key := range fields.Keys() {
		f, ok := fields.Object(key)
		if !ok {
			continue
		}
		t, _ := f.String("type")
		if normalize.FieldType(t) != schema.TypeBloks {
			continue
		}
		f.Set("restrict_type", "")
		f.Set("component_whitelist", append(make([]any, 0, len(siblings)), siblings...))
	}
	return page
}
