// SPDX-License-Identifier: AGPL-3.0-or-later

package reconcile

import (
	"context"
	"fmt"

	"github.com/bartekus/devflow/internal/normalize"
	"github.com/bartekus/devflow/internal/schema"
	"github.com/bartekus/devflow/internal/schemadiff"
	"github.com/bartekus/devflow/internal/storyblok"
)

// Fix is a remote component whose normalized form differs from what is stored.
type Fix struct {
	Remote    storyblok.RemoteComponent
	Component schema.Component
	Diff      schemadiff.Diff
	// Err is set when normalization or the update failed.
	Err error
}

// FixReport summarizes a fix-types pass.
type FixReport struct {
	Total   int
	Fixes   []Fix
	Invalid []Fix
	Applied int
	Failed  int
}

// Breaking counts fixes that carry breaking changes.
func (r *FixReport) Breaking() int {
	n := 0
	for _, f := range r.Fixes {
		if f.Diff.HasBreakingChanges {
			n++
		}
	}
	return n
}

// projected lists the remote attributes fed back through normalization.
var projected = []string{"name", "display_name", "is_root", "is_nestable", "schema"}

// FixTypes normalizes every remote component of a space and reports the ones
// whose field types would change. With apply set, each fix is written back by
// remote id; an auth error stops the pass.
func (r *Reconciler) FixTypes(ctx context.Context, spaceID string, apply bool) (*FixReport, error) {
	remote, err := r.api.ListComponents(ctx, spaceID)
	if err != nil {
		return nil, fmt.Errorf("listing components of space %s: %w", spaceID, err)
	}

	report := &FixReport{Total: len(remote)}
	for _, rc := range remote {
		candidate := schema.NewObject()
		for _, key := range projected {
			if v, ok := rc.Raw.Get(key); ok {
				candidate.Set(key, v)
			}
		}
		comp, err := normalize.Normalize(candidate)
		if err != nil {
			report.Invalid = append(report.Invalid, Fix{Remote: rc, Err: err})
			continue
		}
		d := schemadiff.Compare(rc.Raw, comp)
		if d.Empty() {
			continue
		}
		report.Fixes = append(report.Fixes, Fix{Remote: rc, Component: comp, Diff: d})
	}

	if !apply {
		return report, nil
	}
	for i := range report.Fixes {
		f := &report.Fixes[i]
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if _, err := r.api.UpdateComponent(ctx, spaceID, f.Remote.ID, f.Component); err != nil {
			f.Err = err
			report.Failed++
			r.log.Error().Str("component", f.Remote.Name).Err(err).Msg("fix failed")
			if storyblok.IsAuth(err) {
				return report, err
			}
			continue
		}
		report.Applied++
	}
	return report, nil
}
