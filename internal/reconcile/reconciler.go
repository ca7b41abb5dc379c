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

// Package reconcile applies normalized candidate components to a remote space.
//
// Each candidate is normalized, matched by exact name against a fresh listing
// of the space, diffed against its remote counterpart, and then created or
// updated by remote id. Batches run strictly sequentially so every decision
// observes the previous write.
package reconcile

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bartekus/devflow/internal/normalize"
	"github.com/bartekus/devflow/internal/schema"
	"github.com/bartekus/devflow/internal/schemadiff"
	"github.com/bartekus/devflow/internal/storyblok"
)

// API is the subset of the management API reconciliation needs.
type API interface {
	ListComponents(ctx context.Context, spaceID string) ([]storyblok.RemoteComponent, error)
	CreateComponent(ctx context.Context, spaceID string, c schema.Component) (storyblok.RemoteComponent, error)
	UpdateComponent(ctx context.Context, spaceID string, id int64, c schema.Component) (storyblok.RemoteComponent, error)
}

// Result describes one reconciliation.
type Result struct {
	Action    Action
	Component schema.Component
	// Remote is the component as written; zero for plans.
	Remote storyblok.RemoteComponent
	// Existing is the pre-existing raw component, nil on create.
	Existing *schema.Object
	Diff     schemadiff.Diff
}

// Reconciler decides between create and update for single candidates.
type Reconciler struct {
	api API
	log zerolog.Logger
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the diagnostic logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Reconciler) { r.log = l }
}

// New returns a Reconciler writing through api.
func New(api API, opts ...Option) *Reconciler {
	r := &Reconciler{api: api, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Plan computes what Upsert would do without writing.
func (r *Reconciler) Plan(ctx context.Context, spaceID string, raw *schema.Object) (Result, error) {
	res, _, err := r.decide(ctx, spaceID, raw)
	return res, err
}

// Upsert normalizes raw and creates or updates it in the space.
//
// A candidate that fails normalization is rejected before any remote call.
// A create rejected by remote validation is re-decided once against a fresh
// listing, since the name may have been taken concurrently.
func (r *Reconciler) Upsert(ctx context.Context, spaceID string, raw *schema.Object) (Result, error) {
	res, id, err := r.decide(ctx, spaceID, raw)
	if err != nil {
		return Result{}, err
	}

	res, err = r.apply(ctx, spaceID, id, res)
	if err == nil || res.Action != ActionCreated || !storyblok.IsValidation(err) {
		return res, err
	}

	r.log.Warn().Str("component", res.Component.Name).Err(err).Msg("create rejected, re-checking remote state")
	retry, id, derr := r.decide(ctx, spaceID, raw)
	if derr != nil || retry.Action != ActionUpdated {
		return res, err
	}
	return r.apply(ctx, spaceID, id, retry)
}

func (r *Reconciler) decide(ctx context.Context, spaceID string, raw *schema.Object) (Result, int64, error) {
	comp, err := normalize.Normalize(raw)
	if err != nil {
		return Result{}, 0, err
	}

	remote, err := r.api.ListComponents(ctx, spaceID)
	if err != nil {
		return Result{}, 0, fmt.Errorf("listing components of space %s: %w", spaceID, err)
	}

	res := Result{Action: ActionCreated, Component: comp}
	for _, rc := range remote {
		if rc.Name == comp.Name {
			res.Action = ActionUpdated
			res.Existing = rc.Raw
			res.Diff = schemadiff.Compare(rc.Raw, comp)
			return res, rc.ID, nil
		}
	}
	res.Diff = schemadiff.Compare(nil, comp)
	return res, 0, nil
}

func (r *Reconciler) apply(ctx context.Context, spaceID string, id int64, res Result) (Result, error) {
	var err error
	switch res.Action {
	case ActionUpdated:
		res.Remote, err = r.api.UpdateComponent(ctx, spaceID, id, res.Component)
	default:
		res.Remote, err = r.api.CreateComponent(ctx, spaceID, res.Component)
	}
	if err != nil {
		return res, fmt.Errorf("%s %q: %w", verb(res.Action), res.Component.Name, err)
	}
	r.log.Debug().
		Str("component", res.Component.Name).
		Str("action", string(res.Action)).
		Int64("id", res.Remote.ID).
		Msg("reconciled")
	return res, nil
}

func verb(a Action) string {
	if a == ActionUpdated {
		return "updating"
	}
	return "creating"
}
