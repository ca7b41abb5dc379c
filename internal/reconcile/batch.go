// SPDX-License-Identifier: AGPL-3.0-or-later

package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bartekus/devflow/internal/normalize"
	"github.com/bartekus/devflow/internal/schema"
	"github.com/bartekus/devflow/internal/source"
	"github.com/bartekus/devflow/internal/storyblok"
)

// ErrPlanRequired is returned by Run when remaining components were parked
// in the pending artifact.
var ErrPlanRequired = errors.New("space plan does not allow component writes")

// Options tunes a batch run.
type Options struct {
	// DryRun diffs against remote state without writing.
	DryRun bool
	// NoPost writes the wired batch to PendingPath without any remote call.
	NoPost bool
	// FailFast stops at the first failed component.
	FailFast bool
	// ContinueOnRateLimit keeps going after a component exhausts its retries.
	ContinueOnRateLimit bool
	// SkipRootPage disables root page wiring.
	SkipRootPage bool
	// PendingPath receives unapplied components; defaults to source.DefaultPendingPath.
	PendingPath string
	// OnResult is called after each component settles.
	OnResult func(ComponentResult)
}

// Batch reconciles a generated set of components one at a time.
type Batch struct {
	rec   *Reconciler
	store *StateStore
	opts  Options
	log   zerolog.Logger
	now   func() time.Time
}

// NewBatch returns a batch runner. store may be nil to skip run state.
func NewBatch(rec *Reconciler, store *StateStore, opts Options) *Batch {
	if opts.PendingPath == "" {
		opts.PendingPath = source.DefaultPendingPath
	}
	return &Batch{rec: rec, store: store, opts: opts, log: rec.log, now: time.Now}
}

// Run wires the root page and reconciles candidates in order.
//
// Candidate-local failures are recorded and the batch continues. Auth errors
// abort the run. A plan restriction parks the remaining components in the
// pending artifact and returns ErrPlanRequired. Rate-limit exhaustion aborts
// unless ContinueOnRateLimit is set. Writes already applied are never rolled back.
func (b *Batch) Run(ctx context.Context, spaceID string, candidates []*schema.Object) (report *Report, err error) {
	report = &Report{
		RunID:      uuid.NewString(),
		SpaceID:    spaceID,
		StartedAt:  b.now().UTC(),
		Status:     StatusPass,
		DryRun:     b.opts.DryRun,
		Components: []ComponentResult{},
		Failed:     []string{},
	}
	defer func() {
		if werr := b.saveState(report); werr != nil && err == nil {
			err = werr
		}
	}()

	if !b.opts.SkipRootPage {
		candidates = WireRootPage(candidates)
	}

	if b.opts.NoPost {
		return report, b.park(report, spaceID, candidates)
	}

	for i, raw := range candidates {
		if cerr := ctx.Err(); cerr != nil {
			b.skipRest(report, candidates[i:])
			report.Status = StatusAborted
			return report, cerr
		}

		name, _ := normalize.Peek(raw)
		res, rerr := b.reconcileOne(ctx, spaceID, raw)
		if rerr == nil {
			b.record(report, res)
			continue
		}

		switch {
		case storyblok.IsPlanRequired(rerr):
			b.log.Warn().Str("component", name).Err(rerr).Msg("plan restriction, parking remaining components")
			perr := b.park(report, spaceID, candidates[i:])
			report.Status = StatusPartial
			return report, errors.Join(fmt.Errorf("%w: %w", ErrPlanRequired, rerr), perr)
		case storyblok.IsAuth(rerr):
			b.fail(report, name, rerr)
			b.skipRest(report, candidates[i+1:])
			report.Status = StatusAborted
			return report, rerr
		case storyblok.IsRateLimited(rerr) && !b.opts.ContinueOnRateLimit:
			b.fail(report, name, rerr)
			b.skipRest(report, candidates[i+1:])
			report.Status = StatusAborted
			return report, rerr
		default:
			b.fail(report, name, rerr)
			if b.opts.FailFast {
				b.skipRest(report, candidates[i+1:])
				return report, nil
			}
		}
	}
	return report, nil
}

func (b *Batch) reconcileOne(ctx context.Context, spaceID string, raw *schema.Object) (ComponentResult, error) {
	var (
		res Result
		err error
	)
	if b.opts.DryRun {
		res, err = b.rec.Plan(ctx, spaceID, raw)
	} else {
		res, err = b.rec.Upsert(ctx, spaceID, raw)
	}
	if err != nil {
		return ComponentResult{}, err
	}

	diff := res.Diff
	out := ComponentResult{
		Name:     res.Component.Name,
		RemoteID: res.Remote.ID,
		Diff:     &diff,
		Breaking: diff.HasBreakingChanges,
	}
	switch {
	case b.opts.DryRun && res.Action == ActionCreated:
		out.Outcome = OutcomeWouldCreate
	case b.opts.DryRun && diff.Empty():
		out.Outcome = OutcomeUnchanged
	case b.opts.DryRun:
		out.Outcome = OutcomeWouldUpdate
	case res.Action == ActionCreated:
		out.Outcome = OutcomeCreated
	case diff.Empty():
		out.Outcome = OutcomeUnchanged
	default:
		out.Outcome = OutcomeUpdated
	}
	return out, nil
}

func (b *Batch) record(report *Report, res ComponentResult) {
	if res.Outcome == OutcomeFailed && report.Status == StatusPass {
		report.Status = StatusPartial
	}
	report.add(res)
	if b.opts.OnResult != nil {
		b.opts.OnResult(res)
	}
}

func (b *Batch) fail(report *Report, name string, err error) {
	if name == "" {
		name = "(unnamed)"
	}
	b.log.Error().Str("component", name).Err(err).Msg("component failed")
	b.record(report, ComponentResult{Name: name, Outcome: OutcomeFailed, Error: err.Error()})
}

func (b *Batch) skipRest(report *Report, rest []*schema.Object) {
	for _, raw := range rest {
		name, _ := normalize.Peek(raw)
		b.record(report, ComponentResult{Name: name, Outcome: OutcomeSkipped})
	}
}

func (b *Batch) park(report *Report, spaceID string, rest []*schema.Object) error {
	doc := source.Document{SpaceID: spaceID, Components: rest}
	if err := source.WritePending(b.opts.PendingPath, doc); err != nil {
		return fmt.Errorf("parking %d component(s): %w", len(rest), err)
	}
	report.PendingPath = b.opts.PendingPath
	for _, raw := range rest {
		name, _ := normalize.Peek(raw)
		b.record(report, ComponentResult{Name: name, Outcome: OutcomePending})
	}
	return nil
}

func (b *Batch) saveState(report *Report) error {
	if b.store == nil {
		return nil
	}
	if err := b.store.WriteLastRun(report); err != nil {
		return fmt.Errorf("writing last run: %w", err)
	}
	return nil
}
