// SPDX-License-Identifier: AGPL-3.0-or-later

package reconcile

import (
	"time"

	"github.com/bartekus/devflow/internal/schemadiff"
)

// Action is the write a reconciliation decided on.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
)

// Outcome is the per-component result of a batch run.
type Outcome string

const (
	OutcomeCreated     Outcome = "created"
	OutcomeUpdated     Outcome = "updated"
	OutcomeUnchanged   Outcome = "unchanged"
	OutcomeWouldCreate Outcome = "would-create"
	OutcomeWouldUpdate Outcome = "would-update"
	OutcomeFailed      Outcome = "failed"
	OutcomeSkipped     Outcome = "skipped"
	OutcomePending     Outcome = "pending"
)

// Run statuses recorded in last-run.json.
const (
	StatusPass    = "pass"
	StatusPartial = "partial"
	StatusAborted = "aborted"
)

// ComponentResult is the outcome of one candidate.
type ComponentResult struct {
	Name     string           `json:"name"`
	Outcome  Outcome          `json:"outcome"`
	RemoteID int64            `json:"remote_id,omitempty"`
	Diff     *schemadiff.Diff `json:"diff,omitempty"`
	Breaking bool             `json:"breaking,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// Report summarizes a batch run.
// Matches .devflow/run/last-run.json.
type Report struct {
	RunID       string            `json:"run_id"`
	SpaceID     string            `json:"space_id"`
	StartedAt   time.Time         `json:"started_at"`
	Status      string            `json:"status"`
	DryRun      bool              `json:"dry_run,omitempty"`
	Components  []ComponentResult `json:"components"`
	Failed      []string          `json:"failed"`
	PendingPath string            `json:"pending_path,omitempty"`
}

// Count returns how many components ended with outcome.
func (r *Report) Count(outcome Outcome) int {
	n := 0
	for _, c := range r.Components {
		if c.Outcome == outcome {
			n++
		}
	}
	return n
}

func (r *Report) add(res ComponentResult) {
	r.Components = append(r.Components, res)
	if res.Outcome == OutcomeFailed {
		r.Failed = append(r.Failed, res.Name)
	}
}
