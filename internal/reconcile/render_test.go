// SPDX-License-Identifier: AGPL-3.0-or-later

package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bartekus/devflow/internal/schemadiff"
	"github.com/bartekus/devflow/internal/testutil/golden"
)

func TestReport_Markdown(t *testing.T) {
	d := schemadiff.Diff{Added: []string{"subtitle"}, Removed: []string{"legacy"}, Changed: []schemadiff.Change{}, HasBreakingChanges: true}
	r := &Report{
		RunID:     "0b7e",
		SpaceID:   "42",
		StartedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Status:    StatusPartial,
	}
	r.add(ComponentResult{Name: "page", Outcome: OutcomeCreated, RemoteID: 1001})
	r.add(ComponentResult{Name: "hero", Outcome: OutcomeUpdated, RemoteID: 1002, Diff: &d, Breaking: true})
	r.add(ComponentResult{Name: "faq", Outcome: OutcomeFailed, Error: "creating \"faq\": boom"})

	assert.Equal(t, "1 created, 1 updated, 1 failed", r.Summary())
	golden.Assert(t, golden.TestdataDir(t), "report", r.Markdown())
}

func TestReport_SummaryEmpty(t *testing.T) {
	assert.Equal(t, "no components", (&Report{}).Summary())
}
