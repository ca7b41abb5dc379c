// SPDX-License-Identifier: AGPL-3.0-or-later

package reconcile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bartekus/devflow/internal/projection"
)

var outcomeOrder = []Outcome{
	OutcomeCreated, OutcomeUpdated, OutcomeUnchanged,
	OutcomeWouldCreate, OutcomeWouldUpdate,
	OutcomePending, OutcomeFailed, OutcomeSkipped,
}

// Summary is a one-line count of outcomes, e.g. "2 created, 1 failed".
func (r *Report) Summary() string {
	parts := make([]string, 0, len(outcomeOrder))
	for _, o := range outcomeOrder {
		if n := r.Count(o); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, o))
		}
	}
	if len(parts) == 0 {
		return "no components"
	}
	return strings.Join(parts, ", ")
}

// Markdown renders the report as a header, a per-component table and the failed list.
func (r *Report) Markdown() string {
	var b strings.Builder
	title := "Run " + r.RunID
	if r.DryRun {
		title += " (dry run)"
	}
	b.WriteString(projection.RenderHeader(2, title))
	fmt.Fprintf(&b, "Space: %s  \nStarted: %s  \nStatus: %s  \nSummary: %s\n\n",
		r.SpaceID, r.StartedAt.Format("2006-01-02 15:04:05Z07:00"), r.Status, r.Summary())

	rows := make([][]string, 0, len(r.Components))
	for _, c := range r.Components {
		id := ""
		if c.RemoteID != 0 {
			id = strconv.FormatInt(c.RemoteID, 10)
		}
		changes := ""
		if c.Diff != nil && !c.Diff.Empty() {
			changes = strings.ReplaceAll(c.Diff.String(), "\n", "; ")
		}
		rows = append(rows, []string{c.Name, string(c.Outcome), id, changes, c.Error})
	}
	b.WriteString(projection.RenderTable([]string{"Component", "Outcome", "ID", "Changes", "Error"}, rows))

	if len(r.Failed) > 0 {
		b.WriteString("\n")
		b.WriteString(projection.RenderHeader(3, "Failed"))
		b.WriteString(projection.RenderList(r.Failed))
	}
	if r.PendingPath != "" {
		fmt.Fprintf(&b, "\nPending components written to %s\n", r.PendingPath)
	}
	return b.String()
}

// Markdown renders the fix-types findings.
func (r *FixReport) Markdown() string {
	var b strings.Builder
	b.WriteString(projection.RenderHeader(2, "Field type fixes"))
	fmt.Fprintf(&b, "%d component(s) checked, %d need fixes (%d breaking), %d invalid\n\n",
		r.Total, len(r.Fixes), r.Breaking(), len(r.Invalid))

	if len(r.Fixes) > 0 {
		rows := make([][]string, 0, len(r.Fixes))
		for _, f := range r.Fixes {
			errText := ""
			if f.Err != nil {
				errText = f.Err.Error()
			}
			rows = append(rows, []string{f.Remote.Name, strconv.FormatInt(f.Remote.ID, 10), strings.ReplaceAll(f.Diff.String(), "\n", "; "), errText})
		}
		b.WriteString(projection.RenderTable([]string{"Component", "ID", "Changes", "Error"}, rows))
	}
	if len(r.Invalid) > 0 {
		items := make([]string, 0, len(r.Invalid))
		for _, f := range r.Invalid {
			items = append(items, fmt.Sprintf("%s: %v", f.Remote.Name, f.Err))
		}
		b.WriteString("\n")
		b.WriteString(projection.RenderHeader(3, "Invalid"))
		b.WriteString(projection.RenderList(items))
	}
	if r.Applied > 0 || r.Failed > 0 {
		fmt.Fprintf(&b, "\nApplied %d, failed %d\n", r.Applied, r.Failed)
	}
	return b.String()
}
