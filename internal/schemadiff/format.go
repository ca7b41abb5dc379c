// SPDX-License-Identifier: AGPL-3.0-or-later

package schemadiff

import (
	"fmt"
	"strings"
)

// NoChanges is the rendering of an empty diff.
const NoChanges = "No changes"

const breakingMark = " [BREAKING]"

// String renders one summary line per non-empty category.
func (d Diff) String() string {
	if d.Empty() {
		return NoChanges
	}

	var lines []string
	if len(d.Added) > 0 {
		lines = append(lines, "+ Added fields: "+strings.Join(d.Added, ", "))
	}
	if len(d.Removed) > 0 {
		lines = append(lines, "- Removed fields: "+strings.Join(d.Removed, ", ")+breakingMark)
	}
	if len(d.Changed) > 0 {
		parts := make([]string, 0, len(d.Changed))
		for _, c := range d.Changed {
			old := string(c.OldType)
			if old == "" {
				old = "?"
			}
			p := fmt.Sprintf("%s: %s → %s", c.Field, old, c.NewType)
			if c.Breaking {
				p += breakingMark
			}
			parts = append(parts, p)
		}
		lines = append(lines, "~ Changed types: "+strings.Join(parts, ", "))
	}
	return strings.Join(lines, "\n")
}
