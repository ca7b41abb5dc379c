// SPDX-License-Identifier: AGPL-3.0-or-later

package source

import (
	"path/filepath"
	"slices"
	"sort"
	"strings"
)

// FilterOptions defines criteria for including or excluding candidate files.
type FilterOptions struct {
	// ExcludeDirs is a list of directory names to exclude.
	// Matching is segment-aware: "node_modules" excludes "node_modules/a.json"
	// and "web/node_modules/b.json", but not "node_modules_old/c.json".
	ExcludeDirs []string

	// IncludeExtensions is a list of extensions to include (e.g., ".json").
	// If empty, all extensions are included. Matching ignores case.
	IncludeExtensions []string
}

// CandidateExtensions are the file types Load reads from directories.
func CandidateExtensions() []string {
	return []string{".json", ".yaml", ".yml"}
}

// DefaultExcludeDirs returns the directories never searched for candidates.
func DefaultExcludeDirs() []string {
	return []string{
		"node_modules",
		".git",
		".devflow",
		"dist",
		"vendor",
	}
}

// FilterFiles applies opts to paths and returns a new, sorted slice.
func FilterFiles(paths []string, opts FilterOptions) []string {
	var filtered []string
	for _, path := range paths {
		if excluded(path, opts.ExcludeDirs) || !hasExtension(path, opts.IncludeExtensions) {
			continue
		}
		filtered = append(filtered, path)
	}
	sort.Strings(filtered)
	return filtered
}

func excluded(path string, dirs []string) bool {
	if len(dirs) == 0 {
		return false
	}
	segments := strings.Split(filepath.ToSlash(filepath.Dir(path)), "/")
	for _, seg := range segments {
		if slices.Contains(dirs, seg) {
			return true
		}
	}
	return false
}

func hasExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(extensions, ext)
}
