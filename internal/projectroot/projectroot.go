// SPDX-License-Identifier: AGPL-3.0-or-later

// Package projectroot locates the directory that owns devflow state.
package projectroot

import (
	"fmt"
	"os"
	"path/filepath"
)

// Markers identify a project root, checked in order at each level.
var Markers = []string{".devflow", ".git", "go.mod", "package.json"}

// Find walks up from start to the nearest directory holding one of Markers.
// When none is found the absolute start directory is returned.
func Find(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", start, err)
	}
	for dir := abs; ; {
		for _, m := range Markers {
			if _, err := os.Stat(filepath.Join(dir, m)); err == nil {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		dir = parent
	}
}

// Anchor resolves a relative path against the project root of wd.
func Anchor(wd, path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	root, err := Find(wd)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, path), nil
}
