// SPDX-License-Identifier: AGPL-3.0-or-later

package projectroot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFind(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".devflow"), 0o755))
	deep := filepath.Join(root, "schemas", "generated")
	require.NoError(t, os.MkdirAll(deep, 0o755))

	got, err := Find(deep)
	require.NoError(t, err)
	assert.Equal(t, root, got)
}

func TestFind_NoMarker(t *testing.T) {
	// TempDir may live under a directory with markers; only assert the result is an ancestor.
	dir := t.TempDir()
	got, err := Find(dir)
	require.NoError(t, err)
	rel, err := filepath.Rel(got, dir)
	require.NoError(t, err)
	assert.NotContains(t, rel, "..")
}

func TestAnchor(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module x\n"), 0o600))
	sub := filepath.Join(root, "a")
	require.NoError(t, os.Mkdir(sub, 0o755))

	got, err := Anchor(sub, ".devflow/run")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".devflow", "run"), got)

	got, err = Anchor(sub, "/abs/state")
	require.NoError(t, err)
	assert.Equal(t, "/abs/state", got)
}
