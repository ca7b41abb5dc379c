// SPDX-License-Identifier: AGPL-3.0-or-later

package reconcile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/bartekus/devflow/internal/projection"
)

// DefaultStateDir holds run state relative to the working directory.
const DefaultStateDir = ".devflow/run"

// StateStore reads and writes batch run state.
type StateStore struct {
	baseDir string
}

// NewStateStore creates a store at baseDir (e.g. .devflow/run).
func NewStateStore(baseDir string) *StateStore {
	return &StateStore{baseDir: baseDir}
}

func (s *StateStore) lastRunPath() string {
	return filepath.Join(s.baseDir, "last-run.json")
}

// ReadLastRun loads the last run report. A missing file yields nil, nil.
func (s *StateStore) ReadLastRun() (*Report, error) {
	data, err := os.ReadFile(s.lastRunPath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading last run: %w", err)
	}

	var last Report
	if err := json.Unmarshal(data, &last); err != nil {
		return nil, fmt.Errorf("decoding last run: %w", err)
	}
	return &last, nil
}

// WriteLastRun saves r as the last run report.
func (s *StateStore) WriteLastRun(r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding last run: %w", err)
	}
	return projection.AtomicWrite(s.lastRunPath(), append(data, '\n'))
}

// LoadFailed returns the components that failed in the last run.
func (s *StateStore) LoadFailed() ([]string, error) {
	last, err := s.ReadLastRun()
	if err != nil || last == nil {
		return nil, err
	}
	return last.Failed, nil
}

// Reset clears the state directory.
func (s *StateStore) Reset() error {
	return os.RemoveAll(s.baseDir)
}
