// SPDX-License-Identifier: AGPL-3.0-or-later

// Package source loads raw candidate components from files, directories and
// stdin, and writes the pending-components artifact.
//
// Candidates are returned unvalidated; normalization happens downstream.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/bartekus/devflow/internal/projection"
	"github.com/bartekus/devflow/internal/schema"
)

// DefaultPendingPath is where components are parked when the remote refuses writes.
const DefaultPendingPath = "devflow.generated.components.json"

// Format selects how Parse reads its input.
type Format int

const (
	FormatAuto Format = iota
	FormatJSON
	FormatYAML
)

// FormatForPath picks a format from a file extension.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatAuto
	}
}

// Document is a batch of raw candidates, optionally bound to a space.
type Document struct {
	SpaceID    string           `json:"space_id,omitempty"`
	Components []*schema.Object `json:"components"`
}

// Loader reads candidate documents.
type Loader struct {
	Stdin io.Reader
	Log   zerolog.Logger
}

// Load reads each path in order and concatenates the candidates.
// "-" reads stdin; directories are searched for .json, .yaml and .yml files.
// The first space id found wins.
func (l Loader) Load(paths ...string) (Document, error) {
	var doc Document
	for _, p := range paths {
		files, err := l.expand(p)
		if err != nil {
			return Document{}, err
		}
		for _, f := range files {
			d, err := l.loadOne(f)
			if err != nil {
				return Document{}, err
			}
			if doc.SpaceID == "" {
				doc.SpaceID = d.SpaceID
			}
			doc.Components = append(doc.Components, d.Components...)
		}
	}
	return doc, nil
}

// Load reads paths with stdin as os.Stdin and logging disabled.
func Load(paths ...string) (Document, error) {
	return Loader{Stdin: os.Stdin, Log: zerolog.Nop()}.Load(paths...)
}

func (l Loader) expand(path string) ([]string, error) {
	if path == "-" {
		return []string{path}, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading candidates: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var found []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			found = append(found, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", path, err)
	}
	rel := make([]string, 0, len(found))
	for _, p := range found {
		r, err := filepath.Rel(path, p)
		if err != nil {
			return nil, err
		}
		rel = append(rel, r)
	}
	rel = FilterFiles(rel, FilterOptions{
		ExcludeDirs:       DefaultExcludeDirs(),
		IncludeExtensions: CandidateExtensions(),
	})
	out := make([]string, 0, len(rel))
	for _, r := range rel {
		out = append(out, filepath.Join(path, r))
	}
	return out, nil
}

func (l Loader) loadOne(path string) (Document, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		if l.Stdin == nil {
			return Document{}, errors.New("reading stdin: no input")
		}
		data, err = io.ReadAll(l.Stdin)
	} else {
		data, err = os.ReadFile(path) //nolint:gosec // user-supplied candidate path
	}
	if err != nil {
		return Document{}, fmt.Errorf("reading %s: %w", path, err)
	}

	doc, err := Parse(data, FormatForPath(path), l.Log)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	l.Log.Debug().Str("path", path).Int("components", len(doc.Components)).Msg("loaded candidates")
	return doc, nil
}

// Parse decodes one document.
//
// Accepted shapes: a list of components, a single component, or an object
// with a "components" list and an optional space id.
func Parse(data []byte, format Format, log zerolog.Logger) (Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Document{}, nil
	}

	var (
		v   any
		err error
	)
	switch format {
	case FormatYAML:
		v, err = schema.ParseYAML(data)
	case FormatJSON:
		v, err = ParseLoose(string(data), log)
	default:
		trimmed := bytes.TrimSpace(data)
		if trimmed[0] == '[' || trimmed[0] == '{' {
			v, err = ParseLoose(string(data), log)
		} else if _, ok := ExtractJSON(string(data)); ok {
			v, err = ParseLoose(string(data), log)
			if err != nil {
				v, err = schema.ParseYAML(data)
			}
		} else {
			v, err = schema.ParseYAML(data)
		}
	}
	if err != nil {
		return Document{}, err
	}
	return toDocument(v)
}

func toDocument(v any) (Document, error) {
	switch t := v.(type) {
	case nil:
		return Document{}, nil
	case []any:
		comps, err := components(t)
		return Document{Components: comps}, err
	case *schema.Object:
		list, ok := t.Get("components")
		if !ok {
			return Document{Components: []*schema.Object{t}}, nil
		}
		items, ok := list.([]any)
		if !ok {
			return Document{}, fmt.Errorf("components: expected list, got %s", schema.TypeName(list))
		}
		comps, err := components(items)
		if err != nil {
			return Document{}, err
		}
		return Document{SpaceID: spaceID(t), Components: comps}, nil
	default:
		return Document{}, fmt.Errorf("expected component list or object, got %s", schema.TypeName(v))
	}
}

func components(items []any) ([]*schema.Object, error) {
	out := make([]*schema.Object, 0, len(items))
	for i, item := range items {
		obj, ok := item.(*schema.Object)
		if !ok {
			return nil, fmt.Errorf("components[%d]: expected mapping, got %s", i, schema.TypeName(item))
		}
		out = append(out, obj)
	}
	return out, nil
}

func spaceID(doc *schema.Object) string {
	for _, key := range []string{"space_id", "spaceId"} {
		switch v, _ := doc.Get(key); t := v.(type) {
		case string:
			return t
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64)
		}
	}
	return ""
}

// WritePending atomically writes doc to path in the pending artifact format.
func WritePending(path string, doc Document) error {
	if doc.Components == nil {
		doc.Components = []*schema.Object{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding pending components: %w", err)
	}
	if err := projection.AtomicWrite(path, append(data, '\n')); err != nil {
		return fmt.Errorf("writing pending components: %w", err)
	}
	return nil
}
