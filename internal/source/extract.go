// SPDX-License-Identifier: AGPL-3.0-or-later

package source

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bartekus/devflow/internal/schema"
)

// ErrNoJSON is returned when text holds no bracketed JSON span.
var ErrNoJSON = errors.New("no JSON array or object found")

// ExtractJSON returns the outermost JSON span of text, starting at whichever
// of '[' or '{' opens first. Generator output often wraps the payload in prose
// or code fences.
func ExtractJSON(text string) (string, bool) {
	pairs := [][2]byte{{'[', ']'}, {'{', '}'}}
	arr, obj := strings.IndexByte(text, '['), strings.IndexByte(text, '{')
	if obj >= 0 && (arr < 0 || obj < arr) {
		pairs[0], pairs[1] = pairs[1], pairs[0]
	}
	for _, pair := range pairs {
		start := strings.IndexByte(text, pair[0])
		end := strings.LastIndexByte(text, pair[1])
		if start >= 0 && end > start {
			return text[start : end+1], true
		}
	}
	return "", false
}

// ParseLoose decodes the JSON span of text.
//
// When strict JSON fails the span is re-read as YAML flow syntax, which
// tolerates unquoted keys, single quotes and trailing commas.
func ParseLoose(text string, log zerolog.Logger) (any, error) {
	span, ok := ExtractJSON(text)
	if !ok {
		return nil, ErrNoJSON
	}

	v, strictErr := schema.ParseJSON([]byte(span))
	if strictErr == nil {
		return v, nil
	}

	v, err := schema.ParseYAML([]byte(span))
	if err != nil || v == nil {
		return nil, fmt.Errorf("invalid JSON: %w", strictErr)
	}
	log.Warn().Err(strictErr).Msg("repaired malformed JSON")
	return v, nil
}
