// SPDX-License-Identifier: AGPL-3.0-or-later

package normalize

import (
	"regexp"
	"strings"

	"github.com/bartekus/devflow/internal/schema"
)

type pattern struct {
	family string
	re     *regexp.Regexp
	typ    schema.FieldType
	// unless vetoes a match, leaving the key to later families.
	unless *regexp.Regexp
}

var flagPrefix = regexp.MustCompile(`^(is|has)_`)

// Order matters: the first matching family wins.
var patterns = []pattern{
	{"date", regexp.MustCompile(`^(date|published|created|updated|timestamp|time)(_at|_on)?$`), schema.TypeDatetime, nil},
	{"asset", regexp.MustCompile(`^(image|avatar|logo|icon|cover|photo|picture|thumbnail|file|attachment|document)(_image|_url|_path)?$`), schema.TypeAsset, nil},
	{"asset", regexp.MustCompile(`^[a-z0-9]+_(image|photo|picture|avatar|logo|icon|thumbnail)$`), schema.TypeAsset, flagPrefix},
	{"link", regexp.MustCompile(`^(url|link|href|website|external)(_link|_url)?$`), schema.TypeMultilink, nil},
	{"content", regexp.MustCompile(`^(body|content|description|bio|about|rich)(_text|_content)?$`), schema.TypeRichtext, nil},
	{"numeric", regexp.MustCompile(`^(count|price|qty|quantity|amount|number|order|sort|weight|height|width)$`), schema.TypeNumber, nil},
	{"boolean", regexp.MustCompile(`^(is_|has_|enable|active|visible|published|featured)`), schema.TypeBoolean, nil},
	{"boolean", regexp.MustCompile(`^(enabled|active|visible|published|featured)$`), schema.TypeBoolean, nil},
	{"relation", regexp.MustCompile(`^(author|category|tags|related|items|posts|articles|entries)$`), schema.TypeMultilink, nil},
}

// Infer guesses a field type from its key. It reports false when no pattern family matches.
func Infer(key string) (schema.FieldType, bool) {
	name := strings.ToLower(strings.TrimSpace(key))
	if name == "" {
		return "", false
	}
	for _, p := range patterns {
		if p.re.MatchString(name) && (p.unless == nil || !p.unless.MatchString(name)) {
			return p.typ, true
		}
	}
	return "", false
}
