// SPDX-License-Identifier: AGPL-3.0-or-later

package normalize

import (
	"regexp"
	"strings"

	"github.com/bartekus/devflow/internal/schema"
)

// synonyms maps squashed type spellings onto the canonical vocabulary.
var synonyms = map[string]schema.FieldType{
	"rich":         schema.TypeRichtext,
	"rte":          schema.TypeRichtext,
	"link":         schema.TypeMultilink,
	"url":          schema.TypeMultilink,
	"href":         schema.TypeMultilink,
	"linkurl":      schema.TypeMultilink,
	"date":         schema.TypeDatetime,
	"time":         schema.TypeDatetime,
	"timestamp":    schema.TypeDatetime,
	"dateline":     schema.TypeDatetime,
	"image":        schema.TypeAsset,
	"file":         schema.TypeAsset,
	"picture":      schema.TypeAsset,
	"photo":        schema.TypeAsset,
	"blocks":       schema.TypeBloks,
	"block":        schema.TypeBloks,
	"nested":       schema.TypeBloks,
	"group":        schema.TypeSection,
	"fieldset":     schema.TypeSection,
	"dropdown":     schema.TypeOption,
	"select":       schema.TypeOption,
	"singleoption": schema.TypeOption,
	"checkboxes":   schema.TypeOptions,
	"multioptions": schema.TypeOptions,
	"multichoice":  schema.TypeOptions,
	"files":        schema.TypeMultiasset,
	"images":       schema.TypeMultiasset,
	"gallery":      schema.TypeMultiasset,
	"references":   schema.TypeMultilink,
	"relation":     schema.TypeMultilink,
	"ref":          schema.TypeMultilink,
}

var squashRe = regexp.MustCompile(`[\s_-]+`)

// Synonyms returns a copy of the synonym table.
func Synonyms() map[string]schema.FieldType {
	out := make(map[string]schema.FieldType, len(synonyms))
	for k, v := range synonyms {
		out[k] = v
	}
	return out
}

// FieldType maps a raw type spelling onto the canonical vocabulary.
// Matching ignores case, whitespace, underscores and hyphens.
// Unrecognized spellings resolve to text.
func FieldType(raw string) schema.FieldType {
	s := squashRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(raw)), "")
	if t, ok := synonyms[s]; ok {
		return t
	}
	if t := schema.FieldType(s); t.IsCanonical() {
		return t
	}
	return schema.TypeText
}
