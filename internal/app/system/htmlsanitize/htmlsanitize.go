// Package htmlsanitize strips dangerous HTML from operator-supplied rich
// text. Scheme descriptions and step content are entered by officers and
// rendered to families, so they pass through here on every write.
package htmlsanitize

import (
	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.UGCPolicy()

// Sanitize returns s with scripts, event handlers, and javascript: URLs
// removed. Safe formatting tags (p, strong, em, a, lists) survive.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return policy.Sanitize(s)
}

// StripTags removes all HTML, leaving plain text. Used for fields that are
// never rendered as HTML, like scheme titles.
var strict = bluemonday.StrictPolicy()

func StripTags(s string) string {
	if s == "" {
		return ""
	}
	return strict.Sanitize(s)
}
