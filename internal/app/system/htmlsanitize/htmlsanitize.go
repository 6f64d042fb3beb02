// Package htmlsanitize cleans user-supplied text before it is stored.
//
// Group names and usernames are plain text, so every tag is stripped from
// them. Message bodies may carry simple formatting, so they go through a
// user-generated-content policy instead.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strict = bluemonday.StrictPolicy()
	ugc    = bluemonday.UGCPolicy()
)

// Strip removes all HTML from s, leaving plain text.
func Strip(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}

// Sanitize removes dangerous HTML from s while keeping common formatting
// elements (bold, links, lists, blockquotes).
func Sanitize(s string) string {
	return ugc.Sanitize(s)
}
