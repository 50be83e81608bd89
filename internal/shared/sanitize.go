package shared

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var plainText = bluemonday.StrictPolicy()

// PlainText strips every HTML element from server supplied text so it can be printed to a terminal.
//
// Entities escaped by the policy are decoded again and surrounding whitespace is trimmed.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(plainText.Sanitize(s)))
}
