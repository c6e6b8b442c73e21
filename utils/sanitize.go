package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var sanitizer = bluemonday.StrictPolicy()

// Sanitize strips all markup from a plain-text field and trims it.
func Sanitize(input string) string {
	return strings.TrimSpace(html.UnescapeString(sanitizer.Sanitize(input)))
}

// SanitizeList sanitizes every item and drops duplicates and empties.
func SanitizeList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, Sanitize(it))
	}
	return UniqueStrings(out)
}
