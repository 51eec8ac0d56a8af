package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Recap text and title names are plain text; strip any markup instead
// of escaping it so stored content stays clean.
var strictPolicy = bluemonday.StrictPolicy()

// SanitizeText removes all HTML from user-submitted text and trims
// surrounding whitespace.
func SanitizeText(s string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}
