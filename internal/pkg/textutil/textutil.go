// Package textutil holds small text helpers shared across the pipeline.
package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// CleanSingleLine flattens text to one line: carriage returns and line feeds
// become spaces, whitespace runs collapse to a single space, ends trimmed.
func CleanSingleLine(value string) string {
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.ReplaceAll(value, "\n", " ")
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(value, " "))
}

// MaskSecret hides all but the last visible characters of a secret.
func MaskSecret(secret string, visible int) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= visible {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-visible) + secret[len(secret)-visible:]
}

// SafeTruncate bounds text to limit bytes, marking the cut.
func SafeTruncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "\n...[truncated]"
}
