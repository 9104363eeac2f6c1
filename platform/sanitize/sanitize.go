// Package sanitize provides text normalization utilities used for identity
// matching and safe text storage.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	// htmlTagRegex matches HTML tags
	htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

	// nonAlphanumRegex matches everything outside [a-z0-9]
	nonAlphanumRegex = regexp.MustCompile(`[^a-z0-9]`)
)

// Email reduces a free-text email address to its canonical comparable key:
// trimmed and lower-cased. No format validation happens here; an empty
// string stays empty.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Slug lowercases a name and strips everything outside [a-z0-9].
// Used for synthetic identifiers derived from display names.
func Slug(s string) string {
	return nonAlphanumRegex.ReplaceAllString(strings.ToLower(s), "")
}

// StripHTML removes all HTML tags from a string, making it safe for text-only display.
// This is a defense-in-depth measure; frontend should also escape output.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = strings.ReplaceAll(result, "&lt;", "<")
	result = strings.ReplaceAll(result, "&gt;", ">")
	result = strings.ReplaceAll(result, "&amp;", "&")
	result = strings.ReplaceAll(result, "&quot;", "\"")
	result = strings.ReplaceAll(result, "&#39;", "'")
	// Re-strip after entity decode to catch encoded tags
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Text sanitizes a string for safe text storage by stripping HTML
// and normalizing whitespace. Use for user-provided text fields like
// descriptions, notes, and comments.
func Text(s string) string {
	return StripHTML(s)
}

// TextPtr is a helper for optional string pointers
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	result := Text(*s)
	return &result
}
