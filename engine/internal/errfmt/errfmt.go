// Package errfmt provides shared formatting of raw engine output for log
// fields and error messages.
package errfmt

import (
	"unicode"
	"unicode/utf8"
)

// MaxLen caps raw engine lines to prevent unbounded propagation.
const MaxLen = 512

// MaxKeywordLen caps the leading keyword of an unclassified line.
const MaxKeywordLen = 32

// truncateUTF8 caps s at max bytes, backtracking to a valid UTF-8 boundary.
func truncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	end := limit
	for end > 0 && !utf8.RuneStart(s[end]) {
		end--
	}
	return s[:end]
}

// Truncate caps a string at MaxLen bytes with UTF-8-safe truncation.
func Truncate(s string) string {
	return truncateUTF8(s, MaxLen)
}

// Keyword validates and truncates the leading token of an engine line.
// Returns "" for tokens containing control characters.
func Keyword(raw string) string {
	for _, r := range raw {
		if unicode.IsControl(r) {
			return ""
		}
	}
	return truncateUTF8(raw, MaxKeywordLen)
}
