package core

import (
	"strings"
	"unicode"
)

// Normalize lowercases s and strips whitespace and hyphens, so that
// "AB-12-CD" and "ab 12cd" compare equal.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if r == '-' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// MatchesAny reports whether the normalized query is a substring of any of
// the normalized fields. An empty query matches everything.
func MatchesAny(query string, fields ...string) bool {
	q := Normalize(query)
	if q == "" {
		return true
	}
	for _, f := range fields {
		if f == "" {
			continue
		}
		if strings.Contains(Normalize(f), q) {
			return true
		}
	}
	return false
}
