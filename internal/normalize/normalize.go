// Package normalize canonicalises user-supplied identifiers and text.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var (
	fold       = cases.Fold()
	whitespace = regexp.MustCompile(`\s+`)
)

// Email returns the canonical form of an email address: NFKC-normalised,
// trimmed and case-folded.
func Email(raw string) string {
	return Key(raw)
}

// Username trims and NFKC-normalises a username, keeping its case for display.
func Username(raw string) string {
	return strings.TrimSpace(norm.NFKC.String(Text(raw)))
}

// Key returns a case-insensitive lookup key for raw.
func Key(raw string) string {
	return fold.String(strings.TrimSpace(norm.NFKC.String(Text(raw))))
}

// Label returns a lowercase label with inner whitespace collapsed to single spaces.
func Label(raw string) string {
	s := Key(raw)
	return whitespace.ReplaceAllString(s, " ")
}

// Title trims a free-text line and collapses inner whitespace.
func Title(raw string) string {
	s := norm.NFC.String(Text(raw))
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// Text drops NUL bytes, which SQLite and JSON consumers mishandle.
func Text(s string) string {
	if !strings.ContainsRune(s, 0) {
		return s
	}
	return strings.Map(func(r rune) rune {
		if r == 0 {
			return -1
		}
		return r
	}, s)
}
