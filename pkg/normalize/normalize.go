// Package normalize canonicalizes place names for equality comparison.
//
// Two names are considered the same place name when their normalized forms are
// byte-equal. Normalization lower-cases with Unicode case rules, collapses runs of
// whitespace to a single space, trims the ends and decomposes the result with
// Unicode canonical decomposition (NFD), so precomposed and combining-mark
// spellings of the same text compare equal.
//
// Accents are kept: "Köln" and "Koln" are different names.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Text returns the canonical comparison form of s.
// The empty string (an absent name) normalizes to the empty string.
func Text(s string) string {
	if s == "" {
		return ""
	}

	// A Caser carries state and is not safe for concurrent use.
	lowered := cases.Lower(language.Und).String(s)

	collapsed := strings.Join(strings.Fields(lowered), " ")

	return norm.NFD.String(collapsed)
}

// Equal reports whether a and b normalize to the same text.
func Equal(a, b string) bool {
	return Text(a) == Text(b)
}
