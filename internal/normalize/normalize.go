// Package normalize derives the comparison keys used for case-insensitive
// matching of genre names, duplicate detection and search.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Key folds s for case-insensitive comparison: surrounding whitespace is
// trimmed, case is folded with full Unicode rules and the result is NFC.
// Key("  Straße ") == Key("STRASSE").
func Key(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	// A Caser keeps state between calls and must not be shared.
	return norm.NFC.String(cases.Fold().String(norm.NFC.String(s)))
}

// Equal reports whether a and b have the same Key.
func Equal(a, b string) bool {
	return Key(a) == Key(b)
}
