// Package company canonicalizes company names so that spelling variants of the
// same organisation compare equal.
package company

import (
	"regexp"
	"strings"
)

var (
	// \s is ASCII-only in RE2; \p{Z} adds no-break and thin spaces.
	punctuationExpr = regexp.MustCompile(`[^\p{L}\p{N}\p{Z}\s]`)
	whitespaceExpr  = regexp.MustCompile(`[\p{Z}\s]+`)
	legalSuffixExpr = regexp.MustCompile(` (inc|llc|ltd|corp|corporation|company|co|limited)$`)
)

// Normalize lowercases the name, drops punctuation, collapses whitespace and
// strips trailing legal-entity suffixes. A lone suffix word ("co") is kept.
//
// Suffixes are stripped until none remain so that
// Normalize(Normalize(x)) == Normalize(x) holds for inputs like "acme co inc".
func Normalize(raw string) string {
	name := strings.ToLower(raw)
	name = punctuationExpr.ReplaceAllString(name, "")
	name = whitespaceExpr.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)
	for {
		stripped := legalSuffixExpr.ReplaceAllString(name, "")
		if stripped == name {
			return name
		}
		name = stripped
	}
}

// Same reports whether two raw names normalize to the same non-empty value.
func Same(a, b string) bool {
	na := Normalize(a)
	return na != "" && na == Normalize(b)
}
