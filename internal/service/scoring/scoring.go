// Package scoring orders indirect match candidates.
package scoring

import (
	"cmp"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Candidate captures the signals used to rank one indirect match.
type Candidate struct {
	ContactID    uuid.UUID
	Confidence   int
	SuccessCount int
	ResponseRate int
	Summary      string
}

// Trust is the connector trust score: completed introductions plus response rate.
func Trust(successCount, responseRate int) int {
	return successCount + responseRate
}

// Richness measures how much enrichment narrative a candidate carries.
func Richness(summary string) int {
	return len([]rune(strings.TrimSpace(summary)))
}

// Compare orders a before b when a ranks higher: confidence, then trust, then
// richness, all descending, then contact id ascending for determinism.
func Compare(a, b Candidate) int {
	if c := cmp.Compare(b.Confidence, a.Confidence); c != 0 {
		return c
	}
	if c := cmp.Compare(Trust(b.SuccessCount, b.ResponseRate), Trust(a.SuccessCount, a.ResponseRate)); c != 0 {
		return c
	}
	if c := cmp.Compare(Richness(b.Summary), Richness(a.Summary)); c != 0 {
		return c
	}
	return strings.Compare(a.ContactID.String(), b.ContactID.String())
}

// Rank sorts candidates best first, in place.
func Rank(candidates []Candidate) {
	slices.SortStableFunc(candidates, Compare)
}
