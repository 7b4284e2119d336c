package scoring

import (
	"testing"

	"github.com/google/uuid"
)

func TestRank_Ordering(t *testing.T) {
	idA := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	idB := uuid.MustParse("00000000-0000-0000-0000-00000000000b")

	tests := map[string]struct {
		input []Candidate
		want  []uuid.UUID
	}{
		"confidence first": {
			input: []Candidate{
				{ContactID: idA, Confidence: 60, SuccessCount: 10, ResponseRate: 100},
				{ContactID: idB, Confidence: 90},
			},
			want: []uuid.UUID{idB, idA},
		},
		"trust breaks confidence ties": {
			input: []Candidate{
				{ContactID: idA, Confidence: 80, SuccessCount: 1, ResponseRate: 50},
				{ContactID: idB, Confidence: 80, SuccessCount: 2, ResponseRate: 67},
			},
			want: []uuid.UUID{idB, idA},
		},
		"richness breaks trust ties": {
			input: []Candidate{
				{ContactID: idA, Confidence: 80, Summary: "short"},
				{ContactID: idB, Confidence: 80, Summary: "a much longer narrative summary"},
			},
			want: []uuid.UUID{idB, idA},
		},
		"contact id last": {
			input: []Candidate{
				{ContactID: idB, Confidence: 80},
				{ContactID: idA, Confidence: 80},
			},
			want: []uuid.UUID{idA, idB},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			Rank(tc.input)
			for i, id := range tc.want {
				if tc.input[i].ContactID != id {
					t.Fatalf("position %d: expected %s, got %s", i, id, tc.input[i].ContactID)
				}
			}
		})
	}
}

func TestTrustAndRichness(t *testing.T) {
	if got := Trust(3, 75); got != 78 {
		t.Fatalf("expected trust 78, got %d", got)
	}
	if got := Richness("  héllo  "); got != 5 {
		t.Fatalf("expected richness 5, got %d", got)
	}
	if got := Richness(""); got != 0 {
		t.Fatalf("expected richness 0, got %d", got)
	}
}
