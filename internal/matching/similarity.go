package matching

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// minPrefix is the shortest token accepted as an abbreviation of another
// token ("oper" for "operator").
const minPrefix = 4

func tokenMatch(a, b string) bool {
	if a == b {
		return true
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	return len(a) >= minPrefix && strings.HasPrefix(b, a)
}

// dice is the token-set Dice coefficient where tokens also match by prefix.
func dice(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	used := make([]bool, len(b))
	common := 0
	for _, ta := range a {
		for j, tb := range b {
			if !used[j] && tokenMatch(ta, tb) {
				used[j] = true
				common++
				break
			}
		}
	}
	return 2 * float64(common) / float64(len(a)+len(b))
}

func acronym(toks []string) string {
	var b strings.Builder
	for _, t := range toks {
		b.WriteByte(t[0])
	}
	return b.String()
}

// abbreviation scores titles where one side abbreviates the other, either as
// an acronym ("bbp" / "blood borne pathogens") or as an in-order subsequence
// of the other's letters.
func abbreviation(a, b []string) float64 {
	short, long := strings.Join(a, ""), strings.Join(b, "")
	longToks := b
	if len(short) > len(long) {
		short, long = long, short
		longToks = a
	}
	if len(short) < 2 {
		return 0
	}
	if len(longToks) > 1 && short == acronym(longToks) {
		return 0.9
	}
	matches := fuzzy.Find(short, []string{long})
	if len(matches) == 0 {
		return 0
	}
	// A subsequence only means something when it covers most of the other side.
	return 0.9 * float64(len(short)) / float64(len(long))
}

// Similarity scores two course titles in [0, 1].
func Similarity(a, b string) float64 {
	ta, tb := Tokens(a), Tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	if strings.Join(ta, " ") == strings.Join(tb, " ") {
		return 1
	}
	score := dice(ta, tb)
	if ab := abbreviation(ta, tb); ab > score {
		score = ab
	}
	return score
}
