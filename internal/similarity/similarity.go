// Package similarity scores how alike two part descriptions are.
package similarity

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Score returns a similarity percentage in [0,100] between two
// descriptions. The metric is the classic sequence-matcher ratio
// (2*M/T over longest-matching-block decomposition) of the lower-cased
// strings, which rewards shared substrings rather than token overlap —
// the right fit for near-duplicate descriptions with minor typos.
//
// An empty string on either side scores 0: there is nothing to compare.
// Score is pure and symmetric, and Score(s, s) == 100 for non-empty s.
func Score(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}

	ra := explode(strings.ToLower(a))
	rb := explode(strings.ToLower(b))
	return difflib.NewMatcher(ra, rb).Ratio() * 100
}

// explode splits a string into per-rune elements so the line-oriented
// matcher compares character sequences.
func explode(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
