// Package similarity scores how close two strings are, on a scale from 0
// (nothing in common) to 1 (identical).
//
// The score is the share of the longer string that survives an edit-distance
// transformation into the shorter one:
//
//	score = (len(longer) - distance(longer, shorter)) / len(longer)
//
// Lengths are counted in Unicode code points, matching the rune-based edit
// distance. Comparison is case-sensitive and no character is ignored. In
// strings that are not valid UTF-8 every invalid byte counts as one code
// point of its own, so distinct byte strings never score 1.
package similarity

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Score returns the similarity of a and b in [0, 1].
// Two empty strings are a full match.
func Score(a, b string) float64 {
	if a == b {
		return 1
	}
	if !utf8.ValidString(a) || !utf8.ValidString(b) {
		return ratio(decode(a), decode(b))
	}
	longer, shorter := a, b
	if utf8.RuneCountInString(b) > utf8.RuneCountInString(a) {
		longer, shorter = b, a
	}
	n := utf8.RuneCountInString(longer)
	if n == 0 {
		return 1
	}
	return float64(n-levenshtein.ComputeDistance(longer, shorter)) / float64(n)
}

// invalidBase maps an invalid byte b to invalidBase+b, a lone surrogate that
// decoding valid UTF-8 never yields.
const invalidBase = 0xDC00

// decode splits s into code points, keeping each invalid byte distinct.
func decode(s string) []rune {
	rs := make([]rune, 0, len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			r = invalidBase + rune(s[i])
		}
		rs = append(rs, r)
		i += size
	}
	return rs
}

func ratio(a, b []rune) float64 {
	n := max(len(a), len(b))
	if n == 0 {
		return 1
	}
	return float64(n-distance(a, b)) / float64(n)
}

// distance is the edit distance over decoded code points. levenshtein only
// accepts strings, which would fold every invalid byte into U+FFFD.
func distance(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(a); i++ {
		prev := row[0]
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur := min(row[j]+1, row[j-1]+1, prev+cost)
			prev, row[j] = row[j], cur
		}
	}
	return row[len(b)]
}

// Above reports whether Score(candidate, query) is strictly greater than
// threshold.
func Above(candidate, query string, threshold float64) bool {
	return Score(candidate, query) > threshold
}
