// Package similarity decides whether a free-text answer is close enough to an
// expected one (capital city guesses).
package similarity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxDistance is the absolute edit-distance tolerance accepted by Matches.
const MaxDistance = 2

// Normalize lowercases, trims and strips diacritics so that
// "Île-de-France" and "ile-de-france" compare equal.
func Normalize(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}

// EditDistance is the Levenshtein distance between a and b, counted in runes.
// It keeps a single row sized to the shorter input.
func EditDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	if len(rb) == 0 {
		return len(ra)
	}

	row := make([]int, len(rb)+1)
	for j := range row {
		row[j] = j
	}
	for i, ca := range ra {
		diag := row[0]
		row[0] = i + 1
		for j, cb := range rb {
			cost := 1
			if ca == cb {
				cost = 0
			}
			next := min(row[j+1]+1, row[j]+1, diag+cost)
			diag = row[j+1]
			row[j+1] = next
		}
	}
	return row[len(rb)]
}

// Matches reports whether input equals correct after normalization, or is
// within MaxDistance edits of it.
func Matches(input, correct string) bool {
	in, want := Normalize(input), Normalize(correct)
	if in == want {
		return true
	}
	return EditDistance(in, want) <= MaxDistance
}

// MatchesAny is Matches against several accepted spellings.
func MatchesAny(input string, accepted ...string) bool {
	for _, c := range accepted {
		if strings.TrimSpace(c) == "" {
			continue
		}
		if Matches(input, c) {
			return true
		}
	}
	return false
}
