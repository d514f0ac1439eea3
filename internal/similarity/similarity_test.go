package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ile-de-france", Normalize("Île-de-France"))
	assert.Equal(t, Normalize("ile-de-france"), Normalize("  Île-de-France "))
	assert.Equal(t, "bogota", Normalize("Bogotá"))
	assert.Equal(t, "", Normalize("   "))
}

func TestEditDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"paris", "pariss", 1},
		{"flaw", "lawn", 2},
		{"héllo", "hello", 1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, EditDistance(tc.a, tc.b), "%q vs %q", tc.a, tc.b)
		assert.Equal(t, tc.want, EditDistance(tc.b, tc.a), "%q vs %q", tc.b, tc.a)
	}
}

func TestMatches(t *testing.T) {
	assert.True(t, Matches("Paris", "Paris"))
	assert.True(t, Matches("pariss", "Paris"))
	assert.True(t, Matches("PARI", "Paris"))
	assert.False(t, Matches("Berlin", "Paris"))
	assert.True(t, Matches("Bogota", "Bogotá"))
	// tolerance is absolute, so short names are easy to hit
	assert.True(t, Matches("Rim", "Rome"))
	assert.False(t, Matches("Canberra", "Sydney"))
}

func TestMatchesAny(t *testing.T) {
	assert.True(t, MatchesAny("Beijing", "Pékin", "Beijing"))
	assert.True(t, MatchesAny("pekin", "Pékin", "Beijing"))
	assert.False(t, MatchesAny("Shanghai", "Pékin", "Beijing"))
	assert.False(t, MatchesAny("", " "))
}
