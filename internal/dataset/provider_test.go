package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProvider(t *testing.T) {
	p, err := Default()
	require.NoError(t, err)

	assert.GreaterOrEqual(t, p.Len(), 21)
	assert.Zero(t, p.Skipped())
	assert.ElementsMatch(t, []string{"population", "area", "gdp", "north_south", "east_west"}, p.CategoryIDs())

	basic, ok := p.Pool("basic")
	require.True(t, ok)
	assert.Equal(t, []string{"population", "area", "north_south", "east_west"}, basic.Categories)

	// energy keeps only the fields the sample deck carries
	energy, ok := p.Pool("energy")
	require.True(t, ok)
	assert.Equal(t, []string{"population", "area", "north_south", "east_west"}, energy.Categories)
}

func TestLabels(t *testing.T) {
	p, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "Superficie (km²)", p.Label("area", "fr"))
	assert.Equal(t, "Area (km2)", p.Label("area", "en"))
	assert.Equal(t, "Superficie (km²)", p.Label("area", "de"))
	assert.Equal(t, "unknown_cat", p.Label("unknown_cat", "en"))
	assert.Equal(t, "Economics", p.PoolLabel("economics", "en"))
	assert.Equal(t, "Economie", p.PoolLabel("economics", "fr"))
}

func TestResolvePool(t *testing.T) {
	p, err := Default()
	require.NoError(t, err)

	id, cats := p.ResolvePool("basic")
	assert.Equal(t, "basic", id)
	assert.Len(t, cats, 4)

	id, cats = p.ResolvePool("nope")
	assert.Equal(t, "", id)
	assert.Equal(t, p.CategoryIDs(), cats)

	// callers cannot mutate the provider through returned slices
	cats[0] = "tampered"
	assert.NotEqual(t, "tampered", p.CategoryIDs()[0])
}

func TestParseCountries(t *testing.T) {
	const raw = `[
		{"name": "A", "capital": "Acity", "capital_en": "A City", "flag": "x", "population": 10, "area": null, "region": "Europe"},
		{"name": "B", "capital": "Bcity", "flag": "y", "population": 5, "area": 3},
		{"name": "C", "capital": "Ccity", "flag": "z", "area": 3}
	]`
	countries, err := ParseCountries(strings.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, countries, 3)

	a := countries[0]
	assert.Equal(t, 10.0, a.Value("population"))
	assert.False(t, a.HasValue("area"))
	assert.False(t, a.HasValue("region"))
	assert.Equal(t, []string{"Acity", "A City"}, a.AcceptedCapitals())

	cfg := CategoryConfig{
		Categories: []Category{{ID: "population", Label: "Population"}, {ID: "area", Label: "Area"}},
		CategorySets: []Pool{
			{ID: "only-area", Categories: []string{"area"}},
			{ID: "mixed", Categories: []string{"area", "population"}},
		},
	}
	p, err := New(countries, cfg)
	require.NoError(t, err)

	// area is null on the first record, so it is disabled
	assert.Equal(t, []string{"population"}, p.CategoryIDs())
	_, ok := p.Pool("only-area")
	assert.False(t, ok)
	mixed, ok := p.Pool("mixed")
	require.True(t, ok)
	assert.Equal(t, []string{"population"}, mixed.Categories)

	// C has no population and is dropped
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, 1, p.Skipped())
}

func TestParseCountriesRejectsIncompleteFirstRecord(t *testing.T) {
	_, err := ParseCountries(strings.NewReader(`[{"name": "A", "population": 1}]`))
	assert.Error(t, err)

	_, err = ParseCountries(strings.NewReader(`[]`))
	assert.ErrorIs(t, err, ErrNoCountries)
}

func TestNewRejectsEmptyInputs(t *testing.T) {
	cfg, err := DefaultCategoryConfig()
	require.NoError(t, err)

	_, err = New(nil, cfg)
	assert.ErrorIs(t, err, ErrNoCountries)

	_, err = New([]Country{{Name: "A", Capital: "a", Flag: "f", Values: map[string]float64{"other": 1}}}, cfg)
	assert.ErrorIs(t, err, ErrNoCategories)
}

func TestParseCategoryConfigFallsBackToDefaults(t *testing.T) {
	cfg, err := ParseCategoryConfig([]byte(`enabled_categories: [area]`))
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Categories)
	assert.NotEmpty(t, cfg.CategorySets)
	assert.Equal(t, []string{"area"}, cfg.EnabledCategories)

	_, err = ParseCategoryConfig([]byte(`categories: [{label: x}]`))
	assert.Error(t, err)
}
