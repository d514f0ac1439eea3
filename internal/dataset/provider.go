package dataset

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed countries.json
var defaultCountriesJSON []byte

const DefaultLanguage = "fr"

var (
	ErrNoCountries  = errors.New("dataset has no countries")
	ErrNoCategories = errors.New("no category is enabled for this dataset")
)

// Provider is the read-only deck and category metadata shared by every
// session. It is built once at startup and never mutated.
type Provider struct {
	countries  []Country
	categories []Category
	catIndex   map[string]int
	pools      []Pool
	poolIndex  map[string]int
	skipped    int
}

// New filters cfg against the fields present on the first country record:
// a category is enabled only if that record carries it, pools keep only
// enabled categories and disappear when left empty. Countries lacking a
// value for an enabled category are dropped.
func New(countries []Country, cfg CategoryConfig) (*Provider, error) {
	if len(countries) == 0 {
		return nil, ErrNoCountries
	}

	enabled := cfg.EnabledCategories
	if len(enabled) == 0 {
		for _, c := range cfg.Categories {
			enabled = append(enabled, c.ID)
		}
	}
	byID := make(map[string]Category, len(cfg.Categories))
	for _, c := range cfg.Categories {
		byID[c.ID] = c
	}

	first := countries[0]
	p := &Provider{catIndex: map[string]int{}, poolIndex: map[string]int{}}
	for _, id := range enabled {
		id = strings.TrimSpace(id)
		if _, dup := p.catIndex[id]; dup || !first.HasValue(id) {
			continue
		}
		c, ok := byID[id]
		if !ok {
			c = Category{ID: id, Label: id}
		}
		p.catIndex[id] = len(p.categories)
		p.categories = append(p.categories, c)
	}
	if len(p.categories) == 0 {
		return nil, ErrNoCategories
	}

	for _, set := range cfg.CategorySets {
		if strings.TrimSpace(set.ID) == "" {
			continue
		}
		var ids []string
		for _, id := range set.Categories {
			if _, ok := p.catIndex[id]; ok {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			continue
		}
		if set.Label == "" {
			set.Label = set.ID
		}
		set.Categories = ids
		if i, dup := p.poolIndex[set.ID]; dup {
			p.pools[i] = set
			continue
		}
		p.poolIndex[set.ID] = len(p.pools)
		p.pools = append(p.pools, set)
	}

	seen := make(map[string]struct{}, len(countries))
	for _, c := range countries {
		if strings.TrimSpace(c.Name) == "" || !p.complete(c) {
			p.skipped++
			continue
		}
		if _, dup := seen[c.Name]; dup {
			p.skipped++
			continue
		}
		seen[c.Name] = struct{}{}
		p.countries = append(p.countries, c)
	}
	if len(p.countries) == 0 {
		return nil, ErrNoCountries
	}
	return p, nil
}

func (p *Provider) complete(c Country) bool {
	for _, cat := range p.categories {
		if !c.HasValue(cat.ID) {
			return false
		}
	}
	return true
}

// Default builds a provider from the embedded sample deck and categories.
func Default() (*Provider, error) {
	countries, err := ParseCountries(bytes.NewReader(defaultCountriesJSON))
	if err != nil {
		return nil, err
	}
	cfg, err := DefaultCategoryConfig()
	if err != nil {
		return nil, err
	}
	return New(countries, cfg)
}

// Load builds a provider from files; empty paths fall back to the embedded data.
func Load(countriesPath, categoriesPath string) (*Provider, error) {
	var countries []Country
	if strings.TrimSpace(countriesPath) == "" {
		c, err := ParseCountries(bytes.NewReader(defaultCountriesJSON))
		if err != nil {
			return nil, err
		}
		countries = c
	} else {
		f, err := os.Open(countriesPath)
		if err != nil {
			return nil, fmt.Errorf("open countries: %w", err)
		}
		defer f.Close()
		c, err := ParseCountries(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", countriesPath, err)
		}
		countries = c
	}
	cfg, err := LoadCategoryConfig(categoriesPath)
	if err != nil {
		return nil, err
	}
	return New(countries, cfg)
}

// ParseCountries decodes a JSON array of country records. The first record
// must carry name, capital and flag.
func ParseCountries(r io.Reader) ([]Country, error) {
	var out []Country
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode countries: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrNoCountries
	}
	if f := out[0]; f.Name == "" || f.Capital == "" || f.Flag == "" {
		return nil, errors.New("country records must carry name, capital and flag")
	}
	return out, nil
}

// Countries returns a copy of the deck.
func (p *Provider) Countries() []Country {
	return append([]Country(nil), p.countries...)
}

// Len is the deck size.
func (p *Provider) Len() int { return len(p.countries) }

// Skipped counts records rejected while building the deck.
func (p *Provider) Skipped() int { return p.skipped }

func (p *Provider) Categories() []Category {
	return append([]Category(nil), p.categories...)
}

func (p *Provider) CategoryIDs() []string {
	ids := make([]string, len(p.categories))
	for i, c := range p.categories {
		ids[i] = c.ID
	}
	return ids
}

func (p *Provider) Pools() []Pool {
	out := make([]Pool, len(p.pools))
	for i, pool := range p.pools {
		pool.Categories = append([]string(nil), pool.Categories...)
		out[i] = pool
	}
	return out
}

func (p *Provider) Pool(id string) (Pool, bool) {
	i, ok := p.poolIndex[id]
	if !ok {
		return Pool{}, false
	}
	pool := p.pools[i]
	pool.Categories = append([]string(nil), pool.Categories...)
	return pool, true
}

// ResolvePool returns the categories of the named pool, or every enabled
// category (and an empty set id) when the pool is unknown or unset.
func (p *Provider) ResolvePool(setID string) (string, []string) {
	if pool, ok := p.Pool(setID); ok {
		return pool.ID, pool.Categories
	}
	return "", p.CategoryIDs()
}

// Label is the display label of a category in lang, falling back to the
// default-language label and finally to the id itself.
func (p *Provider) Label(categoryID, lang string) string {
	i, ok := p.catIndex[categoryID]
	if !ok {
		return categoryID
	}
	c := p.categories[i]
	if l := c.Labels[lang]; l != "" {
		return l
	}
	if c.Label != "" {
		return c.Label
	}
	return categoryID
}

// PoolLabel mirrors Label for category sets.
func (p *Provider) PoolLabel(setID, lang string) string {
	i, ok := p.poolIndex[setID]
	if !ok {
		return setID
	}
	pool := p.pools[i]
	if l := pool.Labels[lang]; l != "" {
		return l
	}
	return pool.Label
}
