package dataset

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Country is one immutable card of the deck. Values holds every numeric
// attribute present in the source record, keyed by category id.
type Country struct {
	Name            string
	NameEN          string
	Capital         string
	CapitalVariants []string
	Flag            string
	Values          map[string]float64
}

// Value returns the country's value for a category, 0 when absent.
func (c Country) Value(category string) float64 {
	return c.Values[category]
}

// HasValue reports whether the record carried a non-null value for category.
func (c Country) HasValue(category string) bool {
	_, ok := c.Values[category]
	return ok
}

// AcceptedCapitals lists the capital plus its variants, without duplicates.
func (c Country) AcceptedCapitals() []string {
	out := []string{c.Capital}
	seen := map[string]struct{}{c.Capital: {}}
	for _, v := range c.CapitalVariants {
		if _, ok := seen[v]; ok || strings.TrimSpace(v) == "" {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Records are flat JSON objects: a few string fields plus any number of
// numeric category fields (null when the source had no data).
var textFields = map[string]struct{}{
	"name": {}, "name_en": {}, "capital": {}, "capital_en": {}, "flag": {},
	"iso2": {}, "iso3": {}, "region": {}, "capital_variants": {},
}

func (c *Country) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	str := func(key string) (string, error) {
		v, ok := raw[key]
		if !ok || string(v) == "null" {
			return "", nil
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return "", fmt.Errorf("field %s: %w", key, err)
		}
		return s, nil
	}

	var err error
	if c.Name, err = str("name"); err != nil {
		return err
	}
	if c.NameEN, err = str("name_en"); err != nil {
		return err
	}
	if c.Capital, err = str("capital"); err != nil {
		return err
	}
	if c.Flag, err = str("flag"); err != nil {
		return err
	}
	capitalEN, err := str("capital_en")
	if err != nil {
		return err
	}
	if v, ok := raw["capital_variants"]; ok && string(v) != "null" {
		if err := json.Unmarshal(v, &c.CapitalVariants); err != nil {
			return fmt.Errorf("field capital_variants: %w", err)
		}
	}
	if capitalEN != "" && capitalEN != c.Capital {
		c.CapitalVariants = append(c.CapitalVariants, capitalEN)
	}

	c.Values = make(map[string]float64)
	for key, v := range raw {
		if _, skip := textFields[key]; skip || string(v) == "null" {
			continue
		}
		var f float64
		if err := json.Unmarshal(v, &f); err != nil {
			// non-numeric extras (e.g. nested metadata) are ignored
			continue
		}
		c.Values[key] = f
	}
	return nil
}
