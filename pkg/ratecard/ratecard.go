// Package ratecard holds the hourly consultant rates, expressed in the base
// currency, keyed by country and seniority.
package ratecard

import (
	"maps"
	"slices"
)

// Card is an immutable country -> seniority -> hourly rate table.
type Card struct {
	rates map[string]map[string]float64
}

// Default is the rate card shipped with the calculator (EUR per hour).
var Default = New(map[string]map[string]float64{
	"Sweden": {
		"Junior": 90,
		"Mid":    120,
		"Senior": 160,
	},
	"India": {
		"Junior": 40,
		"Mid":    60,
		"Senior": 80,
	},
	"Germany": {
		"Junior": 100,
		"Mid":    140,
		"Senior": 180,
	},
})

// New copies rates into a new Card. Later changes to rates are not visible
// through the returned Card.
func New(rates map[string]map[string]float64) *Card {
	c := &Card{rates: make(map[string]map[string]float64, len(rates))}
	for country, levels := range rates {
		c.rates[country] = maps.Clone(levels)
	}
	return c
}

// Lookup returns the hourly rate for the exact (case-sensitive) country and
// seniority pair. Unknown or empty keys resolve to 0.
func (c *Card) Lookup(country, seniority string) float64 {
	if c == nil {
		return 0
	}
	return c.rates[country][seniority]
}

// Has reports whether the card has a rate for the pair.
func (c *Card) Has(country, seniority string) bool {
	if c == nil {
		return false
	}
	_, ok := c.rates[country][seniority]
	return ok
}

// Countries returns the known countries in alphabetical order.
func (c *Card) Countries() []string {
	if c == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(c.rates))
}

// Seniorities returns every seniority level offered by at least one country,
// in alphabetical order.
func (c *Card) Seniorities() []string {
	if c == nil {
		return nil
	}
	seen := make(map[string]struct{})
	for _, levels := range c.rates {
		for level := range levels {
			seen[level] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}
