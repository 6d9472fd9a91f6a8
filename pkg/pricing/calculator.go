// Package pricing turns consultant line items into base-currency costs.
package pricing

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// RateLookup resolves the hourly base-currency rate for a line item.
type RateLookup func(country, seniority string) float64

// ItemCost returns rate * hours per week * weeks * allocation/100.
// Incomplete items cost 0 regardless of their other fields.
func ItemCost(item LineItem, rate float64) (float64, error) {
	if err := item.Validate(); err != nil {
		return 0, err
	}
	if rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, fmt.Errorf("%w: rate %v", ErrInvalidLineItem, rate)
	}
	if item.Incomplete() {
		return 0, nil
	}
	cost := rate * item.HoursPerWeek * item.Weeks * (item.Allocation / 100)
	if math.IsInf(cost, 0) {
		return 0, fmt.Errorf("%w: cost overflows", ErrInvalidLineItem)
	}
	return cost, nil
}

// Aggregate sums the cost of every item, resolving rates through lookup.
//
// Item costs are accumulated as exact decimals, so the total does not depend
// on the order of items. The result is rounded once when converted back to
// float64.
func Aggregate(items []LineItem, lookup RateLookup) (float64, error) {
	total := decimal.Zero
	for _, item := range items {
		var rate float64
		if lookup != nil {
			rate = lookup(item.Country, item.Seniority)
		}
		cost, err := ItemCost(item, rate)
		if err != nil {
			return 0, fmt.Errorf("item %s: %w", item.ID, err)
		}
		total = total.Add(decimal.NewFromFloat(cost))
	}
	f, _ := total.Float64()
	return f, nil
}
