package pricing

import (
	"math/rand/v2"
	"testing"

	"github.com/amirasaad/pricer/pkg/ratecard"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(country, seniority string, hours, weeks, allocation float64) LineItem {
	return LineItem{
		ID:           uuid.New(),
		Name:         "Consultant",
		Country:      country,
		Seniority:    seniority,
		HoursPerWeek: hours,
		Weeks:        weeks,
		Allocation:   allocation,
	}
}

func TestItemCost(t *testing.T) {
	tests := []struct {
		name string
		item LineItem
		rate float64
		want float64
	}{
		{name: "full allocation", item: item("Sweden", "Mid", 40, 12, 100), rate: 120, want: 57600},
		{name: "half allocation", item: item("India", "Junior", 40, 10, 50), rate: 40, want: 8000},
		{name: "zero weeks", item: item("Germany", "Senior", 40, 0, 100), rate: 180, want: 0},
		{name: "zero allocation", item: item("Germany", "Senior", 40, 4, 0), rate: 180, want: 0},
		{name: "missing country", item: item("", "Mid", 40, 12, 100), rate: 120, want: 0},
		{name: "missing seniority", item: item("Sweden", "", 40, 12, 100), rate: 120, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ItemCost(tt.item, tt.rate)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestItemCost_Invalid(t *testing.T) {
	tests := []struct {
		name string
		item LineItem
		rate float64
	}{
		{name: "negative hours", item: item("Sweden", "Mid", -1, 12, 100), rate: 120},
		{name: "negative weeks", item: item("Sweden", "Mid", 40, -2, 100), rate: 120},
		{name: "allocation above 100", item: item("Sweden", "Mid", 40, 12, 101), rate: 120},
		{name: "negative allocation", item: item("Sweden", "Mid", 40, 12, -5), rate: 120},
		{name: "negative rate", item: item("Sweden", "Mid", 40, 12, 100), rate: -1},
		{name: "incomplete but negative hours", item: item("", "", -1, 12, 100), rate: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ItemCost(tt.item, tt.rate)
			assert.ErrorIs(t, err, ErrInvalidLineItem)
		})
	}
}

func TestItemCost_NonNegative(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for range 500 {
		it := item("Sweden", "Mid", r.Float64()*80, r.Float64()*52, r.Float64()*100)
		rate := r.Float64() * 200
		got, err := ItemCost(it, rate)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.InDelta(t, rate*it.HoursPerWeek*it.Weeks*(it.Allocation/100), got, 1e-9)
	}
}

func TestAggregate(t *testing.T) {
	items := []LineItem{
		item("Sweden", "Mid", 40, 12, 100),
		item("", "Mid", 40, 12, 100),
	}

	total, err := Aggregate(items, ratecard.Default.Lookup)
	require.NoError(t, err)
	assert.InDelta(t, 57600.0, total, 0)
}

func TestAggregate_Empty(t *testing.T) {
	total, err := Aggregate(nil, ratecard.Default.Lookup)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestAggregate_PermutationInvariant(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	countries := ratecard.Default.Countries()
	levels := ratecard.Default.Seniorities()

	items := make([]LineItem, 200)
	for i := range items {
		items[i] = item(
			countries[r.IntN(len(countries))],
			levels[r.IntN(len(levels))],
			r.Float64()*60,
			r.Float64()*40,
			r.Float64()*100,
		)
	}

	want, err := Aggregate(items, ratecard.Default.Lookup)
	require.NoError(t, err)

	for range 20 {
		shuffled := append([]LineItem(nil), items...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		got, err := Aggregate(shuffled, ratecard.Default.Lookup)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestAggregate_InvalidItem(t *testing.T) {
	items := []LineItem{item("Sweden", "Mid", 40, 12, 150)}
	_, err := Aggregate(items, ratecard.Default.Lookup)
	assert.ErrorIs(t, err, ErrInvalidLineItem)
}

func TestLineItem_Incomplete(t *testing.T) {
	assert.True(t, item("", "Mid", 40, 1, 100).Incomplete())
	assert.True(t, item("Sweden", "", 40, 1, 100).Incomplete())
	assert.False(t, item("Sweden", "Mid", 40, 1, 100).Incomplete())
}
