package session

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/amirasaad/pricer/pkg/currency"
	"github.com/amirasaad/pricer/pkg/exchange"
	"github.com/amirasaad/pricer/pkg/pricing"
	"github.com/amirasaad/pricer/pkg/ratecard"
	"github.com/amirasaad/pricer/pkg/ratestore"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRates struct {
	mock.Mock
}

func (m *MockRates) Current() exchange.Snapshot {
	args := m.Called()
	return args.Get(0).(exchange.Snapshot)
}

func (m *MockRates) Status() ratestore.Status {
	args := m.Called()
	return args.Get(0).(ratestore.Status)
}

func (m *MockRates) Refresh(ctx context.Context, base string, targets []string) error {
	args := m.Called(ctx, base, targets)
	return args.Error(0)
}

func liveSnapshot(rates map[string]float64) exchange.Snapshot {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return exchange.Snapshot{
		Base:      "EUR",
		Rates:     rates,
		Source:    exchange.DefaultSource,
		RateTime:  now,
		FetchedAt: now,
	}
}

func newSession(t *testing.T, rates *MockRates, opts ...Option) *Session {
	t.Helper()
	registry, err := currency.NewRegistry("EUR", "EUR", "USD", "GBP", "SEK")
	require.NoError(t, err)
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return New(ratecard.Default, rates, registry, opts...)
}

func staticRates(snapshot exchange.Snapshot) *MockRates {
	rates := &MockRates{}
	rates.On("Current").Return(snapshot)
	rates.On("Status").Return(ratestore.Status{Source: snapshot.Source, Base: snapshot.Base})
	return rates
}

func TestAddLineItem_Defaults(t *testing.T) {
	s := newSession(t, staticRates(liveSnapshot(exchange.FallbackRates)))

	first := s.AddLineItem()
	second := s.AddLineItem()

	assert.Equal(t, "Consultant 1", first.Name)
	assert.Equal(t, "Consultant 2", second.Name)
	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.InDelta(t, 40.0, first.HoursPerWeek, 0)
	assert.InDelta(t, 0.0, first.Weeks, 0)
	assert.InDelta(t, 100.0, first.Allocation, 0)
	assert.Empty(t, first.Country)
	assert.Empty(t, first.Seniority)
	assert.True(t, s.IsIncomplete())
	assert.Len(t, s.Items(), 2)
}

func TestWithSeed(t *testing.T) {
	s := newSession(t, staticRates(liveSnapshot(exchange.FallbackRates)), WithSeed(DefaultSeed()))

	items := s.Items()
	require.Len(t, items, 1)
	assert.NotEqual(t, uuid.Nil, items[0].ID)
	assert.False(t, s.IsIncomplete())

	added := s.AddLineItem()
	assert.Equal(t, "Consultant 2", added.Name)

	view := s.ComputeView()
	assert.InDelta(t, 57600.0, view.TotalBase, 1e-9)
}

func TestWithSeed_SkipsInvalidItems(t *testing.T) {
	overAllocated := DefaultSeed()
	overAllocated.Name = "Consultant 2"
	overAllocated.Allocation = 150
	negativeWeeks := DefaultSeed()
	negativeWeeks.Weeks = -4

	s := newSession(t, staticRates(liveSnapshot(exchange.FallbackRates)),
		WithSeed(DefaultSeed(), overAllocated, negativeWeeks))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Consultant 1", items[0].Name)
	assert.Equal(t, "Consultant 2", s.AddLineItem().Name)

	view := s.ComputeView()
	assert.InDelta(t, 57600.0, view.TotalBase, 1e-9)
	var sum float64
	for _, item := range view.Items {
		sum += item.CostBase
	}
	assert.InDelta(t, sum, view.TotalBase, 1e-9)
}

func TestUpdateLineItem(t *testing.T) {
	s := newSession(t, staticRates(liveSnapshot(exchange.FallbackRates)))
	item := s.AddLineItem()

	require.NoError(t, s.UpdateLineItem(item.ID, FieldCountry, "Sweden"))
	require.NoError(t, s.UpdateLineItem(item.ID, FieldSeniority, "Senior"))
	require.NoError(t, s.UpdateLineItem(item.ID, FieldWeeks, "10"))
	require.NoError(t, s.UpdateLineItem(item.ID, FieldAllocation, 50))

	got, ok := s.Item(item.ID)
	require.True(t, ok)
	assert.Equal(t, "Sweden", got.Country)
	assert.Equal(t, "Senior", got.Seniority)
	assert.InDelta(t, 10.0, got.Weeks, 0)
	assert.InDelta(t, 50.0, got.Allocation, 0)
	assert.False(t, s.IsIncomplete())
}

func TestUpdateLineItem_InvalidLeavesItemUnchanged(t *testing.T) {
	s := newSession(t, staticRates(liveSnapshot(exchange.FallbackRates)))
	item := s.AddLineItem()

	tests := []struct {
		name  string
		field Field
		value any
		err   error
	}{
		{"negative hours", FieldHoursPerWeek, -1.0, pricing.ErrInvalidLineItem},
		{"allocation above 100", FieldAllocation, 101, pricing.ErrInvalidLineItem},
		{"not a number", FieldWeeks, "ten", ErrInvalidFieldValue},
		{"wrong type", FieldCountry, 12, ErrInvalidFieldValue},
		{"unknown field", Field("rate"), 1.0, ErrUnknownField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.UpdateLineItem(item.ID, tt.field, tt.value)
			require.ErrorIs(t, err, tt.err)
			got, _ := s.Item(item.ID)
			assert.Equal(t, item, got)
		})
	}
}

func TestUpdateLineItem_NumericValueTypes(t *testing.T) {
	s := newSession(t, staticRates(liveSnapshot(exchange.FallbackRates)))
	item := s.AddLineItem()

	tests := []struct {
		name  string
		field Field
		value any
		want  float64
	}{
		{"int32", FieldWeeks, int32(10), 10},
		{"uint", FieldWeeks, uint(5), 5},
		{"uint8", FieldAllocation, uint8(80), 80},
		{"int16", FieldHoursPerWeek, int16(32), 32},
		{"json number", FieldWeeks, json.Number("7.5"), 7.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, s.UpdateLineItem(item.ID, tt.field, tt.value))
			got, _ := s.Item(item.ID)
			switch tt.field {
			case FieldWeeks:
				assert.InDelta(t, tt.want, got.Weeks, 0)
			case FieldAllocation:
				assert.InDelta(t, tt.want, got.Allocation, 0)
			default:
				assert.InDelta(t, tt.want, got.HoursPerWeek, 0)
			}
		})
	}

	before, _ := s.Item(item.ID)
	require.ErrorIs(t, s.UpdateLineItem(item.ID, FieldWeeks, true), ErrInvalidFieldValue)
	require.ErrorIs(t, s.UpdateLineItem(item.ID, FieldWeeks, json.Number("NaN")), ErrInvalidFieldValue)
	after, _ := s.Item(item.ID)
	assert.Equal(t, before, after)
}

func TestUpdateLineItem_UnknownIDIsNoop(t *testing.T) {
	s := newSession(t, staticRates(liveSnapshot(exchange.FallbackRates)))
	item := s.AddLineItem()

	require.NoError(t, s.UpdateLineItem(uuid.New(), FieldCountry, "Sweden"))
	got, _ := s.Item(item.ID)
	assert.Equal(t, item, got)
}

func TestRemoveLineItem(t *testing.T) {
	s := newSession(t, staticRates(liveSnapshot(exchange.FallbackRates)))
	a := s.AddLineItem()
	b := s.AddLineItem()

	assert.True(t, s.RemoveLineItem(a.ID))
	assert.False(t, s.RemoveLineItem(a.ID))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, b.ID, items[0].ID)
}

func TestComputeView_ConvertsToSelectedCurrency(t *testing.T) {
	rates := staticRates(liveSnapshot(map[string]float64{"EUR": 1, "USD": 1.1, "GBP": 0.85, "SEK": 11}))
	s := newSession(t, rates, WithSeed(DefaultSeed()))

	require.NoError(t, s.SetSelectedCurrency(context.Background(), "USD"))
	view := s.ComputeView()

	assert.Equal(t, "EUR", view.BaseCurrency)
	assert.Equal(t, "USD", view.DisplayCurrency)
	assert.InDelta(t, 57600.0, view.TotalBase, 1e-9)
	assert.InDelta(t, 63360.0, view.TotalDisplay, 1e-6)
	assert.InDelta(t, 1.1, view.Rates.Rate, 0)
	assert.False(t, view.Rates.Fallback)
	require.Len(t, view.Items, 1)
	assert.InDelta(t, 120.0, view.Items[0].HourlyRateBase, 0)
	assert.InDelta(t, 132.0, view.Items[0].HourlyRateDisplay, 1e-9)
	rates.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything, mock.Anything)
}

func TestComputeView_BaseCurrencyIsIdentity(t *testing.T) {
	s := newSession(t, staticRates(liveSnapshot(map[string]float64{"EUR": 1.2, "USD": 1.1})), WithSeed(DefaultSeed()))

	view := s.ComputeView()
	assert.InDelta(t, view.TotalBase, view.TotalDisplay, 0)
	assert.InDelta(t, 1.0, view.Rates.Rate, 0)
}

func TestComputeView_IncompleteItemCostsZero(t *testing.T) {
	s := newSession(t, staticRates(liveSnapshot(exchange.FallbackRates)), WithSeed(DefaultSeed()))
	item := s.AddLineItem()
	require.NoError(t, s.UpdateLineItem(item.ID, FieldWeeks, 10))

	view := s.ComputeView()
	assert.True(t, view.Incomplete)
	assert.InDelta(t, 57600.0, view.TotalBase, 1e-9)
	assert.True(t, view.Items[1].Incomplete)
	assert.InDelta(t, 0.0, view.Items[1].CostBase, 0)
}

func TestCalculate_GatedOnIncompleteItems(t *testing.T) {
	s := newSession(t, staticRates(liveSnapshot(exchange.FallbackRates)), WithSeed(DefaultSeed()))

	view, err := s.Calculate()
	require.NoError(t, err)
	assert.InDelta(t, 57600.0, view.TotalBase, 1e-9)

	s.AddLineItem()
	_, err = s.Calculate()
	assert.ErrorIs(t, err, pricing.ErrIncompleteSelection)
}

func TestCalculate_ConsistentUnderConcurrentUpdates(t *testing.T) {
	s := newSession(t, staticRates(liveSnapshot(exchange.FallbackRates)), WithSeed(DefaultSeed()))
	id := s.Items()[0].ID

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			country := "Sweden"
			if i%2 == 0 {
				country = ""
			}
			_ = s.UpdateLineItem(id, FieldCountry, country)
		}
	}()

	for range 2000 {
		view, err := s.Calculate()
		if err != nil {
			require.ErrorIs(t, err, pricing.ErrIncompleteSelection)
			continue
		}
		require.False(t, view.Incomplete)
		require.InDelta(t, 57600.0, view.TotalBase, 1e-9)
	}
	close(stop)
	wg.Wait()
}

func TestSetSelectedCurrency_Unsupported(t *testing.T) {
	s := newSession(t, staticRates(liveSnapshot(exchange.FallbackRates)))

	err := s.SetSelectedCurrency(context.Background(), "JPY")
	require.ErrorIs(t, err, currency.ErrUnsupportedCurrency)
	assert.Equal(t, "EUR", s.SelectedCurrency())
}

func TestSetSelectedCurrency_RefreshesWhenRateMissing(t *testing.T) {
	rates := staticRates(liveSnapshot(map[string]float64{"EUR": 1, "USD": 1.1}))
	rates.On("Refresh", mock.Anything, "EUR", []string{"EUR", "USD", "GBP", "SEK"}).Return(nil).Once()
	s := newSession(t, rates)

	require.NoError(t, s.SetSelectedCurrency(context.Background(), "SEK"))
	assert.Equal(t, "SEK", s.SelectedCurrency())
	rates.AssertExpectations(t)
}

func TestSetSelectedCurrency_RefreshFailureStillSelects(t *testing.T) {
	rates := staticRates(liveSnapshot(map[string]float64{"EUR": 1}))
	rates.On("Refresh", mock.Anything, "EUR", mock.Anything).Return(ratestore.ErrClosed).Once()
	s := newSession(t, rates, WithSeed(DefaultSeed()))

	require.NoError(t, s.SetSelectedCurrency(context.Background(), "GBP"))

	view := s.ComputeView()
	assert.Equal(t, "GBP", view.DisplayCurrency)
	// No GBP rate in the snapshot: the total degrades to rate 1.
	assert.InDelta(t, view.TotalBase, view.TotalDisplay, 0)
	rates.AssertExpectations(t)
}

func TestParseField(t *testing.T) {
	for _, name := range []string{"hoursPerWeek", "hours_per_week", "HOURS"} {
		f, err := ParseField(name)
		require.NoError(t, err)
		assert.Equal(t, FieldHoursPerWeek, f)
	}

	_, err := ParseField("rate")
	assert.ErrorIs(t, err, ErrUnknownField)
}
