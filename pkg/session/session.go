// Package session holds one user's pricing state: the consultant line items
// and the selected display currency.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/amirasaad/pricer/pkg/conversion"
	"github.com/amirasaad/pricer/pkg/currency"
	"github.com/amirasaad/pricer/pkg/exchange"
	"github.com/amirasaad/pricer/pkg/pricing"
	"github.com/amirasaad/pricer/pkg/ratecard"
	"github.com/amirasaad/pricer/pkg/ratestore"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultHoursPerWeek = 40
	defaultAllocation   = 100
)

// Rates is the rate store the session reads snapshots from.
type Rates interface {
	Current() exchange.Snapshot
	Status() ratestore.Status
	Refresh(ctx context.Context, base string, targets []string) error
}

// Session is safe for concurrent use; mutations are serialised.
type Session struct {
	card       *ratecard.Card
	rates      Rates
	currencies *currency.Registry
	logger     *slog.Logger
	seeds      []pricing.LineItem

	mu       sync.RWMutex
	items    []pricing.LineItem
	selected string
	added    int
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithSeed starts the session with the given items. Items without an ID get
// one. Items that fail validation are logged and skipped.
func WithSeed(items ...pricing.LineItem) Option {
	return func(s *Session) { s.seeds = append(s.seeds, items...) }
}

// DefaultSeed is the consultant a new calculator starts with.
func DefaultSeed() pricing.LineItem {
	return pricing.LineItem{
		Name:         "Consultant 1",
		Country:      "Sweden",
		Seniority:    "Mid",
		HoursPerWeek: defaultHoursPerWeek,
		Weeks:        12,
		Allocation:   defaultAllocation,
	}
}

// New creates a session displaying the base currency.
func New(card *ratecard.Card, rates Rates, currencies *currency.Registry, opts ...Option) *Session {
	s := &Session{
		card:       card,
		rates:      rates,
		currencies: currencies,
		logger:     slog.Default(),
		selected:   currencies.Base(),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, item := range s.seeds {
		if err := item.Validate(); err != nil {
			s.logger.Warn("Skipping invalid seed line item", "name", item.Name, "error", err)
			continue
		}
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		s.items = append(s.items, item)
		s.added++
	}
	s.seeds = nil
	return s
}

// AddLineItem appends a consultant with default inputs and returns it.
func (s *Session) AddLineItem() pricing.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.added++
	item := pricing.LineItem{
		ID:           uuid.New(),
		Name:         fmt.Sprintf("Consultant %d", s.added),
		HoursPerWeek: defaultHoursPerWeek,
		Weeks:        0,
		Allocation:   defaultAllocation,
	}
	s.items = append(s.items, item)
	s.logger.Debug("Line item added", "id", item.ID)
	return item
}

// UpdateLineItem sets one field of the item with the given id.
//
// Name, country and seniority take a string. Numeric fields take any Go
// integer or float type, a json.Number or a numeric string.
//
// Updating an id that does not exist is a no-op and returns nil. A value
// that would make the item invalid is rejected with an error wrapping
// pricing.ErrInvalidLineItem and the item is left unchanged.
func (s *Session) UpdateLineItem(id uuid.UUID, field Field, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		s.logger.Debug("Update of unknown line item ignored", "id", id, "field", field)
		return nil
	}

	updated := s.items[idx]
	if err := apply(&updated, field, value); err != nil {
		return err
	}
	if err := updated.Validate(); err != nil {
		return err
	}
	s.items[idx] = updated
	return nil
}

// RemoveLineItem deletes the item with the given id. Unknown ids are a no-op.
func (s *Session) RemoveLineItem(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false
	}
	s.items = slices.Delete(s.items, idx, idx+1)
	return true
}

// Items returns a copy of the line items in insertion order.
func (s *Session) Items() []pricing.LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Item returns the line item with the given id.
func (s *Session) Item(id uuid.UUID) (pricing.LineItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return pricing.LineItem{}, false
	}
	return s.items[idx], true
}

// SelectedCurrency returns the display currency.
func (s *Session) SelectedCurrency() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// SetSelectedCurrency changes the display currency. When the current
// snapshot has no rate for code, rates for every offered currency are
// refreshed before returning. The view reflects the new currency either way.
func (s *Session) SetSelectedCurrency(ctx context.Context, code string) error {
	if !s.currencies.IsSupported(code) {
		return fmt.Errorf("%w: %s", currency.ErrUnsupportedCurrency, code)
	}

	s.mu.Lock()
	s.selected = code
	s.mu.Unlock()

	if _, ok := s.rates.Current().Rate(code); ok {
		return nil
	}
	s.logger.Info("No cached rate for selected currency, refreshing", "currency", code)
	err := s.rates.Refresh(ctx, s.currencies.Base(), s.currencies.Codes())
	if err != nil && !errors.Is(err, ratestore.ErrSuperseded) {
		s.logger.Warn("Rate refresh for selected currency not applied", "currency", code, "error", err)
	}
	return nil
}

// IsIncomplete reports whether any item lacks a country or a seniority.
func (s *Session) IsIncomplete() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.ContainsFunc(s.items, pricing.LineItem.Incomplete)
}

// Calculate returns the view, or pricing.ErrIncompleteSelection when any
// item lacks a country or a seniority. The check and the view use the same
// copy of the items.
func (s *Session) Calculate() (View, error) {
	items, selected := s.state()
	if slices.ContainsFunc(items, pricing.LineItem.Incomplete) {
		return View{}, pricing.ErrIncompleteSelection
	}
	return s.view(items, selected), nil
}

// ComputeView prices every item in the base currency and converts the
// result into the selected currency using the current snapshot.
func (s *Session) ComputeView() View {
	return s.view(s.state())
}

func (s *Session) state() ([]pricing.LineItem, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items), s.selected
}

func (s *Session) view(items []pricing.LineItem, selected string) View {
	snapshot := s.rates.Current()
	status := s.rates.Status()

	view := View{
		BaseCurrency:    s.currencies.Base(),
		DisplayCurrency: selected,
		Items:           make([]ItemView, 0, len(items)),
		Rates: RateInfo{
			Rate:      conversion.Rate(selected, snapshot),
			Source:    snapshot.Source,
			RateTime:  snapshot.RateTime,
			FetchedAt: snapshot.FetchedAt,
			Fallback:  snapshot.Fallback,
			Loading:   status.Loading,
			Error:     snapshot.Error,
		},
	}

	total := decimal.Zero
	for _, item := range items {
		rate := s.card.Lookup(item.Country, item.Seniority)
		cost, err := pricing.ItemCost(item, rate)
		if err != nil {
			s.logger.Warn("Line item priced at zero", "id", item.ID, "error", err)
			cost = 0
		}
		total = total.Add(decimal.NewFromFloat(cost))
		view.Items = append(view.Items, ItemView{
			ID:                item.ID,
			Name:              item.Name,
			Country:           item.Country,
			Seniority:         item.Seniority,
			HoursPerWeek:      item.HoursPerWeek,
			Weeks:             item.Weeks,
			Allocation:        item.Allocation,
			HourlyRateBase:    rate,
			HourlyRateDisplay: conversion.Convert(rate, selected, snapshot),
			CostBase:          cost,
			CostDisplay:       conversion.Convert(cost, selected, snapshot),
			Incomplete:        item.Incomplete(),
		})
		view.Incomplete = view.Incomplete || item.Incomplete()
	}

	view.TotalBase, _ = total.Float64()
	view.TotalDisplay = conversion.Convert(view.TotalBase, selected, snapshot)
	return view
}

func (s *Session) indexOf(id uuid.UUID) int {
	return slices.IndexFunc(s.items, func(item pricing.LineItem) bool {
		return item.ID == id
	})
}
