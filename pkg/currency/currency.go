// Package currency describes the display currencies offered to the user and
// formats amounts in them.
package currency

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
)

const DefaultDecimals = 2

// ErrUnsupportedCurrency is returned for a code outside the configured set.
var ErrUnsupportedCurrency = errors.New("unsupported currency")

var currencyCodeRegex = regexp.MustCompile(`^[A-Z]{3}$`)

// IsValidCurrencyFormat reports whether code looks like an ISO 4217 code.
func IsValidCurrencyFormat(code string) bool {
	return currencyCodeRegex.MatchString(code)
}

// Meta holds currency display metadata.
type Meta struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
	// SymbolAfter places the symbol after the amount.
	SymbolAfter bool `json:"symbol_after,omitempty"`
}

var catalog = map[string]Meta{
	"EUR": {Code: "EUR", Name: "Euro", Symbol: "€", Decimals: 2},
	"USD": {Code: "USD", Name: "US Dollar", Symbol: "$", Decimals: 2},
	"GBP": {Code: "GBP", Name: "British Pound", Symbol: "£", Decimals: 2},
	"SEK": {Code: "SEK", Name: "Swedish Krona", Symbol: "kr", Decimals: 2, SymbolAfter: true},
	"JPY": {Code: "JPY", Name: "Japanese Yen", Symbol: "¥", Decimals: 0},
	"CHF": {Code: "CHF", Name: "Swiss Franc", Symbol: "CHF", Decimals: 2},
	"INR": {Code: "INR", Name: "Indian Rupee", Symbol: "₹", Decimals: 2},
}

// Registry is the fixed, ordered set of currencies offered for display. It
// is built once at startup and not modified afterwards.
type Registry struct {
	base  string
	codes []string
	metas map[string]Meta
}

// NewRegistry creates a registry of codes with base as the base currency.
// Codes missing from the built-in catalog get their code as symbol.
func NewRegistry(base string, codes ...string) (*Registry, error) {
	if !IsValidCurrencyFormat(base) {
		return nil, fmt.Errorf("%w: base %q", ErrUnsupportedCurrency, base)
	}
	r := &Registry{base: base, metas: make(map[string]Meta, len(codes))}
	for _, code := range codes {
		if !IsValidCurrencyFormat(code) {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedCurrency, code)
		}
		if _, dup := r.metas[code]; dup {
			continue
		}
		meta, ok := catalog[code]
		if !ok {
			meta = Meta{Code: code, Name: code, Symbol: code, Decimals: DefaultDecimals}
		}
		r.metas[code] = meta
		r.codes = append(r.codes, code)
	}
	if _, ok := r.metas[base]; !ok {
		return nil, fmt.Errorf("%w: base %s is not offered", ErrUnsupportedCurrency, base)
	}
	return r, nil
}

// Base returns the base currency code.
func (r *Registry) Base() string {
	return r.base
}

// Codes returns the offered codes in configuration order.
func (r *Registry) Codes() []string {
	return slices.Clone(r.codes)
}

// IsSupported reports whether code is offered.
func (r *Registry) IsSupported(code string) bool {
	_, ok := r.metas[code]
	return ok
}

// Get returns the metadata for code.
func (r *Registry) Get(code string) (Meta, error) {
	meta, ok := r.metas[code]
	if !ok {
		return Meta{}, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, code)
	}
	return meta, nil
}

// List returns metadata for every offered currency in configuration order.
func (r *Registry) List() []Meta {
	out := make([]Meta, 0, len(r.codes))
	for _, code := range r.codes {
		out = append(out, r.metas[code])
	}
	return out
}
