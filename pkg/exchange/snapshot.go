// Package exchange defines exchange-rate snapshots and the contract of the
// sources that produce them.
package exchange

import (
	"maps"
	"slices"
	"time"
)

const (
	// BaseCurrency is the currency rate card rates and costs are expressed in.
	BaseCurrency = "EUR"
	// DefaultSource labels rates quoted by the live provider.
	DefaultSource = "European Central Bank"
	// FallbackSuffix is appended to the source label of a fallback snapshot.
	FallbackSuffix = " (fallback)"
)

// FallbackRates is the static EUR-based table used when live rates cannot be
// acquired.
var FallbackRates = map[string]float64{
	"EUR": 1,
	"USD": 1.08,
	"GBP": 0.87,
	"SEK": 11.3,
}

// Snapshot is an immutable bundle of base -> target rates and their
// provenance. Callers must not mutate Rates.
type Snapshot struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	Source    string             `json:"source"`
	RateTime  time.Time          `json:"rate_time"`
	FetchedAt time.Time          `json:"fetched_at"`
	Fallback  bool               `json:"fallback"`
	// Error is the message of the failure that caused a fallback.
	Error string `json:"error,omitempty"`
}

// Rate returns the rate for one base unit in code. The base currency always
// resolves to exactly 1.
func (s Snapshot) Rate(code string) (float64, bool) {
	if code == s.Base {
		return 1, true
	}
	r, ok := s.Rates[code]
	return r, ok
}

// Currencies returns the quoted currency codes in alphabetical order.
func (s Snapshot) Currencies() []string {
	return slices.Sorted(maps.Keys(s.Rates))
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	s.Rates = maps.Clone(s.Rates)
	return s
}

// IsZero reports whether the snapshot carries no rates at all.
func (s Snapshot) IsZero() bool {
	return s.Base == "" && len(s.Rates) == 0
}

// FillRates returns fetched merged over fallback. A currency missing from
// fetched keeps its fallback value and base is pinned to 1.
func FillRates(base string, fetched, fallback map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(fallback)+len(fetched)+1)
	maps.Copy(out, fallback)
	maps.Copy(out, fetched)
	out[base] = 1
	return out
}

// FallbackSnapshot builds the snapshot served when live acquisition fails.
// label is the live source label; the fallback suffix is appended.
func FallbackSnapshot(label, base string, fallback map[string]float64, now time.Time, cause error) Snapshot {
	if base == "" {
		base = BaseCurrency
	}
	if fallback == nil {
		fallback = FallbackRates
	}
	s := Snapshot{
		Base:      base,
		Rates:     FillRates(base, nil, fallback),
		Source:    label + FallbackSuffix,
		RateTime:  now.UTC(),
		FetchedAt: now.UTC(),
		Fallback:  true,
	}
	if cause != nil {
		s.Error = cause.Error()
	}
	return s
}
