package exchange

import (
	"context"
	"errors"
)

var (
	// ErrProviderUnavailable is returned when the provider cannot be reached.
	ErrProviderUnavailable = errors.New("exchange rate provider unavailable")
	// ErrUnexpectedStatus is returned for a non-success HTTP status.
	ErrUnexpectedStatus = errors.New("unexpected response")
	// ErrMalformedPayload is returned when the provider body cannot be used.
	ErrMalformedPayload = errors.New("malformed exchange rate payload")
	// ErrInvalidRate is returned for zero, negative or non-finite rates.
	ErrInvalidRate = errors.New("invalid exchange rate")
)

// Source acquires current base -> target rates.
//
// FetchRates has no partial results: it returns a complete snapshot or an
// error. Implementations must honour ctx cancellation.
type Source interface {
	FetchRates(ctx context.Context, base string, targets []string) (Snapshot, error)
	// Name returns the label attached to snapshots from this source.
	Name() string
}
