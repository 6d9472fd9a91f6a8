package provider

import (
	"context"
	"log/slog"
	"time"

	"github.com/amirasaad/pricer/pkg/exchange"
)

// FallbackSource wraps a live source and never fails: any error from next,
// including a timeout, yields the static fallback snapshot with the error
// message retained.
type FallbackSource struct {
	next    exchange.Source
	rates   map[string]float64
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// NewFallbackSource creates a FallbackSource. A zero timeout leaves the
// deadline to ctx and the underlying HTTP client.
func NewFallbackSource(
	next exchange.Source,
	rates map[string]float64,
	timeout time.Duration,
	logger *slog.Logger,
) *FallbackSource {
	if logger == nil {
		logger = slog.Default()
	}
	if rates == nil {
		rates = exchange.FallbackRates
	}
	return &FallbackSource{
		next:    next,
		rates:   rates,
		timeout: timeout,
		logger:  logger,
		now:     time.Now,
	}
}

// FetchRates returns the live snapshot, or the fallback snapshot on failure.
// The returned error is always nil.
func (s *FallbackSource) FetchRates(
	ctx context.Context,
	base string,
	targets []string,
) (exchange.Snapshot, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	snapshot, err := s.next.FetchRates(ctx, base, targets)
	if err == nil {
		return snapshot, nil
	}

	s.logger.Warn("Exchange rate fetch failed, using fallback rates",
		"source", s.next.Name(),
		"base", base,
		"error", err,
	)
	return exchange.FallbackSnapshot(s.next.Name(), base, s.rates, s.now(), err), nil
}

// Name returns the live source label.
func (s *FallbackSource) Name() string {
	return s.next.Name()
}

var _ exchange.Source = (*FallbackSource)(nil)
