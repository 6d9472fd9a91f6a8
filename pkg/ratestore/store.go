// Package ratestore owns the current exchange rate snapshot.
//
// A Store always holds a usable snapshot: before the first refresh completes
// it serves the fallback table. Refreshes may overlap; only the most recently
// issued one is allowed to commit its result.
package ratestore

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/amirasaad/pricer/pkg/exchange"
)

var (
	// ErrSuperseded is returned by Refresh when a newer refresh was issued
	// before this one completed. Its result was discarded.
	ErrSuperseded = errors.New("refresh superseded by a newer request")
	// ErrClosed is returned by Refresh once the store has been closed.
	ErrClosed = errors.New("rate store closed")
)

// Status describes the current snapshot for display.
type Status struct {
	Loading   bool      `json:"loading"`
	Fallback  bool      `json:"fallback"`
	Error     string    `json:"error,omitempty"`
	Source    string    `json:"source"`
	Base      string    `json:"base"`
	RateTime  time.Time `json:"rate_time"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Store holds exactly one current snapshot.
type Store struct {
	source   exchange.Source
	fallback map[string]float64
	logger   *slog.Logger

	current atomic.Pointer[exchange.Snapshot]
	gen     atomic.Uint64
	loading atomic.Bool

	mu     sync.Mutex
	closed bool
	subs   map[int]func(exchange.Snapshot)
	nextID int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithFallback sets the table served before the first refresh and when the
// source returns an error.
func WithFallback(rates map[string]float64) Option {
	return func(s *Store) { s.fallback = rates }
}

// New creates a Store for base, initialised with the fallback snapshot.
func New(source exchange.Source, base string, opts ...Option) *Store {
	s := &Store{
		source:   source,
		fallback: exchange.FallbackRates,
		logger:   slog.Default(),
		subs:     make(map[int]func(exchange.Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	initial := exchange.FallbackSnapshot(source.Name(), base, s.fallback, time.Now(), nil)
	s.current.Store(&initial)
	return s
}

// Current returns a copy of the current snapshot. It is never empty.
func (s *Store) Current() exchange.Snapshot {
	return s.current.Load().Clone()
}

// Has reports whether the current snapshot quotes code.
func (s *Store) Has(code string) bool {
	_, ok := s.current.Load().Rate(code)
	return ok
}

// Loading reports whether the most recently issued refresh is in flight.
func (s *Store) Loading() bool {
	return s.loading.Load()
}

// Status returns the current snapshot metadata.
func (s *Store) Status() Status {
	snap := s.current.Load()
	return Status{
		Loading:   s.Loading(),
		Fallback:  snap.Fallback,
		Error:     snap.Error,
		Source:    snap.Source,
		Base:      snap.Base,
		RateTime:  snap.RateTime,
		FetchedAt: snap.FetchedAt,
	}
}

// Refresh fetches rates and replaces the current snapshot. It blocks until
// the source returns. A source error is mapped to the fallback snapshot.
//
// If another Refresh is issued before this one completes, this result is
// discarded and ErrSuperseded is returned. After Close, results are
// discarded and ErrClosed is returned. If ctx is done by the time the source
// returns, the result is discarded and ctx.Err() is returned.
func (s *Store) Refresh(ctx context.Context, base string, targets []string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	gen := s.gen.Add(1)
	s.loading.Store(true)
	s.mu.Unlock()

	started := time.Now()
	snapshot, err := s.source.FetchRates(ctx, base, targets)
	if ctxErr := ctx.Err(); ctxErr != nil {
		s.mu.Lock()
		if gen == s.gen.Load() {
			s.loading.Store(false)
		}
		s.mu.Unlock()
		s.logger.Debug("Discarding refresh result of cancelled request", "generation", gen, "error", ctxErr)
		return ctxErr
	}
	if err != nil {
		s.logger.Warn("Rate refresh failed, serving fallback rates", "error", err)
		snapshot = exchange.FallbackSnapshot(s.source.Name(), base, s.fallback, time.Now(), err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Debug("Discarding refresh result after close", "generation", gen)
		return ErrClosed
	}
	if gen != s.gen.Load() {
		s.mu.Unlock()
		s.logger.Debug("Discarding superseded refresh result", "generation", gen)
		return ErrSuperseded
	}
	committed := snapshot.Clone()
	s.current.Store(&committed)
	s.loading.Store(false)
	subs := make([]func(exchange.Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	s.logger.Info("Exchange rates updated",
		"source", committed.Source,
		"fallback", committed.Fallback,
		"rate_time", committed.RateTime,
		"duration", time.Since(started),
	)
	for _, fn := range subs {
		fn(committed)
	}
	return nil
}

// Run refreshes once immediately and then every interval until ctx is done.
// A zero interval refreshes once.
func (s *Store) Run(ctx context.Context, base string, targets []string, interval time.Duration) {
	s.refreshLogged(ctx, base, targets)
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refreshLogged(ctx, base, targets)
		}
	}
}

func (s *Store) refreshLogged(ctx context.Context, base string, targets []string) {
	if err := s.Refresh(ctx, base, targets); err != nil {
		s.logger.Debug("Background refresh not applied", "error", err)
	}
}

// Subscribe registers fn to be called with every committed snapshot. The
// returned function unregisters it.
func (s *Store) Subscribe(fn func(exchange.Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return func() {}
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Close tears the store down. In-flight refreshes complete but their results
// are not applied, and subscribers are dropped. Current keeps returning the
// last committed snapshot.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.loading.Store(false)
	clear(s.subs)
	return nil
}
