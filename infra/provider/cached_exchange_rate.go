package provider

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/amirasaad/pricer/pkg/cache"
	"github.com/amirasaad/pricer/pkg/exchange"
	"golang.org/x/sync/singleflight"
)

// CachedSource serves live snapshots from a cache for ttl. Fallback
// snapshots are never cached.
type CachedSource struct {
	next   exchange.Source
	cache  cache.SnapshotCache
	ttl    time.Duration
	logger *slog.Logger

	inflight singleflight.Group
}

// NewCachedSource creates a new CachedSource.
func NewCachedSource(
	next exchange.Source,
	cache cache.SnapshotCache,
	ttl time.Duration,
	logger *slog.Logger,
) *CachedSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedSource{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// FetchRates returns a cached snapshot for (base, targets) or fetches one.
func (c *CachedSource) FetchRates(
	ctx context.Context,
	base string,
	targets []string,
) (exchange.Snapshot, error) {
	key := cacheKey(base, targets)

	if cached, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Error("Error getting from cache", "key", key, "error", err)
	} else if cached != nil {
		c.logger.Debug("Cache hit for FetchRates", "key", key)
		return *cached, nil
	}

	// Concurrent misses for the same key share one upstream fetch.
	v, err, shared := c.inflight.Do(key, func() (any, error) {
		c.logger.Debug("Cache miss for FetchRates, fetching from next source", "key", key)
		snapshot, err := c.next.FetchRates(ctx, base, targets)
		if err != nil {
			return nil, err
		}
		if !snapshot.Fallback {
			if err := c.cache.Set(ctx, key, snapshot, c.ttl); err != nil {
				c.logger.Error("Error setting cache for FetchRates", "key", key, "error", err)
			}
		}
		return snapshot, nil
	})
	if err != nil {
		return exchange.Snapshot{}, err
	}
	snapshot := v.(exchange.Snapshot)
	if shared {
		snapshot = snapshot.Clone()
	}
	return snapshot, nil
}

// Name returns the underlying source label.
func (c *CachedSource) Name() string {
	return c.next.Name()
}

func cacheKey(base string, targets []string) string {
	sorted := slices.Clone(targets)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	return fmt.Sprintf("%s:%s", base, strings.Join(sorted, ","))
}

var _ exchange.Source = (*CachedSource)(nil)
