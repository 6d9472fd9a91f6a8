package provider

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	infra_cache "github.com/amirasaad/pricer/infra/cache"
	"github.com/amirasaad/pricer/pkg/exchange"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCachedSource_CachesLiveSnapshots(t *testing.T) {
	live := exchange.Snapshot{Base: "EUR", Rates: map[string]float64{"EUR": 1, "USD": 1.1}, Source: "live"}
	next := new(MockSource)
	next.On("FetchRates", mock.Anything, "EUR", targets).Return(live, nil).Once()

	c := NewCachedSource(next, infra_cache.NewMemoryCache(0), time.Minute, discardLogger())

	first, err := c.FetchRates(context.Background(), "EUR", targets)
	require.NoError(t, err)
	second, err := c.FetchRates(context.Background(), "EUR", targets)
	require.NoError(t, err)

	assert.Equal(t, live, first)
	assert.Equal(t, live, second)
	next.AssertExpectations(t)
}

func TestCachedSource_DoesNotCacheFallback(t *testing.T) {
	fallback := exchange.FallbackSnapshot("live", "EUR", nil, time.Now(), nil)
	next := new(MockSource)
	next.On("FetchRates", mock.Anything, "EUR", targets).Return(fallback, nil).Twice()

	c := NewCachedSource(next, infra_cache.NewMemoryCache(0), time.Minute, discardLogger())
	_, err := c.FetchRates(context.Background(), "EUR", targets)
	require.NoError(t, err)
	_, err = c.FetchRates(context.Background(), "EUR", targets)
	require.NoError(t, err)

	next.AssertExpectations(t)
}

func TestCachedSource_PropagatesError(t *testing.T) {
	next := new(MockSource)
	next.On("FetchRates", mock.Anything, "EUR", targets).Return(exchange.Snapshot{}, exchange.ErrProviderUnavailable)

	c := NewCachedSource(next, infra_cache.NewMemoryCache(0), time.Minute, discardLogger())
	_, err := c.FetchRates(context.Background(), "EUR", targets)
	assert.ErrorIs(t, err, exchange.ErrProviderUnavailable)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "EUR:GBP,USD", cacheKey("EUR", []string{"USD", "GBP", "USD"}))
	assert.Equal(t, cacheKey("EUR", []string{"USD", "GBP"}), cacheKey("EUR", []string{"GBP", "USD"}))
}

type gatedSource struct {
	gate  chan struct{}
	calls atomic.Int32
}

func (s *gatedSource) Name() string { return "live" }

func (s *gatedSource) FetchRates(_ context.Context, base string, _ []string) (exchange.Snapshot, error) {
	s.calls.Add(1)
	<-s.gate
	return exchange.Snapshot{Base: base, Rates: map[string]float64{"EUR": 1, "USD": 1.1}, Source: "live"}, nil
}

type countingCache struct {
	*infra_cache.MemoryCache
	gets atomic.Int32
}

func (c *countingCache) Get(ctx context.Context, key string) (*exchange.Snapshot, error) {
	c.gets.Add(1)
	return c.MemoryCache.Get(ctx, key)
}

func TestCachedSource_CollapsesConcurrentMisses(t *testing.T) {
	const callers = 5
	next := &gatedSource{gate: make(chan struct{})}
	cache := &countingCache{MemoryCache: infra_cache.NewMemoryCache(0)}
	c := NewCachedSource(next, cache, time.Minute, discardLogger())

	var wg sync.WaitGroup
	results := make([]exchange.Snapshot, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snapshot, err := c.FetchRates(context.Background(), "EUR", targets)
			assert.NoError(t, err)
			results[i] = snapshot
		}()
	}

	require.Eventually(t, func() bool { return cache.gets.Load() == callers }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(next.gate)
	wg.Wait()

	assert.Equal(t, int32(1), next.calls.Load())
	for _, r := range results {
		assert.InDelta(t, 1.1, r.Rates["USD"], 0)
	}
	results[0].Rates["USD"] = 99
	assert.InDelta(t, 1.1, results[1].Rates["USD"], 0)
}
