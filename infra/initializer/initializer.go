package initializer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/amirasaad/pricer/infra/cache"
	"github.com/amirasaad/pricer/infra/metrics"
	infra_provider "github.com/amirasaad/pricer/infra/provider"
	"github.com/amirasaad/pricer/pkg/app"
	pkgcache "github.com/amirasaad/pricer/pkg/cache"
	"github.com/amirasaad/pricer/pkg/config"
	"github.com/amirasaad/pricer/pkg/currency"
	"github.com/amirasaad/pricer/pkg/exchange"
	"github.com/amirasaad/pricer/pkg/ratecard"
	"github.com/amirasaad/pricer/pkg/ratestore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const memoryCacheCleanup = time.Minute

// InitializeDependencies builds the logger, the rate source chain and the
// rate store. Rates are not fetched here; see WarmUp.
func InitializeDependencies(cfg *config.App) (deps *app.Deps, err error) {
	logger, logCloser := SetupLogger(cfg.Log)
	deps = &app.Deps{Logger: logger, RateCard: ratecard.Default}
	if logCloser != nil {
		deps.Closers = append(deps.Closers, logCloser)
	}

	deps.Currencies, err = currency.NewRegistry(cfg.Currency.Base, cfg.Currency.Supported...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize currency registry: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewRecorder(registry)
	deps.Metrics = registry

	source, closer, err := NewRateSource(cfg, recorder, logger)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		deps.Closers = append(deps.Closers, closer)
	}

	deps.RateStore = ratestore.New(
		source,
		cfg.Currency.Base,
		ratestore.WithLogger(logger),
		ratestore.WithFallback(fallbackRates(cfg.Currency)),
	)
	recorder.ObserveSnapshot(deps.RateStore.Current())
	deps.RateStore.Subscribe(recorder.ObserveSnapshot)

	return deps, nil
}

// NewRateSource assembles provider, metrics, cache and fallback decorators.
// The returned source never fails. recorder may be nil.
func NewRateSource(
	cfg *config.App,
	recorder *metrics.Recorder,
	logger *slog.Logger,
) (exchange.Source, io.Closer, error) {
	fallback := fallbackRates(cfg.Currency)

	var source exchange.Source = infra_provider.NewExchangeRateAPIProvider(
		cfg.ExchangeRateApi,
		fallback,
		logger,
	)
	if recorder != nil {
		source = recorder.Instrument(source)
	}

	snapshotCache, closer, err := newSnapshotCache(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if snapshotCache != nil {
		source = infra_provider.NewCachedSource(source, snapshotCache, cfg.ExchangeRateCache.TTL, logger)
	}

	return infra_provider.NewFallbackSource(
		source,
		fallback,
		cfg.ExchangeRateApi.HTTPTimeout,
		logger,
	), closer, nil
}

func newSnapshotCache(cfg *config.App, logger *slog.Logger) (pkgcache.SnapshotCache, io.Closer, error) {
	switch cfg.ExchangeRateCache.Backend {
	case "redis":
		if cfg.Redis.URL == "" {
			return nil, nil, fmt.Errorf("redis cache backend requires REDIS_URL")
		}
		c, err := cache.NewRedisCache(cfg.Redis.URL, cfg.Redis.KeyPrefix+cfg.ExchangeRateCache.Prefix, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create redis cache: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := c.Ping(ctx); err != nil {
			logger.Warn("Redis cache not reachable, rates will be fetched directly until it is", "error", err)
		}
		logger.Info("Using redis rate cache", "ttl", cfg.ExchangeRateCache.TTL)
		return c, c, nil
	case "none", "":
		logger.Info("Rate cache disabled")
		return nil, nil, nil
	default:
		logger.Info("Using in-memory rate cache", "ttl", cfg.ExchangeRateCache.TTL)
		c := cache.NewMemoryCache(memoryCacheCleanup)
		return c, c, nil
	}
}

// WarmUp performs the initial refresh. The store keeps serving the fallback
// snapshot if it fails.
func WarmUp(ctx context.Context, deps *app.Deps) {
	base := deps.Currencies.Base()
	if err := deps.RateStore.Refresh(ctx, base, deps.Currencies.Codes()); err != nil {
		deps.Logger.Warn("Initial rate refresh not applied", "error", err)
		return
	}
	status := deps.RateStore.Status()
	deps.Logger.Info("Exchange rates loaded",
		"source", status.Source,
		"fallback", status.Fallback,
		"rate_time", status.RateTime,
	)
}

func fallbackRates(cfg *config.Currency) map[string]float64 {
	if len(cfg.Fallback) == 0 {
		return exchange.FallbackRates
	}
	return cfg.Fallback
}
