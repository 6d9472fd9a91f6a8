// Package metrics records exchange rate acquisition in Prometheus.
package metrics

import (
	"context"
	"time"

	"github.com/amirasaad/pricer/pkg/exchange"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pricer"

// Recorder owns the rate metrics. Use one per registry.
type Recorder struct {
	fetchTotal    *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	fallback      prometheus.Gauge
	rateAge       prometheus.Gauge
	rates         *prometheus.GaugeVec
}

// NewRecorder registers the rate metrics with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		// Provider fetches partitioned by source and outcome
		fetchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_fetch_total",
				Help:      "Total number of exchange rate fetches",
			},
			[]string{"source", "outcome"},
		),
		fetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rate_fetch_duration_seconds",
				Help:      "Exchange rate fetch latencies in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		fallback: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "rate_snapshot_fallback",
				Help:      "1 when the current rate snapshot is the static fallback table",
			},
		),
		rateAge: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "rate_snapshot_timestamp_seconds",
				Help:      "Unix time the current rates were quoted at",
			},
		),
		rates: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "exchange_rate",
				Help:      "Current rate for one unit of the base currency",
			},
			[]string{"base", "currency"},
		),
	}
}

// ObserveSnapshot exports the current snapshot. Pass it to the rate store's
// Subscribe.
func (r *Recorder) ObserveSnapshot(snapshot exchange.Snapshot) {
	if snapshot.Fallback {
		r.fallback.Set(1)
	} else {
		r.fallback.Set(0)
	}
	if !snapshot.RateTime.IsZero() {
		r.rateAge.Set(float64(snapshot.RateTime.Unix()))
	}
	r.rates.Reset()
	for code, rate := range snapshot.Rates {
		r.rates.WithLabelValues(snapshot.Base, code).Set(rate)
	}
}

// Instrument wraps next so every fetch is counted and timed.
func (r *Recorder) Instrument(next exchange.Source) exchange.Source {
	return &instrumentedSource{next: next, recorder: r}
}

type instrumentedSource struct {
	next     exchange.Source
	recorder *Recorder
}

func (s *instrumentedSource) Name() string {
	return s.next.Name()
}

func (s *instrumentedSource) FetchRates(
	ctx context.Context,
	base string,
	targets []string,
) (exchange.Snapshot, error) {
	start := time.Now()
	snapshot, err := s.next.FetchRates(ctx, base, targets)

	name := s.next.Name()
	s.recorder.fetchDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	s.recorder.fetchTotal.WithLabelValues(name, outcome(snapshot, err)).Inc()
	return snapshot, err
}

func outcome(snapshot exchange.Snapshot, err error) string {
	switch {
	case err != nil:
		return "error"
	case snapshot.Fallback:
		return "fallback"
	default:
		return "success"
	}
}
