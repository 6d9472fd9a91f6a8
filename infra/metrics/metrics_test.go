package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirasaad/pricer/pkg/exchange"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	snapshot exchange.Snapshot
	err      error
}

func (s stubSource) Name() string { return "stub" }

func (s stubSource) FetchRates(context.Context, string, []string) (exchange.Snapshot, error) {
	return s.snapshot, s.err
}

func TestInstrument_CountsOutcomes(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	recorder := NewRecorder(reg)

	live := recorder.Instrument(stubSource{snapshot: exchange.Snapshot{Base: "EUR"}})
	failing := recorder.Instrument(stubSource{err: errors.New("boom")})

	_, err := live.FetchRates(context.Background(), "EUR", nil)
	require.NoError(t, err)
	_, err = live.FetchRates(context.Background(), "EUR", nil)
	require.NoError(t, err)
	_, err = failing.FetchRates(context.Background(), "EUR", nil)
	require.Error(t, err)

	assert.InDelta(t, 2.0, testutil.ToFloat64(recorder.fetchTotal.WithLabelValues("stub", "success")), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(recorder.fetchTotal.WithLabelValues("stub", "error")), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(recorder.fetchDuration))
	assert.Equal(t, "stub", live.Name())
}

func TestObserveSnapshot(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	recorder := NewRecorder(reg)

	rateTime := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	recorder.ObserveSnapshot(exchange.FallbackSnapshot(exchange.DefaultSource, "EUR", exchange.FallbackRates, rateTime, errors.New("down")))

	assert.InDelta(t, 1.0, testutil.ToFloat64(recorder.fallback), 0)
	assert.InDelta(t, float64(rateTime.Unix()), testutil.ToFloat64(recorder.rateAge), 0)
	assert.InDelta(t, 11.3, testutil.ToFloat64(recorder.rates.WithLabelValues("EUR", "SEK")), 0)

	recorder.ObserveSnapshot(exchange.Snapshot{Base: "EUR", Rates: map[string]float64{"EUR": 1, "USD": 1.1}, RateTime: rateTime})
	assert.InDelta(t, 0.0, testutil.ToFloat64(recorder.fallback), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(recorder.rates))
}
