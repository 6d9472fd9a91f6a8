package provider

import (
	"context"
	"io"
	"log/slog"

	"github.com/amirasaad/pricer/pkg/exchange"
	"github.com/stretchr/testify/mock"
)

// MockSource is a testify mock of exchange.Source.
type MockSource struct {
	mock.Mock
}

func (m *MockSource) FetchRates(ctx context.Context, base string, targets []string) (exchange.Snapshot, error) {
	args := m.Called(ctx, base, targets)
	return args.Get(0).(exchange.Snapshot), args.Error(1)
}

func (m *MockSource) Name() string {
	args := m.Called()
	return args.String(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
