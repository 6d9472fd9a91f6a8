package cache

import (
	"context"
	"time"

	"github.com/amirasaad/pricer/pkg/exchange"
)

// SnapshotCache stores exchange rate snapshots by key. Get returns a nil
// snapshot and a nil error on a miss.
type SnapshotCache interface {
	Get(ctx context.Context, key string) (*exchange.Snapshot, error)
	Set(ctx context.Context, key string, snapshot exchange.Snapshot, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
