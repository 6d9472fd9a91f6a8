package main

import (
	"context"
	"time"

	"github.com/amirasaad/pricer/infra/initializer"
	"github.com/amirasaad/pricer/pkg/app"
	"github.com/amirasaad/pricer/pkg/config"
)

const warmUpTimeout = 15 * time.Second

// loadRates builds the dependencies and, unless offline, fetches rates once.
// The caller must Close the returned app.
func loadRates(ctx context.Context, cfg *config.App, offline bool) (*app.App, error) {
	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return nil, err
	}
	if !offline {
		ctx, cancel := context.WithTimeout(ctx, warmUpTimeout)
		defer cancel()
		initializer.WarmUp(ctx, deps)
	}
	return &app.App{Deps: deps, Config: cfg}, nil
}
