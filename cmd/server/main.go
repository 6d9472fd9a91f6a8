package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/amirasaad/pricer/infra/initializer"
	"github.com/amirasaad/pricer/pkg/app"
	"github.com/amirasaad/pricer/pkg/config"
	"github.com/amirasaad/pricer/webapi"
	log "github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	logger := deps.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.New(deps, cfg)
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("Failed to release resources", "error", err)
		}
	}()

	fiberApp := webapi.SetupApp(a)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Starting server",
		"env", cfg.Env,
		"address", addr,
		"scheme", cfg.Server.Scheme,
		"base_currency", deps.Currencies.Base(),
	)

	g, ctx := errgroup.WithContext(ctx)
	// First refresh runs in the background; the fallback snapshot is served
	// until it lands.
	g.Go(func() error {
		deps.RateStore.Run(ctx, deps.Currencies.Base(), deps.Currencies.Codes(), cfg.Currency.RefreshInterval)
		return nil
	})
	g.Go(func() error {
		return fiberApp.Listen(addr)
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down server", "timeout", cfg.Server.ShutdownTimeout)
		if err := fiberApp.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	})
	return g.Wait()
}
