package app

import (
	"errors"
	"io"
	"log/slog"

	"github.com/amirasaad/pricer/pkg/config"
	"github.com/amirasaad/pricer/pkg/currency"
	"github.com/amirasaad/pricer/pkg/ratecard"
	"github.com/amirasaad/pricer/pkg/ratestore"
	"github.com/amirasaad/pricer/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
)

// Deps contains the long-lived collaborators built at startup.
type Deps struct {
	RateCard   *ratecard.Card
	Currencies *currency.Registry
	RateStore  *ratestore.Store
	Metrics    prometheus.Gatherer
	Logger     *slog.Logger
	// Closers are released after the rate store on shutdown.
	Closers []io.Closer
}

type App struct {
	Deps    *Deps
	Config  *config.App
	Session *session.Session
}

// New creates the application with a single pricing session seeded with the
// default consultant.
func New(deps *Deps, cfg *config.App) *App {
	return &App{
		Deps:   deps,
		Config: cfg,
		Session: session.New(
			deps.RateCard,
			deps.RateStore,
			deps.Currencies,
			session.WithLogger(deps.Logger),
			session.WithSeed(session.DefaultSeed()),
		),
	}
}

// Close stops the rate store, discarding in-flight refreshes, and releases
// the remaining resources.
func (a *App) Close() error {
	var errs []error
	if a.Deps.RateStore != nil {
		errs = append(errs, a.Deps.RateStore.Close())
	}
	for _, c := range a.Deps.Closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
