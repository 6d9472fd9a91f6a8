// Package rates exposes exchange rates, the rate card and the offered
// currencies over HTTP.
package rates

import (
	"context"
	"time"

	"github.com/amirasaad/pricer/pkg/currency"
	"github.com/amirasaad/pricer/pkg/ratecard"
	"github.com/amirasaad/pricer/pkg/ratestore"
	"github.com/amirasaad/pricer/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// RatesResponse is the current snapshot with its status.
type RatesResponse struct {
	ratestore.Status
	Rates map[string]float64 `json:"rates"`
}

// RateCardResponse lists the rate card and its option lists.
type RateCardResponse struct {
	Currency    string                        `json:"currency"`
	Countries   []string                      `json:"countries"`
	Seniorities []string                      `json:"seniorities"`
	Rates       map[string]map[string]float64 `json:"rates"`
}

// Routes registers the rate endpoints. refreshTimeout bounds a manual
// refresh.
func Routes(
	app *fiber.App,
	store *ratestore.Store,
	registry *currency.Registry,
	card *ratecard.Card,
	refreshTimeout time.Duration,
) {
	api := app.Group("/api")

	api.Get("/rates", GetRates(store))
	api.Post("/rates/refresh", RefreshRates(store, registry, refreshTimeout))
	api.Get("/ratecard", GetRateCard(card, registry.Base()))
	api.Get("/currencies", ListCurrencies(registry))
}

// GetRates returns the current snapshot. It never blocks on a refresh.
func GetRates(store *ratestore.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Rates fetched", ratesResponse(store))
	}
}

// RefreshRates fetches rates for every offered currency and returns the
// resulting snapshot.
func RefreshRates(store *ratestore.Store, registry *currency.Registry, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		if err := store.Refresh(ctx, registry.Base(), registry.Codes()); err != nil {
			return common.ProblemDetailsJSON(c, "Rate refresh not applied", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Rates refreshed", ratesResponse(store))
	}
}

// GetRateCard returns the hourly rates in the base currency.
func GetRateCard(card *ratecard.Card, base string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		countries := card.Countries()
		seniorities := card.Seniorities()
		table := make(map[string]map[string]float64, len(countries))
		for _, country := range countries {
			row := make(map[string]float64, len(seniorities))
			for _, seniority := range seniorities {
				if card.Has(country, seniority) {
					row[seniority] = card.Lookup(country, seniority)
				}
			}
			table[country] = row
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Rate card fetched", RateCardResponse{
			Currency:    base,
			Countries:   countries,
			Seniorities: seniorities,
			Rates:       table,
		})
	}
}

// ListCurrencies returns the offered currencies with display metadata.
func ListCurrencies(registry *currency.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Currencies fetched", fiber.Map{
			"base":       registry.Base(),
			"currencies": registry.List(),
		})
	}
}

func ratesResponse(store *ratestore.Store) RatesResponse {
	return RatesResponse{
		Status: store.Status(),
		Rates:  store.Current().Rates,
	}
}
