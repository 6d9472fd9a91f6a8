// Package webapi provides the HTTP API of the pricing service.
// It is organized into sub-packages:
// - pricing: line items, currency selection and the priced view
// - rates: exchange rates, the rate card and offered currencies
package webapi

import (
	"errors"
	"strings"

	"github.com/amirasaad/pricer/pkg/app"
	"github.com/amirasaad/pricer/webapi/common"
	pricingweb "github.com/amirasaad/pricer/webapi/pricing"
	ratesweb "github.com/amirasaad/pricer/webapi/rates"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupApp Initialize Fiber with custom configuration
func SetupApp(a *app.App) *fiber.App {
	deps := a.Deps

	fiberApp := fiber.New(fiber.Config{
		AppName:     "pricer",
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})

	// Uses X-Forwarded-For header when behind a proxy
	fiberApp.Use(limiter.New(limiter.Config{
		Max:        a.Config.RateLimit.MaxRequests,
		Expiration: a.Config.RateLimit.Window,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/metrics"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
				if commaIndex := strings.Index(forwardedFor, ","); commaIndex != -1 {
					return strings.TrimSpace(forwardedFor[:commaIndex])
				}
				return strings.TrimSpace(forwardedFor)
			}
			if realIP := c.Get("X-Real-IP"); realIP != "" {
				return realIP
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return common.ProblemDetailsJSON(
				c,
				"Too Many Requests",
				errors.New("rate limit exceeded"),
				fiber.StatusTooManyRequests,
			)
		},
	}))
	fiberApp.Use(recover.New())
	if a.Config.Env != "test" {
		fiberApp.Use(logger.New())
	}

	fiberApp.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("App is working! 🚀")
	})
	if deps.Metrics != nil {
		fiberApp.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{})))
	}

	pricingweb.Routes(fiberApp, a.Session, deps.Currencies)
	ratesweb.Routes(
		fiberApp,
		deps.RateStore,
		deps.Currencies,
		deps.RateCard,
		a.Config.ExchangeRateApi.HTTPTimeout,
	)

	return fiberApp
}
