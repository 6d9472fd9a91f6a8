package provider

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/amirasaad/pricer/pkg/config"
	"github.com/amirasaad/pricer/pkg/exchange"
	json "github.com/goccy/go-json"
)

const rateDateLayout = "2006-01-02"

// ExchangeRateAPIProvider fetches the latest rates from an
// exchangerate.host-compatible endpoint:
//
//	GET {url}?base=EUR&symbols=EUR,USD,GBP,SEK
type ExchangeRateAPIProvider struct {
	apiKey     string
	baseURL    string
	source     string
	httpClient *http.Client
	logger     *slog.Logger
	fallback   map[string]float64
	now        func() time.Time
}

// ExchangeRateAPIResponse is the provider payload. Success is optional; when
// present and false the payload is treated as a failure.
type ExchangeRateAPIResponse struct {
	Success *bool              `json:"success,omitempty"`
	Base    string             `json:"base"`
	Date    string             `json:"date"`
	Rates   map[string]float64 `json:"rates"`
	Error   any                `json:"error,omitempty"`
}

// NewExchangeRateAPIProvider creates a provider from config. Missing
// currencies in a response are filled from fallback.
func NewExchangeRateAPIProvider(
	cfg *config.ExchangeRateApi,
	fallback map[string]float64,
	logger *slog.Logger,
) *ExchangeRateAPIProvider {
	if logger == nil {
		logger = slog.Default()
	}
	if fallback == nil {
		fallback = exchange.FallbackRates
	}
	source := cfg.Source
	if source == "" {
		source = exchange.DefaultSource
	}
	return &ExchangeRateAPIProvider{
		apiKey:  cfg.ApiKey,
		baseURL: cfg.ApiUrl,
		source:  source,
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		logger:   logger,
		fallback: fallback,
		now:      time.Now,
	}
}

// Name returns the label attached to live snapshots.
func (p *ExchangeRateAPIProvider) Name() string {
	return p.source
}

// FetchRates performs one GET and returns a live snapshot.
func (p *ExchangeRateAPIProvider) FetchRates(
	ctx context.Context,
	base string,
	targets []string,
) (exchange.Snapshot, error) {
	endpoint, err := p.endpoint(base, targets)
	if err != nil {
		return exchange.Snapshot{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return exchange.Snapshot{}, fmt.Errorf("failed to create request: %w", err)
	}
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	p.logger.Debug("Fetching exchange rates", "base", base, "targets", targets)
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return exchange.Snapshot{}, fmt.Errorf("%w: %w", exchange.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return exchange.Snapshot{}, fmt.Errorf(
			"%w: %d %s",
			exchange.ErrUnexpectedStatus,
			resp.StatusCode,
			strings.TrimSpace(string(body)),
		)
	}

	var apiResp ExchangeRateAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return exchange.Snapshot{}, fmt.Errorf("%w: %w", exchange.ErrMalformedPayload, err)
	}
	if apiResp.Success != nil && !*apiResp.Success {
		return exchange.Snapshot{}, fmt.Errorf("%w: provider reported failure: %v", exchange.ErrMalformedPayload, apiResp.Error)
	}
	if apiResp.Rates == nil {
		return exchange.Snapshot{}, fmt.Errorf("%w: no rates", exchange.ErrMalformedPayload)
	}
	if apiResp.Base != "" && apiResp.Base != base {
		return exchange.Snapshot{}, fmt.Errorf("%w: quoted in %s, want %s", exchange.ErrMalformedPayload, apiResp.Base, base)
	}
	for code, rate := range apiResp.Rates {
		if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
			return exchange.Snapshot{}, fmt.Errorf("%w: %s=%v", exchange.ErrInvalidRate, code, rate)
		}
	}

	now := p.now().UTC()
	snapshot := exchange.Snapshot{
		Base:      base,
		Rates:     exchange.FillRates(base, apiResp.Rates, p.fallback),
		Source:    p.source,
		RateTime:  rateTime(apiResp.Date, now),
		FetchedAt: now,
	}
	p.logger.Info("Exchange rates fetched",
		"source", p.source,
		"base", base,
		"count", len(apiResp.Rates),
		"rate_time", snapshot.RateTime,
	)
	return snapshot, nil
}

func (p *ExchangeRateAPIProvider) endpoint(base string, targets []string) (string, error) {
	u, err := url.Parse(p.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid exchange rate url %q: %w", p.baseURL, err)
	}
	q := u.Query()
	q.Set("base", base)
	if len(targets) > 0 {
		q.Set("symbols", strings.Join(targets, ","))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// rateTime interprets the provider's as-of date as UTC midnight, or falls
// back to now when absent or unparsable.
func rateTime(date string, now time.Time) time.Time {
	if date == "" {
		return now
	}
	t, err := time.ParseInLocation(rateDateLayout, date, time.UTC)
	if err != nil {
		return now
	}
	return t
}

var _ exchange.Source = (*ExchangeRateAPIProvider)(nil)
