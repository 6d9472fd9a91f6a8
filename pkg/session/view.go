package session

import (
	"time"

	"github.com/google/uuid"
)

// ItemView is the priced form of one line item.
type ItemView struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Country           string    `json:"country"`
	Seniority         string    `json:"seniority"`
	HoursPerWeek      float64   `json:"hours_per_week"`
	Weeks             float64   `json:"weeks"`
	Allocation        float64   `json:"allocation"`
	HourlyRateBase    float64   `json:"hourly_rate_base"`
	HourlyRateDisplay float64   `json:"hourly_rate_display"`
	CostBase          float64   `json:"cost_base"`
	CostDisplay       float64   `json:"cost_display"`
	Incomplete        bool      `json:"incomplete"`
}

// RateInfo is the exchange rate metadata shown next to a view.
type RateInfo struct {
	Rate      float64   `json:"rate"`
	Source    string    `json:"source"`
	RateTime  time.Time `json:"rate_time"`
	FetchedAt time.Time `json:"fetched_at"`
	Fallback  bool      `json:"fallback"`
	Loading   bool      `json:"loading"`
	Error     string    `json:"error,omitempty"`
}

// View is derived from the items, the selected currency and the current
// rate snapshot. It is never stored.
type View struct {
	BaseCurrency    string     `json:"base_currency"`
	DisplayCurrency string     `json:"display_currency"`
	Items           []ItemView `json:"items"`
	TotalBase       float64    `json:"total_base"`
	TotalDisplay    float64    `json:"total_display"`
	Incomplete      bool       `json:"incomplete"`
	Rates           RateInfo   `json:"rates"`
}
