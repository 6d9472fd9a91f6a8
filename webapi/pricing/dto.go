package pricing

import (
	"github.com/amirasaad/pricer/pkg/currency"
	"github.com/amirasaad/pricer/pkg/session"
)

// UpdateItemRequest carries the fields to change; omitted fields are kept.
type UpdateItemRequest struct {
	Name         *string  `json:"name,omitempty"`
	Country      *string  `json:"country,omitempty"`
	Seniority    *string  `json:"seniority,omitempty"`
	HoursPerWeek *float64 `json:"hours_per_week,omitempty" validate:"omitempty,gte=0"`
	Weeks        *float64 `json:"weeks,omitempty" validate:"omitempty,gte=0"`
	Allocation   *float64 `json:"allocation,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// changes lists the requested updates in a fixed order.
func (r UpdateItemRequest) changes() []change {
	var out []change
	if r.Name != nil {
		out = append(out, change{session.FieldName, *r.Name})
	}
	if r.Country != nil {
		out = append(out, change{session.FieldCountry, *r.Country})
	}
	if r.Seniority != nil {
		out = append(out, change{session.FieldSeniority, *r.Seniority})
	}
	if r.HoursPerWeek != nil {
		out = append(out, change{session.FieldHoursPerWeek, *r.HoursPerWeek})
	}
	if r.Weeks != nil {
		out = append(out, change{session.FieldWeeks, *r.Weeks})
	}
	if r.Allocation != nil {
		out = append(out, change{session.FieldAllocation, *r.Allocation})
	}
	return out
}

type change struct {
	field session.Field
	value any
}

// SetCurrencyRequest selects the display currency.
type SetCurrencyRequest struct {
	Currency string `json:"currency" validate:"required,len=3,uppercase"`
}

// ViewResponse is a view with its amounts formatted for display.
type ViewResponse struct {
	session.View
	TotalBaseFormatted    string   `json:"total_base_formatted"`
	TotalDisplayFormatted string   `json:"total_display_formatted"`
	ItemCostsFormatted    []string `json:"item_costs_formatted"`
	CanCalculate          bool     `json:"can_calculate"`
}

// ToViewResponse formats the amounts of view with registry.
func ToViewResponse(view session.View, registry *currency.Registry) ViewResponse {
	costs := make([]string, len(view.Items))
	for i, item := range view.Items {
		costs[i] = registry.Format(item.CostDisplay, view.DisplayCurrency)
	}
	return ViewResponse{
		View:                  view,
		TotalBaseFormatted:    registry.Format(view.TotalBase, view.BaseCurrency),
		TotalDisplayFormatted: registry.Format(view.TotalDisplay, view.DisplayCurrency),
		ItemCostsFormatted:    costs,
		CanCalculate:          !view.Incomplete,
	}
}
