package pricing

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// LineItem is one consultant's pricing inputs.
type LineItem struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Country      string    `json:"country"`
	Seniority    string    `json:"seniority"`
	HoursPerWeek float64   `json:"hours_per_week" validate:"gte=0"`
	Weeks        float64   `json:"weeks" validate:"gte=0"`
	Allocation   float64   `json:"allocation" validate:"gte=0,lte=100"`
}

// Incomplete reports whether the item lacks a country or a seniority.
// Incomplete items cost nothing but block a calculation.
func (i LineItem) Incomplete() bool {
	return i.Country == "" || i.Seniority == ""
}

// Validate checks the numeric fields. Non-finite values are rejected.
func (i LineItem) Validate() error {
	for _, v := range []float64{i.HoursPerWeek, i.Weeks, i.Allocation} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite value %v", ErrInvalidLineItem, v)
		}
	}
	if err := validate.Struct(i); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidLineItem, err.Error())
	}
	return nil
}
