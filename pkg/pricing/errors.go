package pricing

import "errors"

var (
	// ErrInvalidLineItem is returned when hours, weeks or allocation are out
	// of range, or a rate is negative.
	ErrInvalidLineItem = errors.New("invalid line item")
	// ErrIncompleteSelection is returned when a line item has no country or
	// no seniority and a calculation is requested.
	ErrIncompleteSelection = errors.New("line item is missing country or seniority")
)
