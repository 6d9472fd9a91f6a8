// Package conversion converts base-currency amounts using a rate snapshot.
package conversion

import (
	"errors"
	"fmt"

	"github.com/amirasaad/pricer/pkg/exchange"
)

// ErrRateUnavailable is returned by ConvertStrict when the snapshot has no
// rate for the target currency.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

// Rate returns the rate applied when converting into target. A target that
// the snapshot does not quote degrades to 1.
func Rate(target string, snapshot exchange.Snapshot) float64 {
	if r, ok := snapshot.Rate(target); ok {
		return r
	}
	return 1
}

// Convert converts amount from the snapshot's base currency into target.
// Converting into the base currency returns amount unchanged. A target that
// the snapshot does not quote is converted at 1:1; use ConvertStrict to
// detect that case.
func Convert(amount float64, target string, snapshot exchange.Snapshot) float64 {
	if target == snapshot.Base {
		return amount
	}
	return amount * Rate(target, snapshot)
}

// ConvertStrict is Convert without the 1:1 degrade.
func ConvertStrict(amount float64, target string, snapshot exchange.Snapshot) (float64, error) {
	if target == snapshot.Base {
		return amount, nil
	}
	r, ok := snapshot.Rates[target]
	if !ok {
		return 0, fmt.Errorf("%w: %s -> %s", ErrRateUnavailable, snapshot.Base, target)
	}
	return amount * r, nil
}
