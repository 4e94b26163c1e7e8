// Package shipping computes shipping cost and free-shipping progress from a
// cart subtotal and the store's configurable rate settings.
package shipping

import "github.com/shopspring/decimal"

// Fallback rates used when a stored setting is missing or unparseable.
var (
	DefaultFlatRate      = decimal.NewFromInt(5)
	DefaultFreeThreshold = decimal.NewFromInt(50)
)

// Rates holds the two admin-configurable shipping settings.
type Rates struct {
	// FlatRate is charged on every order below the free threshold.
	FlatRate decimal.Decimal
	// FreeThreshold is the subtotal at which shipping becomes free.
	// Zero or negative disables free shipping entirely.
	FreeThreshold decimal.Decimal
}

// ParseRates builds Rates from the stored string settings. A value that does
// not parse as a decimal falls back to the documented default instead of
// poisoning every downstream total.
func ParseRates(flatRate, freeThreshold string) Rates {
	r := Rates{
		FlatRate:      DefaultFlatRate,
		FreeThreshold: DefaultFreeThreshold,
	}
	if v, err := decimal.NewFromString(flatRate); err == nil {
		r.FlatRate = v
	}
	if v, err := decimal.NewFromString(freeThreshold); err == nil {
		r.FreeThreshold = v
	}
	return r
}

// Quote is the shipping outcome for one subtotal.
type Quote struct {
	Cost decimal.Decimal `json:"cost"`
	// Remaining is how much more the customer must spend for free shipping.
	// Zero when shipping is already free or the feature is disabled.
	Remaining decimal.Decimal `json:"remaining"`
	// Progress is min(100, subtotal/threshold*100), for the storefront's
	// free-shipping progress bar. 100 when shipping is free, 0 when the
	// feature is disabled.
	Progress decimal.Decimal `json:"progress"`
}

var hundred = decimal.NewFromInt(100)

// Compute returns the shipping quote for the given subtotal.
//
// Threshold <= 0 disables free shipping: the flat rate always applies.
// The threshold boundary is inclusive: subtotal == threshold ships free.
func Compute(subtotal decimal.Decimal, rates Rates) Quote {
	if rates.FreeThreshold.LessThanOrEqual(decimal.Zero) {
		return Quote{Cost: rates.FlatRate}
	}

	if subtotal.GreaterThanOrEqual(rates.FreeThreshold) {
		return Quote{Cost: decimal.Zero, Progress: hundred}
	}

	progress := subtotal.Div(rates.FreeThreshold).Mul(hundred).Round(2)
	if progress.GreaterThan(hundred) {
		progress = hundred
	}

	return Quote{
		Cost:      rates.FlatRate,
		Remaining: rates.FreeThreshold.Sub(subtotal),
		Progress:  progress,
	}
}
