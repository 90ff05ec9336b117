package domain

import "errors"

// LongTermRates overrides the organically computed rates of a long-term projection.
// A nil field falls back to the value derived from history.
type LongTermRates struct {
	Years         int
	Income        *int64   // monthly
	XIRR          *float64 // annualised, 0.07 == 7%
	StockPurchase *int64   // monthly
}

// LongTermOptions switches a projection between monthly and yearly buckets
type LongTermOptions struct {
	Enabled bool
	Rates   LongTermRates
}

// Validate ensures the options adhere to domain rules
func (o *LongTermOptions) Validate() error {
	if !o.Enabled {
		return nil
	}
	if o.Rates.Years < 1 {
		return errors.New("long term projection must cover at least one year")
	}
	if o.Rates.Years > 100 {
		return errors.New("long term projection must cover at most 100 years")
	}
	if o.Rates.XIRR != nil && *o.Rates.XIRR <= -1 {
		return errors.New("long term xirr must be above -100%")
	}
	return nil
}
