package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NetWorthEntry represents a user-chosen net worth snapshot.
// Dates are not necessarily month ends.
type NetWorthEntry struct {
	ID          uuid.UUID
	Date        time.Time
	Values      []NetWorthValue
	CreditLimit []CreditLimit
	Currencies  []CurrencyRate
}

// NetWorthValue holds exactly one payload shape for a subcategory.
// Money fields are minor currency units.
type NetWorthValue struct {
	Subcategory int
	Skip        bool // excluded from every aggregate, kept on the record
	Simple      *int64
	FX          []FXValue
	Option      *OptionValue
	Loan        *LoanValue
}

// FXValue is an amount held in a foreign currency, in major units of that currency
type FXValue struct {
	Currency string
	Value    float64
}

// OptionValue describes a stock option grant. Prices are minor units per unit.
type OptionValue struct {
	Units       float64
	Vested      float64
	StrikePrice float64
	MarketPrice float64
}

// LoanValue describes an amortising loan at the time of the snapshot
type LoanValue struct {
	Principal         int64
	Rate              float64 // annual %
	PaymentsRemaining int
	Paid              *int64
}

// CurrencyRate converts one major unit of Currency to major units of the base currency
type CurrencyRate struct {
	Currency string
	Rate     float64
}

// CreditLimit is the limit of a credit card subcategory at the time of the snapshot
type CreditLimit struct {
	Subcategory int
	Value       int64
}

// PayloadCount returns the number of populated payload kinds
func (v *NetWorthValue) PayloadCount() int {
	count := 0
	if v.Simple != nil {
		count++
	}
	if len(v.FX) > 0 {
		count++
	}
	if v.Option != nil {
		count++
	}
	if v.Loan != nil {
		count++
	}
	return count
}

// Validate ensures the value adheres to domain rules
func (v *NetWorthValue) Validate() error {
	if v.Subcategory == 0 {
		return errors.New("net worth value must reference a subcategory")
	}
	if v.PayloadCount() > 1 {
		return errors.New("net worth value must have at most one payload kind")
	}
	for _, fx := range v.FX {
		if strings.TrimSpace(fx.Currency) == "" {
			return errors.New("fx value must have a currency")
		}
	}
	if v.Option != nil && v.Option.Vested > v.Option.Units {
		return errors.New("option vested units cannot exceed total units")
	}
	if v.Loan != nil && v.Loan.PaymentsRemaining < 0 {
		return errors.New("loan payments remaining must be positive")
	}
	return nil
}

// Validate ensures the entry adheres to domain rules.
// CRITICAL: a subcategory appears at most once per entry.
func (e *NetWorthEntry) Validate() error {
	if e.Date.IsZero() {
		return errors.New("net worth entry date cannot be zero")
	}

	seen := make(map[int]bool, len(e.Values))
	for i := range e.Values {
		if err := e.Values[i].Validate(); err != nil {
			return err
		}
		if seen[e.Values[i].Subcategory] {
			return errors.New("net worth entry must have unique subcategories")
		}
		seen[e.Values[i].Subcategory] = true
	}

	for _, rate := range e.Currencies {
		if rate.Rate < 0 {
			return errors.New("currency rate must be positive")
		}
	}

	return nil
}

// IsNull reports whether this is a synthesised placeholder entry
func (e *NetWorthEntry) IsNull() bool {
	return e.ID == uuid.Nil
}
