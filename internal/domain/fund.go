package domain

import (
	"errors"
	"strings"
	"time"
)

// Fund represents an investment fund with its transaction history
type Fund struct {
	ID               int
	Item             string
	Transactions     []FundTransaction
	StockSplits      []StockSplit
	AllocationTarget *float64
}

// FundTransaction is a purchase (positive units) or sale (negative units).
// Drip and pension transactions count towards units held but not towards cost basis.
type FundTransaction struct {
	Date    time.Time
	Units   float64
	Price   float64 // minor units per unit
	Fees    int64
	Taxes   int64
	Drip    bool
	Pension bool
}

// StockSplit multiplies units held before Date by Ratio
type StockSplit struct {
	Date  time.Time
	Ratio float64
}

// FundPrice is a cached price snapshot for a fund
type FundPrice struct {
	FundID int
	Date   time.Time
	Price  float64 // minor units per unit
}

// Cost returns the cash cost of the transaction including fees and taxes
func (t FundTransaction) Cost() float64 {
	return t.Units*t.Price + float64(t.Fees) + float64(t.Taxes)
}

// IsCash reports whether the transaction was paid for with cash from the user's accounts
func (t FundTransaction) IsCash() bool {
	return !t.Drip && !t.Pension
}

// Validate ensures the fund adheres to domain rules
func (f *Fund) Validate() error {
	if strings.TrimSpace(f.Item) == "" {
		return errors.New("fund item cannot be empty")
	}
	for _, tx := range f.Transactions {
		if tx.Date.IsZero() {
			return errors.New("fund transaction date cannot be zero")
		}
		if tx.Price < 0 {
			return errors.New("fund transaction price must be positive")
		}
	}
	for _, split := range f.StockSplits {
		if split.Ratio <= 0 {
			return errors.New("stock split ratio must be positive")
		}
	}
	if f.AllocationTarget != nil && (*f.AllocationTarget < 0 || *f.AllocationTarget > 1) {
		return errors.New("allocation target must be between 0 and 1")
	}
	return nil
}
