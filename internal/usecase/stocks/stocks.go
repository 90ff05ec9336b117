// Package stocks values fund holdings over time and projects them forward.
package stocks

import (
	"math"
	"time"

	"github.com/simaogato/wealthflow-forecast/internal/domain"
	"github.com/simaogato/wealthflow-forecast/internal/usecase/period"
)

// UnitsAt returns the units of a fund held at the end of date, adjusted for every
// stock split up to that date. Drip and pension transactions count.
func UnitsAt(fund domain.Fund, date time.Time) float64 {
	var units float64
	for _, tx := range fund.Transactions {
		if tx.Date.After(date) {
			continue
		}
		units += tx.Units * splitFactor(fund.StockSplits, tx.Date, date)
	}
	return units
}

// splitFactor is the product of split ratios in (from, to]
func splitFactor(splits []domain.StockSplit, from, to time.Time) float64 {
	factor := 1.0
	for _, split := range splits {
		if split.Date.After(from) && !split.Date.After(to) {
			factor *= split.Ratio
		}
	}
	return factor
}

// PriceAt returns the latest cached price of a fund on or before date
func PriceAt(prices []domain.FundPrice, fundID int, date time.Time) (float64, bool) {
	var best domain.FundPrice
	found := false
	for _, p := range prices {
		if p.FundID != fundID || p.Date.After(date) {
			continue
		}
		if !found || p.Date.After(best.Date) {
			best = p
			found = true
		}
	}
	return best.Price, found
}

// transactionPriceAt falls back to the latest transaction price, split-adjusted to date
func transactionPriceAt(fund domain.Fund, date time.Time) (float64, bool) {
	var best domain.FundTransaction
	found := false
	for _, tx := range fund.Transactions {
		if tx.Date.After(date) {
			continue
		}
		if !found || tx.Date.After(best.Date) {
			best = tx
			found = true
		}
	}
	if !found {
		return 0, false
	}
	return best.Price / splitFactor(fund.StockSplits, best.Date, date), true
}

func valueAt(fund domain.Fund, prices []domain.FundPrice, date time.Time) float64 {
	units := UnitsAt(fund, date)
	if units == 0 {
		return 0
	}
	price, ok := PriceAt(prices, fund.ID, date)
	if !ok {
		price, ok = transactionPriceAt(fund, date)
	}
	if !ok {
		return 0
	}
	return units * price
}

// HistoricalValues returns the total value of all funds at each date
func HistoricalValues(funds []domain.Fund, prices []domain.FundPrice, dates []time.Time) []int64 {
	values := make([]int64, len(dates))
	for i, date := range dates {
		var total float64
		for _, fund := range funds {
			total += valueAt(fund, prices, date)
		}
		values[i] = int64(math.Round(total))
	}
	return values
}

// CurrentValue returns today's market value, preferring live prices keyed by fund id
func CurrentValue(funds []domain.Fund, livePrices map[int]float64, prices []domain.FundPrice, today time.Time) int64 {
	var total float64
	for _, fund := range funds {
		price, ok := livePrices[fund.ID]
		if !ok {
			total += valueAt(fund, prices, today)
			continue
		}
		total += UnitsAt(fund, today) * price
	}
	return int64(math.Round(total))
}

// MonthlyPurchases returns the cash spent on funds in each date's calendar month.
// Drip and pension transactions are not paid from cash and are excluded.
func MonthlyPurchases(funds []domain.Fund, dates []time.Time) []int64 {
	purchases := make([]int64, len(dates))
	for i, date := range dates {
		var total float64
		for _, fund := range funds {
			for _, tx := range fund.Transactions {
				if tx.IsCash() && period.SameMonth(tx.Date, date) {
					total += tx.Cost()
				}
			}
		}
		purchases[i] = int64(math.Round(total))
	}
	return purchases
}

// DefaultContribution averages the purchases of the last one or two complete months
// before currentIndex. Without a complete month it uses the current month alone.
func DefaultContribution(purchases []int64, currentIndex int) int64 {
	if currentIndex >= len(purchases) {
		currentIndex = len(purchases) - 1
	}
	if currentIndex < 0 {
		return 0
	}
	if currentIndex == 0 {
		return purchases[0]
	}
	from := currentIndex - 2
	if from < 0 {
		from = 0
	}
	var sum int64
	for _, p := range purchases[from:currentIndex] {
		sum += p
	}
	return int64(math.Round(float64(sum) / float64(currentIndex-from)))
}

// CostBasis returns the cumulative cash cost of all holdings at each date.
// Dates after currentIndex add contribution for every month since the current date.
func CostBasis(funds []domain.Fund, dates []period.GraphDate, currentIndex int, contribution int64) []int64 {
	basis := make([]int64, len(dates))
	var last int64
	for i, d := range dates {
		if i > currentIndex && currentIndex >= 0 {
			months := d.MonthIndex - dates[currentIndex].MonthIndex
			basis[i] = last + contribution*int64(months)
			continue
		}
		end := period.EndOfMonth(d.Date)
		var total float64
		for _, fund := range funds {
			for _, tx := range fund.Transactions {
				if tx.IsCash() && !tx.Date.After(end) {
					total += tx.Cost()
				}
			}
		}
		basis[i] = int64(math.Round(total))
		last = basis[i]
	}
	return basis
}

// Input holds the parameters of a stock value projection
type Input struct {
	Dates        []period.GraphDate
	Past         []int64 // historical values aligned to Dates
	CurrentIndex int     // today's month
	CurrentValue int64   // live market value
	XIRR         float64 // annualised return, 0.07 == 7%
	Contribution int64   // assumed monthly purchase
}

// Forecast projects the stock value series.
// Logic: past months keep their historical value, today's month is the live market
// value, and every later month compounds at the monthly equivalent of XIRR before
// adding one contribution.
func Forecast(in Input) []int64 {
	values := make([]int64, len(in.Dates))
	growth := MonthlyGrowth(in.XIRR)

	var v float64
	for i := range in.Dates {
		switch {
		case i < in.CurrentIndex:
			if i < len(in.Past) {
				values[i] = in.Past[i]
			}
			continue
		case i == in.CurrentIndex:
			v = float64(in.CurrentValue)
		default:
			for m := 0; m < period.Interval(in.Dates, i); m++ {
				v = v*growth + float64(in.Contribution)
			}
		}
		values[i] = int64(math.Round(v))
	}
	return values
}

// MonthlyGrowth converts an annualised return into a monthly growth factor
func MonthlyGrowth(xirr float64) float64 {
	if xirr <= -1 {
		return 0
	}
	return math.Pow(1+xirr, 1.0/12)
}
