// Package overview composes the net worth projection shown on the overview graph.
package overview

import (
	"math"
	"time"

	"github.com/simaogato/wealthflow-forecast/internal/domain"
	"github.com/simaogato/wealthflow-forecast/internal/usecase/aggregate"
	"github.com/simaogato/wealthflow-forecast/internal/usecase/equity"
	"github.com/simaogato/wealthflow-forecast/internal/usecase/networth"
	"github.com/simaogato/wealthflow-forecast/internal/usecase/period"
	"github.com/simaogato/wealthflow-forecast/internal/usecase/spending"
	"github.com/simaogato/wealthflow-forecast/internal/usecase/stocks"
)

// Input holds the raw history and options of one projection
type Input struct {
	Today            time.Time
	NumPast          int
	NumFuture        int
	LongTerm         domain.LongTermOptions
	BirthDate        time.Time
	Entries          []domain.NetWorthEntry
	Funds            []domain.Fund
	FundPrices       []domain.FundPrice
	LivePrices       map[int]float64
	AnnualisedReturn float64
	Costs            []domain.MonthlyCost
}

// Series holds one value per axis date for every projected quantity
type Series struct {
	CashLiquid     []int64
	CashOther      []int64
	Stocks         []int64
	StockCostBasis []int64
	Pension        []int64
	Options        []int64
	HomeEquity     []int64
	Assets         []int64
	Liabilities    []int64
	NetWorth       []int64
	Income         []int64
	Spending       []int64
	FTI            []int64
}

// Projection is the output of Project
type Projection struct {
	Dates                []period.GraphDate
	Series               Series
	StartPredictionIndex int
	Contribution         int64   // monthly stock purchase assumed in the future
	XIRR                 float64 // annualised return used for stocks and pension
}

// Rates are the monthly averages used for every predicted month
type Rates struct {
	Income       int64
	Spending     int64
	Contribution int64
	XIRR         float64
}

// Project builds the full projection.
// Past months report the carried-forward snapshot; predicted months extend each series
// from the month before by the deltas of its components.
func Project(calc *aggregate.Calculator, in Input) Projection {
	today := period.Day(in.Today)
	numPast := in.NumPast
	if numPast < 0 {
		numPast = 0
	}

	dates := period.GraphDates(today, numPast, in.NumFuture, in.LongTerm)
	historyLen := numPast + 1
	currentIndex := historyLen - 1
	// Logic: at least the first point is always reported as history, since a
	// prediction needs a previous month to extend from
	start := max(StartPredictionIndex(historyLen, today), 1)
	pastDates := period.Dates(dates[:historyLen])

	costs := CostsByCategory(in.Costs, pastDates)
	pastSpending := make([]int64, historyLen)
	for _, category := range domain.SpendingCategories {
		for i, v := range costs[category] {
			pastSpending[i] += v
		}
	}

	entries := networth.Derive(calc, networth.DeriveInput{
		Dates:     pastDates,
		Entries:   in.Entries,
		Spending:  pastSpending,
		BirthDate: in.BirthDate,
	})

	// current month predictions and the monthly average of each category
	current := make(map[string]int64)
	rates := Rates{}
	for _, category := range append([]string{domain.CostIncome}, domain.SpendingCategories...) {
		forecast := spending.ForecastCategory(category, costs[category], currentIndex, today, 1)
		current[category] = forecast[0]
		if category == domain.CostIncome {
			rates.Income = forecast[1]
		} else {
			rates.Spending += forecast[1]
		}
	}

	purchases := stocks.MonthlyPurchases(in.Funds, pastDates)
	rates.Contribution = stocks.DefaultContribution(purchases, currentIndex)
	rates.XIRR = in.AnnualisedReturn
	if in.LongTerm.Enabled {
		if in.LongTerm.Rates.Income != nil {
			rates.Income = *in.LongTerm.Rates.Income
		}
		if in.LongTerm.Rates.XIRR != nil {
			rates.XIRR = *in.LongTerm.Rates.XIRR
		}
		if in.LongTerm.Rates.StockPurchase != nil {
			rates.Contribution = *in.LongTerm.Rates.StockPurchase
		}
	}

	stockValues := stocks.Forecast(stocks.Input{
		Dates:        dates,
		Past:         stocks.HistoricalValues(in.Funds, in.FundPrices, pastDates),
		CurrentIndex: currentIndex,
		CurrentValue: stocks.CurrentValue(in.Funds, in.LivePrices, in.FundPrices, today),
		XIRR:         rates.XIRR,
		Contribution: rates.Contribution,
	})

	home := equity.Forecast(calc, equity.Input{
		Dates:                dates,
		Entries:              entries,
		StartPredictionIndex: start,
	})

	s := newSeries(len(dates))
	s.Stocks = stockValues
	s.StockCostBasis = stocks.CostBasis(in.Funds, dates, currentIndex, rates.Contribution)

	pensionGrowth := stocks.MonthlyGrowth(rates.XIRR)

	for i := range dates {
		// a home snapshot taken this month is a point-in-time balance and is reported
		// as is, even when the month's cash flows are still predicted
		s.HomeEquity[i] = home[i].Equity()

		if i < start {
			known, _ := networth.LatestKnown(entries, i)
			s.CashLiquid[i] = known.Aggregate[domain.AggregateCashEasyAccess]
			s.CashOther[i] = known.Aggregate[domain.AggregateCashOther]
			s.Pension[i] = known.Aggregate[domain.AggregatePension]
			s.Options[i] = known.Options
			s.Assets[i] = known.Assets
			s.Liabilities[i] = known.Liabilities
			s.NetWorth[i] = known.NetWorth
			s.FTI[i] = known.FTI
			if i < len(pastSpending) {
				s.Income[i] = costs[domain.CostIncome][i]
				s.Spending[i] = pastSpending[i]
			}
			continue
		}

		months := int64(period.Interval(dates, i))
		if i == currentIndex {
			s.Income[i] = current[domain.CostIncome]
			for _, category := range domain.SpendingCategories {
				s.Spending[i] += current[category]
			}
		} else {
			s.Income[i] = rates.Income * months
			s.Spending[i] = rates.Spending * months
		}
		purchased := rates.Contribution * months

		s.CashLiquid[i] = max(0, s.CashLiquid[i-1]+s.Income[i]-s.Spending[i]-purchased)
		s.CashOther[i] = s.CashOther[i-1]
		s.Options[i] = s.Options[i-1]
		s.Pension[i] = int64(math.Round(float64(s.Pension[i-1]) * math.Pow(pensionGrowth, float64(months))))

		deltaAssets := (s.CashLiquid[i] - s.CashLiquid[i-1]) +
			(s.CashOther[i] - s.CashOther[i-1]) +
			(s.Stocks[i] - s.Stocks[i-1]) +
			(s.Pension[i] - s.Pension[i-1]) +
			(home[i].Value - home[i-1].Value)
		deltaLiabilities := home[i].Debt - home[i-1].Debt

		s.Assets[i] = s.Assets[i-1] + deltaAssets
		s.Liabilities[i] = s.Liabilities[i-1] + deltaLiabilities
		s.NetWorth[i] = s.NetWorth[i-1] + deltaAssets - deltaLiabilities
		s.FTI[i] = networth.FTI(s.Assets[i], s.Liabilities[i], networth.AgeYears(in.BirthDate, dates[i].Date), rates.Spending*12)
	}

	return Projection{
		Dates:                dates,
		Series:               s,
		StartPredictionIndex: start,
		Contribution:         rates.Contribution,
		XIRR:                 rates.XIRR,
	}
}

// StartPredictionIndex returns the first predicted index. The current month still
// counts as history on its last day.
func StartPredictionIndex(historyLen int, today time.Time) int {
	if period.IsLastDayOfMonth(today) {
		return historyLen
	}
	return historyLen - 1
}

// CostsByCategory sums the monthly costs of each category onto the given month dates
func CostsByCategory(costs []domain.MonthlyCost, dates []time.Time) map[string][]int64 {
	result := make(map[string][]int64)
	result[domain.CostIncome] = make([]int64, len(dates))
	for _, category := range domain.SpendingCategories {
		result[category] = make([]int64, len(dates))
	}
	for _, cost := range costs {
		values, ok := result[cost.Category]
		if !ok {
			continue
		}
		for i, d := range dates {
			if period.SameMonth(cost.Date, d) {
				values[i] += cost.Value
				break
			}
		}
	}
	return result
}

func newSeries(n int) Series {
	return Series{
		CashLiquid:     make([]int64, n),
		CashOther:      make([]int64, n),
		Stocks:         make([]int64, n),
		StockCostBasis: make([]int64, n),
		Pension:        make([]int64, n),
		Options:        make([]int64, n),
		HomeEquity:     make([]int64, n),
		Assets:         make([]int64, n),
		Liabilities:    make([]int64, n),
		NetWorth:       make([]int64, n),
		Income:         make([]int64, n),
		Spending:       make([]int64, n),
		FTI:            make([]int64, n),
	}
}
