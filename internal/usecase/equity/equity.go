// Package equity forecasts illiquid assets (real estate) and the loans secured on them.
package equity

import (
	"math"

	"github.com/simaogato/wealthflow-forecast/internal/domain"
	"github.com/simaogato/wealthflow-forecast/internal/usecase/aggregate"
	"github.com/simaogato/wealthflow-forecast/internal/usecase/networth"
	"github.com/simaogato/wealthflow-forecast/internal/usecase/period"
)

// Point is the forecast illiquid asset value and outstanding debt for one axis date
type Point struct {
	Value int64
	Debt  int64 // positive magnitude
}

// Equity returns the asset value net of debt
func (p Point) Equity() int64 {
	return p.Value - p.Debt
}

// Input holds the axis and the derived entries of the overview
type Input struct {
	Dates                []period.GraphDate
	Entries              []networth.Entry // aligned to the start of Dates
	StartPredictionIndex int
}

// MonthlyRate converts an annual percentage into the equivalent compound monthly rate
func MonthlyRate(annualRate float64) float64 {
	if annualRate <= -100 {
		return -1
	}
	return math.Pow(1+annualRate/100, 1.0/12) - 1
}

// Payment returns the fixed monthly payment which clears principal over n payments.
// With no payments remaining the whole principal is due.
func Payment(principal, annualRate float64, n int) float64 {
	if n <= 0 {
		return principal
	}
	r := MonthlyRate(annualRate)
	if r == 0 {
		return principal / float64(n)
	}
	return r * principal / (1 - math.Pow(1+r, -float64(n)))
}

type loan struct {
	principal float64
	growth    float64
	payment   float64
}

type asset struct {
	value  float64
	growth float64
}

type state struct {
	loans  []loan
	assets []asset
}

// Forecast returns one point per axis date.
// Dates before StartPredictionIndex report the carried-forward snapshot. Later dates
// report a snapshot taken that month if there is one, otherwise they step the last
// known loans and assets forward month by month. House value and loan principal are
// balances rather than flows, so a snapshot in a partly elapsed month is already the
// best estimate for that month. The loan term of the last snapshot is
// reused for every forecast month.
func Forecast(calc *aggregate.Calculator, in Input) []Point {
	points := make([]Point, len(in.Dates))
	if len(in.Dates) == 0 {
		return points
	}

	start := in.StartPredictionIndex
	if start < 0 {
		start = 0
	}

	var current state
	for i := range in.Dates {
		if i < start {
			known, _ := networth.LatestKnown(in.Entries, i)
			points[i] = actual(known)
			current = newState(calc, known)
			continue
		}

		if i < len(in.Entries) && !in.Entries[i].IsNull() {
			points[i] = actual(in.Entries[i])
			current = newState(calc, in.Entries[i])
			continue
		}

		months := period.Interval(in.Dates, i)
		if i == 0 {
			months = 0
		}
		for m := 0; m < months; m++ {
			current.step()
		}
		points[i] = current.point()
	}

	return points
}

func actual(entry networth.Entry) Point {
	if entry.Aggregate == nil {
		return Point{}
	}
	return Point{
		Value: entry.Aggregate[domain.AggregateRealEstate],
		Debt:  -entry.Aggregate[domain.AggregateMortgage],
	}
}

func newState(calc *aggregate.Calculator, entry networth.Entry) state {
	var s state
	for _, value := range entry.Values {
		if value.Skip {
			continue
		}
		sub, cat, ok := calc.Lookup(value.Subcategory)
		if !ok {
			continue
		}
		switch cat.Aggregate {
		case domain.AggregateMortgage:
			if value.Loan != nil {
				s.loans = append(s.loans, loan{
					principal: float64(value.Loan.Principal),
					growth:    1 + MonthlyRate(value.Loan.Rate),
					payment:   Payment(float64(value.Loan.Principal), value.Loan.Rate, value.Loan.PaymentsRemaining),
				})
			} else {
				// other mortgage values are carried without amortisation
				s.loans = append(s.loans, loan{
					principal: -float64(calc.SumComplexValue(value, entry.Currencies, false)),
					growth:    1,
				})
			}
		case domain.AggregateRealEstate:
			rate := 0.0
			if sub.AppreciationRate != nil {
				rate = *sub.AppreciationRate
			}
			s.assets = append(s.assets, asset{
				value:  float64(calc.SumComplexValue(value, entry.Currencies, false)),
				growth: 1 + MonthlyRate(rate),
			})
		}
	}
	return s
}

func (s *state) step() {
	for i := range s.loans {
		l := &s.loans[i]
		l.principal = math.Max(0, l.principal*l.growth-l.payment)
	}
	for i := range s.assets {
		s.assets[i].value *= s.assets[i].growth
	}
}

func (s *state) point() Point {
	var value, debt float64
	for _, a := range s.assets {
		value += a.value
	}
	for _, l := range s.loans {
		debt += l.principal
	}
	return Point{Value: int64(math.Round(value)), Debt: int64(math.Round(debt))}
}
