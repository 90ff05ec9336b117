// Package spending predicts monthly income and spending per budget category.
package spending

import (
	"math"
	"sort"
	"time"

	"github.com/simaogato/wealthflow-forecast/internal/domain"
	"github.com/simaogato/wealthflow-forecast/internal/usecase/period"
)

// IncomeDecay weights each month of income relative to the month after it
const IncomeDecay = 0.7

// futureCategories are forecast from the median of the recent window
var futureCategories = map[string]bool{
	domain.CostFood:    true,
	domain.CostGeneral: true,
	domain.CostHoliday: true,
	domain.CostSocial:  true,
}

// extrapolateCategories accrue steadily, so a partial month is scaled up to a full one
var extrapolateCategories = map[string]bool{
	domain.CostFood:   true,
	domain.CostSocial: true,
}

// IsFutureCategory reports whether the category is forecast from the median window
func IsFutureCategory(category string) bool {
	return futureCategories[category]
}

// IsExtrapolated reports whether a partial current month is scaled to the full month
func IsExtrapolated(category string) bool {
	return extrapolateCategories[category]
}

// ForecastCategory predicts the current month and numFuture months after it.
// past holds one total per month up to and including the current month at currentIndex.
// Element 0 of the result is the current month; the rest are future months.
func ForecastCategory(category string, past []int64, currentIndex int, today time.Time, numFuture int) []int64 {
	if numFuture < 0 {
		numFuture = 0
	}
	result := make([]int64, numFuture+1)

	if currentIndex >= len(past) {
		currentIndex = len(past) - 1
	}
	if currentIndex < 0 {
		return result
	}

	complete := past[:currentIndex]
	current := past[currentIndex]
	endOfMonth := period.IsLastDayOfMonth(today)

	if !endOfMonth && IsExtrapolated(category) {
		current = int64(math.Round(float64(current) * float64(period.DaysInMonth(today)) / float64(today.Day())))
	}

	var average int64
	switch {
	case IsFutureCategory(category):
		average = roundHalfUp(Median(append(append([]int64{}, complete...), current)))
	case category == domain.CostIncome:
		window := complete
		if endOfMonth || len(complete) == 0 {
			window = past[:currentIndex+1]
		}
		average = roundHalfUp(ExponentialAverage(window, IncomeDecay))
	default:
		window := complete
		if endOfMonth || len(complete) == 0 {
			window = past[:currentIndex+1]
		}
		average = roundHalfUp(Median(window))
	}

	result[0] = current
	if !endOfMonth && !IsFutureCategory(category) && average > current {
		// income and bills arrive in lumps, so a missing payment is still expected this month
		result[0] = average
	}
	for i := 1; i <= numFuture; i++ {
		result[i] = average
	}
	return result
}

// Median returns the median of values, averaging the middle pair of an even count
func Median(values []int64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]int64{}, values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}

// ExponentialAverage weights the last value most, each earlier one by a further factor of decay
func ExponentialAverage(values []int64, decay float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum, weights float64
	weight := 1.0
	for i := len(values) - 1; i >= 0; i-- {
		sum += weight * float64(values[i])
		weights += weight
		weight *= decay
	}
	if weights == 0 {
		return 0
	}
	return sum / weights
}

func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
