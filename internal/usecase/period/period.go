// Package period provides month arithmetic and the time axis of overview graphs.
// All dates are normalised to midnight UTC.
package period

import (
	"time"

	"github.com/simaogato/wealthflow-forecast/internal/domain"
)

// GraphDate is a point on a forecast time axis.
// MonthIndex counts months from the first point of the axis.
type GraphDate struct {
	Date       time.Time
	MonthIndex int
}

// Day truncates t to midnight UTC on the same calendar day
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StartOfMonth returns the first day of t's month
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// EndOfMonth returns the last day of t's month
func EndOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)
}

// DaysInMonth returns the number of days in t's month
func DaysInMonth(t time.Time) int {
	return EndOfMonth(t).Day()
}

// IsLastDayOfMonth reports whether t falls on the last calendar day of its month
func IsLastDayOfMonth(t time.Time) bool {
	return t.Day() == DaysInMonth(t)
}

// AddMonths returns the end of the month n months after t's month
func AddMonths(t time.Time, n int) time.Time {
	return time.Date(t.Year(), t.Month()+time.Month(n)+1, 0, 0, 0, 0, 0, time.UTC)
}

// MonthsBetween returns the number of calendar months from a to b (negative if b is earlier)
func MonthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// InclusiveMonthCount returns the number of calendar months touched by [start, end]
func InclusiveMonthCount(start, end time.Time) int {
	n := MonthsBetween(start, end) + 1
	if n < 0 {
		return 0
	}
	return n
}

// SameMonth reports whether a and b fall in the same calendar month
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// MonthEnds returns n consecutive month-end dates starting from start's month
func MonthEnds(start time.Time, n int) []time.Time {
	if n <= 0 {
		return []time.Time{}
	}
	dates := make([]time.Time, n)
	for i := range dates {
		dates[i] = AddMonths(start, i)
	}
	return dates
}

// AxisStart returns the end of the month numPast months before today's month
func AxisStart(today time.Time, numPast int) time.Time {
	return AddMonths(today, -numPast)
}

// GraphDates builds the time axis of an overview graph.
//
// Past points run monthly from the axis start through today's month. Short-term mode then
// adds numFuture monthly points. Long-term mode adds monthly points up to December of the
// current year, then one point per following 31 December for the requested number of years,
// plus one extra year when today falls in December.
func GraphDates(today time.Time, numPast, numFuture int, longTerm domain.LongTermOptions) []GraphDate {
	if numPast < 0 {
		numPast = 0
	}
	start := AxisStart(today, numPast)

	var ends []time.Time
	ends = append(ends, MonthEnds(start, numPast+1)...)

	if !longTerm.Enabled {
		for i := 1; i <= numFuture; i++ {
			ends = append(ends, AddMonths(today, i))
		}
	} else {
		for m := today.Month() + 1; m <= time.December; m++ {
			ends = append(ends, time.Date(today.Year(), m+1, 0, 0, 0, 0, 0, time.UTC))
		}
		years := longTerm.Rates.Years
		if today.Month() == time.December {
			years++
		}
		for y := 1; y <= years; y++ {
			ends = append(ends, time.Date(today.Year()+y, time.December, 31, 0, 0, 0, 0, time.UTC))
		}
	}

	dates := make([]GraphDate, len(ends))
	for i, d := range ends {
		dates[i] = GraphDate{Date: d, MonthIndex: MonthsBetween(start, d)}
	}
	return dates
}

// Interval returns the number of months covered by point i (1 for the first point)
func Interval(dates []GraphDate, i int) int {
	if i <= 0 || i >= len(dates) {
		return 1
	}
	return dates[i].MonthIndex - dates[i-1].MonthIndex
}

// Dates strips the month indices from an axis
func Dates(dates []GraphDate) []time.Time {
	out := make([]time.Time, len(dates))
	for i, d := range dates {
		out[i] = d.Date
	}
	return out
}
