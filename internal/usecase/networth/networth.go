// Package networth maps sparse net worth snapshots onto a dense monthly axis
// and attaches the aggregates used by the overview.
package networth

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/simaogato/wealthflow-forecast/internal/domain"
	"github.com/simaogato/wealthflow-forecast/internal/usecase/aggregate"
	"github.com/simaogato/wealthflow-forecast/internal/usecase/period"
)

// ftiWindow is the number of months of spending averaged for the FTI metric
const ftiWindow = 12

const daysPerYear = 365.25

// Entry is a net worth snapshot with its derived totals.
// A month without a snapshot holds a null entry (ID == uuid.Nil, no values).
type Entry struct {
	domain.NetWorthEntry
	Aggregate   map[domain.AggregateBucket]int64
	Assets      int64 // non-option assets plus SAYE residuals
	Liabilities int64 // positive magnitude
	Options     int64 // option profit
	NetWorth    int64
	Spend       int64
	FTI         int64
}

// DeriveInput holds everything needed to derive the monthly entries
type DeriveInput struct {
	Dates     []time.Time // month dates of the axis, ascending
	Entries   []domain.NetWorthEntry
	Spending  []int64 // total spending aligned to Dates; shorter slices count as zero
	BirthDate time.Time
}

// Derive returns one entry per date. Raw entries may be in any order.
func Derive(calc *aggregate.Calculator, in DeriveInput) []Entry {
	byMonth := latestPerMonth(in.Entries)

	result := make([]Entry, len(in.Dates))
	for i, date := range in.Dates {
		raw, ok := byMonth[monthKey(date)]
		if !ok {
			raw = nullEntry(date)
		}

		entry := Entry{NetWorthEntry: raw}
		if i < len(in.Spending) {
			entry.Spend = in.Spending[i]
		}
		entry.Aggregate = calc.Aggregates(raw)
		entry.Assets = calc.SumValues(raw.Values, raw.Currencies, aggregate.NonOptionAssets(), false) +
			calc.SumSAYEResiduals(raw.Values)
		entry.Liabilities = -calc.SumValues(raw.Values, raw.Currencies, aggregate.ByType(domain.CategoryTypeLiability), false)
		entry.Options = calc.SumValues(raw.Values, raw.Currencies, aggregate.Options(), false)
		entry.NetWorth = entry.Assets - entry.Liabilities

		result[i] = entry
	}

	for i := range result {
		result[i].FTI = FTI(result[i].Assets, result[i].Liabilities, AgeYears(in.BirthDate, result[i].Date), AnnualSpend(result, i))
	}

	return result
}

// AnnualSpend returns the annualised spend over the trailing window ending at i.
// With fewer than twelve entries available the sum is scaled up to a full year.
func AnnualSpend(entries []Entry, i int) int64 {
	if i < 0 || i >= len(entries) {
		return 0
	}
	start := i - ftiWindow + 1
	if start < 0 {
		start = 0
	}
	var sum int64
	for _, e := range entries[start : i+1] {
		sum += e.Spend
	}
	windowLength := i - start + 1
	return int64(math.Round(float64(sum) * ftiWindow / float64(windowLength)))
}

// FTI is the financial independence metric: round((assets - liabilities) * age / annual spend).
// It is zero when there is no spend to divide by.
func FTI(assets, liabilities int64, ageYears float64, annualSpend int64) int64 {
	if annualSpend <= 0 {
		return 0
	}
	return int64(math.Round(float64(assets-liabilities) * ageYears / float64(annualSpend)))
}

// AgeYears returns the fractional age at date, or zero without a birth date
func AgeYears(birthDate, date time.Time) float64 {
	if birthDate.IsZero() || date.Before(birthDate) {
		return 0
	}
	return date.Sub(birthDate).Hours() / 24 / daysPerYear
}

// LatestKnown returns the most recent non-null entry at or before i.
// It reports false when no snapshot exists that early, returning the entry at i.
func LatestKnown(entries []Entry, i int) (Entry, bool) {
	if len(entries) == 0 {
		return Entry{}, false
	}
	if i >= len(entries) {
		i = len(entries) - 1
	}
	for j := i; j >= 0; j-- {
		if !entries[j].IsNull() {
			return entries[j], true
		}
	}
	if i < 0 {
		return Entry{}, false
	}
	return entries[i], false
}

// LatestRaw returns the raw entry with the latest date on or before date
func LatestRaw(entries []domain.NetWorthEntry, date time.Time) (domain.NetWorthEntry, bool) {
	var best domain.NetWorthEntry
	found := false
	for _, e := range entries {
		if e.Date.After(date) {
			continue
		}
		if !found || e.Date.After(best.Date) {
			best = e
			found = true
		}
	}
	return best, found
}

// Sorted returns a copy of the entries ordered by date
func Sorted(entries []domain.NetWorthEntry) []domain.NetWorthEntry {
	sorted := make([]domain.NetWorthEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

type month struct {
	year  int
	month time.Month
}

func monthKey(t time.Time) month {
	return month{year: t.Year(), month: t.Month()}
}

func latestPerMonth(entries []domain.NetWorthEntry) map[month]domain.NetWorthEntry {
	byMonth := make(map[month]domain.NetWorthEntry, len(entries))
	for _, e := range entries {
		key := monthKey(e.Date)
		if existing, ok := byMonth[key]; ok && !e.Date.After(existing.Date) {
			continue
		}
		byMonth[key] = e
	}
	return byMonth
}

func nullEntry(date time.Time) domain.NetWorthEntry {
	return domain.NetWorthEntry{
		ID:   uuid.Nil,
		Date: period.EndOfMonth(date),
	}
}
