// Package planning projects account balances through a UK tax year from payroll,
// credit card payments and planned adjustments.
package planning

import (
	"math"
	"sort"
	"time"

	"github.com/simaogato/wealthflow-forecast/internal/domain"
	"github.com/simaogato/wealthflow-forecast/internal/log"
	"github.com/simaogato/wealthflow-forecast/internal/usecase/aggregate"
	"github.com/simaogato/wealthflow-forecast/internal/usecase/period"
	"github.com/simaogato/wealthflow-forecast/internal/usecase/spending"
)

// IncomeRow is the payroll of one income schedule in one month
type IncomeRow struct {
	Date     time.Time
	IncomeID int
	Breakdown
	Verified bool
}

// CreditCardRow is the payment of one card in one month; negative leaves the account
type CreditCardRow struct {
	Date      time.Time
	CardID    int
	Value     int64
	Predicted bool
}

// ValueRow is a planned adjustment in one month
type ValueRow struct {
	Date       time.Time
	ValueID    int
	Name       string
	Value      int64
	IsTransfer bool // received from another account
	AccountID  int  // the other account of a transfer
}

// MonthSummary totals one account month
type MonthSummary struct {
	Date        time.Time
	Income      int64 // net pay
	CreditCards int64
	Values      int64
	Total       int64
	Balance     int64 // after the month
	AboveUpper  bool
	BelowLower  bool
}

// AccountResult is the projection of one account through the tax year
type AccountResult struct {
	AccountID   int
	Name        string
	StartValue  int64
	Income      []IncomeRow
	CreditCards []CreditCardRow
	Values      []ValueRow
	Months      []MonthSummary
}

// Result is the projection of every account of a user
type Result struct {
	Year     int
	Accounts []AccountResult
}

// Input holds everything the sync needs
type Input struct {
	Year            int
	Accounts        []domain.PlanningAccount
	TaxParameters   []domain.TaxParameters
	IncomeRecords   []domain.IncomeRecord
	NetWorthEntries []domain.NetWorthEntry
}

// YearStart returns the first day of tax year y
func YearStart(year int) time.Time {
	return time.Date(year, domain.PlanningYearStartMonth, 1, 0, 0, 0, 0, time.UTC)
}

// YearEnd returns the last day of tax year y
func YearEnd(year int) time.Time {
	return YearStart(year+1).AddDate(0, 0, -1)
}

// TaxYear returns the tax year containing date
func TaxYear(date time.Time) int {
	if date.Month() < domain.PlanningYearStartMonth {
		return date.Year() - 1
	}
	return date.Year()
}

// YearMonths returns the month-end dates of tax year y
func YearMonths(year int) []time.Time {
	return period.MonthEnds(YearStart(year), 12)
}

// ParametersFor returns the parameters of the given tax year, else the closest earlier
// year, else the earliest available year.
func ParametersFor(params []domain.TaxParameters, year int) domain.TaxParameters {
	var best domain.TaxParameters
	found := false
	for _, p := range params {
		if p.Year <= year && (!found || p.Year > best.Year) {
			best = p
			found = true
		}
	}
	if found {
		return best
	}
	for _, p := range params {
		if !found || p.Year < best.Year {
			best = p
			found = true
		}
	}
	return best
}

// LatestActiveIncome returns the schedule with the latest start date among those active
// on any day of date's month
func LatestActiveIncome(incomes []domain.PlanningIncome, date time.Time) (domain.PlanningIncome, bool) {
	var best domain.PlanningIncome
	found := false
	from, to := period.StartOfMonth(date), period.EndOfMonth(date)
	for _, income := range incomes {
		if !income.ActiveDuring(from, to) {
			continue
		}
		if !found || income.StartDate.After(best.StartDate) {
			best = income
			found = true
		}
	}
	return best, found
}

// PredictedCardPayment returns the median of every recorded payment of a card
func PredictedCardPayment(card domain.PlanningCreditCard) (int64, bool) {
	if len(card.Payments) == 0 {
		return 0, false
	}
	values := make([]int64, len(card.Payments))
	for i, p := range card.Payments {
		values[i] = p.Value
	}
	return int64(math.Round(spending.Median(values))), true
}

type accountRows struct {
	income []IncomeRow
	cards  []CreditCardRow
	values []ValueRow
}

type engine struct {
	calc    *aggregate.Calculator
	params  []domain.TaxParameters
	records map[int]map[time.Time][]domain.IncomeRecord
	logger  *log.Logger
}

// Sync projects every account through the tax year.
// Logic:
//   - Rows are computed from the month after each account's last net worth balance
//     up to the end of the year, so the start value can catch up across any gap
//   - Transfers are applied once every account's own values are known
//   - Only rows inside the tax year are reported
func Sync(calc *aggregate.Calculator, in Input, logger *log.Logger) Result {
	logger = log.OrDiscard(logger).WithComponent(log.ComponentPlanning)
	e := &engine{
		calc:    calc,
		params:  in.TaxParameters,
		records: indexRecords(in.IncomeRecords),
		logger:  logger,
	}

	yearStart := YearStart(in.Year)
	from := yearStart
	balances := make(map[int]startBalance, len(in.Accounts))
	for _, account := range in.Accounts {
		b := e.lastBalance(account, in.NetWorthEntries, yearStart)
		balances[account.ID] = b
		if b.found && b.from.Before(from) {
			from = b.from
		}
	}
	months := period.MonthEnds(from, period.MonthsBetween(from, yearStart)+12)

	rows := make(map[int]*accountRows, len(in.Accounts))
	for _, account := range in.Accounts {
		rows[account.ID] = e.ownRows(account, months)
	}
	e.applyTransfers(in.Accounts, rows, months)

	result := Result{Year: in.Year, Accounts: make([]AccountResult, 0, len(in.Accounts))}
	for _, account := range in.Accounts {
		r := rows[account.ID]
		b := balances[account.ID]

		start := b.value
		if b.found {
			start += r.total(b.from, yearStart.AddDate(0, 0, -1))
		}

		ar := AccountResult{
			AccountID:   account.ID,
			Name:        account.Name,
			StartValue:  start,
			Income:      inYear(r.income, in.Year, func(row IncomeRow) time.Time { return row.Date }),
			CreditCards: inYear(r.cards, in.Year, func(row CreditCardRow) time.Time { return row.Date }),
			Values:      inYear(r.values, in.Year, func(row ValueRow) time.Time { return row.Date }),
		}
		ar.Months = summarise(account, ar, YearMonths(in.Year))
		result.Accounts = append(result.Accounts, ar)
	}

	return result
}

type startBalance struct {
	value int64
	from  time.Time // first month to catch up
	found bool
}

// lastBalance finds the latest net worth balance of the account before the year start
func (e *engine) lastBalance(account domain.PlanningAccount, entries []domain.NetWorthEntry, yearStart time.Time) startBalance {
	entry, value, ok := lastBalanceValue(account, entries, yearStart)
	if !ok {
		e.logger.Warn("no net worth balance before the tax year, starting from zero",
			log.FieldAccount, account.ID,
			log.FieldSubcategory, account.NetWorthSubcategoryID,
		)
		return startBalance{}
	}
	return startBalance{
		value: e.calc.SumComplexValue(value, entry.Currencies, false),
		from:  catchUpFrom(entry.Date),
		found: true,
	}
}

func lastBalanceValue(account domain.PlanningAccount, entries []domain.NetWorthEntry, yearStart time.Time) (domain.NetWorthEntry, domain.NetWorthValue, bool) {
	var bestEntry domain.NetWorthEntry
	var bestValue domain.NetWorthValue
	found := false
	for _, entry := range entries {
		if !entry.Date.Before(yearStart) || (found && !entry.Date.After(bestEntry.Date)) {
			continue
		}
		for _, value := range entry.Values {
			if value.Subcategory == account.NetWorthSubcategoryID && !value.Skip {
				bestEntry, bestValue, found = entry, value, true
				break
			}
		}
	}
	return bestEntry, bestValue, found
}

// catchUpFrom is the first month after a balance taken on date
func catchUpFrom(date time.Time) time.Time {
	return period.StartOfMonth(period.AddMonths(date, 1))
}

// CatchUpStart returns the first month whose rows are needed to sync the tax year:
// the month after the oldest of the accounts' last balances, or the year start.
func CatchUpStart(accounts []domain.PlanningAccount, entries []domain.NetWorthEntry, year int) time.Time {
	yearStart := YearStart(year)
	from := yearStart
	for _, account := range accounts {
		entry, _, ok := lastBalanceValue(account, entries, yearStart)
		if ok && catchUpFrom(entry.Date).Before(from) {
			from = catchUpFrom(entry.Date)
		}
	}
	return from
}

func (e *engine) ownRows(account domain.PlanningAccount, months []time.Time) *accountRows {
	r := &accountRows{}
	for _, month := range months {
		if recorded := e.records[account.ID][period.StartOfMonth(month)]; len(recorded) > 0 {
			r.income = append(r.income, IncomeRow{
				Date:      month,
				Breakdown: RecordedBreakdown(recorded),
				Verified:  true,
			})
		} else if income, ok := LatestActiveIncome(account.Income, month); ok {
			r.income = append(r.income, IncomeRow{
				Date:      month,
				IncomeID:  income.ID,
				Breakdown: Deductions(income, ParametersFor(e.params, TaxYear(month))),
			})
		}

		for _, card := range account.CreditCards {
			if row, ok := cardRow(card, month); ok {
				r.cards = append(r.cards, row)
			}
		}

		for _, value := range account.Values {
			// transfers are added with their counterpart in applyTransfers
			if value.TransferToAccountID != nil || value.Year != month.Year() || value.Month != month.Month() {
				continue
			}
			amount, ok := e.valueAmount(account, value)
			if !ok {
				continue
			}
			r.values = append(r.values, ValueRow{Date: month, ValueID: value.ID, Name: value.Name, Value: amount})
		}
	}
	return r
}

func cardRow(card domain.PlanningCreditCard, month time.Time) (CreditCardRow, bool) {
	for _, p := range card.Payments {
		if p.Year == month.Year() && p.Month == month.Month() {
			return CreditCardRow{Date: month, CardID: card.ID, Value: p.Value}, true
		}
	}
	predicted, ok := PredictedCardPayment(card)
	if !ok {
		return CreditCardRow{}, false
	}
	return CreditCardRow{Date: month, CardID: card.ID, Value: predicted, Predicted: true}, true
}

func (e *engine) valueAmount(account domain.PlanningAccount, value domain.PlanningValue) (int64, bool) {
	if value.Value != nil {
		return *value.Value, true
	}
	amount, err := EvaluateFormula(value.Formula, value.Year, int(value.Month))
	if err != nil {
		e.logger.Warn("planning formula skipped",
			log.FieldAccount, account.ID,
			log.FieldError, err.Error(),
		)
		return 0, false
	}
	return amount, true
}

// applyTransfers moves each transfer value out of its source and into its destination
func (e *engine) applyTransfers(accounts []domain.PlanningAccount, rows map[int]*accountRows, months []time.Time) {
	from, to := months[0], months[len(months)-1]
	for _, account := range accounts {
		for _, value := range account.Values {
			if value.TransferToAccountID == nil {
				continue
			}
			month := time.Date(value.Year, value.Month+1, 0, 0, 0, 0, 0, time.UTC)
			if month.Before(from) || month.After(to) {
				continue
			}
			amount, ok := e.valueAmount(account, value)
			if !ok {
				continue
			}
			if amount < 0 {
				amount = -amount
			}
			destinationID := *value.TransferToAccountID

			// both legs or neither, so a transfer always nets to zero
			destination, ok := rows[destinationID]
			if !ok {
				e.logger.Warn("transfer destination is not a planning account",
					log.FieldAccount, account.ID,
					"destination", destinationID,
				)
				continue
			}

			rows[account.ID].values = append(rows[account.ID].values, ValueRow{
				Date:      month,
				ValueID:   value.ID,
				Name:      value.Name,
				Value:     -amount,
				AccountID: destinationID,
			})
			destination.values = append(destination.values, ValueRow{
				Date:       month,
				ValueID:    value.ID,
				Name:       value.Name,
				Value:      amount,
				IsTransfer: true,
				AccountID:  account.ID,
			})
		}
	}

	for _, r := range rows {
		sort.SliceStable(r.values, func(i, j int) bool { return r.values[i].Date.Before(r.values[j].Date) })
	}
}

// total sums every contribution dated within [from, to]
func (r *accountRows) total(from, to time.Time) int64 {
	within := func(d time.Time) bool { return !d.Before(from) && !d.After(period.EndOfMonth(to)) }
	var sum int64
	for _, row := range r.income {
		if within(row.Date) {
			sum += row.Net()
		}
	}
	for _, row := range r.cards {
		if within(row.Date) {
			sum += row.Value
		}
	}
	for _, row := range r.values {
		if within(row.Date) {
			sum += row.Value
		}
	}
	return sum
}

func summarise(account domain.PlanningAccount, ar AccountResult, months []time.Time) []MonthSummary {
	summaries := make([]MonthSummary, len(months))
	balance := ar.StartValue
	for i, month := range months {
		s := MonthSummary{Date: month}
		for _, row := range ar.Income {
			if period.SameMonth(row.Date, month) {
				s.Income += row.Net()
			}
		}
		for _, row := range ar.CreditCards {
			if period.SameMonth(row.Date, month) {
				s.CreditCards += row.Value
			}
		}
		for _, row := range ar.Values {
			if period.SameMonth(row.Date, month) {
				s.Values += row.Value
			}
		}
		s.Total = s.Income + s.CreditCards + s.Values
		balance += s.Total
		s.Balance = balance
		s.AboveUpper = account.UpperLimit != nil && balance > *account.UpperLimit
		s.BelowLower = account.LowerLimit != nil && balance < *account.LowerLimit
		summaries[i] = s
	}
	return summaries
}

func inYear[T any](rows []T, year int, date func(T) time.Time) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if TaxYear(date(row)) == year {
			out = append(out, row)
		}
	}
	return out
}

func indexRecords(records []domain.IncomeRecord) map[int]map[time.Time][]domain.IncomeRecord {
	index := make(map[int]map[time.Time][]domain.IncomeRecord)
	for _, r := range records {
		if index[r.AccountID] == nil {
			index[r.AccountID] = make(map[time.Time][]domain.IncomeRecord)
		}
		key := period.StartOfMonth(r.Date)
		index[r.AccountID][key] = append(index[r.AccountID][key], r)
	}
	return index
}
