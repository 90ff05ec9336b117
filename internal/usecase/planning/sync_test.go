package planning

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/wealthflow-forecast/internal/domain"
	"github.com/simaogato/wealthflow-forecast/internal/usecase/aggregate"
)

func int64Ptr(v int64) *int64 { return &v }

func intPtr(v int) *int { return &v }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testCategories() ([]domain.Category, []domain.Subcategory) {
	return []domain.Category{
			{ID: 1, Name: "Cash (easy access)", Type: domain.CategoryTypeAsset, Aggregate: domain.AggregateCashEasyAccess},
		}, []domain.Subcategory{
			{ID: 10, CategoryID: 1, Name: "Current account"},
			{ID: 20, CategoryID: 1, Name: "Savings account"},
		}
}

func testCalculator() *aggregate.Calculator {
	categories, subcategories := testCategories()
	return aggregate.NewCalculator(categories, subcategories, nil)
}

func testAccounts() []domain.PlanningAccount {
	return []domain.PlanningAccount{
		{
			ID:                    1,
			Name:                  "Current account",
			NetWorthSubcategoryID: 10,
			Income: []domain.PlanningIncome{{
				ID:        5,
				StartDate: date(2023, 4, 1),
				EndDate:   date(2030, 3, 31),
				Salary:    6000000,
				TaxCode:   "1257L",
			}},
			CreditCards: []domain.PlanningCreditCard{{
				ID:                    8,
				NetWorthSubcategoryID: 99,
				Payments: []domain.CreditCardPayment{
					{Year: 2024, Month: time.January, Value: -10000},
					{Year: 2024, Month: time.February, Value: -30000},
					{Year: 2024, Month: time.April, Value: -20000},
				},
			}},
			Values: []domain.PlanningValue{
				{ID: 1, Year: 2024, Month: time.May, Name: "Car insurance", Value: int64Ptr(-120000)},
				{ID: 2, Year: 2024, Month: time.June, Name: "Subscriptions", Formula: "-50 * 12 / 4"},
				{ID: 3, Year: 2024, Month: time.July, Name: "Savings", Value: int64Ptr(50000), TransferToAccountID: intPtr(2)},
				{ID: 4, Year: 2025, Month: time.February, Name: "Broken", Formula: "1 +"},
				{ID: 5, Year: 2026, Month: time.May, Name: "Next year", Value: int64Ptr(-1)},
			},
		},
		{
			ID:                    2,
			Name:                  "Savings account",
			NetWorthSubcategoryID: 20,
			UpperLimit:            int64Ptr(220000),
		},
	}
}

func testInput() Input {
	return Input{
		Year:          2024,
		Accounts:      testAccounts(),
		TaxParameters: []domain.TaxParameters{params2024()},
		IncomeRecords: []domain.IncomeRecord{{
			AccountID: 1,
			Date:      date(2024, 4, 25),
			Item:      "Salary",
			Gross:     500000,
			Deductions: []domain.NamedValue{
				{Name: domain.DeductionIncomeTax, Value: -90000},
				{Name: domain.DeductionNI, Value: -25000},
			},
		}},
		NetWorthEntries: []domain.NetWorthEntry{
			{
				ID:   uuid.New(),
				Date: date(2024, 2, 20),
				Values: []domain.NetWorthValue{
					{Subcategory: 10, Simple: int64Ptr(1000000)},
					{Subcategory: 20, Simple: int64Ptr(200000)},
				},
			},
			{
				ID:     uuid.New(),
				Date:   date(2024, 1, 20),
				Values: []domain.NetWorthValue{{Subcategory: 10, Simple: int64Ptr(1)}},
			},
			{
				ID:     uuid.New(),
				Date:   date(2024, 5, 1),
				Values: []domain.NetWorthValue{{Subcategory: 10, Simple: int64Ptr(9999999)}},
			},
		},
	}
}

func TestTaxYear(t *testing.T) {
	assert.Equal(t, 2023, TaxYear(date(2024, 3, 31)))
	assert.Equal(t, 2024, TaxYear(date(2024, 4, 1)))
	assert.Equal(t, date(2024, 4, 1), YearStart(2024))
	assert.Equal(t, date(2025, 3, 31), YearEnd(2024))

	months := YearMonths(2024)
	require.Len(t, months, 12)
	assert.Equal(t, date(2024, 4, 30), months[0])
	assert.Equal(t, date(2025, 3, 31), months[11])
}

func TestParametersFor(t *testing.T) {
	params := []domain.TaxParameters{{Year: 2022}, {Year: 2024}, {Year: 2023}}

	assert.Equal(t, 2024, ParametersFor(params, 2024).Year)
	assert.Equal(t, 2024, ParametersFor(params, 2030).Year)
	assert.Equal(t, 2022, ParametersFor(params, 2020).Year)
	assert.Equal(t, 0, ParametersFor(nil, 2024).Year)
}

func TestPredictedCardPayment(t *testing.T) {
	_, ok := PredictedCardPayment(domain.PlanningCreditCard{})
	assert.False(t, ok)

	v, ok := PredictedCardPayment(domain.PlanningCreditCard{Payments: []domain.CreditCardPayment{
		{Year: 2020, Month: time.May, Value: -100},
		{Year: 2024, Month: time.June, Value: -5000},
		{Year: 2024, Month: time.July, Value: -200},
	}})
	assert.True(t, ok)
	assert.Equal(t, int64(-200), v)
}

func TestLatestActiveIncome(t *testing.T) {
	incomes := []domain.PlanningIncome{
		{ID: 1, StartDate: date(2020, 1, 1), EndDate: date(2030, 1, 1)},
		{ID: 2, StartDate: date(2024, 6, 1), EndDate: date(2025, 1, 1)},
	}

	income, ok := LatestActiveIncome(incomes, date(2024, 7, 31))
	assert.True(t, ok)
	assert.Equal(t, 2, income.ID)

	income, ok = LatestActiveIncome(incomes, date(2025, 7, 31))
	assert.True(t, ok)
	assert.Equal(t, 1, income.ID)

	_, ok = LatestActiveIncome(incomes, date(2031, 1, 1))
	assert.False(t, ok)
}

func TestLatestActiveIncome_EndsMidMonth(t *testing.T) {
	incomes := []domain.PlanningIncome{
		{ID: 1, StartDate: date(2023, 1, 1), EndDate: date(2024, 9, 15)},
	}

	income, ok := LatestActiveIncome(incomes, date(2024, 9, 30))
	assert.True(t, ok)
	assert.Equal(t, 1, income.ID)

	_, ok = LatestActiveIncome(incomes, date(2024, 10, 31))
	assert.False(t, ok)
}

func TestSync_IncomeEndingMidMonth(t *testing.T) {
	in := testInput()
	in.IncomeRecords = nil
	in.Accounts[0].Income[0].EndDate = date(2024, 9, 15)

	result := Sync(testCalculator(), in, nil)

	var months []time.Month
	for _, row := range result.Accounts[0].Income {
		months = append(months, row.Date.Month())
	}
	assert.Equal(t, []time.Month{time.April, time.May, time.June, time.July, time.August, time.September}, months)
}

func TestSync_StartValueCatchesUp(t *testing.T) {
	result := Sync(testCalculator(), testInput(), nil)

	require.Len(t, result.Accounts, 2)
	// balance on 20 February plus March's predicted pay and card payment
	assert.Equal(t, int64(1000000+377978-20000), result.Accounts[0].StartValue)
	assert.Equal(t, int64(200000), result.Accounts[1].StartValue)
}

func TestSync_VerifiedAndPredictedIncome(t *testing.T) {
	account := Sync(testCalculator(), testInput(), nil).Accounts[0]

	require.Len(t, account.Income, 12)

	april := account.Income[0]
	assert.True(t, april.Verified)
	assert.Equal(t, date(2024, 4, 30), april.Date)
	assert.Equal(t, Breakdown{Gross: 500000, IncomeTax: 90000, NI: 25000}, april.Breakdown)

	may := account.Income[1]
	assert.False(t, may.Verified)
	assert.Equal(t, 5, may.IncomeID)
	assert.Equal(t, int64(377978), may.Net())
}

func TestSync_CreditCards(t *testing.T) {
	account := Sync(testCalculator(), testInput(), nil).Accounts[0]

	require.Len(t, account.CreditCards, 12)
	assert.False(t, account.CreditCards[0].Predicted)
	assert.Equal(t, int64(-20000), account.CreditCards[0].Value)
	for _, row := range account.CreditCards[1:] {
		assert.True(t, row.Predicted)
		assert.Equal(t, int64(-20000), row.Value)
	}
}

func TestSync_Values(t *testing.T) {
	result := Sync(testCalculator(), testInput(), nil)
	source := result.Accounts[0]
	destination := result.Accounts[1]

	require.Len(t, source.Values, 3)
	assert.Equal(t, int64(-120000), source.Values[0].Value)
	assert.Equal(t, int64(-150), source.Values[1].Value)
	assert.Equal(t, ValueRow{Date: date(2024, 7, 31), ValueID: 3, Name: "Savings", Value: -50000, AccountID: 2}, source.Values[2])

	require.Len(t, destination.Values, 1)
	assert.Equal(t, ValueRow{Date: date(2024, 7, 31), ValueID: 3, Name: "Savings", Value: 50000, IsTransfer: true, AccountID: 1}, destination.Values[0])
}

func TestSync_TransferConservation(t *testing.T) {
	in := testInput()
	in.Accounts[1].Values = []domain.PlanningValue{
		{ID: 20, Year: 2024, Month: time.September, Name: "Top up", Value: int64Ptr(-7500), TransferToAccountID: intPtr(1)},
		{ID: 21, Year: 2025, Month: time.January, Name: "Top up", Formula: "100 * 3", TransferToAccountID: intPtr(1)},
	}

	result := Sync(testCalculator(), in, nil)

	sums := make(map[int]int64)
	for _, account := range result.Accounts {
		for _, row := range account.Values {
			if row.IsTransfer || row.AccountID != 0 {
				sums[row.ValueID] += row.Value
			}
		}
	}

	require.Len(t, sums, 3)
	for id, sum := range sums {
		assert.Equal(t, int64(0), sum, "value %d", id)
	}
}

func TestSync_TransferToUnknownAccount(t *testing.T) {
	in := testInput()
	in.Accounts[1].Values = []domain.PlanningValue{
		{ID: 30, Year: 2024, Month: time.September, Name: "Elsewhere", Value: int64Ptr(-7500), TransferToAccountID: intPtr(99)},
	}

	result := Sync(testCalculator(), in, nil)

	legs := 0
	for _, account := range result.Accounts {
		for _, row := range account.Values {
			if row.ValueID == 30 {
				legs++
			}
		}
	}
	assert.Zero(t, legs)
	assert.Equal(t, int64(0), result.Accounts[1].Months[5].Values)
}

func TestSync_MonthSummaries(t *testing.T) {
	result := Sync(testCalculator(), testInput(), nil)
	source := result.Accounts[0]
	savings := result.Accounts[1]

	require.Len(t, source.Months, 12)
	april := source.Months[0]
	assert.Equal(t, int64(385000), april.Income)
	assert.Equal(t, int64(-20000), april.CreditCards)
	assert.Equal(t, int64(365000), april.Total)
	assert.Equal(t, source.StartValue+365000, april.Balance)

	may := source.Months[1]
	assert.Equal(t, int64(377978-20000-120000), may.Total)
	assert.Equal(t, april.Balance+may.Total, may.Balance)

	july := savings.Months[3]
	assert.Equal(t, int64(250000), july.Balance)
	assert.True(t, july.AboveUpper)
	assert.False(t, savings.Months[2].AboveUpper)
}

func TestSync_NoBalance(t *testing.T) {
	in := testInput()
	in.NetWorthEntries = nil

	result := Sync(testCalculator(), in, nil)

	assert.Equal(t, int64(0), result.Accounts[0].StartValue)
	assert.Len(t, result.Accounts[0].Income, 12)
}

func TestCatchUpStart(t *testing.T) {
	in := testInput()
	assert.Equal(t, date(2024, 3, 1), CatchUpStart(in.Accounts, in.NetWorthEntries, 2024))
	assert.Equal(t, date(2023, 4, 1), CatchUpStart(in.Accounts, nil, 2023))
}

func TestEvaluateFormula(t *testing.T) {
	tests := []struct {
		formula  string
		expected int64
		wantErr  bool
	}{
		{formula: "-50 * 12 / 4", expected: -150},
		{formula: "=100 + 23", expected: 123},
		{formula: "10 / 3", expected: 3},
		{formula: "month * 100", expected: 600},
		{formula: "year - 2000", expected: 24},
		{formula: "", wantErr: true},
		{formula: "1 +", wantErr: true},
		{formula: "'text'", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			v, err := EvaluateFormula(tt.formula, 2024, 6)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}
