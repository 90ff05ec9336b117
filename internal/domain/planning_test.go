package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlanningAccount_Validate(t *testing.T) {
	start := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)
	self := 1
	other := 2

	tests := []struct {
		name    string
		account PlanningAccount
		wantErr bool
		errMsg  string
	}{
		{
			name: "Valid account should pass",
			account: PlanningAccount{
				ID:     1,
				Name:   "Current",
				Income: []PlanningIncome{{StartDate: start, EndDate: end, PensionContrib: 0.05}},
				Values: []PlanningValue{{Name: "Gift", Formula: "-100"}, {Name: "Save", Value: int64Ptr(-500), TransferToAccountID: &other}},
			},
			wantErr: false,
		},
		{
			name:    "Empty name should fail",
			account: PlanningAccount{ID: 1},
			wantErr: true,
			errMsg:  "planning account name cannot be empty",
		},
		{
			name: "Inverted income dates should fail",
			account: PlanningAccount{
				ID:     1,
				Name:   "Current",
				Income: []PlanningIncome{{StartDate: end, EndDate: start}},
			},
			wantErr: true,
			errMsg:  "income end date must be after start date",
		},
		{
			name: "Full pension sacrifice should fail",
			account: PlanningAccount{
				ID:     1,
				Name:   "Current",
				Income: []PlanningIncome{{StartDate: start, EndDate: end, PensionContrib: 1}},
			},
			wantErr: true,
			errMsg:  "pension contribution must be between 0 and 1",
		},
		{
			name: "Value without amount or formula should fail",
			account: PlanningAccount{
				ID:     1,
				Name:   "Current",
				Values: []PlanningValue{{Name: "Empty"}},
			},
			wantErr: true,
			errMsg:  "planning value must have a value or a formula",
		},
		{
			name: "Transfer to self should fail",
			account: PlanningAccount{
				ID:     1,
				Name:   "Current",
				Values: []PlanningValue{{Name: "Loop", Value: int64Ptr(1), TransferToAccountID: &self}},
			},
			wantErr: true,
			errMsg:  "planning value cannot transfer to its own account",
		},
		{
			name: "Inverted limits should fail",
			account: PlanningAccount{
				ID:         1,
				Name:       "Current",
				UpperLimit: int64Ptr(100),
				LowerLimit: int64Ptr(200),
			},
			wantErr: true,
			errMsg:  "upper limit must be above lower limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.account.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPlanningIncome_IsActive(t *testing.T) {
	income := PlanningIncome{
		StartDate: time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC),
	}

	assert.True(t, income.IsActive(income.StartDate))
	assert.True(t, income.IsActive(income.EndDate))
	assert.False(t, income.IsActive(time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, income.IsActive(time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)))
}

func TestPlanningIncome_ActiveDuring(t *testing.T) {
	income := PlanningIncome{
		StartDate: time.Date(2024, time.April, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC),
	}
	month := func(m time.Month) (time.Time, time.Time) {
		return time.Date(2024, m, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, m+1, 0, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		month    time.Month
		expected bool
	}{
		{month: time.March, expected: false},
		{month: time.April, expected: true},
		{month: time.June, expected: true},
		{month: time.July, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.month.String(), func(t *testing.T) {
			from, to := month(tt.month)
			assert.Equal(t, tt.expected, income.ActiveDuring(from, to))
		})
	}
}

func TestIncomeRecord_Deduction(t *testing.T) {
	record := IncomeRecord{
		Deductions: []NamedValue{
			{Name: "Income tax", Value: -80000},
			{Name: "ni", Value: -30000},
			{Name: "NI", Value: -500},
		},
	}

	assert.Equal(t, int64(-80000), record.Deduction(DeductionIncomeTax))
	assert.Equal(t, int64(-30500), record.Deduction(DeductionNI))
	assert.Equal(t, int64(0), record.Deduction(DeductionStudentLoan))
}

func TestTaxParameters_Lookup(t *testing.T) {
	params := TaxParameters{
		Year:       2024,
		Thresholds: []NamedValue{{Name: ThresholdNIPrimary, Value: 1257000}},
		Rates:      []NamedRate{{Name: RateNILower, Value: 0.08}},
	}

	assert.Equal(t, int64(1257000), params.Threshold(ThresholdNIPrimary))
	assert.Equal(t, int64(0), params.Threshold(ThresholdStudentLoan))
	assert.InDelta(t, 0.08, params.Rate(RateNILower), 1e-9)
	assert.Zero(t, params.Rate(RateStudentLoan))
}

func TestLongTermOptions_Validate(t *testing.T) {
	badXIRR := -1.0
	goodXIRR := 0.07

	assert.NoError(t, (&LongTermOptions{}).Validate())
	assert.NoError(t, (&LongTermOptions{Enabled: true, Rates: LongTermRates{Years: 30, XIRR: &goodXIRR}}).Validate())
	assert.EqualError(t, (&LongTermOptions{Enabled: true}).Validate(), "long term projection must cover at least one year")
	assert.EqualError(t, (&LongTermOptions{Enabled: true, Rates: LongTermRates{Years: 101}}).Validate(), "long term projection must cover at most 100 years")
	assert.EqualError(t, (&LongTermOptions{Enabled: true, Rates: LongTermRates{Years: 5, XIRR: &badXIRR}}).Validate(), "long term xirr must be above -100%")
}
