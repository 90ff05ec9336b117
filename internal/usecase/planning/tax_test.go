package planning

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/simaogato/wealthflow-forecast/internal/domain"
)

func params2024() domain.TaxParameters {
	return domain.TaxParameters{
		Year: 2024,
		Thresholds: []domain.NamedValue{
			{Name: domain.ThresholdIncomeTaxBasicAllowance, Value: 1257000},
			{Name: domain.ThresholdIncomeTaxHigher, Value: 3770000},
			{Name: domain.ThresholdIncomeTaxAdditional, Value: 12514000},
			{Name: domain.ThresholdAllowanceTaper, Value: 10000000},
			{Name: domain.ThresholdNIPrimary, Value: 1257000},
			{Name: domain.ThresholdNIUpperEarnings, Value: 5027000},
			{Name: domain.ThresholdStudentLoan, Value: 2729500},
		},
		Rates: []domain.NamedRate{
			{Name: domain.RateIncomeTaxBasic, Value: 0.2},
			{Name: domain.RateIncomeTaxHigher, Value: 0.4},
			{Name: domain.RateIncomeTaxAdditional, Value: 0.45},
			{Name: domain.RateNILower, Value: 0.08},
			{Name: domain.RateNIHigher, Value: 0.02},
			{Name: domain.RateStudentLoan, Value: 0.09},
		},
	}
}

func TestParseTaxCode(t *testing.T) {
	tests := []struct {
		code     string
		expected TaxCode
	}{
		{code: "1257L", expected: TaxCode{Allowance: 1257000, Taper: true}},
		{code: " 1257l ", expected: TaxCode{Allowance: 1257000, Taper: true}},
		{code: "S1257L", expected: TaxCode{Allowance: 1257000, Taper: true}},
		{code: "C1100M", expected: TaxCode{Allowance: 1100000, Taper: true}},
		{code: "1257L W1", expected: TaxCode{Allowance: 1257000, Taper: true}},
		{code: "1257LX", expected: TaxCode{Allowance: 1257000, Taper: true}},
		{code: "K475", expected: TaxCode{Allowance: -475000}},
		{code: "BR", expected: TaxCode{Flat: "BR"}},
		{code: "D0", expected: TaxCode{Flat: "D0"}},
		{code: "D1", expected: TaxCode{Flat: "D1"}},
		{code: "NT", expected: TaxCode{Flat: "NT"}},
		{code: "0T", expected: TaxCode{}},
		{code: "", expected: TaxCode{Allowance: 999, Taper: true}},
		{code: "not a code", expected: TaxCode{Allowance: 999, Taper: true}},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseTaxCode(tt.code, 999))
		})
	}
}

func TestDeductions(t *testing.T) {
	tests := []struct {
		name     string
		income   domain.PlanningIncome
		expected Breakdown
	}{
		{
			name:     "higher rate taxpayer",
			income:   domain.PlanningIncome{Salary: 6000000, TaxCode: "1257L"},
			expected: Breakdown{Gross: 500000, IncomeTax: 95267, NI: 26755},
		},
		{
			name:     "pension is sacrificed before tax",
			income:   domain.PlanningIncome{Salary: 6000000, TaxCode: "1257L", PensionContrib: 0.05, StudentLoan: true},
			expected: Breakdown{Gross: 500000, Pension: 25000, IncomeTax: 85267, NI: 26255, StudentLoan: 22279},
		},
		{
			name:     "allowance tapers above the threshold",
			income:   domain.PlanningIncome{Salary: 11000000, TaxCode: "1257L"},
			expected: Breakdown{Gross: 916667, IncomeTax: 278600, NI: 35088},
		},
		{
			name:     "additional rate without allowance",
			income:   domain.PlanningIncome{Salary: 15000000, TaxCode: "1257L"},
			expected: Breakdown{Gross: 1250000, IncomeTax: 447525, NI: 41755},
		},
		{
			name:     "basic rate code",
			income:   domain.PlanningIncome{Salary: 2000000, TaxCode: "BR"},
			expected: Breakdown{Gross: 166667, IncomeTax: 33333, NI: 4953},
		},
		{
			name:     "k code adds to taxable income",
			income:   domain.PlanningIncome{Salary: 2000000, TaxCode: "K475"},
			expected: Breakdown{Gross: 166667, IncomeTax: 41250, NI: 4953},
		},
		{
			name:     "no tax",
			income:   domain.PlanningIncome{Salary: 2000000, TaxCode: "NT"},
			expected: Breakdown{Gross: 166667, NI: 4953},
		},
		{
			name:     "below every threshold",
			income:   domain.PlanningIncome{Salary: 1000000, TaxCode: "1257L", StudentLoan: true},
			expected: Breakdown{Gross: 83333},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Deductions(tt.income, params2024()))
		})
	}
}

func TestBreakdownNet(t *testing.T) {
	b := Breakdown{Gross: 500000, Pension: 25000, IncomeTax: 85267, NI: 26255, StudentLoan: 22279}
	assert.Equal(t, int64(341199), b.Net())
}

func TestAnnualNI_MissingThresholds(t *testing.T) {
	assert.True(t, AnnualNI(decimal.NewFromInt(1000000), domain.TaxParameters{}).IsZero())
}

func TestRecordedBreakdown(t *testing.T) {
	records := []domain.IncomeRecord{
		{
			AccountID: 1,
			Gross:     500000,
			Deductions: []domain.NamedValue{
				{Name: "Income tax", Value: -90000},
				{Name: "ni", Value: -25000},
				{Name: "Pension", Value: -20000},
			},
		},
		{AccountID: 1, Gross: 10000, Deductions: []domain.NamedValue{{Name: "Student loan", Value: -900}}},
	}

	b := RecordedBreakdown(records)

	assert.Equal(t, Breakdown{Gross: 510000, Pension: 20000, IncomeTax: 90000, NI: 25000, StudentLoan: 900}, b)
	assert.Equal(t, int64(374100), b.Net())
}
