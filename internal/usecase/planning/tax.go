package planning

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthflow-forecast/internal/domain"
)

// Breakdown is one month of payroll in minor units. Deductions are positive magnitudes.
type Breakdown struct {
	Gross       int64
	Pension     int64
	IncomeTax   int64
	NI          int64
	StudentLoan int64
}

// Net returns the pay reaching the account
func (b Breakdown) Net() int64 {
	return b.Gross - b.Pension - b.IncomeTax - b.NI - b.StudentLoan
}

// TaxCode is a parsed PAYE tax code
type TaxCode struct {
	Allowance int64  // annual, minor units; negative for K codes
	Flat      string // BR, D0, D1 or NT when a single rate applies to all income
	Taper     bool   // whether the allowance is withdrawn above the taper threshold
}

var (
	taxCodePattern  = regexp.MustCompile(`^(K)?(\d+)([LMNT])?$`)
	emergencySuffix = regexp.MustCompile(`(W1|M1|X)$`)
)

// ParseTaxCode reads an allowance from a tax code such as 1257L, K475 or BR.
// Unrecognised codes fall back to the default allowance.
func ParseTaxCode(code string, defaultAllowance int64) TaxCode {
	c := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(code), " ", ""))
	c = emergencySuffix.ReplaceAllString(c, "")
	// Scottish and Welsh codes share the structure of English ones
	if len(c) > 1 && (c[0] == 'S' || c[0] == 'C') {
		c = c[1:]
	}

	switch c {
	case "BR", "D0", "D1", "NT":
		return TaxCode{Flat: c}
	case "0T":
		return TaxCode{}
	}

	m := taxCodePattern.FindStringSubmatch(c)
	if m == nil {
		return TaxCode{Allowance: defaultAllowance, Taper: true}
	}
	n, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return TaxCode{Allowance: defaultAllowance, Taper: true}
	}
	// code numbers are tens of pounds
	allowance := n * 10 * 100
	if m[1] == "K" {
		return TaxCode{Allowance: -allowance}
	}
	return TaxCode{Allowance: allowance, Taper: true}
}

// AnnualIncomeTax computes income tax on taxable pay for a year
func AnnualIncomeTax(taxable decimal.Decimal, code TaxCode, params domain.TaxParameters) decimal.Decimal {
	basicRate := decimal.NewFromFloat(params.Rate(domain.RateIncomeTaxBasic))
	higherRate := decimal.NewFromFloat(params.Rate(domain.RateIncomeTaxHigher))
	additionalRate := decimal.NewFromFloat(params.Rate(domain.RateIncomeTaxAdditional))

	if taxable.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	switch code.Flat {
	case "NT":
		return decimal.Zero
	case "BR":
		return taxable.Mul(basicRate)
	case "D0":
		return taxable.Mul(higherRate)
	case "D1":
		return taxable.Mul(additionalRate)
	}

	allowance := decimal.NewFromInt(code.Allowance)
	taper := decimal.NewFromInt(params.Threshold(domain.ThresholdAllowanceTaper))
	if code.Taper && allowance.IsPositive() && taper.IsPositive() && taxable.GreaterThan(taper) {
		allowance = decimal.Max(decimal.Zero, allowance.Sub(taxable.Sub(taper).Div(decimal.NewFromInt(2))))
	}

	// bands are measured on income above the allowance
	income := taxable.Sub(allowance)
	if !income.IsPositive() {
		return decimal.Zero
	}
	higher := decimal.NewFromInt(params.Threshold(domain.ThresholdIncomeTaxHigher))
	additional := decimal.NewFromInt(params.Threshold(domain.ThresholdIncomeTaxAdditional))

	tax := decimal.Min(income, higher).Mul(basicRate)
	tax = tax.Add(band(income, higher, additional).Mul(higherRate))
	tax = tax.Add(decimal.Max(decimal.Zero, income.Sub(additional)).Mul(additionalRate))
	return tax
}

// AnnualNI computes employee class 1 National Insurance for a year of pay
func AnnualNI(pay decimal.Decimal, params domain.TaxParameters) decimal.Decimal {
	pt := decimal.NewFromInt(params.Threshold(domain.ThresholdNIPrimary))
	uel := decimal.NewFromInt(params.Threshold(domain.ThresholdNIUpperEarnings))

	ni := band(pay, pt, uel).Mul(decimal.NewFromFloat(params.Rate(domain.RateNILower)))
	return ni.Add(decimal.Max(decimal.Zero, pay.Sub(decimal.Max(pt, uel))).Mul(decimal.NewFromFloat(params.Rate(domain.RateNIHigher))))
}

// AnnualStudentLoan computes student loan repayments for a year of pay
func AnnualStudentLoan(pay decimal.Decimal, params domain.TaxParameters) decimal.Decimal {
	threshold := decimal.NewFromInt(params.Threshold(domain.ThresholdStudentLoan))
	return decimal.Max(decimal.Zero, pay.Sub(threshold)).Mul(decimal.NewFromFloat(params.Rate(domain.RateStudentLoan)))
}

// Deductions computes the monthly payroll of an income schedule.
// Logic:
//   - Pension is salary sacrifice, so it comes off gross pay first
//   - Income tax, NI and student loan are computed on the annual remainder
//   - Every annual amount is divided evenly across twelve months
func Deductions(income domain.PlanningIncome, params domain.TaxParameters) Breakdown {
	gross := decimal.NewFromInt(income.Salary)
	pension := gross.Mul(decimal.NewFromFloat(income.PensionContrib))
	pay := gross.Sub(pension)

	code := ParseTaxCode(income.TaxCode, params.Threshold(domain.ThresholdIncomeTaxBasicAllowance))

	breakdown := Breakdown{
		Gross:     monthly(gross),
		Pension:   monthly(pension),
		IncomeTax: monthly(AnnualIncomeTax(pay, code, params)),
		NI:        monthly(AnnualNI(pay, params)),
	}
	if income.StudentLoan {
		breakdown.StudentLoan = monthly(AnnualStudentLoan(pay, params))
	}
	return breakdown
}

// RecordedBreakdown rebuilds the payroll of a month from recorded income
func RecordedBreakdown(records []domain.IncomeRecord) Breakdown {
	var b Breakdown
	for _, r := range records {
		b.Gross += r.Gross
		b.Pension -= r.Deduction(domain.DeductionPension)
		b.IncomeTax -= r.Deduction(domain.DeductionIncomeTax)
		b.NI -= r.Deduction(domain.DeductionNI)
		b.StudentLoan -= r.Deduction(domain.DeductionStudentLoan)
	}
	return b
}

// band returns the part of v between lower and upper
func band(v, lower, upper decimal.Decimal) decimal.Decimal {
	if upper.LessThanOrEqual(lower) {
		return decimal.Zero
	}
	return decimal.Max(decimal.Zero, decimal.Min(v, upper).Sub(lower))
}

func monthly(annual decimal.Decimal) int64 {
	return annual.Div(decimal.NewFromInt(12)).Round(0).IntPart()
}
