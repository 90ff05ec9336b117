package domain

import (
	"errors"
	"strings"
	"time"
)

// Tax threshold names (annual, minor units)
const (
	ThresholdIncomeTaxBasicAllowance = "IncomeTaxBasicAllowance"
	ThresholdIncomeTaxHigher         = "IncomeTaxHigherThreshold"
	ThresholdIncomeTaxAdditional     = "IncomeTaxAdditionalThreshold"
	ThresholdAllowanceTaper          = "IncomeTaxAllowanceTaper"
	ThresholdNIPrimary               = "NIPT"
	ThresholdNIUpperEarnings         = "NIUEL"
	ThresholdStudentLoan             = "StudentLoanThreshold"
	RateIncomeTaxBasic               = "IncomeTaxBasicRate"
	RateIncomeTaxHigher              = "IncomeTaxHigherRate"
	RateIncomeTaxAdditional          = "IncomeTaxAdditionalRate"
	RateNILower                      = "NILowerRate"
	RateNIHigher                     = "NIHigherRate"
	RateStudentLoan                  = "StudentLoanRate"
	DeductionIncomeTax               = "Income tax"
	DeductionNI                      = "NI"
	DeductionStudentLoan             = "Student loan"
	DeductionPension                 = "Pension"
	PlanningYearStartMonth           = time.April
)

// NamedValue is a named amount in minor units
type NamedValue struct {
	Name  string
	Value int64
}

// NamedRate is a named fractional rate (0.2 == 20%)
type NamedRate struct {
	Name  string
	Value float64
}

// TaxParameters holds the thresholds and rates of one tax year
type TaxParameters struct {
	Year       int
	Thresholds []NamedValue
	Rates      []NamedRate
}

// Threshold returns the named threshold, or zero if missing
func (p TaxParameters) Threshold(name string) int64 {
	for _, t := range p.Thresholds {
		if t.Name == name {
			return t.Value
		}
	}
	return 0
}

// Rate returns the named rate, or zero if missing
func (p TaxParameters) Rate(name string) float64 {
	for _, r := range p.Rates {
		if r.Name == name {
			return r.Value
		}
	}
	return 0
}

// PlanningAccount is a bank account whose balance is projected through a tax year
type PlanningAccount struct {
	ID                    int
	Name                  string
	NetWorthSubcategoryID int
	Income                []PlanningIncome
	CreditCards           []PlanningCreditCard
	Values                []PlanningValue
	UpperLimit            *int64
	LowerLimit            *int64
}

// PlanningIncome is a salary schedule paid into an account
type PlanningIncome struct {
	ID             int
	StartDate      time.Time
	EndDate        time.Time
	Salary         int64 // annual gross
	TaxCode        string
	StudentLoan    bool
	PensionContrib float64 // salary sacrifice fraction
}

// PlanningCreditCard is a card paid off from an account
type PlanningCreditCard struct {
	ID                    int
	NetWorthSubcategoryID int
	Payments              []CreditCardPayment
}

// CreditCardPayment is a recorded payment; negative values leave the account
type CreditCardPayment struct {
	Year  int
	Month time.Month
	Value int64
}

// PlanningValue is a one-off or formula-computed adjustment in a given month
type PlanningValue struct {
	ID                  int
	Year                int
	Month               time.Month
	Name                string
	Value               *int64
	Formula             string
	TransferToAccountID *int
}

// IncomeRecord is a row of the income ledger with itemised deductions (negative values)
type IncomeRecord struct {
	AccountID  int
	Date       time.Time
	Item       string
	Gross      int64
	Deductions []NamedValue
}

// IsActive reports whether the income schedule covers the given date
func (i PlanningIncome) IsActive(date time.Time) bool {
	return !date.Before(i.StartDate) && !date.After(i.EndDate)
}

// ActiveDuring reports whether the schedule covers any day of [from, to]
func (i PlanningIncome) ActiveDuring(from, to time.Time) bool {
	return !to.Before(i.StartDate) && !from.After(i.EndDate)
}

// Deduction returns the named deduction from the record, or zero
func (r IncomeRecord) Deduction(name string) int64 {
	var total int64
	for _, d := range r.Deductions {
		if strings.EqualFold(d.Name, name) {
			total += d.Value
		}
	}
	return total
}

// Validate ensures the account adheres to domain rules
func (a *PlanningAccount) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return errors.New("planning account name cannot be empty")
	}
	for _, income := range a.Income {
		if income.EndDate.Before(income.StartDate) {
			return errors.New("income end date must be after start date")
		}
		if income.PensionContrib < 0 || income.PensionContrib >= 1 {
			return errors.New("pension contribution must be between 0 and 1")
		}
	}
	for _, value := range a.Values {
		if value.Value == nil && strings.TrimSpace(value.Formula) == "" {
			return errors.New("planning value must have a value or a formula")
		}
		if value.TransferToAccountID != nil && *value.TransferToAccountID == a.ID {
			return errors.New("planning value cannot transfer to its own account")
		}
	}
	if a.UpperLimit != nil && a.LowerLimit != nil && *a.UpperLimit < *a.LowerLimit {
		return errors.New("upper limit must be above lower limit")
	}
	return nil
}
