package domain

import "time"

// Budget categories recorded in the monthly cost ledger
const (
	CostIncome  = "income"
	CostBills   = "bills"
	CostFood    = "food"
	CostGeneral = "general"
	CostHoliday = "holiday"
	CostSocial  = "social"
)

// SpendingCategories lists the categories which reduce liquid cash
var SpendingCategories = []string{CostBills, CostFood, CostGeneral, CostHoliday, CostSocial}

// MonthlyCost is the recorded total for one budget category in one calendar month
type MonthlyCost struct {
	Category string
	Date     time.Time // any day within the month
	Value    int64
}
