// Package aggregate sums net worth values into signed totals in minor currency units.
package aggregate

import (
	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthflow-forecast/internal/domain"
	"github.com/simaogato/wealthflow-forecast/internal/log"
)

var (
	hundred = decimal.NewFromInt(100)
	half    = decimal.NewFromFloat(0.5)
)

// Predicate selects values by their subcategory and parent category
type Predicate func(sub domain.Subcategory, cat domain.Category) bool

// Calculator holds the category lookups of one computation
type Calculator struct {
	categories    map[int]domain.Category
	subcategories map[int]domain.Subcategory
	logger        *log.Logger
}

// NewCalculator creates a new Calculator. A nil logger discards diagnostics.
func NewCalculator(categories []domain.Category, subcategories []domain.Subcategory, logger *log.Logger) *Calculator {
	c := &Calculator{
		categories:    make(map[int]domain.Category, len(categories)),
		subcategories: make(map[int]domain.Subcategory, len(subcategories)),
		logger:        log.OrDiscard(logger).WithComponent(log.ComponentAggregate),
	}
	for _, cat := range categories {
		c.categories[cat.ID] = cat
	}
	for _, sub := range subcategories {
		c.subcategories[sub.ID] = sub
	}
	return c
}

// Lookup returns the subcategory and category of a value
func (c *Calculator) Lookup(subcategoryID int) (domain.Subcategory, domain.Category, bool) {
	sub, ok := c.subcategories[subcategoryID]
	if !ok {
		return domain.Subcategory{}, domain.Category{}, false
	}
	cat, ok := c.categories[sub.CategoryID]
	if !ok {
		return sub, domain.Category{}, false
	}
	return sub, cat, true
}

// Subcategory returns the subcategory with the given id
func (c *Calculator) Subcategory(id int) (domain.Subcategory, bool) {
	sub, ok := c.subcategories[id]
	return sub, ok
}

// SumComplexValue computes the signed total of one value:
// simple + converted fx + option value - loan principal, rounded once at the end.
// When includeSAYEResidual is set, SAYE options also count vested * strike.
func (c *Calculator) SumComplexValue(value domain.NetWorthValue, rates []domain.CurrencyRate, includeSAYEResidual bool) int64 {
	return roundHalfUp(c.complexValue(value, rates, includeSAYEResidual))
}

func (c *Calculator) complexValue(value domain.NetWorthValue, rates []domain.CurrencyRate, includeSAYEResidual bool) decimal.Decimal {
	total := decimal.Zero

	if value.Simple != nil {
		total = total.Add(decimal.NewFromInt(*value.Simple))
	}

	for _, fx := range value.FX {
		rate, ok := findRate(rates, fx.Currency)
		if !ok {
			c.logger.Warn("currency rate missing, fx value counted as zero",
				log.FieldCurrency, fx.Currency,
				log.FieldSubcategory, value.Subcategory,
			)
			continue
		}
		total = total.Add(decimal.NewFromFloat(fx.Value).Mul(hundred).Mul(decimal.NewFromFloat(rate)))
	}

	if value.Option != nil {
		total = total.Add(optionProfit(value.Option))
		if includeSAYEResidual && c.isSAYE(value.Subcategory) {
			total = total.Add(sayeResidual(value.Option))
		}
	}

	if value.Loan != nil {
		total = total.Sub(decimal.NewFromInt(value.Loan.Principal))
	}

	return total
}

// SumValues folds SumComplexValue over the values matching the predicate.
// Skipped values and values with an unknown subcategory or category are excluded.
func (c *Calculator) SumValues(values []domain.NetWorthValue, rates []domain.CurrencyRate, pred Predicate, includeSAYEResidual bool) int64 {
	total := decimal.Zero
	for _, value := range values {
		if value.Skip {
			continue
		}
		sub, cat, ok := c.Lookup(value.Subcategory)
		if !ok {
			c.logger.Warn("unknown subcategory, value excluded from aggregates",
				log.FieldSubcategory, value.Subcategory,
			)
			continue
		}
		if pred != nil && !pred(sub, cat) {
			continue
		}
		total = total.Add(decimal.NewFromInt(roundHalfUp(c.complexValue(value, rates, includeSAYEResidual))))
	}
	return total.IntPart()
}

// SAYEResidual returns vested * strike for SAYE option values, otherwise zero
func (c *Calculator) SAYEResidual(value domain.NetWorthValue) int64 {
	if value.Skip || value.Option == nil || !c.isSAYE(value.Subcategory) {
		return 0
	}
	return roundHalfUp(sayeResidual(value.Option))
}

// SumSAYEResiduals sums SAYEResidual over every value of an entry
func (c *Calculator) SumSAYEResiduals(values []domain.NetWorthValue) int64 {
	var total int64
	for _, value := range values {
		total += c.SAYEResidual(value)
	}
	return total
}

// OptionProfit returns vested * max(0, market - strike) for option values
func OptionProfit(option *domain.OptionValue) int64 {
	if option == nil {
		return 0
	}
	return roundHalfUp(optionProfit(option))
}

// Aggregates computes every aggregate bucket of an entry independently
func (c *Calculator) Aggregates(entry domain.NetWorthEntry) map[domain.AggregateBucket]int64 {
	result := make(map[domain.AggregateBucket]int64, len(domain.AggregateBuckets))
	for _, bucket := range domain.AggregateBuckets {
		result[bucket] = c.SumValues(entry.Values, entry.Currencies, ByAggregate(bucket), false)
	}
	// The guaranteed part of SAYE schemes is cash returned at maturity
	result[domain.AggregateCashOther] += c.SumSAYEResiduals(entry.Values)
	return result
}

func (c *Calculator) isSAYE(subcategoryID int) bool {
	sub, ok := c.subcategories[subcategoryID]
	return ok && sub.IsSAYE
}

func optionProfit(option *domain.OptionValue) decimal.Decimal {
	diff := decimal.NewFromFloat(option.MarketPrice).Sub(decimal.NewFromFloat(option.StrikePrice))
	if diff.IsNegative() {
		return decimal.Zero
	}
	return decimal.NewFromFloat(option.Vested).Mul(diff)
}

func sayeResidual(option *domain.OptionValue) decimal.Decimal {
	return decimal.NewFromFloat(option.Vested).Mul(decimal.NewFromFloat(option.StrikePrice))
}

func findRate(rates []domain.CurrencyRate, currency string) (float64, bool) {
	for _, r := range rates {
		if r.Currency == currency {
			return r.Rate, true
		}
	}
	return 0, false
}

// roundHalfUp rounds towards positive infinity on ties, matching the ledger's rounding
func roundHalfUp(d decimal.Decimal) int64 {
	return d.Add(half).Floor().IntPart()
}
