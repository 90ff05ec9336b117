package domain

import (
	"errors"
	"strings"
)

// CategoryType represents whether a net worth category holds assets or liabilities
type CategoryType string

const (
	CategoryTypeAsset     CategoryType = "asset"
	CategoryTypeLiability CategoryType = "liability"
)

// AggregateBucket is the overview bucket a category contributes to.
// It is stored alongside the category and resolved once when categories are loaded.
type AggregateBucket string

const (
	AggregateNone           AggregateBucket = ""
	AggregateCashEasyAccess AggregateBucket = "cash-easy-access"
	AggregateCashOther      AggregateBucket = "cash-other"
	AggregateStocks         AggregateBucket = "stocks"
	AggregatePension        AggregateBucket = "pension"
	AggregateRealEstate     AggregateBucket = "real-estate"
	AggregateMortgage       AggregateBucket = "mortgage"
	AggregateOptions        AggregateBucket = "options"
)

// AggregateBuckets lists every bucket reported on a derived entry, in display order
var AggregateBuckets = []AggregateBucket{
	AggregateCashEasyAccess,
	AggregateCashOther,
	AggregateStocks,
	AggregatePension,
	AggregateRealEstate,
	AggregateMortgage,
	AggregateOptions,
}

// Category represents a net worth category (e.g. "Cash (easy access)", "Mortgage")
type Category struct {
	ID        int
	Name      string
	Type      CategoryType
	IsOption  bool
	Color     string
	Aggregate AggregateBucket
}

// Subcategory represents a single account or holding inside a category
type Subcategory struct {
	ID               int
	CategoryID       int
	Name             string
	HasCreditLimit   bool
	AppreciationRate *float64 // annual %, used for illiquid assets such as a house
	IsSAYE           bool
	Opacity          float64
}

// Validate ensures the category adheres to domain rules
func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("category name cannot be empty")
	}

	if c.Type != CategoryTypeAsset && c.Type != CategoryTypeLiability {
		return errors.New("category type must be asset or liability")
	}

	// Options can only be held, never owed
	if c.IsOption && c.Type != CategoryTypeAsset {
		return errors.New("option category must be an asset")
	}

	return nil
}

// Validate ensures the subcategory adheres to domain rules
func (s *Subcategory) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("subcategory name cannot be empty")
	}
	if s.CategoryID == 0 {
		return errors.New("subcategory must reference a category")
	}
	if s.Opacity < 0 || s.Opacity > 1 {
		return errors.New("subcategory opacity must be between 0 and 1")
	}
	return nil
}

// ClassifyCategory resolves the aggregate bucket of a category from its name and type.
// Loaders call it once per category; forecasting code only reads Category.Aggregate.
func ClassifyCategory(name string, categoryType CategoryType, isOption bool) AggregateBucket {
	if isOption {
		return AggregateOptions
	}

	n := strings.ToLower(strings.TrimSpace(name))

	if categoryType == CategoryTypeLiability {
		if strings.Contains(n, "mortgage") {
			return AggregateMortgage
		}
		return AggregateNone
	}

	switch {
	case strings.Contains(n, "cash") && strings.Contains(n, "easy access"):
		return AggregateCashEasyAccess
	case strings.Contains(n, "cash"):
		return AggregateCashOther
	case strings.Contains(n, "stock"):
		return AggregateStocks
	case strings.Contains(n, "pension"):
		return AggregatePension
	case strings.Contains(n, "house"), strings.Contains(n, "real estate"), strings.Contains(n, "property"):
		return AggregateRealEstate
	default:
		return AggregateNone
	}
}
