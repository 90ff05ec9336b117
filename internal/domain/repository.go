package domain

import (
	"context"
	"time"
)

// NetWorthRepository defines the read operations on net worth snapshots
type NetWorthRepository interface {
	// ListEntries retrieves every net worth entry of a user, in any order
	ListEntries(ctx context.Context, userID int) ([]NetWorthEntry, error)
}

// CategoryRepository defines the read operations on net worth categories
type CategoryRepository interface {
	// ListCategories retrieves the categories of a user with their aggregate bucket resolved
	ListCategories(ctx context.Context, userID int) ([]Category, error)

	// ListSubcategories retrieves the subcategories of a user
	ListSubcategories(ctx context.Context, userID int) ([]Subcategory, error)
}

// FundRepository defines the read operations on funds and their prices
type FundRepository interface {
	// ListFunds retrieves every fund of a user with transactions and stock splits
	ListFunds(ctx context.Context, userID int) ([]Fund, error)

	// ListPrices retrieves cached fund prices between two dates (inclusive)
	ListPrices(ctx context.Context, userID int, from, to time.Time) ([]FundPrice, error)

	// GetAnnualisedReturn retrieves the precomputed annualised return (XIRR) of the portfolio
	GetAnnualisedReturn(ctx context.Context, userID int) (float64, error)
}

// CostRepository defines the read operations on the monthly budget ledger
type CostRepository interface {
	// ListMonthlyCosts retrieves monthly category totals between two dates (inclusive)
	ListMonthlyCosts(ctx context.Context, userID int, from, to time.Time) ([]MonthlyCost, error)
}

// PlanningRepository defines the read operations needed by the planning engine
type PlanningRepository interface {
	// ListAccounts retrieves the planning accounts of a user with income, cards and values
	ListAccounts(ctx context.Context, userID int) ([]PlanningAccount, error)

	// ListTaxParameters retrieves the tax parameters of every stored tax year
	ListTaxParameters(ctx context.Context, userID int) ([]TaxParameters, error)

	// ListIncomeRecords retrieves the income ledger between two dates (inclusive)
	ListIncomeRecords(ctx context.Context, userID int, from, to time.Time) ([]IncomeRecord, error)
}

// UserRepository defines the read operations on user profiles
type UserRepository interface {
	// GetBirthDate retrieves the birth date of a user; the zero time means it is unknown
	GetBirthDate(ctx context.Context, userID int) (time.Time, error)
}
