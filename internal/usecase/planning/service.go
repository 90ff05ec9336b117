package planning

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/simaogato/wealthflow-forecast/internal/domain"
	"github.com/simaogato/wealthflow-forecast/internal/log"
	"github.com/simaogato/wealthflow-forecast/internal/usecase/aggregate"
)

// PlanningService loads planning data and syncs a tax year
type PlanningService struct {
	PlanningRepo domain.PlanningRepository
	NetWorthRepo domain.NetWorthRepository
	CategoryRepo domain.CategoryRepository
	Defaults     []domain.TaxParameters
	Logger       *log.Logger
}

// NewPlanningService creates a new PlanningService instance.
// Defaults supply tax parameters for years the user has not stored.
func NewPlanningService(
	planningRepo domain.PlanningRepository,
	netWorthRepo domain.NetWorthRepository,
	categoryRepo domain.CategoryRepository,
	defaults []domain.TaxParameters,
	logger *log.Logger,
) *PlanningService {
	return &PlanningService{
		PlanningRepo: planningRepo,
		NetWorthRepo: netWorthRepo,
		CategoryRepo: categoryRepo,
		Defaults:     defaults,
		Logger:       log.OrDiscard(logger).WithComponent(log.ComponentPlanning),
	}
}

// SyncPlanning projects the accounts of a user through the tax year starting in April of year
func (s *PlanningService) SyncPlanning(ctx context.Context, userID, year int) (*Result, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id: %d", userID)
	}
	if year < 1900 || year > 2200 {
		return nil, fmt.Errorf("invalid tax year: %d", year)
	}
	started := time.Now()

	// 1. Load accounts, parameters and balances
	var (
		accounts      []domain.PlanningAccount
		params        []domain.TaxParameters
		entries       []domain.NetWorthEntry
		categories    []domain.Category
		subcategories []domain.Subcategory
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if accounts, err = s.PlanningRepo.ListAccounts(gctx, userID); err != nil {
			return fmt.Errorf("failed to list planning accounts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if params, err = s.PlanningRepo.ListTaxParameters(gctx, userID); err != nil {
			return fmt.Errorf("failed to list tax parameters: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if entries, err = s.NetWorthRepo.ListEntries(gctx, userID); err != nil {
			return fmt.Errorf("failed to list net worth entries: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if categories, err = s.CategoryRepo.ListCategories(gctx, userID); err != nil {
			return fmt.Errorf("failed to list categories: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if subcategories, err = s.CategoryRepo.ListSubcategories(gctx, userID); err != nil {
			return fmt.Errorf("failed to list subcategories: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range accounts {
		if err := accounts[i].Validate(); err != nil {
			return nil, fmt.Errorf("account %d: %w", accounts[i].ID, err)
		}
	}

	// 2. Load the income ledger across the catch-up gap and the year
	from := CatchUpStart(accounts, entries, year)
	records, err := s.PlanningRepo.ListIncomeRecords(ctx, userID, from, YearEnd(year))
	if err != nil {
		return nil, fmt.Errorf("failed to list income records: %w", err)
	}

	// 3. Sync
	calc := aggregate.NewCalculator(categories, subcategories, s.Logger)
	result := Sync(calc, Input{
		Year:            year,
		Accounts:        accounts,
		TaxParameters:   MergeParameters(s.Defaults, params),
		IncomeRecords:   records,
		NetWorthEntries: entries,
	}, s.Logger)

	s.Logger.InfoContext(ctx, "planning synced",
		log.FieldOperation, log.OpSync,
		log.FieldUserID, userID,
		log.FieldYear, year,
		log.FieldDuration, time.Since(started).Milliseconds(),
	)

	return &result, nil
}

// MergeParameters overlays stored parameters on the defaults, year by year
// and name by name.
func MergeParameters(defaults, stored []domain.TaxParameters) []domain.TaxParameters {
	byYear := make(map[int]domain.TaxParameters)
	var years []int
	for _, list := range [][]domain.TaxParameters{defaults, stored} {
		for _, p := range list {
			existing, ok := byYear[p.Year]
			if !ok {
				years = append(years, p.Year)
				byYear[p.Year] = domain.TaxParameters{
					Year:       p.Year,
					Thresholds: append([]domain.NamedValue{}, p.Thresholds...),
					Rates:      append([]domain.NamedRate{}, p.Rates...),
				}
				continue
			}
			for _, t := range p.Thresholds {
				existing.Thresholds = setValue(existing.Thresholds, t)
			}
			for _, r := range p.Rates {
				existing.Rates = setRate(existing.Rates, r)
			}
			byYear[p.Year] = existing
		}
	}

	merged := make([]domain.TaxParameters, 0, len(years))
	for _, y := range years {
		merged = append(merged, byYear[y])
	}
	return merged
}

func setValue(values []domain.NamedValue, v domain.NamedValue) []domain.NamedValue {
	for i := range values {
		if values[i].Name == v.Name {
			values[i].Value = v.Value
			return values
		}
	}
	return append(values, v)
}

func setRate(rates []domain.NamedRate, r domain.NamedRate) []domain.NamedRate {
	for i := range rates {
		if rates[i].Name == r.Name {
			rates[i].Value = r.Value
			return rates
		}
	}
	return append(rates, r)
}
