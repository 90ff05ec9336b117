package overview

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/simaogato/wealthflow-forecast/internal/cache"
	"github.com/simaogato/wealthflow-forecast/internal/domain"
	"github.com/simaogato/wealthflow-forecast/internal/log"
	"github.com/simaogato/wealthflow-forecast/internal/usecase/aggregate"
	"github.com/simaogato/wealthflow-forecast/internal/usecase/period"
)

// Request selects the projection to compute for one user
type Request struct {
	UserID     int
	Today      time.Time
	NumPast    int
	NumFuture  int
	LongTerm   domain.LongTermOptions
	LivePrices map[int]float64
}

// Validate ensures the request adheres to domain rules
func (r *Request) Validate() error {
	if r.UserID <= 0 {
		return fmt.Errorf("invalid user id: %d", r.UserID)
	}
	if r.NumPast < 0 || r.NumFuture < 0 {
		return fmt.Errorf("invalid horizon: past and future months must not be negative")
	}
	return r.LongTerm.Validate()
}

// OverviewService loads a user's history and projects it forward
type OverviewService struct {
	NetWorthRepo domain.NetWorthRepository
	CategoryRepo domain.CategoryRepository
	FundRepo     domain.FundRepository
	CostRepo     domain.CostRepository
	UserRepo     domain.UserRepository
	Cache        cache.Cache[*Projection]
	Logger       *log.Logger
}

// NewOverviewService creates a new OverviewService instance.
// A nil projection cache disables caching.
func NewOverviewService(
	netWorthRepo domain.NetWorthRepository,
	categoryRepo domain.CategoryRepository,
	fundRepo domain.FundRepository,
	costRepo domain.CostRepository,
	userRepo domain.UserRepository,
	projections cache.Cache[*Projection],
	logger *log.Logger,
) *OverviewService {
	if projections == nil {
		projections = cache.Noop[*Projection]{}
	}
	return &OverviewService{
		NetWorthRepo: netWorthRepo,
		CategoryRepo: categoryRepo,
		FundRepo:     fundRepo,
		CostRepo:     costRepo,
		UserRepo:     userRepo,
		Cache:        projections,
		Logger:       log.OrDiscard(logger).WithComponent(log.ComponentOverview),
	}
}

// inputs is everything loaded from storage for one projection
type inputs struct {
	Entries          []domain.NetWorthEntry
	Categories       []domain.Category
	Subcategories    []domain.Subcategory
	Funds            []domain.Fund
	Prices           []domain.FundPrice
	AnnualisedReturn float64
	Costs            []domain.MonthlyCost
	BirthDate        time.Time
	LivePrices       map[int]float64
}

// GetOverview computes the projection for a request
// Logic:
//   - Load every input concurrently
//   - Look the result up by user, date, horizon, options and a fingerprint of the inputs
//   - Otherwise project and remember the result
func (s *OverviewService) GetOverview(ctx context.Context, req Request) (*Projection, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	today := period.Day(req.Today)
	started := time.Now()

	// 1. Load inputs
	in, err := s.load(ctx, req.UserID, period.AxisStart(today, req.NumPast), today)
	if err != nil {
		return nil, err
	}
	in.LivePrices = req.LivePrices

	// 2. Check the cache
	key, err := cacheKey(req, today, in)
	if err != nil {
		return nil, fmt.Errorf("failed to build cache key: %w", err)
	}
	if projection, ok := s.Cache.Get(key); ok {
		s.Logger.DebugContext(ctx, "projection served from cache",
			log.FieldOperation, log.OpProject,
			log.FieldUserID, req.UserID,
			log.FieldCacheHit, true,
		)
		return projection, nil
	}

	// 3. Project
	calc := aggregate.NewCalculator(in.Categories, in.Subcategories, s.Logger)
	projection := Project(calc, Input{
		Today:            today,
		NumPast:          req.NumPast,
		NumFuture:        req.NumFuture,
		LongTerm:         req.LongTerm,
		BirthDate:        in.BirthDate,
		Entries:          in.Entries,
		Funds:            in.Funds,
		FundPrices:       in.Prices,
		LivePrices:       in.LivePrices,
		AnnualisedReturn: in.AnnualisedReturn,
		Costs:            in.Costs,
	})
	s.Cache.Set(key, &projection)

	s.Logger.InfoContext(ctx, "projection computed",
		log.FieldOperation, log.OpProject,
		log.FieldUserID, req.UserID,
		log.FieldCacheHit, false,
		log.FieldDuration, time.Since(started).Milliseconds(),
	)

	return &projection, nil
}

func (s *OverviewService) load(ctx context.Context, userID int, from, to time.Time) (*inputs, error) {
	var in inputs
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		entries, err := s.NetWorthRepo.ListEntries(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to list net worth entries: %w", err)
		}
		in.Entries = entries
		return nil
	})
	g.Go(func() error {
		categories, err := s.CategoryRepo.ListCategories(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to list categories: %w", err)
		}
		in.Categories = categories
		return nil
	})
	g.Go(func() error {
		subcategories, err := s.CategoryRepo.ListSubcategories(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to list subcategories: %w", err)
		}
		in.Subcategories = subcategories
		return nil
	})
	g.Go(func() error {
		funds, err := s.FundRepo.ListFunds(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to list funds: %w", err)
		}
		in.Funds = funds
		return nil
	})
	g.Go(func() error {
		prices, err := s.FundRepo.ListPrices(ctx, userID, period.StartOfMonth(from), to)
		if err != nil {
			return fmt.Errorf("failed to list fund prices: %w", err)
		}
		in.Prices = prices
		return nil
	})
	g.Go(func() error {
		xirr, err := s.FundRepo.GetAnnualisedReturn(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to get annualised return: %w", err)
		}
		in.AnnualisedReturn = xirr
		return nil
	})
	g.Go(func() error {
		costs, err := s.CostRepo.ListMonthlyCosts(ctx, userID, period.StartOfMonth(from), period.EndOfMonth(to))
		if err != nil {
			return fmt.Errorf("failed to list monthly costs: %w", err)
		}
		in.Costs = costs
		return nil
	})
	g.Go(func() error {
		birthDate, err := s.UserRepo.GetBirthDate(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to get birth date: %w", err)
		}
		in.BirthDate = birthDate
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &in, nil
}

// cacheKey includes every effective input so concurrent users never share a result
func cacheKey(req Request, today time.Time, in *inputs) (string, error) {
	options, err := json.Marshal(req.LongTerm)
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(in)
	if err != nil {
		return "", err
	}
	fingerprint := sha256.Sum256(payload)
	return fmt.Sprintf("%d|%s|%d|%d|%s|%x",
		req.UserID, today.Format(time.DateOnly), req.NumPast, req.NumFuture, options, fingerprint), nil
}
