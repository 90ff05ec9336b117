package overview

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/wealthflow-forecast/internal/cache"
	"github.com/simaogato/wealthflow-forecast/internal/domain"
)

// MockNetWorthRepository is a mock implementation of NetWorthRepository for testing
type MockNetWorthRepository struct {
	mock.Mock
}

func (m *MockNetWorthRepository) ListEntries(ctx context.Context, userID int) ([]domain.NetWorthEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.NetWorthEntry), args.Error(1)
}

// MockCategoryRepository is a mock implementation of CategoryRepository for testing
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) ListCategories(ctx context.Context, userID int) ([]domain.Category, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) ListSubcategories(ctx context.Context, userID int) ([]domain.Subcategory, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Subcategory), args.Error(1)
}

// MockFundRepository is a mock implementation of FundRepository for testing
type MockFundRepository struct {
	mock.Mock
}

func (m *MockFundRepository) ListFunds(ctx context.Context, userID int) ([]domain.Fund, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Fund), args.Error(1)
}

func (m *MockFundRepository) ListPrices(ctx context.Context, userID int, from, to time.Time) ([]domain.FundPrice, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FundPrice), args.Error(1)
}

func (m *MockFundRepository) GetAnnualisedReturn(ctx context.Context, userID int) (float64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(float64), args.Error(1)
}

// MockCostRepository is a mock implementation of CostRepository for testing
type MockCostRepository struct {
	mock.Mock
}

func (m *MockCostRepository) ListMonthlyCosts(ctx context.Context, userID int, from, to time.Time) ([]domain.MonthlyCost, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MonthlyCost), args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository for testing
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetBirthDate(ctx context.Context, userID int) (time.Time, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(time.Time), args.Error(1)
}

type mocks struct {
	netWorth *MockNetWorthRepository
	category *MockCategoryRepository
	fund     *MockFundRepository
	cost     *MockCostRepository
	user     *MockUserRepository
}

func newMocks() mocks {
	return mocks{
		netWorth: new(MockNetWorthRepository),
		category: new(MockCategoryRepository),
		fund:     new(MockFundRepository),
		cost:     new(MockCostRepository),
		user:     new(MockUserRepository),
	}
}

func (m mocks) service(projections cache.Cache[*Projection]) *OverviewService {
	return NewOverviewService(m.netWorth, m.category, m.fund, m.cost, m.user, projections, nil)
}

func (m mocks) expectHistory(userID int) {
	in := testInput()
	categories, subcategories := testCategories()

	m.netWorth.On("ListEntries", mock.Anything, userID).Return(in.Entries, nil)
	m.category.On("ListCategories", mock.Anything, userID).Return(categories, nil)
	m.category.On("ListSubcategories", mock.Anything, userID).Return(subcategories, nil)
	m.fund.On("ListFunds", mock.Anything, userID).Return(in.Funds, nil)
	m.fund.On("ListPrices", mock.Anything, userID, date(2024, 1, 1), date(2024, 3, 15)).Return(in.FundPrices, nil)
	m.fund.On("GetAnnualisedReturn", mock.Anything, userID).Return(in.AnnualisedReturn, nil)
	m.cost.On("ListMonthlyCosts", mock.Anything, userID, date(2024, 1, 1), date(2024, 3, 31)).Return(in.Costs, nil)
	m.user.On("GetBirthDate", mock.Anything, userID).Return(in.BirthDate, nil)
}

func (m mocks) assertExpectations(t *testing.T) {
	m.netWorth.AssertExpectations(t)
	m.category.AssertExpectations(t)
	m.fund.AssertExpectations(t)
	m.cost.AssertExpectations(t)
	m.user.AssertExpectations(t)
}

func testRequest() Request {
	in := testInput()
	return Request{
		UserID:     7,
		Today:      time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC),
		NumPast:    in.NumPast,
		NumFuture:  in.NumFuture,
		LivePrices: in.LivePrices,
	}
}

func TestOverviewService_GetOverview(t *testing.T) {
	m := newMocks()
	m.expectHistory(7)
	service := m.service(nil)

	projection, err := service.GetOverview(context.Background(), testRequest())

	require.NoError(t, err)
	assert.Equal(t, Project(testCalculator(), testInput()), *projection)
	m.assertExpectations(t)
}

func TestOverviewService_GetOverview_Cached(t *testing.T) {
	m := newMocks()
	m.expectHistory(7)
	projections := cache.NewLRUCache[*Projection](10, 0)
	service := m.service(projections)

	first, err := service.GetOverview(context.Background(), testRequest())
	require.NoError(t, err)
	second, err := service.GetOverview(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, projections.Size())

	// different options never share a result
	req := testRequest()
	req.LongTerm = domain.LongTermOptions{Enabled: true, Rates: domain.LongTermRates{Years: 5}}
	third, err := service.GetOverview(context.Background(), req)
	require.NoError(t, err)

	assert.NotSame(t, first, third)
	assert.Equal(t, 2, projections.Size())
}

func TestOverviewService_GetOverview_InvalidRequest(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{name: "missing user", req: Request{Today: date(2024, 1, 1)}},
		{name: "negative horizon", req: Request{UserID: 1, NumPast: -1}},
		{
			name: "long term without years",
			req:  Request{UserID: 1, LongTerm: domain.LongTermOptions{Enabled: true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMocks()
			service := m.service(nil)

			projection, err := service.GetOverview(context.Background(), tt.req)

			assert.Error(t, err)
			assert.Nil(t, projection)
			m.netWorth.AssertNotCalled(t, "ListEntries", mock.Anything, mock.Anything)
		})
	}
}

func TestRequest_Validate_Horizon(t *testing.T) {
	req := Request{UserID: 1, NumFuture: -2}
	assert.EqualError(t, req.Validate(), "invalid horizon: past and future months must not be negative")

	req = Request{UserID: 1}
	assert.NoError(t, req.Validate())
}

func TestOverviewService_GetOverview_RepositoryError(t *testing.T) {
	m := newMocks()
	in := testInput()
	categories, subcategories := testCategories()

	m.netWorth.On("ListEntries", mock.Anything, 7).Return(in.Entries, nil).Maybe()
	m.category.On("ListCategories", mock.Anything, 7).Return(categories, nil).Maybe()
	m.category.On("ListSubcategories", mock.Anything, 7).Return(subcategories, nil).Maybe()
	m.fund.On("ListFunds", mock.Anything, 7).Return(nil, errors.New("connection refused"))
	m.fund.On("ListPrices", mock.Anything, 7, mock.Anything, mock.Anything).Return(in.FundPrices, nil).Maybe()
	m.fund.On("GetAnnualisedReturn", mock.Anything, 7).Return(0.0, nil).Maybe()
	m.cost.On("ListMonthlyCosts", mock.Anything, 7, mock.Anything, mock.Anything).Return(in.Costs, nil).Maybe()
	m.user.On("GetBirthDate", mock.Anything, 7).Return(time.Time{}, nil).Maybe()

	projection, err := m.service(nil).GetOverview(context.Background(), testRequest())

	assert.Nil(t, projection)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list funds")
	assert.Contains(t, err.Error(), "connection refused")
}
