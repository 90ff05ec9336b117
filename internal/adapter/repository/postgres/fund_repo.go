package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/simaogato/wealthflow-forecast/internal/domain"
)

// fundRepository implements domain.FundRepository
type fundRepository struct {
	db *DB
}

// NewFundRepository creates a new fund repository
func NewFundRepository(db *DB) domain.FundRepository {
	return &fundRepository{db: db}
}

// ListFunds retrieves every fund of a user with transactions and stock splits
func (r *fundRepository) ListFunds(ctx context.Context, userID int) ([]domain.Fund, error) {
	fundQuery := `
		SELECT id, item, allocation_target
		FROM funds
		WHERE user_id = $1
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, fundQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query funds: %w", err)
	}
	defer rows.Close()

	var funds []domain.Fund
	index := make(map[int]int)
	for rows.Next() {
		var (
			fund   domain.Fund
			target sql.NullFloat64
		)
		if err := rows.Scan(&fund.ID, &fund.Item, &target); err != nil {
			return nil, fmt.Errorf("failed to scan fund: %w", err)
		}
		if target.Valid {
			t := target.Float64
			fund.AllocationTarget = &t
		}
		index[fund.ID] = len(funds)
		funds = append(funds, fund)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating funds: %w", err)
	}

	if len(funds) == 0 {
		return funds, nil
	}

	if err := r.loadTransactions(ctx, userID, funds, index); err != nil {
		return nil, err
	}
	if err := r.loadStockSplits(ctx, userID, funds, index); err != nil {
		return nil, err
	}

	return funds, nil
}

func (r *fundRepository) loadTransactions(ctx context.Context, userID int, funds []domain.Fund, index map[int]int) error {
	query := `
		SELECT t.fund_id, t.date, t.units, t.price, t.fees, t.taxes, t.drip, t.pension
		FROM fund_transactions t
		JOIN funds f ON f.id = t.fund_id
		WHERE f.user_id = $1
		ORDER BY t.date ASC, t.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to query fund transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			fundID int
			tx     domain.FundTransaction
		)
		if err := rows.Scan(&fundID, &tx.Date, &tx.Units, &tx.Price, &tx.Fees, &tx.Taxes, &tx.Drip, &tx.Pension); err != nil {
			return fmt.Errorf("failed to scan fund transaction: %w", err)
		}
		if i, ok := index[fundID]; ok {
			funds[i].Transactions = append(funds[i].Transactions, tx)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating fund transactions: %w", err)
	}
	return nil
}

func (r *fundRepository) loadStockSplits(ctx context.Context, userID int, funds []domain.Fund, index map[int]int) error {
	query := `
		SELECT s.fund_id, s.date, s.ratio
		FROM stock_splits s
		JOIN funds f ON f.id = s.fund_id
		WHERE f.user_id = $1
		ORDER BY s.date ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to query stock splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			fundID int
			split  domain.StockSplit
		)
		if err := rows.Scan(&fundID, &split.Date, &split.Ratio); err != nil {
			return fmt.Errorf("failed to scan stock split: %w", err)
		}
		if i, ok := index[fundID]; ok {
			funds[i].StockSplits = append(funds[i].StockSplits, split)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating stock splits: %w", err)
	}
	return nil
}

// ListPrices retrieves cached fund prices between two dates (inclusive)
func (r *fundRepository) ListPrices(ctx context.Context, userID int, from, to time.Time) ([]domain.FundPrice, error) {
	query := `
		SELECT p.fund_id, p.date, p.price
		FROM fund_prices p
		JOIN funds f ON f.id = p.fund_id
		WHERE f.user_id = $1 AND p.date >= $2 AND p.date <= $3
		ORDER BY p.date ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query fund prices: %w", err)
	}
	defer rows.Close()

	var prices []domain.FundPrice
	for rows.Next() {
		var price domain.FundPrice
		if err := rows.Scan(&price.FundID, &price.Date, &price.Price); err != nil {
			return nil, fmt.Errorf("failed to scan fund price: %w", err)
		}
		prices = append(prices, price)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fund prices: %w", err)
	}

	return prices, nil
}

// GetAnnualisedReturn retrieves the stored portfolio XIRR of a user
func (r *fundRepository) GetAnnualisedReturn(ctx context.Context, userID int) (float64, error) {
	query := `SELECT annualised_return FROM users WHERE id = $1`

	var xirr float64
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&xirr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("user %d not found: %w", userID, err)
		}
		return 0, fmt.Errorf("failed to get annualised return: %w", err)
	}

	return xirr, nil
}
