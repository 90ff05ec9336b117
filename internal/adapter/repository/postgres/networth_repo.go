package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/simaogato/wealthflow-forecast/internal/domain"
)

// netWorthRepository implements domain.NetWorthRepository
type netWorthRepository struct {
	db *DB
}

// NewNetWorthRepository creates a new net worth repository
func NewNetWorthRepository(db *DB) domain.NetWorthRepository {
	return &netWorthRepository{db: db}
}

// ListEntries retrieves every net worth entry of a user with its values, fx holdings,
// credit limits and currency rates
func (r *netWorthRepository) ListEntries(ctx context.Context, userID int) ([]domain.NetWorthEntry, error) {
	// 1. Entries
	entryQuery := `
		SELECT id, date
		FROM net_worth_entries
		WHERE user_id = $1
		ORDER BY date ASC
	`

	rows, err := r.db.QueryContext(ctx, entryQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query net worth entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.NetWorthEntry
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var entry domain.NetWorthEntry
		if err := rows.Scan(&entry.ID, &entry.Date); err != nil {
			return nil, fmt.Errorf("failed to scan net worth entry: %w", err)
		}
		index[entry.ID] = len(entries)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating net worth entries: %w", err)
	}

	if len(entries) == 0 {
		return entries, nil
	}

	// 2. Values, then the children that hang off entries
	if err := r.loadValues(ctx, userID, entries, index); err != nil {
		return nil, err
	}
	if err := r.loadFXValues(ctx, userID, entries, index); err != nil {
		return nil, err
	}
	if err := r.loadCreditLimits(ctx, userID, entries, index); err != nil {
		return nil, err
	}
	if err := r.loadCurrencies(ctx, userID, entries, index); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *netWorthRepository) loadValues(ctx context.Context, userID int, entries []domain.NetWorthEntry, index map[uuid.UUID]int) error {
	query := `
		SELECT v.entry_id, v.subcategory_id, v.skip, v.simple,
		       v.option_units, v.option_vested, v.option_strike_price, v.option_market_price,
		       v.loan_principal, v.loan_rate, v.loan_payments_remaining, v.loan_paid
		FROM net_worth_values v
		JOIN net_worth_entries e ON e.id = v.entry_id
		WHERE e.user_id = $1
		ORDER BY v.entry_id, v.subcategory_id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to query net worth values: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			entryID                             uuid.UUID
			value                               domain.NetWorthValue
			simple, principal, paid             sql.NullInt64
			units, vested, strike, market, rate sql.NullFloat64
			paymentsRemaining                   sql.NullInt32
		)
		if err := rows.Scan(&entryID, &value.Subcategory, &value.Skip, &simple,
			&units, &vested, &strike, &market,
			&principal, &rate, &paymentsRemaining, &paid); err != nil {
			return fmt.Errorf("failed to scan net worth value: %w", err)
		}

		if simple.Valid {
			v := simple.Int64
			value.Simple = &v
		}
		if units.Valid {
			value.Option = &domain.OptionValue{
				Units:       units.Float64,
				Vested:      vested.Float64,
				StrikePrice: strike.Float64,
				MarketPrice: market.Float64,
			}
		}
		if principal.Valid {
			value.Loan = &domain.LoanValue{
				Principal:         principal.Int64,
				Rate:              rate.Float64,
				PaymentsRemaining: int(paymentsRemaining.Int32),
			}
			if paid.Valid {
				p := paid.Int64
				value.Loan.Paid = &p
			}
		}

		if i, ok := index[entryID]; ok {
			entries[i].Values = append(entries[i].Values, value)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating net worth values: %w", err)
	}
	return nil
}

func (r *netWorthRepository) loadFXValues(ctx context.Context, userID int, entries []domain.NetWorthEntry, index map[uuid.UUID]int) error {
	query := `
		SELECT f.entry_id, f.subcategory_id, f.currency, f.value
		FROM net_worth_fx_values f
		JOIN net_worth_entries e ON e.id = f.entry_id
		WHERE e.user_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to query fx values: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			entryID       uuid.UUID
			subcategoryID int
			fx            domain.FXValue
		)
		if err := rows.Scan(&entryID, &subcategoryID, &fx.Currency, &fx.Value); err != nil {
			return fmt.Errorf("failed to scan fx value: %w", err)
		}

		i, ok := index[entryID]
		if !ok {
			continue
		}
		for j := range entries[i].Values {
			if entries[i].Values[j].Subcategory == subcategoryID {
				entries[i].Values[j].FX = append(entries[i].Values[j].FX, fx)
				break
			}
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating fx values: %w", err)
	}
	return nil
}

func (r *netWorthRepository) loadCreditLimits(ctx context.Context, userID int, entries []domain.NetWorthEntry, index map[uuid.UUID]int) error {
	query := `
		SELECT c.entry_id, c.subcategory_id, c.value
		FROM net_worth_credit_limits c
		JOIN net_worth_entries e ON e.id = c.entry_id
		WHERE e.user_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to query credit limits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			entryID uuid.UUID
			limit   domain.CreditLimit
		)
		if err := rows.Scan(&entryID, &limit.Subcategory, &limit.Value); err != nil {
			return fmt.Errorf("failed to scan credit limit: %w", err)
		}
		if i, ok := index[entryID]; ok {
			entries[i].CreditLimit = append(entries[i].CreditLimit, limit)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating credit limits: %w", err)
	}
	return nil
}

func (r *netWorthRepository) loadCurrencies(ctx context.Context, userID int, entries []domain.NetWorthEntry, index map[uuid.UUID]int) error {
	query := `
		SELECT c.entry_id, c.currency, c.rate
		FROM net_worth_currencies c
		JOIN net_worth_entries e ON e.id = c.entry_id
		WHERE e.user_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to query currency rates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			entryID uuid.UUID
			rate    domain.CurrencyRate
		)
		if err := rows.Scan(&entryID, &rate.Currency, &rate.Rate); err != nil {
			return fmt.Errorf("failed to scan currency rate: %w", err)
		}
		if i, ok := index[entryID]; ok {
			entries[i].Currencies = append(entries[i].Currencies, rate)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating currency rates: %w", err)
	}
	return nil
}
