package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/simaogato/wealthflow-forecast/internal/domain"
)

// planningRepository implements domain.PlanningRepository
type planningRepository struct {
	db *DB
}

// NewPlanningRepository creates a new planning repository
func NewPlanningRepository(db *DB) domain.PlanningRepository {
	return &planningRepository{db: db}
}

// ListAccounts retrieves the planning accounts of a user with income, cards and values.
// The reads share one read-only transaction so the account tree is a consistent snapshot.
func (r *planningRepository) ListAccounts(ctx context.Context, userID int) ([]domain.PlanningAccount, error) {
	dbTx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	// 1. Accounts
	accountQuery := `
		SELECT id, name, net_worth_subcategory_id, upper_limit, lower_limit
		FROM planning_accounts
		WHERE user_id = $1
		ORDER BY id ASC
	`

	rows, err := dbTx.QueryContext(ctx, accountQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query planning accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.PlanningAccount
	index := make(map[int]int)
	for rows.Next() {
		var (
			account      domain.PlanningAccount
			upper, lower sql.NullInt64
		)
		if err := rows.Scan(&account.ID, &account.Name, &account.NetWorthSubcategoryID, &upper, &lower); err != nil {
			return nil, fmt.Errorf("failed to scan planning account: %w", err)
		}
		account.UpperLimit = nullInt64Ptr(upper)
		account.LowerLimit = nullInt64Ptr(lower)
		index[account.ID] = len(accounts)
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating planning accounts: %w", err)
	}
	rows.Close()

	if len(accounts) == 0 {
		return accounts, nil
	}

	// 2. Children of each account
	if err := loadIncome(ctx, dbTx, userID, accounts, index); err != nil {
		return nil, err
	}
	if err := loadCreditCards(ctx, dbTx, userID, accounts, index); err != nil {
		return nil, err
	}
	if err := loadPlanningValues(ctx, dbTx, userID, accounts, index); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return accounts, nil
}

func loadIncome(ctx context.Context, dbTx *sql.Tx, userID int, accounts []domain.PlanningAccount, index map[int]int) error {
	query := `
		SELECT i.id, i.account_id, i.start_date, i.end_date, i.salary, i.tax_code, i.student_loan, i.pension_contrib
		FROM planning_income i
		JOIN planning_accounts a ON a.id = i.account_id
		WHERE a.user_id = $1
		ORDER BY i.start_date ASC
	`

	rows, err := dbTx.QueryContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to query planning income: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			accountID int
			income    domain.PlanningIncome
		)
		if err := rows.Scan(&income.ID, &accountID, &income.StartDate, &income.EndDate, &income.Salary,
			&income.TaxCode, &income.StudentLoan, &income.PensionContrib); err != nil {
			return fmt.Errorf("failed to scan planning income: %w", err)
		}
		if i, ok := index[accountID]; ok {
			accounts[i].Income = append(accounts[i].Income, income)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating planning income: %w", err)
	}
	return nil
}

func loadCreditCards(ctx context.Context, dbTx *sql.Tx, userID int, accounts []domain.PlanningAccount, index map[int]int) error {
	query := `
		SELECT c.id, c.account_id, c.net_worth_subcategory_id, p.year, p.month, p.value
		FROM planning_credit_cards c
		JOIN planning_accounts a ON a.id = c.account_id
		LEFT JOIN planning_credit_card_payments p ON p.card_id = c.id
		WHERE a.user_id = $1
		ORDER BY c.id ASC, p.year ASC, p.month ASC
	`

	rows, err := dbTx.QueryContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to query credit cards: %w", err)
	}
	defer rows.Close()

	// Rows arrive grouped by card; track where each card lives in its account
	type cardRef struct{ account, card int }
	cards := make(map[int]cardRef)

	for rows.Next() {
		var (
			cardID, accountID, subcategoryID int
			year, month                      sql.NullInt32
			value                            sql.NullInt64
		)
		if err := rows.Scan(&cardID, &accountID, &subcategoryID, &year, &month, &value); err != nil {
			return fmt.Errorf("failed to scan credit card: %w", err)
		}

		ai, ok := index[accountID]
		if !ok {
			continue
		}
		ref, seen := cards[cardID]
		if !seen {
			accounts[ai].CreditCards = append(accounts[ai].CreditCards, domain.PlanningCreditCard{
				ID:                    cardID,
				NetWorthSubcategoryID: subcategoryID,
			})
			ref = cardRef{account: ai, card: len(accounts[ai].CreditCards) - 1}
			cards[cardID] = ref
		}

		if year.Valid {
			card := &accounts[ref.account].CreditCards[ref.card]
			card.Payments = append(card.Payments, domain.CreditCardPayment{
				Year:  int(year.Int32),
				Month: time.Month(month.Int32),
				Value: value.Int64,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating credit cards: %w", err)
	}
	return nil
}

func loadPlanningValues(ctx context.Context, dbTx *sql.Tx, userID int, accounts []domain.PlanningAccount, index map[int]int) error {
	query := `
		SELECT v.id, v.account_id, v.year, v.month, v.name, v.value, v.formula, v.transfer_to_account_id
		FROM planning_values v
		JOIN planning_accounts a ON a.id = v.account_id
		WHERE a.user_id = $1
		ORDER BY v.year ASC, v.month ASC, v.id ASC
	`

	rows, err := dbTx.QueryContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to query planning values: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			accountID, month int
			value            domain.PlanningValue
			amount           sql.NullInt64
			transferTo       sql.NullInt32
		)
		if err := rows.Scan(&value.ID, &accountID, &value.Year, &month, &value.Name,
			&amount, &value.Formula, &transferTo); err != nil {
			return fmt.Errorf("failed to scan planning value: %w", err)
		}
		value.Month = time.Month(month)
		value.Value = nullInt64Ptr(amount)
		if transferTo.Valid {
			dest := int(transferTo.Int32)
			value.TransferToAccountID = &dest
		}
		if i, ok := index[accountID]; ok {
			accounts[i].Values = append(accounts[i].Values, value)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating planning values: %w", err)
	}
	return nil
}

// ListTaxParameters retrieves the per-user tax parameter overrides of every stored year
func (r *planningRepository) ListTaxParameters(ctx context.Context, userID int) ([]domain.TaxParameters, error) {
	query := `
		SELECT year, name, value::DOUBLE PRECISION, TRUE AS is_threshold
		FROM tax_thresholds WHERE user_id = $1
		UNION ALL
		SELECT year, name, value, FALSE AS is_threshold
		FROM tax_rates WHERE user_id = $1
		ORDER BY year ASC, name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tax parameters: %w", err)
	}
	defer rows.Close()

	var params []domain.TaxParameters
	for rows.Next() {
		var (
			year        int
			name        string
			value       float64
			isThreshold bool
		)
		if err := rows.Scan(&year, &name, &value, &isThreshold); err != nil {
			return nil, fmt.Errorf("failed to scan tax parameter: %w", err)
		}

		if len(params) == 0 || params[len(params)-1].Year != year {
			params = append(params, domain.TaxParameters{Year: year})
		}
		p := &params[len(params)-1]
		if isThreshold {
			p.Thresholds = append(p.Thresholds, domain.NamedValue{Name: name, Value: int64(value)})
		} else {
			p.Rates = append(p.Rates, domain.NamedRate{Name: name, Value: value})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tax parameters: %w", err)
	}

	return params, nil
}

// ListIncomeRecords retrieves the income ledger between two dates (inclusive)
func (r *planningRepository) ListIncomeRecords(ctx context.Context, userID int, from, to time.Time) ([]domain.IncomeRecord, error) {
	query := `
		SELECT r.id, r.account_id, r.date, r.item, r.gross, d.name, d.value
		FROM income_records r
		LEFT JOIN income_deductions d ON d.income_id = r.id
		WHERE r.user_id = $1 AND r.date >= $2 AND r.date <= $3
		ORDER BY r.date ASC, r.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query income records: %w", err)
	}
	defer rows.Close()

	var (
		records []domain.IncomeRecord
		lastID  = -1
	)
	for rows.Next() {
		var (
			id             int
			record         domain.IncomeRecord
			deductionName  sql.NullString
			deductionValue sql.NullInt64
		)
		if err := rows.Scan(&id, &record.AccountID, &record.Date, &record.Item, &record.Gross,
			&deductionName, &deductionValue); err != nil {
			return nil, fmt.Errorf("failed to scan income record: %w", err)
		}

		if id != lastID {
			records = append(records, record)
			lastID = id
		}
		if deductionName.Valid {
			last := &records[len(records)-1]
			last.Deductions = append(last.Deductions, domain.NamedValue{Name: deductionName.String, Value: deductionValue.Int64})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating income records: %w", err)
	}

	return records, nil
}

func nullInt64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
