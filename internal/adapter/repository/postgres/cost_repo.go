package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/simaogato/wealthflow-forecast/internal/domain"
)

// costRepository implements domain.CostRepository
type costRepository struct {
	db *DB
}

// NewCostRepository creates a new cost repository
func NewCostRepository(db *DB) domain.CostRepository {
	return &costRepository{db: db}
}

// ListMonthlyCosts retrieves monthly category totals between two dates (inclusive)
func (r *costRepository) ListMonthlyCosts(ctx context.Context, userID int, from, to time.Time) ([]domain.MonthlyCost, error) {
	query := `
		SELECT category, date, value
		FROM monthly_costs
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC, category ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly costs: %w", err)
	}
	defer rows.Close()

	var costs []domain.MonthlyCost
	for rows.Next() {
		var cost domain.MonthlyCost
		if err := rows.Scan(&cost.Category, &cost.Date, &cost.Value); err != nil {
			return nil, fmt.Errorf("failed to scan monthly cost: %w", err)
		}
		costs = append(costs, cost)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monthly costs: %w", err)
	}

	return costs, nil
}
