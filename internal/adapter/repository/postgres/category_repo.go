package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/simaogato/wealthflow-forecast/internal/domain"
)

// categoryRepository implements domain.CategoryRepository
type categoryRepository struct {
	db *DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *DB) domain.CategoryRepository {
	return &categoryRepository{db: db}
}

// ListCategories retrieves the categories of a user. The aggregate bucket is resolved
// here, once, so forecasting code never matches on names.
func (r *categoryRepository) ListCategories(ctx context.Context, userID int) ([]domain.Category, error) {
	query := `
		SELECT id, name, type, is_option, color
		FROM net_worth_categories
		WHERE user_id = $1
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var (
			category     domain.Category
			categoryType string
		)
		if err := rows.Scan(&category.ID, &category.Name, &categoryType, &category.IsOption, &category.Color); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		category.Type = domain.CategoryType(categoryType)
		category.Aggregate = domain.ClassifyCategory(category.Name, category.Type, category.IsOption)
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// ListSubcategories retrieves the subcategories of a user
func (r *categoryRepository) ListSubcategories(ctx context.Context, userID int) ([]domain.Subcategory, error) {
	query := `
		SELECT s.id, s.category_id, s.name, s.has_credit_limit, s.appreciation_rate, s.is_saye, s.opacity
		FROM net_worth_subcategories s
		JOIN net_worth_categories c ON c.id = s.category_id
		WHERE c.user_id = $1
		ORDER BY s.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query subcategories: %w", err)
	}
	defer rows.Close()

	var subcategories []domain.Subcategory
	for rows.Next() {
		var (
			sub          domain.Subcategory
			appreciation sql.NullFloat64
		)
		if err := rows.Scan(&sub.ID, &sub.CategoryID, &sub.Name, &sub.HasCreditLimit,
			&appreciation, &sub.IsSAYE, &sub.Opacity); err != nil {
			return nil, fmt.Errorf("failed to scan subcategory: %w", err)
		}
		if appreciation.Valid {
			rate := appreciation.Float64
			sub.AppreciationRate = &rate
		}
		subcategories = append(subcategories, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subcategories: %w", err)
	}

	return subcategories, nil
}
