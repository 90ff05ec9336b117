package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/simaogato/wealthflow-forecast/internal/domain"
)

// userRepository implements domain.UserRepository
type userRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) domain.UserRepository {
	return &userRepository{db: db}
}

// GetBirthDate retrieves the birth date of a user; NULL maps to the zero time
func (r *userRepository) GetBirthDate(ctx context.Context, userID int) (time.Time, error) {
	query := `SELECT birth_date FROM users WHERE id = $1`

	var birthDate sql.NullTime
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&birthDate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, fmt.Errorf("user %d not found: %w", userID, err)
		}
		return time.Time{}, fmt.Errorf("failed to get birth date: %w", err)
	}

	if !birthDate.Valid {
		return time.Time{}, nil
	}
	return birthDate.Time, nil
}
