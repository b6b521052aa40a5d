package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finplan/internal/alert"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) HasAlert(ctx context.Context, categoryID uuid.UUID, month time.Time) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM budget_alerts WHERE category_id = $1 AND month = $2)`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, categoryID, month).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking budget alert: %w", err)
	}

	return exists, nil
}

func (s *Store) RecordAlert(ctx context.Context, a *alert.BudgetAlert) error {
	query := `
		INSERT INTO budget_alerts (category_id, month, budget, spent, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (category_id, month) DO NOTHING
	`

	if _, err := s.db.ExecContext(ctx, query, a.CategoryID, a.Month, a.Budget, a.Spent); err != nil {
		return fmt.Errorf("recording budget alert: %w", err)
	}

	return nil
}
