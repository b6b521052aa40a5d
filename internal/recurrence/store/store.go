package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finplan/internal/ledger"
	"github.com/MrJamesThe3rd/finplan/internal/recurrence"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// SelectColumns lists the recurring_transactions columns in ScanTemplate order.
const SelectColumns = `
	r.id, r.amount, r.type, r.description, r.interval, r.start_date, r.next_due_date,
	r.end_date, r.is_active, r.account_id, r.category_id, r.installment_plan_id,
	r.created_at, r.updated_at
`

// ScanTemplate reads a recurring_transactions row in SelectColumns order.
func ScanTemplate(s scanner) (*recurrence.Template, error) {
	var t recurrence.Template

	var typeStr, intervalStr string

	var endDate sql.NullTime

	if err := s.Scan(
		&t.ID, &t.Amount, &typeStr, &t.Description, &intervalStr, &t.StartDate, &t.NextDueDate,
		&endDate, &t.IsActive, &t.AccountID, &t.CategoryID, &t.InstallmentPlanID,
		&t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}

	t.Type = ledger.Type(typeStr)
	t.Interval = recurrence.Interval(intervalStr)

	if endDate.Valid {
		t.EndDate = &endDate.Time
	}

	return &t, nil
}

// queryRower is satisfied by both *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// InsertTemplate writes t through q so it can join a wider database transaction.
func InsertTemplate(ctx context.Context, q queryRower, t *recurrence.Template) error {
	query := `
		INSERT INTO recurring_transactions (
			amount, type, description, interval, start_date, next_due_date, end_date,
			is_active, account_id, category_id, installment_plan_id, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRowContext(ctx, query,
		t.Amount,
		t.Type,
		t.Description,
		t.Interval,
		t.StartDate,
		t.NextDueDate,
		t.EndDate,
		t.IsActive,
		t.AccountID,
		t.CategoryID,
		t.InstallmentPlanID,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating recurring: %w", err)
	}

	return nil
}

func (s *Store) CreateTemplate(ctx context.Context, t *recurrence.Template) error {
	return InsertTemplate(ctx, s.db, t)
}

func (s *Store) GetTemplate(ctx context.Context, id uuid.UUID) (*recurrence.Template, error) {
	query := `SELECT ` + SelectColumns + ` FROM recurring_transactions r WHERE r.id = $1`

	t, err := ScanTemplate(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, recurrence.ErrNotFound
		}

		return nil, fmt.Errorf("getting recurring: %w", err)
	}

	return t, nil
}

func (s *Store) ListTemplates(ctx context.Context, filter recurrence.ListFilter) ([]*recurrence.Template, error) {
	query := `SELECT ` + SelectColumns + ` FROM recurring_transactions r WHERE TRUE`

	var args []any

	if filter.ActiveOnly {
		query += " AND r.is_active"
	}

	if filter.DueOnOrBefore != nil {
		args = append(args, *filter.DueOnOrBefore)
		query += fmt.Sprintf(" AND r.next_due_date <= $%d", len(args))
	}

	query += " ORDER BY r.next_due_date ASC, r.created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing recurring: %w", err)
	}
	defer rows.Close()

	var templates []*recurrence.Template

	for rows.Next() {
		t, err := ScanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning recurring: %w", err)
		}

		templates = append(templates, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recurring: %w", err)
	}

	return templates, nil
}

// Execer is satisfied by both *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SaveTemplate writes the mutable fields of t through e.
func SaveTemplate(ctx context.Context, e Execer, t *recurrence.Template) error {
	query := `
		UPDATE recurring_transactions
		SET amount = $1, description = $2, next_due_date = $3, end_date = $4, is_active = $5,
			category_id = $6, updated_at = NOW()
		WHERE id = $7
	`

	res, err := e.ExecContext(ctx, query,
		t.Amount,
		t.Description,
		t.NextDueDate,
		t.EndDate,
		t.IsActive,
		t.CategoryID,
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating recurring: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return recurrence.ErrNotFound
	}

	return nil
}

func (s *Store) UpdateTemplate(ctx context.Context, t *recurrence.Template) error {
	return SaveTemplate(ctx, s.db, t)
}

func (s *Store) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM recurring_transactions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting recurring: %w", err)
	}

	return nil
}
