package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finplan/internal/debt"
	"github.com/MrJamesThe3rd/finplan/internal/loan"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectDebtColumns = `
	id, description, type, total_amount, remaining_amount, annual_rate_percent, duration_months,
	payment_frequency, loan_type, payment_amount, start_date, end_date, status,
	contact_name, contact_info, notes, created_at, updated_at
`

func scanDebt(s scanner) (*debt.Debt, error) {
	var (
		d                           debt.Debt
		typ, freq, loanType, status string
	)

	if err := s.Scan(
		&d.ID, &d.Description, &typ, &d.TotalAmount, &d.RemainingAmount, &d.AnnualRatePercent, &d.DurationMonths,
		&freq, &loanType, &d.PaymentAmount, &d.StartDate, &d.EndDate, &status,
		&d.ContactName, &d.ContactInfo, &d.Notes, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return nil, err
	}

	d.Type = debt.Type(typ)
	d.PaymentFrequency = loan.Frequency(freq)
	d.LoanType = loan.Type(loanType)
	d.Status = debt.Status(status)

	return &d, nil
}

func (s *Store) GetDebt(ctx context.Context, id uuid.UUID) (*debt.Debt, error) {
	query := `SELECT ` + selectDebtColumns + ` FROM debts WHERE id = $1`

	d, err := scanDebt(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, debt.ErrNotFound
		}

		return nil, fmt.Errorf("getting debt: %w", err)
	}

	return d, nil
}

func (s *Store) ListDebts(ctx context.Context, filter debt.ListFilter) ([]*debt.Debt, error) {
	var (
		where []string
		args  []any
	)

	if filter.Type != "" {
		args = append(args, filter.Type)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}

	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + selectDebtColumns + ` FROM debts`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}

	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing debts: %w", err)
	}
	defer rows.Close()

	var debts []*debt.Debt

	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning debt: %w", err)
		}

		debts = append(debts, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating debts: %w", err)
	}

	return debts, nil
}

func (s *Store) ListPayments(ctx context.Context, debtID uuid.UUID) ([]*debt.Payment, error) {
	query := `
		SELECT id, debt_id, amount, payment_date, notes, created_at
		FROM debt_payments
		WHERE debt_id = $1
		ORDER BY payment_date DESC, created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, debtID)
	if err != nil {
		return nil, fmt.Errorf("listing debt payments: %w", err)
	}
	defer rows.Close()

	var payments []*debt.Payment

	for rows.Next() {
		var p debt.Payment
		if err := rows.Scan(&p.ID, &p.DebtID, &p.Amount, &p.PaymentDate, &p.Notes, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning debt payment: %w", err)
		}

		payments = append(payments, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating debt payments: %w", err)
	}

	return payments, nil
}

type debtTx struct {
	tx *sql.Tx
}

func (s *Store) Begin(ctx context.Context) (debt.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning debt tx: %w", err)
	}

	return &debtTx{tx: dbTx}, nil
}

func (dtx *debtTx) Commit() error   { return dtx.tx.Commit() }
func (dtx *debtTx) Rollback() error { return dtx.tx.Rollback() }

func (dtx *debtTx) LockDebt(ctx context.Context, id uuid.UUID) (*debt.Debt, error) {
	query := `SELECT ` + selectDebtColumns + ` FROM debts WHERE id = $1 FOR UPDATE`

	d, err := scanDebt(dtx.tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, debt.ErrNotFound
		}

		return nil, fmt.Errorf("locking debt: %w", err)
	}

	return d, nil
}

func (dtx *debtTx) CreateDebt(ctx context.Context, d *debt.Debt) error {
	query := `
		INSERT INTO debts (
			description, type, total_amount, remaining_amount, annual_rate_percent, duration_months,
			payment_frequency, loan_type, payment_amount, start_date, end_date, status,
			contact_name, contact_info, notes, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := dtx.tx.QueryRowContext(ctx, query,
		d.Description,
		d.Type,
		d.TotalAmount,
		d.RemainingAmount,
		d.AnnualRatePercent,
		d.DurationMonths,
		d.PaymentFrequency,
		d.LoanType,
		d.PaymentAmount,
		d.StartDate,
		d.EndDate,
		d.Status,
		d.ContactName,
		d.ContactInfo,
		d.Notes,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating debt: %w", err)
	}

	return nil
}

func (dtx *debtTx) UpdateDebt(ctx context.Context, d *debt.Debt) error {
	query := `
		UPDATE debts
		SET remaining_amount = $1, status = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at
	`

	err := dtx.tx.QueryRowContext(ctx, query, d.RemainingAmount, d.Status, d.ID).Scan(&d.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return debt.ErrNotFound
		}

		return fmt.Errorf("updating debt: %w", err)
	}

	return nil
}

func (dtx *debtTx) DeleteDebt(ctx context.Context, id uuid.UUID) error {
	res, err := dtx.tx.ExecContext(ctx, `DELETE FROM debts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting debt: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return debt.ErrNotFound
	}

	return nil
}

func (dtx *debtTx) CreatePayment(ctx context.Context, p *debt.Payment) error {
	query := `
		INSERT INTO debt_payments (debt_id, amount, payment_date, notes, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`

	if err := dtx.tx.QueryRowContext(ctx, query, p.DebtID, p.Amount, p.PaymentDate, p.Notes).
		Scan(&p.ID, &p.CreatedAt); err != nil {
		return fmt.Errorf("creating debt payment: %w", err)
	}

	return nil
}

func (dtx *debtTx) DeletePayment(ctx context.Context, debtID, paymentID uuid.UUID) (*debt.Payment, error) {
	query := `
		DELETE FROM debt_payments
		WHERE id = $1 AND debt_id = $2
		RETURNING id, debt_id, amount, payment_date, notes, created_at
	`

	var p debt.Payment

	err := dtx.tx.QueryRowContext(ctx, query, paymentID, debtID).
		Scan(&p.ID, &p.DebtID, &p.Amount, &p.PaymentDate, &p.Notes, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, debt.ErrPaymentNotFound
		}

		return nil, fmt.Errorf("deleting debt payment: %w", err)
	}

	return &p, nil
}
