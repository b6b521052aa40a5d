package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/installment"
	"github.com/MrJamesThe3rd/finplan/internal/recurrence"
	recurrenceStore "github.com/MrJamesThe3rd/finplan/internal/recurrence/store"
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

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const selectPlanColumns = `
	p.id, p.description, p.total_amount, p.remaining_amount, p.installment_amount, p.frequency,
	p.start_date, p.next_payment_date, p.account_id, p.category_id, p.is_active,
	p.created_at, p.updated_at
`

func scanPlan(s scanner) (*installment.Plan, error) {
	var p installment.Plan

	var freq string

	if err := s.Scan(
		&p.ID, &p.Description, &p.TotalAmount, &p.RemainingAmount, &p.InstallmentAmount, &freq,
		&p.StartDate, &p.NextPaymentDate, &p.AccountID, &p.CategoryID, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	p.Frequency = installment.Frequency(freq)

	return &p, nil
}

// LockPlan loads the plan and holds a row lock on it until q's transaction ends.
func LockPlan(ctx context.Context, q Querier, id uuid.UUID) (*installment.Plan, error) {
	query := `SELECT ` + selectPlanColumns + ` FROM installment_plans p WHERE p.id = $1 FOR UPDATE`

	p, err := scanPlan(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, installment.ErrNotFound
		}

		return nil, fmt.Errorf("locking plan: %w", err)
	}

	return p, nil
}

// SavePlan writes the mutable fields of p.
func SavePlan(ctx context.Context, q Querier, p *installment.Plan) error {
	query := `
		UPDATE installment_plans
		SET remaining_amount = $1, installment_amount = $2, next_payment_date = $3, is_active = $4,
			updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`

	err := q.QueryRowContext(ctx, query,
		p.RemainingAmount,
		p.InstallmentAmount,
		p.NextPaymentDate,
		p.IsActive,
		p.ID,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return installment.ErrNotFound
		}

		return fmt.Errorf("updating plan: %w", err)
	}

	return nil
}

// InsertPayment writes a payment history record.
func InsertPayment(ctx context.Context, q Querier, rec *installment.PaymentRecord) error {
	query := `
		INSERT INTO installment_payments (plan_id, payment_date, amount, transaction_id, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`

	err := q.QueryRowContext(ctx, query, rec.PlanID, rec.PaymentDate, rec.Amount, rec.TransactionID).
		Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating payment record: %w", err)
	}

	return nil
}

func (s *Store) GetPlan(ctx context.Context, id uuid.UUID) (*installment.Plan, error) {
	query := `SELECT ` + selectPlanColumns + ` FROM installment_plans p WHERE p.id = $1`

	p, err := scanPlan(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, installment.ErrNotFound
		}

		return nil, fmt.Errorf("getting plan: %w", err)
	}

	return p, nil
}

func (s *Store) ListPlans(ctx context.Context, filter installment.ListFilter) ([]*installment.Plan, error) {
	query := `SELECT ` + selectPlanColumns + ` FROM installment_plans p`
	if filter.ActiveOnly {
		query += ` WHERE p.is_active`
	}

	query += ` ORDER BY p.next_payment_date ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing plans: %w", err)
	}
	defer rows.Close()

	var plans []*installment.Plan

	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning plan: %w", err)
		}

		plans = append(plans, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating plans: %w", err)
	}

	return plans, nil
}

func (s *Store) ListPayments(ctx context.Context, planID uuid.UUID) ([]*installment.PaymentRecord, error) {
	query := `
		SELECT id, plan_id, payment_date, amount, transaction_id, created_at
		FROM installment_payments
		WHERE plan_id = $1
		ORDER BY payment_date ASC, created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, planID)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	defer rows.Close()

	var records []*installment.PaymentRecord

	for rows.Next() {
		var r installment.PaymentRecord
		if err := rows.Scan(&r.ID, &r.PlanID, &r.PaymentDate, &r.Amount, &r.TransactionID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}

		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payments: %w", err)
	}

	return records, nil
}

type planTx struct {
	tx *sql.Tx
}

func (s *Store) Begin(ctx context.Context) (installment.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning plan tx: %w", err)
	}

	return &planTx{tx: dbTx}, nil
}

func (ptx *planTx) Commit() error   { return ptx.tx.Commit() }
func (ptx *planTx) Rollback() error { return ptx.tx.Rollback() }

func (ptx *planTx) LockPlan(ctx context.Context, id uuid.UUID) (*installment.Plan, error) {
	return LockPlan(ctx, ptx.tx, id)
}

func (ptx *planTx) CreatePlan(ctx context.Context, p *installment.Plan) error {
	query := `
		INSERT INTO installment_plans (
			description, total_amount, remaining_amount, installment_amount, frequency,
			start_date, next_payment_date, account_id, category_id, is_active, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := ptx.tx.QueryRowContext(ctx, query,
		p.Description,
		p.TotalAmount,
		p.RemainingAmount,
		p.InstallmentAmount,
		p.Frequency,
		p.StartDate,
		p.NextPaymentDate,
		p.AccountID,
		p.CategoryID,
		p.IsActive,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating plan: %w", err)
	}

	return nil
}

func (ptx *planTx) UpdatePlan(ctx context.Context, p *installment.Plan) error {
	return SavePlan(ctx, ptx.tx, p)
}

func (ptx *planTx) DeletePlan(ctx context.Context, id uuid.UUID) error {
	res, err := ptx.tx.ExecContext(ctx, `DELETE FROM installment_plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting plan: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return installment.ErrNotFound
	}

	return nil
}

func (ptx *planTx) CreatePayment(ctx context.Context, rec *installment.PaymentRecord) error {
	return InsertPayment(ctx, ptx.tx, rec)
}

func (ptx *planTx) CreateTemplate(ctx context.Context, t *recurrence.Template) error {
	return recurrenceStore.InsertTemplate(ctx, ptx.tx, t)
}

func (ptx *planTx) SetTemplateAmount(ctx context.Context, planID uuid.UUID, amount decimal.Decimal) error {
	query := `
		UPDATE recurring_transactions
		SET amount = $1, updated_at = NOW()
		WHERE installment_plan_id = $2
	`

	if _, err := ptx.tx.ExecContext(ctx, query, amount, planID); err != nil {
		return fmt.Errorf("updating linked recurring amount: %w", err)
	}

	return nil
}

func (ptx *planTx) DeactivateTemplates(ctx context.Context, planID uuid.UUID) error {
	query := `
		UPDATE recurring_transactions
		SET is_active = FALSE, updated_at = NOW()
		WHERE installment_plan_id = $1
	`

	if _, err := ptx.tx.ExecContext(ctx, query, planID); err != nil {
		return fmt.Errorf("deactivating linked recurring: %w", err)
	}

	return nil
}

func (ptx *planTx) DeleteTemplates(ctx context.Context, planID uuid.UUID) error {
	if _, err := ptx.tx.ExecContext(ctx, `DELETE FROM recurring_transactions WHERE installment_plan_id = $1`, planID); err != nil {
		return fmt.Errorf("deleting linked recurring: %w", err)
	}

	return nil
}
