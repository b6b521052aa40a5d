package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/ledger"
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

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const selectTransactionColumns = `
	t.id, t.amount, t.type, t.description, t.transaction_date, t.value_date,
	t.account_id, t.category_id, t.transfer_to_account_id, t.transfer_fee,
	t.exclude_from_stats, t.recurring_id, t.created_at
`

// scanTransaction reads a transaction row in selectTransactionColumns order.
func scanTransaction(s scanner) (*ledger.Transaction, error) {
	var tx ledger.Transaction

	var typeStr string

	var valueDate sql.NullTime

	if err := s.Scan(
		&tx.ID, &tx.Amount, &typeStr, &tx.Description, &tx.TransactionDate, &valueDate,
		&tx.AccountID, &tx.CategoryID, &tx.TransferToAccountID, &tx.TransferFee,
		&tx.ExcludeFromStats, &tx.RecurringID, &tx.CreatedAt,
	); err != nil {
		return nil, err
	}

	tx.Type = ledger.Type(typeStr)

	if valueDate.Valid {
		tx.ValueDate = &valueDate.Time
	}

	return &tx, nil
}

// InsertTransaction writes tx and applies its effect on the account balances
// through e, so callers can enlist it in a wider database transaction.
func InsertTransaction(ctx context.Context, e execer, tx *ledger.Transaction) error {
	query := `
		INSERT INTO transactions (
			amount, type, description, transaction_date, value_date, account_id, category_id,
			transfer_to_account_id, transfer_fee, exclude_from_stats, recurring_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		RETURNING id, created_at
	`

	err := e.QueryRowContext(ctx, query,
		tx.Amount,
		tx.Type,
		tx.Description,
		tx.TransactionDate,
		tx.ValueDate,
		tx.AccountID,
		tx.CategoryID,
		tx.TransferToAccountID,
		tx.TransferFee,
		tx.ExcludeFromStats,
		tx.RecurringID,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	return applyBalance(ctx, e, tx, 1)
}

// applyBalance books tx on the account balances. sign is 1 when the
// transaction is created and -1 when it is removed.
func applyBalance(ctx context.Context, e execer, tx *ledger.Transaction, sign int64) error {
	s := decimal.NewFromInt(sign)

	var source decimal.Decimal

	switch tx.Type {
	case ledger.TypeIncome:
		source = tx.Amount
	case ledger.TypeExpense:
		source = tx.Amount.Neg()
	case ledger.TypeTransfer:
		source = tx.Amount.Add(tx.TransferFee).Neg()
	}

	query := `UPDATE accounts SET balance = balance + $1 WHERE id = $2`

	if _, err := e.ExecContext(ctx, query, source.Mul(s), tx.AccountID); err != nil {
		return fmt.Errorf("updating account balance: %w", err)
	}

	if tx.Type == ledger.TypeTransfer && tx.TransferToAccountID != nil {
		if _, err := e.ExecContext(ctx, query, tx.Amount.Mul(s), *tx.TransferToAccountID); err != nil {
			return fmt.Errorf("updating destination balance: %w", err)
		}
	}

	return nil
}

func (s *Store) CreateTransaction(ctx context.Context, tx *ledger.Transaction) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	if err := InsertTransaction(ctx, dbTx, tx); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.id = $1`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter ledger.ListFilter) ([]*ledger.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND t.transaction_date >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND t.transaction_date <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	if filter.CategoryID != nil {
		query += fmt.Sprintf(" AND t.category_id = $%d", argIdx)

		args = append(args, *filter.CategoryID)
		argIdx++
	}

	query += " ORDER BY t.transaction_date ASC, t.created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*ledger.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return txs, nil
}

// DeleteTransaction removes the transaction and reverts its balance effect.
func (s *Store) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.id = $1
		FOR UPDATE`

	tx, err := scanTransaction(dbTx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.ErrNotFound
		}

		return fmt.Errorf("loading transaction: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	if err := applyBalance(ctx, dbTx, tx, -1); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) CreateCategory(ctx context.Context, c *ledger.Category) error {
	query := `
		INSERT INTO categories (name, color, budget, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`

	var budget decimal.NullDecimal
	if c.Budget != nil {
		budget = decimal.NewNullDecimal(*c.Budget)
	}

	if err := s.db.QueryRowContext(ctx, query, c.Name, c.Color, budget).Scan(&c.ID, &c.CreatedAt); err != nil {
		return fmt.Errorf("creating category: %w", err)
	}

	return nil
}

func (s *Store) ListCategories(ctx context.Context) ([]*ledger.Category, error) {
	query := `SELECT id, name, color, budget, created_at FROM categories ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []*ledger.Category

	for rows.Next() {
		var c ledger.Category

		var budget decimal.NullDecimal

		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &budget, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}

		if budget.Valid {
			b := budget.Decimal
			c.Budget = &b
		}

		categories = append(categories, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}

	return categories, nil
}

func (s *Store) CreateAccount(ctx context.Context, a *ledger.Account) error {
	query := `
		INSERT INTO accounts (name, balance, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id, created_at
	`

	if err := s.db.QueryRowContext(ctx, query, a.Name, a.Balance).Scan(&a.ID, &a.CreatedAt); err != nil {
		return fmt.Errorf("creating account: %w", err)
	}

	return nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]*ledger.Account, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, balance, created_at FROM accounts ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*ledger.Account

	for rows.Next() {
		var a ledger.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Balance, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}

		accounts = append(accounts, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating accounts: %w", err)
	}

	return accounts, nil
}
