package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/MrJamesThe3rd/finplan/internal/errors"
	"github.com/MrJamesThe3rd/finplan/internal/importer/cgd"
	"github.com/MrJamesThe3rd/finplan/internal/ledger"
)

type Service struct {
	ledger  Ledger
	rules   Rules
	parsers map[Bank]Parser
}

// NewService builds an importer. rules may be nil, in which case rows keep
// the bank's descriptions.
func NewService(l Ledger, rules Rules) *Service {
	return &Service{
		ledger: l,
		rules:  rules,
		parsers: map[Bank]Parser{
			BankCGD: cgd.NewParser(),
		},
	}
}

type ImportParams struct {
	Bank      Bank
	AccountID uuid.UUID
	DryRun    bool
}

// Import parses a statement and books every row into the account. A row
// matching an existing transaction of the account on date, type and amount
// is reported as a duplicate instead, each existing transaction absorbing at
// most one row. Rows that are booked first go through the description rules.
func (s *Service) Import(ctx context.Context, params ImportParams, r io.Reader) (*Result, error) {
	parser, ok := s.parsers[params.Bank]
	if !ok {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("unknown bank %q", params.Bank))
	}

	if params.AccountID == uuid.Nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account is required")
	}

	rows, err := parser.Parse(r)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid statement: "+err.Error())
	}

	res := &Result{}
	if len(rows) == 0 {
		return res, nil
	}

	existing, err := s.existing(ctx, params.AccountID, rows)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		row.AccountID = params.AccountID

		key := dedupeKey(row.TransactionDate, row.Type, row.Amount.String())
		if existing[key] > 0 {
			existing[key]--
			res.Duplicates = append(res.Duplicates, row)

			continue
		}

		s.applyRules(ctx, &row)

		if params.DryRun {
			res.Pending = append(res.Pending, row)
			continue
		}

		tx, err := s.ledger.Create(ctx, row)
		if err != nil {
			return nil, fmt.Errorf("import %q on %s: %w", row.Description, row.TransactionDate.Format(time.DateOnly), err)
		}

		res.Imported = append(res.Imported, tx)
	}

	slog.InfoContext(ctx, "statement imported",
		"bank", params.Bank,
		"imported", len(res.Imported),
		"pending", len(res.Pending),
		"duplicates", len(res.Duplicates))

	return res, nil
}

// applyRules rewrites the row's description and fills in its category from
// the best matching rule. A failed lookup leaves the row untouched.
func (s *Service) applyRules(ctx context.Context, row *ledger.CreateParams) {
	if s.rules == nil {
		return
	}

	rule, err := s.rules.Suggest(ctx, row.Description)
	if err != nil {
		slog.WarnContext(ctx, "description rule lookup failed", "description", row.Description, "error", err)
		return
	}

	if rule == nil {
		return
	}

	if rule.Description != "" {
		row.Description = rule.Description
	}

	if row.CategoryID == nil && rule.CategoryID != nil {
		row.CategoryID = rule.CategoryID
	}
}

// existing counts the account's transactions in the statement's date range
// by dedupe key.
func (s *Service) existing(ctx context.Context, accountID uuid.UUID, rows []ledger.CreateParams) (map[string]int, error) {
	minDate, maxDate := rows[0].TransactionDate, rows[0].TransactionDate
	for _, row := range rows[1:] {
		if row.TransactionDate.Before(minDate) {
			minDate = row.TransactionDate
		}

		if row.TransactionDate.After(maxDate) {
			maxDate = row.TransactionDate
		}
	}

	txs, err := s.ledger.List(ctx, ledger.ListFilter{StartDate: &minDate, EndDate: &maxDate})
	if err != nil {
		return nil, fmt.Errorf("list existing transactions: %w", err)
	}

	counts := make(map[string]int)

	for _, tx := range txs {
		if tx.AccountID != accountID {
			continue
		}

		counts[dedupeKey(tx.TransactionDate, tx.Type, tx.Amount.String())]++
	}

	return counts, nil
}

func dedupeKey(date time.Time, typ ledger.Type, amount string) string {
	return date.Format(time.DateOnly) + "|" + string(typ) + "|" + amount
}
