// Package alert warns once per month about every category whose spending has
// gone past its budget.
package alert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/ledger"
	"github.com/MrJamesThe3rd/finplan/internal/projection"
)

// BudgetAlert is the message published for an overspent category.
type BudgetAlert struct {
	CategoryID   uuid.UUID       `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Month        time.Time       `json:"month"`
	Budget       decimal.Decimal `json:"budget"`
	Spent        decimal.Decimal `json:"spent"`
	Overspent    decimal.Decimal `json:"overspent"`
}

//go:generate mockgen -source=alert.go -destination=repository_mock.go -package=alert
type LedgerReader interface {
	ListTransactions(ctx context.Context, filter ledger.ListFilter) ([]*ledger.Transaction, error)
	ListCategories(ctx context.Context) ([]*ledger.Category, error)
}

// Repository remembers which alerts went out, keyed by category and month.
type Repository interface {
	HasAlert(ctx context.Context, categoryID uuid.UUID, month time.Time) (bool, error)
	RecordAlert(ctx context.Context, a *BudgetAlert) error
}

type Publisher interface {
	PublishBudgetAlert(ctx context.Context, a *BudgetAlert) error
}

type Checker struct {
	ledger    LedgerReader
	repo      Repository
	publisher Publisher
}

func NewChecker(l LedgerReader, repo Repository, p Publisher) *Checker {
	return &Checker{ledger: l, repo: repo, publisher: p}
}

type CheckResult struct {
	Sent    int
	Skipped int
	Failed  int
}

// Check compares the spending of the month containing now against the
// category budgets. An alert that fails to publish is not recorded, so the
// next run retries it.
func (c *Checker) Check(ctx context.Context, now time.Time) (CheckResult, error) {
	period := projection.MonthPeriod(now)

	txs, err := c.ledger.ListTransactions(ctx, ledger.ListFilter{StartDate: &period.Start, EndDate: &period.End})
	if err != nil {
		return CheckResult{}, fmt.Errorf("listing transactions: %w", err)
	}

	categories, err := c.ledger.ListCategories(ctx)
	if err != nil {
		return CheckResult{}, fmt.Errorf("listing categories: %w", err)
	}

	budget, err := projection.Budget(projection.BudgetInput{
		Transactions: txs,
		Categories:   categories,
		Period:       period,
		Today:        now,
		Strategy:     projection.StrategyPattern,
	})
	if err != nil {
		return CheckResult{}, fmt.Errorf("projecting budget: %w", err)
	}

	var res CheckResult

	for _, row := range budget.Categories {
		if !row.Budget.IsPositive() || !row.Actual.GreaterThan(row.Budget) {
			continue
		}

		sent, err := c.repo.HasAlert(ctx, row.CategoryID, period.Start)
		if err != nil {
			slog.Error("failed to look up budget alert", "category", row.Name, "error", err)
			res.Failed++

			continue
		}

		if sent {
			res.Skipped++
			continue
		}

		a := &BudgetAlert{
			CategoryID:   row.CategoryID,
			CategoryName: row.Name,
			Month:        period.Start,
			Budget:       row.Budget,
			Spent:        row.Actual,
			Overspent:    row.Actual.Sub(row.Budget),
		}

		if err := c.publisher.PublishBudgetAlert(ctx, a); err != nil {
			slog.Error("failed to publish budget alert", "category", row.Name, "error", err)
			res.Failed++

			continue
		}

		if err := c.repo.RecordAlert(ctx, a); err != nil {
			slog.Error("failed to record budget alert", "category", row.Name, "error", err)
			res.Failed++

			continue
		}

		slog.Info("budget alert sent", "category", row.Name, "spent", a.Spent.StringFixed(2), "budget", a.Budget.StringFixed(2))
		res.Sent++
	}

	return res, nil
}
