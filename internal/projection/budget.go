package projection

import (
	"cmp"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/ledger"
	"github.com/MrJamesThe3rd/finplan/internal/recurrence"
)

var (
	hundred        = decimal.NewFromInt(100)
	nearLimitRatio = decimal.NewFromInt(90)
)

// BudgetInput is the snapshot a budget projection works on. Recurring may be
// nil only with the pattern strategy.
type BudgetInput struct {
	Transactions []*ledger.Transaction
	Recurring    []*recurrence.Template
	Categories   []*ledger.Category
	Period       Period
	Today        time.Time
	Strategy     Strategy
}

// CategoryProjection is the forecast of one category for the period.
type CategoryProjection struct {
	CategoryID     uuid.UUID
	Name           string
	Color          string
	Budget         decimal.Decimal
	Actual         decimal.Decimal
	Projected      decimal.Decimal // Forecast for the rest of the period
	ProjectedTotal decimal.Decimal
	Percentage     decimal.Decimal // Of the budget; zero without a budget
	IsOverBudget   bool
	IsNearLimit    bool
}

type BudgetResult struct {
	Strategy       Strategy
	Period         Period
	Categories     []CategoryProjection
	TotalBudget    decimal.Decimal
	TotalActual    decimal.Decimal
	TotalProjected decimal.Decimal
	IsOverBudget   bool
	OverageAmount  decimal.Decimal
	Warnings       []string
}

// Budget projects the expense of every category to the end of the period.
func Budget(in BudgetInput) (*BudgetResult, error) {
	if err := in.Strategy.validateInput(in.Recurring); err != nil {
		return nil, err
	}

	if err := in.Period.validate(); err != nil {
		return nil, err
	}

	s := splitPeriod(in.Period, in.Today)

	res := &BudgetResult{
		Strategy:       in.Strategy,
		Period:         Period{Start: s.start, End: s.end},
		Categories:     []CategoryProjection{},
		TotalBudget:    decimal.Zero,
		TotalActual:    decimal.Zero,
		TotalProjected: decimal.Zero,
		OverageAmount:  decimal.Zero,
	}

	actual := actualExpenses(in.Transactions, s)

	var upcoming map[uuid.UUID]decimal.Decimal

	if in.Strategy == StrategyRecurring {
		var warnings []string

		upcoming, warnings = upcomingExpenses(in.Recurring, s)
		res.Warnings = append(res.Warnings, warnings...)
	}

	for _, c := range in.Categories {
		if c == nil {
			continue
		}

		row := CategoryProjection{
			CategoryID: c.ID,
			Name:       c.Name,
			Color:      c.Color,
			Budget:     c.BudgetAmount(),
			Actual:     actual[c.ID],
			Percentage: decimal.Zero,
		}

		switch in.Strategy {
		case StrategyRecurring:
			row.Projected = upcoming[c.ID]
		case StrategyPattern:
			row.Projected = ratio(row.Actual, s.elapsed, s.remaining)
		}

		row.ProjectedTotal = row.Actual.Add(row.Projected)

		if row.Budget.IsPositive() {
			row.Percentage = row.ProjectedTotal.Div(row.Budget).Mul(hundred)
			row.IsOverBudget = row.Percentage.GreaterThan(hundred)
			row.IsNearLimit = !row.IsOverBudget && row.Percentage.GreaterThanOrEqual(nearLimitRatio)

			res.TotalBudget = res.TotalBudget.Add(row.Budget)
		}

		res.TotalActual = res.TotalActual.Add(row.Actual)
		res.TotalProjected = res.TotalProjected.Add(row.ProjectedTotal)
		res.Categories = append(res.Categories, row)
	}

	slices.SortStableFunc(res.Categories, func(a, b CategoryProjection) int {
		if c := b.ProjectedTotal.Cmp(a.ProjectedTotal); c != 0 {
			return c
		}

		return cmp.Compare(a.Name, b.Name)
	})

	res.IsOverBudget = res.TotalProjected.GreaterThan(res.TotalBudget)
	res.OverageAmount = decimal.Max(decimal.Zero, res.TotalProjected.Sub(res.TotalBudget))

	return res, nil
}

// actualExpenses sums the counted expenses booked in [start, today] per category.
func actualExpenses(txs []*ledger.Transaction, s split) map[uuid.UUID]decimal.Decimal {
	out := make(map[uuid.UUID]decimal.Decimal)

	for _, tx := range txs {
		if tx == nil || tx.Type != ledger.TypeExpense || !tx.Counts() || tx.CategoryID == nil {
			continue
		}

		if !s.isActual(tx.TransactionDate) {
			continue
		}

		out[*tx.CategoryID] = out[*tx.CategoryID].Add(tx.Amount)
	}

	return out
}

// upcoming expands the templates over (today, end].
func upcoming(templates []*recurrence.Template, s split) ([]recurrence.Occurrence, []string) {
	if !s.hasFuture() || len(templates) == 0 {
		return nil, nil
	}

	occ, err := recurrence.ExpandAll(templates, s.futureStart(), s.end)
	if err != nil {
		slog.Warn("projection uses partial recurring schedule", "error", err)
		return occ, []string{err.Error()}
	}

	return occ, nil
}

// upcomingExpenses sums the expense occurrences over (today, end] per category.
func upcomingExpenses(templates []*recurrence.Template, s split) (map[uuid.UUID]decimal.Decimal, []string) {
	occ, warnings := upcoming(templates, s)

	out := make(map[uuid.UUID]decimal.Decimal)

	for _, o := range occ {
		if o.Type != ledger.TypeExpense || o.CategoryID == nil {
			continue
		}

		out[*o.CategoryID] = out[*o.CategoryID].Add(o.Amount)
	}

	return out, warnings
}
