package projection

import (
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/ledger"
)

// Summary condenses a period into the figures shown on the dashboard.
type Summary struct {
	Period                 Period
	Income                 decimal.Decimal
	Expenses               decimal.Decimal
	ProjectedIncome        decimal.Decimal
	ProjectedExpenses      decimal.Decimal
	ProjectedNet           decimal.Decimal
	TotalBudget            decimal.Decimal
	RemainingBudget        decimal.Decimal
	DailyBudgetRecommended decimal.Decimal
	DaysRemaining          int
	FutureOccurrences      int
	IsOverBudget           bool
	OverageAmount          decimal.Decimal
	Warnings               []string
}

// Summarize totals the counted income and expenses booked so far and adds the
// recurring occurrences still due in the period. The strategy of in is not used.
func Summarize(in BudgetInput) (*Summary, error) {
	if err := in.Period.validate(); err != nil {
		return nil, err
	}

	s := splitPeriod(in.Period, in.Today)

	sum := &Summary{
		Period:        Period{Start: s.start, End: s.end},
		DaysRemaining: s.remaining,
		TotalBudget:   decimal.Zero,
		Income:        decimal.Zero,
		Expenses:      decimal.Zero,
	}

	for _, tx := range in.Transactions {
		if tx == nil || !tx.Counts() || !s.isActual(tx.TransactionDate) {
			continue
		}

		switch tx.Type {
		case ledger.TypeIncome:
			sum.Income = sum.Income.Add(tx.Amount)
		case ledger.TypeExpense:
			sum.Expenses = sum.Expenses.Add(tx.Amount)
		}
	}

	futureIncome, futureExpenses := decimal.Zero, decimal.Zero

	occ, warnings := upcoming(in.Recurring, s)
	sum.Warnings = warnings

	for _, o := range occ {
		switch o.Type {
		case ledger.TypeIncome:
			futureIncome = futureIncome.Add(o.Amount)
		case ledger.TypeExpense:
			futureExpenses = futureExpenses.Add(o.Amount)
		}
	}

	sum.FutureOccurrences = len(occ)
	sum.ProjectedIncome = sum.Income.Add(futureIncome)
	sum.ProjectedExpenses = sum.Expenses.Add(futureExpenses)
	sum.ProjectedNet = sum.ProjectedIncome.Sub(sum.ProjectedExpenses)

	for _, c := range in.Categories {
		if c != nil && c.HasBudget() {
			sum.TotalBudget = sum.TotalBudget.Add(c.BudgetAmount())
		}
	}

	sum.RemainingBudget = sum.TotalBudget.Sub(sum.Expenses)

	if s.remaining > 0 {
		sum.DailyBudgetRecommended = sum.RemainingBudget.Sub(futureExpenses).Div(decimal.NewFromInt(int64(s.remaining)))
	}

	sum.IsOverBudget = sum.TotalBudget.IsPositive() && sum.ProjectedExpenses.GreaterThan(sum.TotalBudget)
	sum.OverageAmount = decimal.Max(decimal.Zero, sum.ProjectedExpenses.Sub(sum.TotalBudget))

	if !sum.TotalBudget.IsPositive() {
		sum.OverageAmount = decimal.Zero
	}

	return sum, nil
}
