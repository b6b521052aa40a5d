package projection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finplan/internal/ledger"
	"github.com/MrJamesThe3rd/finplan/internal/projection"
	"github.com/MrJamesThe3rd/finplan/internal/recurrence"
)

func TestSummarize(t *testing.T) {
	food := category("Food", "200")
	fun := category("Fun", "100")

	tests := []struct {
		name       string
		categories []*ledger.Category
		extra      *ledger.Transaction
		check      func(t *testing.T, s *projection.Summary)
	}{
		{
			name:       "within budget",
			categories: []*ledger.Category{food, fun},
			check: func(t *testing.T, s *projection.Summary) {
				assert.Equal(t, "2000.00", s.Income.StringFixed(2))
				assert.Equal(t, "180.00", s.Expenses.StringFixed(2))
				assert.Equal(t, "2500.00", s.ProjectedIncome.StringFixed(2))
				assert.Equal(t, "260.00", s.ProjectedExpenses.StringFixed(2))
				assert.Equal(t, "2240.00", s.ProjectedNet.StringFixed(2))
				assert.Equal(t, "300.00", s.TotalBudget.StringFixed(2))
				assert.Equal(t, "120.00", s.RemainingBudget.StringFixed(2))
				// (120 - 80 still due) over 15 days.
				assert.Equal(t, "2.67", s.DailyBudgetRecommended.StringFixed(2))
				assert.Equal(t, 15, s.DaysRemaining)
				assert.Equal(t, 2, s.FutureOccurrences)
				assert.False(t, s.IsOverBudget)
				assert.True(t, s.OverageAmount.IsZero())
			},
		},
		{
			name:       "over budget",
			categories: []*ledger.Category{food, fun},
			extra:      expense(fun, "100", day(14)),
			check: func(t *testing.T, s *projection.Summary) {
				assert.Equal(t, "360.00", s.ProjectedExpenses.StringFixed(2))
				assert.True(t, s.IsOverBudget)
				assert.Equal(t, "60.00", s.OverageAmount.StringFixed(2))
				assert.True(t, s.DailyBudgetRecommended.IsNegative())
			},
		},
		{
			name: "no budget",
			check: func(t *testing.T, s *projection.Summary) {
				assert.True(t, s.TotalBudget.IsZero())
				assert.False(t, s.IsOverBudget)
				assert.True(t, s.OverageAmount.IsZero())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs := []*ledger.Transaction{
				{Type: ledger.TypeIncome, Amount: dec("2000"), TransactionDate: day(1)},
				expense(food, "150", day(10)),
				expense(fun, "30", day(12)),
			}
			if tt.extra != nil {
				txs = append(txs, tt.extra)
			}

			s, err := projection.Summarize(projection.BudgetInput{
				Transactions: txs,
				Recurring: []*recurrence.Template{
					monthly(food, ledger.TypeExpense, "80", day(20)),
					monthly(nil, ledger.TypeIncome, "500", day(25)),
				},
				Categories: tt.categories,
				Period:     june,
				Today:      day(15),
			})
			require.NoError(t, err)

			tt.check(t, s)
		})
	}
}

func TestSummarize_LastDay(t *testing.T) {
	s, err := projection.Summarize(projection.BudgetInput{
		Categories: []*ledger.Category{category("Food", "200")},
		Period:     june,
		Today:      day(30),
	})
	require.NoError(t, err)

	assert.Equal(t, 0, s.DaysRemaining)
	assert.True(t, s.DailyBudgetRecommended.IsZero())
	assert.Equal(t, "200.00", s.RemainingBudget.StringFixed(2))
}
