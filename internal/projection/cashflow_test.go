package projection_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/MrJamesThe3rd/finplan/internal/errors"
	"github.com/MrJamesThe3rd/finplan/internal/ledger"
	"github.com/MrJamesThe3rd/finplan/internal/projection"
	"github.com/MrJamesThe3rd/finplan/internal/recurrence"
)

func cashflowFixture() ([]*ledger.Account, []*ledger.Transaction) {
	checking := &ledger.Account{ID: uuid.New(), Name: "Checking", Balance: dec("700")}
	savings := &ledger.Account{ID: uuid.New(), Name: "Savings", Balance: dec("300")}

	txs := []*ledger.Transaction{
		{Type: ledger.TypeIncome, Amount: dec("500"), TransactionDate: day(1)},
		expense(nil, "100", day(5)),
		{Type: ledger.TypeTransfer, Amount: dec("200"), TransferFee: dec("2"), TransactionDate: day(10), AccountID: checking.ID, TransferToAccountID: &savings.ID},
	}

	return []*ledger.Account{checking, savings}, txs
}

func pointOn(t *testing.T, res *projection.CashflowResult, d time.Time) projection.CashflowPoint {
	t.Helper()

	for _, p := range res.Points {
		if p.Date.Equal(d) {
			return p
		}
	}

	t.Fatalf("no point on %s", d.Format(time.DateOnly))

	return projection.CashflowPoint{}
}

func TestCashflow_Recurring(t *testing.T) {
	accounts, txs := cashflowFixture()

	res, err := projection.Cashflow(projection.CashflowInput{
		Transactions: txs,
		Recurring:    []*recurrence.Template{monthly(nil, ledger.TypeExpense, "50", day(20))},
		Accounts:     accounts,
		Period:       june,
		Today:        day(10),
		Strategy:     projection.StrategyRecurring,
	})
	require.NoError(t, err)

	// 1000 now, minus 500 - 100 - 2 booked this month.
	assert.Equal(t, "602.00", res.OpeningBalance.StringFixed(2))
	require.Len(t, res.Points, 30)

	assert.Equal(t, "1102.00", pointOn(t, res, day(1)).Balance.StringFixed(2))
	assert.Equal(t, "1002.00", pointOn(t, res, day(5)).Balance.StringFixed(2))

	today := pointOn(t, res, day(10))
	assert.Equal(t, "1000.00", today.Balance.StringFixed(2))
	require.NotNil(t, today.Actual)
	require.NotNil(t, today.Projected)
	assert.True(t, today.Actual.Equal(*today.Projected))

	payday := pointOn(t, res, day(20))
	assert.Equal(t, "50.00", payday.Expense.StringFixed(2))
	assert.Equal(t, "950.00", payday.Balance.StringFixed(2))
	assert.Nil(t, payday.Actual)

	assert.Equal(t, "950.00", res.ClosingBalance.StringFixed(2))
}

func TestCashflow_Continuity(t *testing.T) {
	accounts, txs := cashflowFixture()

	res, err := projection.Cashflow(projection.CashflowInput{
		Transactions: txs,
		Recurring: []*recurrence.Template{
			monthly(nil, ledger.TypeExpense, "50", day(20)),
			monthly(nil, ledger.TypeIncome, "1200", day(25)),
		},
		Accounts: accounts,
		Period:   june,
		Today:    day(10),
		Strategy: projection.StrategyRecurring,
	})
	require.NoError(t, err)

	prev := res.OpeningBalance
	for i, p := range res.Points {
		want := prev.Add(p.Income).Sub(p.Expense)
		if p.Date.Equal(day(10)) {
			want = want.Sub(dec("2"))
		}

		assert.True(t, want.Equal(p.Balance), "point %d: want %s, got %s", i, want, p.Balance)
		assert.Equal(t, p.Date.After(day(10)), p.Actual == nil, "point %d", i)
		assert.Equal(t, p.Date.Before(day(10)), p.Projected == nil, "point %d", i)

		prev = p.Balance
	}

	assert.True(t, prev.Equal(res.ClosingBalance))
	assert.Equal(t, "2150.00", res.ClosingBalance.StringFixed(2))
}

func TestCashflow_Pattern(t *testing.T) {
	accounts, txs := cashflowFixture()

	res, err := projection.Cashflow(projection.CashflowInput{
		Transactions: txs,
		Accounts:     accounts,
		Period:       june,
		Today:        day(10),
		Strategy:     projection.StrategyPattern,
	})
	require.NoError(t, err)

	// 398 over 10 days repeats for the 20 days left.
	assert.Equal(t, "39.80", pointOn(t, res, day(11)).Balance.Sub(dec("1000")).StringFixed(2))
	assert.Equal(t, "1796.00", res.ClosingBalance.StringFixed(2))
}

func TestCashflow_NoAccounts(t *testing.T) {
	res, err := projection.Cashflow(projection.CashflowInput{
		Recurring: []*recurrence.Template{},
		Period:    june,
		Today:     day(15),
		Strategy:  projection.StrategyRecurring,
	})
	require.NoError(t, err)

	assert.True(t, res.OpeningBalance.IsZero())
	assert.True(t, res.ClosingBalance.IsZero())
	assert.Len(t, res.Points, 30)
}

func TestCashflow_FuturePeriod(t *testing.T) {
	accounts, _ := cashflowFixture()

	res, err := projection.Cashflow(projection.CashflowInput{
		Recurring: []*recurrence.Template{monthly(nil, ledger.TypeExpense, "50", day(20))},
		Accounts:  accounts,
		Period:    june,
		Today:     time.Date(2024, 5, 28, 0, 0, 0, 0, time.UTC),
		Strategy:  projection.StrategyRecurring,
	})
	require.NoError(t, err)

	assert.Equal(t, "1000.00", res.OpeningBalance.StringFixed(2))
	assert.Equal(t, "950.00", res.ClosingBalance.StringFixed(2))

	for _, p := range res.Points {
		assert.Nil(t, p.Actual)
		assert.NotNil(t, p.Projected)
	}
}

func TestCashflow_PastPeriod(t *testing.T) {
	july := func(d int) time.Time { return time.Date(2024, 7, d, 0, 0, 0, 0, time.UTC) }

	accounts := []*ledger.Account{{ID: uuid.New(), Name: "Checking", Balance: dec("1000")}}
	txs := []*ledger.Transaction{
		expense(nil, "100", day(5)),
		{Type: ledger.TypeIncome, Amount: dec("500"), TransactionDate: july(3)},
	}

	for _, strategy := range []projection.Strategy{projection.StrategyRecurring, projection.StrategyPattern} {
		t.Run(string(strategy), func(t *testing.T) {
			res, err := projection.Cashflow(projection.CashflowInput{
				Transactions: txs,
				Recurring:    []*recurrence.Template{},
				Accounts:     accounts,
				Period:       june,
				Today:        july(10),
				Strategy:     strategy,
			})
			require.NoError(t, err)

			// 1000 today, minus the July income and plus the June expense.
			assert.Equal(t, "600.00", res.OpeningBalance.StringFixed(2))
			assert.Equal(t, "500.00", res.ClosingBalance.StringFixed(2))
			assert.Equal(t, "0.00", pointOn(t, res, day(30)).Income.StringFixed(2))

			for _, p := range res.Points {
				assert.NotNil(t, p.Actual)
			}
		})
	}
}

func TestCashflow_FuturePeriodGap(t *testing.T) {
	accounts, _ := cashflowFixture()
	rent := monthly(nil, ledger.TypeExpense, "50", time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC))

	res, err := projection.Cashflow(projection.CashflowInput{
		Recurring: []*recurrence.Template{rent},
		Accounts:  accounts,
		Period:    june,
		Today:     time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		Strategy:  projection.StrategyRecurring,
	})
	require.NoError(t, err)

	// May 20 falls between today and the period start.
	assert.Equal(t, "950.00", res.OpeningBalance.StringFixed(2))
	assert.Equal(t, "900.00", res.ClosingBalance.StringFixed(2))
}

func TestCashflow_RecurringNeedsSchedule(t *testing.T) {
	accounts, txs := cashflowFixture()

	_, err := projection.Cashflow(projection.CashflowInput{
		Transactions: txs,
		Accounts:     accounts,
		Period:       june,
		Today:        day(10),
		Strategy:     projection.StrategyRecurring,
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCashflow_UnknownStrategy(t *testing.T) {
	_, err := projection.Cashflow(projection.CashflowInput{Period: june, Today: day(1), Strategy: ""})
	assert.Error(t, err)
}
