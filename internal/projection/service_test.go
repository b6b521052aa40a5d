package projection_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	apperrors "github.com/MrJamesThe3rd/finplan/internal/errors"
	"github.com/MrJamesThe3rd/finplan/internal/ledger"
	"github.com/MrJamesThe3rd/finplan/internal/projection"
	"github.com/MrJamesThe3rd/finplan/internal/recurrence"
)

type readers struct {
	ledger    *projection.MockLedgerReader
	recurring *projection.MockRecurringReader
}

func newService(t *testing.T) (*projection.Service, readers) {
	t.Helper()

	ctrl := gomock.NewController(t)
	r := readers{
		ledger:    projection.NewMockLedgerReader(ctrl),
		recurring: projection.NewMockRecurringReader(ctrl),
	}

	svc := projection.NewService(r.ledger, r.recurring).
		WithClock(func() time.Time { return time.Date(2024, 6, 15, 18, 45, 0, 0, time.UTC) })

	return svc, r
}

func (r readers) expectSnapshot(food *ledger.Category, txs []*ledger.Transaction, templates []*recurrence.Template) {
	r.ledger.EXPECT().
		ListTransactions(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, f ledger.ListFilter) ([]*ledger.Transaction, error) {
			if f.StartDate == nil || f.EndDate == nil || !f.StartDate.Equal(day(1)) || !f.EndDate.Equal(day(30)) {
				return nil, errors.New("unexpected filter")
			}

			return txs, nil
		})
	r.ledger.EXPECT().ListCategories(gomock.Any()).Return([]*ledger.Category{food}, nil)
	r.ledger.EXPECT().ListAccounts(gomock.Any()).Return([]*ledger.Account{{Name: "Main", Balance: dec("1000")}}, nil)
	r.recurring.EXPECT().
		ListTemplates(gomock.Any(), recurrence.ListFilter{ActiveOnly: true}).
		Return(templates, nil)
}

func TestService_Budget(t *testing.T) {
	svc, r := newService(t)

	food := category("Food", "200")
	r.expectSnapshot(food,
		[]*ledger.Transaction{expense(food, "150", day(10))},
		[]*recurrence.Template{monthly(food, ledger.TypeExpense, "80", day(20))},
	)

	res, err := svc.Budget(context.Background(), projection.Request{Period: june, Strategy: projection.StrategyRecurring})
	require.NoError(t, err)

	require.Len(t, res.Categories, 1)
	assert.Equal(t, "230.00", res.Categories[0].ProjectedTotal.StringFixed(2))
	assert.True(t, res.IsOverBudget)
}

func TestService_Cashflow(t *testing.T) {
	svc, r := newService(t)

	food := category("Food", "")
	r.expectSnapshot(food,
		[]*ledger.Transaction{expense(food, "100", day(3))},
		[]*recurrence.Template{monthly(food, ledger.TypeExpense, "80", day(20))},
	)

	res, err := svc.Cashflow(context.Background(), projection.Request{Period: june, Strategy: projection.StrategyRecurring})
	require.NoError(t, err)

	assert.Equal(t, "1100.00", res.OpeningBalance.StringFixed(2))
	assert.Equal(t, "920.00", res.ClosingBalance.StringFixed(2))
}

func TestService_CashflowPastMonth(t *testing.T) {
	svc, r := newService(t)

	may := projection.MonthPeriod(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))

	r.ledger.EXPECT().
		ListTransactions(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, f ledger.ListFilter) ([]*ledger.Transaction, error) {
			assert.Equal(t, may.Start, *f.StartDate)
			assert.Equal(t, day(15), *f.EndDate)

			return []*ledger.Transaction{
				expense(nil, "100", time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)),
				expense(nil, "30", day(2)),
			}, nil
		})
	r.ledger.EXPECT().ListCategories(gomock.Any()).Return(nil, nil)
	r.ledger.EXPECT().ListAccounts(gomock.Any()).Return([]*ledger.Account{{Name: "Main", Balance: dec("1000")}}, nil)
	r.recurring.EXPECT().ListTemplates(gomock.Any(), gomock.Any()).Return(nil, nil)

	res, err := svc.Cashflow(context.Background(), projection.Request{Period: may, Strategy: projection.StrategyRecurring})
	require.NoError(t, err)

	assert.Equal(t, "1130.00", res.OpeningBalance.StringFixed(2))
	assert.Equal(t, "1030.00", res.ClosingBalance.StringFixed(2))
}

func TestService_Summary(t *testing.T) {
	svc, r := newService(t)

	food := category("Food", "200")
	r.expectSnapshot(food, []*ledger.Transaction{expense(food, "50", day(2))}, nil)

	s, err := svc.Summary(context.Background(), june)
	require.NoError(t, err)

	assert.Equal(t, "150.00", s.RemainingBudget.StringFixed(2))
	assert.Equal(t, "10.00", s.DailyBudgetRecommended.StringFixed(2))
}

func TestService_Errors(t *testing.T) {
	t.Run("UnknownStrategy", func(t *testing.T) {
		svc, _ := newService(t)

		_, err := svc.Budget(context.Background(), projection.Request{Period: june, Strategy: "guess"})
		assert.ErrorIs(t, err, apperrors.ErrUnknownStrategy)
	})

	t.Run("InvalidPeriod", func(t *testing.T) {
		svc, _ := newService(t)

		_, err := svc.Cashflow(context.Background(), projection.Request{
			Period:   projection.Period{Start: day(20), End: day(2)},
			Strategy: projection.StrategyPattern,
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("ReaderFails", func(t *testing.T) {
		svc, r := newService(t)

		boom := errors.New("connection reset")

		r.ledger.EXPECT().ListTransactions(gomock.Any(), gomock.Any()).Return(nil, boom)
		r.ledger.EXPECT().ListCategories(gomock.Any()).Return(nil, nil).AnyTimes()
		r.ledger.EXPECT().ListAccounts(gomock.Any()).Return(nil, nil).AnyTimes()
		r.recurring.EXPECT().ListTemplates(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

		_, err := svc.Budget(context.Background(), projection.Request{Period: june, Strategy: projection.StrategyPattern})
		assert.ErrorIs(t, err, boom)
	})
}
