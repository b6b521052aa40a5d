package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/finplan/internal/installment"
	"github.com/MrJamesThe3rd/finplan/internal/ledger"
	"github.com/MrJamesThe3rd/finplan/internal/recurrence"
	"github.com/MrJamesThe3rd/finplan/internal/scheduler"
)

func date(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC)
}

func template(interval recurrence.Interval, amount int64, next time.Time) *recurrence.Template {
	return &recurrence.Template{
		ID:          uuid.New(),
		Amount:      decimal.NewFromInt(amount),
		Type:        ledger.TypeExpense,
		Description: "Rent",
		Interval:    interval,
		StartDate:   next,
		NextDueDate: next,
		IsActive:    true,
		AccountID:   uuid.New(),
	}
}

type mocks struct {
	repo *scheduler.MockRepository
	tx   *scheduler.MockTx
}

func setup(t *testing.T, due ...*recurrence.Template) (*scheduler.Processor, mocks) {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := mocks{repo: scheduler.NewMockRepository(ctrl), tx: scheduler.NewMockTx(ctrl)}

	m.repo.EXPECT().
		ListTemplates(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, f recurrence.ListFilter) ([]*recurrence.Template, error) {
			if !f.ActiveOnly || f.DueOnOrBefore == nil {
				return nil, errors.New("unexpected filter")
			}

			return due, nil
		})
	m.repo.EXPECT().Begin(gomock.Any()).Return(m.tx, nil).AnyTimes()
	m.tx.EXPECT().Rollback().Return(nil).AnyTimes()

	return scheduler.NewProcessor(m.repo), m
}

func TestProcessDue_Single(t *testing.T) {
	tpl := template(recurrence.IntervalMonthly, 900, date(6, 1))
	p, m := setup(t, tpl)

	m.tx.EXPECT().
		InsertTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *ledger.Transaction) error {
			assert.Equal(t, "Rent (recurring)", tx.Description)
			assert.True(t, tx.Amount.Equal(decimal.NewFromInt(900)))
			assert.Equal(t, date(6, 1), tx.TransactionDate)
			assert.Equal(t, tpl.AccountID, tx.AccountID)
			require.NotNil(t, tx.RecurringID)
			assert.Equal(t, tpl.ID, *tx.RecurringID)

			return nil
		})
	m.tx.EXPECT().
		UpdateTemplate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, next *recurrence.Template) error {
			assert.Equal(t, date(7, 1), next.NextDueDate)
			assert.True(t, next.IsActive)

			return nil
		})
	m.tx.EXPECT().Commit().Return(nil)

	res, err := p.ProcessDue(context.Background(), time.Date(2024, 6, 15, 7, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, scheduler.ProcessResult{Processed: 1}, res)
}

func TestProcessDue_CatchesUp(t *testing.T) {
	tpl := template(recurrence.IntervalWeekly, 20, date(6, 1))
	p, m := setup(t, tpl)

	var booked []time.Time

	m.tx.EXPECT().
		InsertTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *ledger.Transaction) error {
			booked = append(booked, tx.TransactionDate)
			return nil
		}).
		Times(3)
	m.tx.EXPECT().UpdateTemplate(gomock.Any(), gomock.Any()).Return(nil).Times(3)
	m.tx.EXPECT().Commit().Return(nil).Times(3)

	res, err := p.ProcessDue(context.Background(), date(6, 15))
	require.NoError(t, err)

	assert.Equal(t, 3, res.Processed)
	assert.Equal(t, []time.Time{date(6, 1), date(6, 8), date(6, 15)}, booked)
	assert.Equal(t, date(6, 22), tpl.NextDueDate)
}

func TestProcessDue_EndDate(t *testing.T) {
	t.Run("Expired", func(t *testing.T) {
		tpl := template(recurrence.IntervalMonthly, 50, date(5, 1))
		tpl.EndDate = new(date(5, 31))

		p, m := setup(t, tpl)

		m.tx.EXPECT().
			UpdateTemplate(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, next *recurrence.Template) error {
				assert.False(t, next.IsActive)
				assert.Equal(t, date(5, 1), next.NextDueDate)

				return nil
			})
		m.tx.EXPECT().Commit().Return(nil)

		res, err := p.ProcessDue(context.Background(), date(6, 15))
		require.NoError(t, err)
		assert.Equal(t, scheduler.ProcessResult{Deactivated: 1}, res)
	})

	t.Run("LastOccurrence", func(t *testing.T) {
		tpl := template(recurrence.IntervalMonthly, 50, date(6, 1))
		tpl.EndDate = new(date(6, 20))

		p, m := setup(t, tpl)

		m.tx.EXPECT().InsertTransaction(gomock.Any(), gomock.Any()).Return(nil)
		m.tx.EXPECT().
			UpdateTemplate(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, next *recurrence.Template) error {
				assert.False(t, next.IsActive)
				assert.Equal(t, date(7, 1), next.NextDueDate)

				return nil
			})
		m.tx.EXPECT().Commit().Return(nil)

		res, err := p.ProcessDue(context.Background(), date(6, 15))
		require.NoError(t, err)
		assert.Equal(t, scheduler.ProcessResult{Processed: 1, Deactivated: 1}, res)
	})
}

func TestProcessDue_Installment(t *testing.T) {
	plan := &installment.Plan{
		ID:                uuid.New(),
		TotalAmount:       decimal.NewFromInt(300),
		RemainingAmount:   decimal.NewFromInt(60),
		InstallmentAmount: decimal.NewFromInt(100),
		Frequency:         installment.FrequencyMonthly,
		StartDate:         date(4, 1),
		NextPaymentDate:   date(6, 1),
		IsActive:          true,
	}

	tpl := template(recurrence.IntervalMonthly, 100, date(6, 1))
	tpl.InstallmentPlanID = &plan.ID

	p, m := setup(t, tpl)

	entryID := uuid.New()

	m.tx.EXPECT().LockPlan(gomock.Any(), plan.ID).Return(plan, nil)
	m.tx.EXPECT().
		InsertTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *ledger.Transaction) error {
			assert.Equal(t, "60", tx.Amount.String())
			tx.ID = entryID

			return nil
		})
	m.tx.EXPECT().
		SavePlan(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, saved *installment.Plan) error {
			assert.True(t, saved.RemainingAmount.IsZero())
			assert.False(t, saved.IsActive)
			assert.Equal(t, date(7, 1), saved.NextPaymentDate)

			return nil
		})
	m.tx.EXPECT().
		InsertPayment(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rec *installment.PaymentRecord) error {
			assert.Equal(t, plan.ID, rec.PlanID)
			assert.Equal(t, "60", rec.Amount.String())
			require.NotNil(t, rec.TransactionID)
			assert.Equal(t, entryID, *rec.TransactionID)

			return nil
		})
	m.tx.EXPECT().
		UpdateTemplate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, next *recurrence.Template) error {
			assert.False(t, next.IsActive)
			return nil
		})
	m.tx.EXPECT().Commit().Return(nil)

	res, err := p.ProcessDue(context.Background(), date(6, 15))
	require.NoError(t, err)
	assert.Equal(t, scheduler.ProcessResult{Processed: 1, Deactivated: 1}, res)
}

func TestProcessDue_SettledPlan(t *testing.T) {
	plan := &installment.Plan{ID: uuid.New(), RemainingAmount: decimal.Zero, IsActive: false}

	tpl := template(recurrence.IntervalMonthly, 100, date(6, 1))
	tpl.InstallmentPlanID = &plan.ID

	p, m := setup(t, tpl)

	m.tx.EXPECT().LockPlan(gomock.Any(), plan.ID).Return(plan, nil)
	m.tx.EXPECT().UpdateTemplate(gomock.Any(), gomock.Any()).Return(nil)
	m.tx.EXPECT().Commit().Return(nil)

	res, err := p.ProcessDue(context.Background(), date(6, 15))
	require.NoError(t, err)
	assert.Equal(t, scheduler.ProcessResult{Deactivated: 1}, res)
}

func TestProcessDue_FailureDoesNotStopBatch(t *testing.T) {
	broken := template(recurrence.IntervalMonthly, 10, date(6, 2))
	fine := template(recurrence.IntervalMonthly, 20, date(6, 3))

	p, m := setup(t, broken, fine)

	gomock.InOrder(
		m.tx.EXPECT().InsertTransaction(gomock.Any(), gomock.Any()).Return(errors.New("account missing")),
		m.tx.EXPECT().InsertTransaction(gomock.Any(), gomock.Any()).Return(nil),
	)
	m.tx.EXPECT().UpdateTemplate(gomock.Any(), gomock.Any()).Return(nil)
	m.tx.EXPECT().Commit().Return(nil)

	res, err := p.ProcessDue(context.Background(), date(6, 15))
	require.NoError(t, err)
	assert.Equal(t, scheduler.ProcessResult{Processed: 1, Failed: 1}, res)
	assert.Equal(t, date(6, 2), broken.NextDueDate)
}

func TestProcessDue_ListFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := scheduler.NewMockRepository(ctrl)
	repo.EXPECT().ListTemplates(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

	_, err := scheduler.NewProcessor(repo).ProcessDue(context.Background(), date(6, 15))
	assert.Error(t, err)
}
