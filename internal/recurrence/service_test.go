package recurrence_test

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

	apperrors "github.com/MrJamesThe3rd/finplan/internal/errors"
	"github.com/MrJamesThe3rd/finplan/internal/ledger"
	"github.com/MrJamesThe3rd/finplan/internal/recurrence"
)

func TestService_Create(t *testing.T) {
	type testCase struct {
		name      string
		params    recurrence.CreateParams
		setupMock func(m *recurrence.MockRepository)
		wantErr   bool
	}

	valid := recurrence.CreateParams{
		Amount:      decimal.NewFromInt(30),
		Type:        ledger.TypeExpense,
		Description: "Streaming",
		Interval:    recurrence.IntervalMonthly,
		StartDate:   time.Date(2024, 5, 12, 15, 30, 0, 0, time.UTC),
		AccountID:   uuid.New(),
	}

	tests := []testCase{
		{
			name:   "Success",
			params: valid,
			setupMock: func(m *recurrence.MockRepository) {
				m.EXPECT().
					CreateTemplate(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tpl *recurrence.Template) error {
						tpl.ID = uuid.New()
						return nil
					})
			},
		},
		{
			name: "UnknownInterval",
			params: func() recurrence.CreateParams {
				p := valid
				p.Interval = "sometimes"

				return p
			}(),
			wantErr: true,
		},
		{
			name: "TransferNotAllowed",
			params: func() recurrence.CreateParams {
				p := valid
				p.Type = ledger.TypeTransfer

				return p
			}(),
			wantErr: true,
		},
		{
			name: "EndBeforeStart",
			params: func() recurrence.CreateParams {
				p := valid
				p.EndDate = new(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

				return p
			}(),
			wantErr: true,
		},
		{
			name:   "RepoError",
			params: valid,
			setupMock: func(m *recurrence.MockRepository) {
				m.EXPECT().CreateTemplate(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := recurrence.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := recurrence.NewService(repo)
			got, err := svc.Create(context.Background(), tt.params)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.True(t, got.IsActive)
			assert.Equal(t, time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC), got.NextDueDate)
			assert.Equal(t, got.StartDate, got.NextDueDate)
		})
	}
}

func TestService_Occurrences(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := recurrence.NewMockRepository(ctrl)
	svc := recurrence.NewService(repo)

	tpl := template(recurrence.IntervalMonthly, day(2024, 1, 15))

	repo.EXPECT().GetTemplate(gomock.Any(), tpl.ID).Return(&tpl, nil)

	got, err := svc.Occurrences(context.Background(), tpl.ID, day(2024, 1, 1), day(2024, 3, 31))
	require.NoError(t, err)
	assert.Len(t, got, 3)

	_, err = svc.Occurrences(context.Background(), tpl.ID, day(2024, 3, 31), day(2024, 1, 1))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	missing := uuid.New()
	repo.EXPECT().GetTemplate(gomock.Any(), missing).Return(nil, recurrence.ErrNotFound)

	_, err = svc.Occurrences(context.Background(), missing, day(2024, 1, 1), day(2024, 3, 31))
	assert.ErrorIs(t, err, apperrors.ErrTemplateNotFound)
}

func TestService_SetActive(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := recurrence.NewMockRepository(ctrl)
	svc := recurrence.NewService(repo)

	ended := template(recurrence.IntervalMonthly, day(2020, 1, 1))
	ended.IsActive = false
	ended.EndDate = new(day(2020, 12, 31))

	repo.EXPECT().GetTemplate(gomock.Any(), ended.ID).Return(&ended, nil)

	_, err := svc.SetActive(context.Background(), ended.ID, true)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	running := template(recurrence.IntervalMonthly, day(2024, 1, 1))

	repo.EXPECT().GetTemplate(gomock.Any(), running.ID).Return(&running, nil)
	repo.EXPECT().
		UpdateTemplate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tpl *recurrence.Template) error {
			assert.False(t, tpl.IsActive)
			return nil
		})

	got, err := svc.SetActive(context.Background(), running.ID, false)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestService_MonthlyTotals(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := recurrence.NewMockRepository(ctrl)
	svc := recurrence.NewService(repo)

	weekly := template(recurrence.IntervalWeekly, day(2024, 1, 1))
	weekly.Amount = decimal.NewFromInt(60)

	broken := template("hourly", day(2024, 1, 1))

	repo.EXPECT().
		ListTemplates(gomock.Any(), recurrence.ListFilter{ActiveOnly: true}).
		Return([]*recurrence.Template{&weekly, &broken}, nil)

	got, err := svc.MonthlyTotals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "260.00", got.Expense.StringFixed(2))
	assert.Equal(t, 1, got.Count)
}
