package ledger_test

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
)

func TestService_Create(t *testing.T) {
	account := uuid.New()
	other := uuid.New()

	type testCase struct {
		name      string
		params    ledger.CreateParams
		setupMock func(m *ledger.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			params: ledger.CreateParams{
				Amount:          decimal.NewFromInt(42),
				Type:            ledger.TypeExpense,
				Description:     "Groceries",
				TransactionDate: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
				AccountID:       account,
			},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *ledger.Transaction) error {
						tx.ID = uuid.New()
						return nil
					})
			},
		},
		{
			name:    "NonPositiveAmount",
			params:  ledger.CreateParams{Amount: decimal.Zero, Type: ledger.TypeIncome, AccountID: account},
			wantErr: apperrors.ErrInvalidInput,
		},
		{
			name:    "UnknownType",
			params:  ledger.CreateParams{Amount: decimal.NewFromInt(1), Type: "refund", AccountID: account},
			wantErr: apperrors.ErrInvalidInput,
		},
		{
			name:    "TransferWithoutDestination",
			params:  ledger.CreateParams{Amount: decimal.NewFromInt(1), Type: ledger.TypeTransfer, AccountID: account},
			wantErr: apperrors.ErrInvalidInput,
		},
		{
			name: "TransferToSameAccount",
			params: ledger.CreateParams{
				Amount:              decimal.NewFromInt(1),
				Type:                ledger.TypeTransfer,
				AccountID:           account,
				TransferToAccountID: &account,
			},
			wantErr: apperrors.ErrInvalidInput,
		},
		{
			name: "Transfer",
			params: ledger.CreateParams{
				Amount:              decimal.NewFromInt(100),
				Type:                ledger.TypeTransfer,
				AccountID:           account,
				TransferToAccountID: &other,
				TransferFee:         decimal.NewFromFloat(0.5),
			},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:   "RepoError",
			params: ledger.CreateParams{Amount: decimal.NewFromInt(5), Type: ledger.TypeIncome, AccountID: account},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
			wantErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := ledger.NewService(repo)
			got, err := svc.Create(context.Background(), tt.params)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Nil(t, got)

				var appErr *apperrors.AppError
				if errors.As(tt.wantErr, &appErr) {
					assert.ErrorIs(t, err, tt.wantErr)
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.params.Description, got.Description)
			assert.True(t, tt.params.Amount.Equal(got.Amount))
		})
	}
}

func TestService_CreateCategory(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := ledger.NewMockRepository(ctrl)
	svc := ledger.NewService(repo)

	negative := decimal.NewFromInt(-10)
	_, err := svc.CreateCategory(context.Background(), ledger.CategoryParams{Name: "Food", Budget: &negative})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.CreateCategory(context.Background(), ledger.CategoryParams{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	budget := decimal.NewFromInt(300)

	repo.EXPECT().CreateCategory(gomock.Any(), gomock.Any()).Return(nil)

	c, err := svc.CreateCategory(context.Background(), ledger.CategoryParams{Name: "Food", Budget: &budget})
	require.NoError(t, err)
	assert.True(t, c.HasBudget())
}

func TestTransaction_NetEffect(t *testing.T) {
	tests := []struct {
		name string
		tx   ledger.Transaction
		want decimal.Decimal
	}{
		{name: "Income", tx: ledger.Transaction{Type: ledger.TypeIncome, Amount: decimal.NewFromInt(10)}, want: decimal.NewFromInt(10)},
		{name: "Expense", tx: ledger.Transaction{Type: ledger.TypeExpense, Amount: decimal.NewFromInt(10)}, want: decimal.NewFromInt(-10)},
		{
			name: "TransferOnlyFee",
			tx:   ledger.Transaction{Type: ledger.TypeTransfer, Amount: decimal.NewFromInt(500), TransferFee: decimal.NewFromInt(2)},
			want: decimal.NewFromInt(-2),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(tt.tx.NetEffect()), "got %s", tt.tx.NetEffect())
		})
	}
}

func TestTotalBalance(t *testing.T) {
	accounts := []*ledger.Account{
		{Balance: decimal.NewFromInt(1000)},
		{Balance: decimal.RequireFromString("250.50")},
		nil,
		{Balance: decimal.NewFromInt(-50)},
	}

	assert.Equal(t, "1200.50", ledger.TotalBalance(accounts).StringFixed(2))
	assert.True(t, ledger.TotalBalance(nil).IsZero())
}
