package debt_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finplan/internal/debt"
	"github.com/MrJamesThe3rd/finplan/internal/loan"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func owed(remaining string, status debt.Status) debt.Debt {
	return debt.Debt{
		ID:                uuid.New(),
		Description:       "Loan to Rui",
		Type:              debt.TypeLoanGiven,
		TotalAmount:       d("1000"),
		RemainingAmount:   d(remaining),
		AnnualRatePercent: decimal.Zero,
		DurationMonths:    10,
		PaymentFrequency:  loan.FrequencyMonthly,
		LoanType:          loan.TypeAmortizable,
		PaymentAmount:     d("100"),
		StartDate:         time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		Status:            status,
	}
}

func TestApplyPayment(t *testing.T) {
	type testCase struct {
		name          string
		debt          debt.Debt
		amount        string
		wantRemaining string
		wantStatus    debt.Status
		wantErr       error
	}

	tests := []testCase{
		{
			name:          "PartialPayment",
			debt:          owed("1000", debt.StatusActive),
			amount:        "250",
			wantRemaining: "750",
			wantStatus:    debt.StatusActive,
		},
		{
			name:          "ExactRemainderCompletes",
			debt:          owed("150.50", debt.StatusActive),
			amount:        "150.50",
			wantRemaining: "0",
			wantStatus:    debt.StatusCompleted,
		},
		{
			name:    "Overpayment",
			debt:    owed("100", debt.StatusActive),
			amount:  "100.01",
			wantErr: debt.ErrInvalidPayment,
		},
		{
			name:    "ZeroAmount",
			debt:    owed("100", debt.StatusActive),
			amount:  "0",
			wantErr: debt.ErrInvalidPayment,
		},
		{
			name:    "CompletedDebt",
			debt:    owed("0", debt.StatusCompleted),
			amount:  "10",
			wantErr: debt.ErrClosed,
		},
		{
			name:    "DefaultedDebt",
			debt:    owed("500", debt.StatusDefaulted),
			amount:  "10",
			wantErr: debt.ErrClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.debt.RemainingAmount

			got, err := debt.ApplyPayment(tt.debt, d(tt.amount))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.True(t, before.Equal(got.RemainingAmount))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, d(tt.wantRemaining).String(), got.RemainingAmount.String())
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.True(t, before.Equal(tt.debt.RemainingAmount))
		})
	}
}

func TestRevertPayment(t *testing.T) {
	t.Run("ReopensCompletedDebt", func(t *testing.T) {
		got := debt.RevertPayment(owed("0", debt.StatusCompleted), d("100"))

		assert.Equal(t, "100", got.RemainingAmount.String())
		assert.Equal(t, debt.StatusActive, got.Status)
	})

	t.Run("CappedAtTotal", func(t *testing.T) {
		got := debt.RevertPayment(owed("950", debt.StatusActive), d("100"))

		assert.Equal(t, "1000", got.RemainingAmount.String())
	})

	t.Run("DefaultedStaysDefaulted", func(t *testing.T) {
		got := debt.RevertPayment(owed("500", debt.StatusDefaulted), d("100"))

		assert.Equal(t, "600", got.RemainingAmount.String())
		assert.Equal(t, debt.StatusDefaulted, got.Status)
	})
}

func TestProgress(t *testing.T) {
	partial := owed("666.67", debt.StatusActive)
	assert.Equal(t, "33.33", partial.Progress().String())
	assert.Equal(t, "333.33", partial.PaidAmount().String())

	empty := debt.Debt{}
	assert.True(t, empty.Progress().IsZero())
}

func TestOutstanding(t *testing.T) {
	given := owed("400", debt.StatusActive)
	received := owed("250", debt.StatusActive)
	received.Type = debt.TypeLoanReceived
	defaulted := owed("900", debt.StatusDefaulted)

	totals := debt.Outstanding([]*debt.Debt{&given, &received, &defaulted, nil})

	assert.Equal(t, "400", totals[debt.TypeLoanGiven].String())
	assert.Equal(t, "250", totals[debt.TypeLoanReceived].String())
	assert.True(t, totals[debt.TypeCredit].IsZero())
}
