package loan_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/MrJamesThe3rd/finplan/internal/errors"
	"github.com/MrJamesThe3rd/finplan/internal/loan"
)

var tolerance = decimal.RequireFromString("0.01")

func params(principal, rate int64, months int, freq loan.Frequency, typ loan.Type) loan.Params {
	return loan.Params{
		Principal:         decimal.NewFromInt(principal),
		AnnualRatePercent: decimal.NewFromInt(rate),
		DurationMonths:    months,
		Frequency:         freq,
		Type:              typ,
		StartDate:         time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}
}

func within(t *testing.T, want, got decimal.Decimal) {
	t.Helper()
	assert.True(t, want.Sub(got).Abs().LessThanOrEqual(tolerance), "want %s, got %s", want, got)
}

func TestAmortize_Amortizable(t *testing.T) {
	res, err := loan.Amortize(params(10000, 3, 24, loan.FrequencyMonthly, loan.TypeAmortizable))
	require.NoError(t, err)

	require.Len(t, res.Schedule, 24)
	assert.Equal(t, "429.81", res.PeriodicPayment.StringFixed(2))

	principalSum := decimal.Zero
	interestSum := decimal.Zero

	for i, item := range res.Schedule {
		assert.Equal(t, i+1, item.Period)
		assert.False(t, item.RemainingBalance.IsNegative())
		within(t, item.Payment, item.Principal.Add(item.Interest))

		principalSum = principalSum.Add(item.Principal)
		interestSum = interestSum.Add(item.Interest)
	}

	last := res.Schedule[len(res.Schedule)-1]
	assert.True(t, last.RemainingBalance.IsZero())

	within(t, decimal.NewFromInt(10000), principalSum)
	assert.True(t, interestSum.Equal(res.TotalInterest))
	assert.True(t, res.TotalAmount.Equal(decimal.NewFromInt(10000).Add(res.TotalInterest)))
	within(t, res.PeriodicPayment.Mul(decimal.NewFromInt(24)).Sub(decimal.NewFromInt(10000)), res.TotalInterest)
}

func TestAmortize_Bullet(t *testing.T) {
	res, err := loan.Amortize(params(10000, 3, 24, loan.FrequencyMonthly, loan.TypeBullet))
	require.NoError(t, err)

	require.Len(t, res.Schedule, 24)
	assert.Equal(t, "25.00", res.PeriodicPayment.StringFixed(2))

	for _, item := range res.Schedule[:23] {
		assert.Equal(t, "25.00", item.Payment.StringFixed(2))
		assert.True(t, item.Principal.IsZero())
		assert.Equal(t, "10000.00", item.RemainingBalance.StringFixed(2))
	}

	last := res.Schedule[23]
	assert.Equal(t, "10025.00", last.Payment.StringFixed(2))
	assert.Equal(t, "10000.00", last.Principal.StringFixed(2))
	assert.True(t, last.RemainingBalance.IsZero())

	assert.True(t, res.TotalInterest.Equal(res.PeriodicPayment.Mul(decimal.NewFromInt(24))))
	assert.Equal(t, "10600.00", res.TotalAmount.StringFixed(2))
}

func TestAmortize_ZeroRate(t *testing.T) {
	res, err := loan.Amortize(params(1200, 0, 12, loan.FrequencyMonthly, loan.TypeAmortizable))
	require.NoError(t, err)

	for _, item := range res.Schedule {
		assert.True(t, item.Payment.Equal(decimal.NewFromInt(100)))
		assert.True(t, item.Interest.IsZero())
	}

	assert.True(t, res.TotalInterest.IsZero())
	assert.True(t, res.Schedule[11].RemainingBalance.IsZero())
}

func TestAmortize_Frequency(t *testing.T) {
	tests := []struct {
		name      string
		freq      loan.Frequency
		months    int
		wantLen   int
		wantDates []time.Time
	}{
		{
			name:    "Quarterly",
			freq:    loan.FrequencyQuarterly,
			months:  12,
			wantLen: 4,
			wantDates: []time.Time{
				time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC),
				time.Date(2024, 7, 31, 0, 0, 0, 0, time.UTC),
				time.Date(2024, 10, 31, 0, 0, 0, 0, time.UTC),
				time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
			},
		},
		{
			name:    "SemiAnnualRoundsUp",
			freq:    loan.FrequencySemiAnnual,
			months:  13,
			wantLen: 3,
		},
		{
			name:    "AnnualShorterThanAYear",
			freq:    loan.FrequencyAnnual,
			months:  6,
			wantLen: 1,
		},
		{
			name:    "MonthlyClampsDates",
			freq:    loan.FrequencyMonthly,
			months:  2,
			wantLen: 2,
			wantDates: []time.Time{
				time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
				time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := loan.Amortize(params(5000, 4, tt.months, tt.freq, loan.TypeAmortizable))
			require.NoError(t, err)
			require.Len(t, res.Schedule, tt.wantLen)

			if tt.wantDates != nil {
				got := make([]time.Time, len(res.Schedule))
				for i, item := range res.Schedule {
					got[i] = item.Date
				}

				assert.Equal(t, tt.wantDates, got)
			}

			assert.True(t, res.Schedule[tt.wantLen-1].RemainingBalance.IsZero())
		})
	}
}

func TestAmortize_Validation(t *testing.T) {
	tests := []struct {
		name   string
		params loan.Params
	}{
		{name: "ZeroPrincipal", params: params(0, 3, 12, loan.FrequencyMonthly, loan.TypeAmortizable)},
		{name: "NegativePrincipal", params: params(-100, 3, 12, loan.FrequencyMonthly, loan.TypeAmortizable)},
		{name: "ZeroDuration", params: params(1000, 3, 0, loan.FrequencyMonthly, loan.TypeAmortizable)},
		{name: "DurationTooLong", params: params(10000, 5, 200000, loan.FrequencyMonthly, loan.TypeAmortizable)},
		{name: "DurationTooLongAtZeroRate", params: params(10000, 0, loan.MaxDurationMonths+1, loan.FrequencyMonthly, loan.TypeAmortizable)},
		{name: "NegativeRate", params: params(1000, -1, 12, loan.FrequencyMonthly, loan.TypeAmortizable)},
		{name: "UnknownFrequency", params: params(1000, 3, 12, "weekly", loan.TypeAmortizable)},
		{name: "UnknownType", params: params(1000, 3, 12, loan.FrequencyMonthly, "balloon")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := loan.Amortize(tt.params)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, apperrors.ErrInvalidLoan)
		})
	}
}

func TestAmortize_LongestDuration(t *testing.T) {
	tests := []struct {
		name        string
		rate        int64
		wantPayment string
	}{
		{name: "ZeroRate", rate: 0, wantPayment: "8.33"},
		{name: "OrdinaryRate", rate: 5, wantPayment: "41.95"},
		// (1+r)^n is beyond float64 range; the payment is interest only.
		{name: "ExtremeRate", rate: 1000, wantPayment: "8333.33"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := loan.Amortize(params(10000, tt.rate, loan.MaxDurationMonths, loan.FrequencyMonthly, loan.TypeAmortizable))
			require.NoError(t, err)

			require.Len(t, res.Schedule, loan.MaxDurationMonths)
			assert.Equal(t, tt.wantPayment, res.PeriodicPayment.StringFixed(2))
			assert.True(t, res.Schedule[len(res.Schedule)-1].RemainingBalance.IsZero())
		})
	}
}

func TestAmortize_BulletFrequency(t *testing.T) {
	tests := []struct {
		name          string
		freq          loan.Frequency
		months        int
		rate          int64
		wantInterest  string
		wantDates     []time.Time
		wantTotalInt  string
		wantLastTotal string
	}{
		{
			name:         "Quarterly",
			freq:         loan.FrequencyQuarterly,
			months:       12,
			rate:         4,
			wantInterest: "100.00",
			wantDates: []time.Time{
				time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC),
				time.Date(2024, 7, 31, 0, 0, 0, 0, time.UTC),
				time.Date(2024, 10, 31, 0, 0, 0, 0, time.UTC),
				time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
			},
			wantTotalInt:  "400.00",
			wantLastTotal: "10100.00",
		},
		{
			name:         "Annual",
			freq:         loan.FrequencyAnnual,
			months:       24,
			rate:         6,
			wantInterest: "600.00",
			wantDates: []time.Time{
				time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
				time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
			},
			wantTotalInt:  "1200.00",
			wantLastTotal: "10600.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := loan.Amortize(params(10000, tt.rate, tt.months, tt.freq, loan.TypeBullet))
			require.NoError(t, err)
			require.Len(t, res.Schedule, len(tt.wantDates))

			assert.Equal(t, tt.wantInterest, res.PeriodicPayment.StringFixed(2))

			for i, item := range res.Schedule {
				assert.Equal(t, tt.wantDates[i], item.Date)
				assert.Equal(t, tt.wantInterest, item.Interest.StringFixed(2))
			}

			last := res.Schedule[len(res.Schedule)-1]
			assert.Equal(t, tt.wantLastTotal, last.Payment.StringFixed(2))
			assert.Equal(t, "10000.00", last.Principal.StringFixed(2))
			assert.Equal(t, tt.wantTotalInt, res.TotalInterest.StringFixed(2))
			assert.Equal(t, "10000.00", res.Schedule[0].RemainingBalance.StringFixed(2))
		})
	}
}

func TestPeriodicRate(t *testing.T) {
	assert.Equal(t, "0.0025", loan.PeriodicRate(decimal.NewFromInt(3), 1).String())
	assert.Equal(t, "0.0075", loan.PeriodicRate(decimal.NewFromInt(3), 3).String())
	assert.Equal(t, "0.06", loan.PeriodicRate(decimal.NewFromInt(6), 12).String())
}
