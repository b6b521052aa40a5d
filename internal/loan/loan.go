// Package loan computes fixed-rate loan schedules.
package loan

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/calendar"
	apperrors "github.com/MrJamesThe3rd/finplan/internal/errors"
)

var ErrInvalid = apperrors.ErrInvalidLoan

// MaxDurationMonths bounds the schedule length.
const MaxDurationMonths = 1200

// Frequency is how often a payment is due.
type Frequency string

const (
	FrequencyMonthly    Frequency = "monthly"
	FrequencyQuarterly  Frequency = "quarterly"
	FrequencySemiAnnual Frequency = "semi_annual"
	FrequencyAnnual     Frequency = "annual"
)

// Months returns the number of months between two payments.
func (f Frequency) Months() (int, error) {
	switch f {
	case FrequencyMonthly:
		return 1, nil
	case FrequencyQuarterly:
		return 3, nil
	case FrequencySemiAnnual:
		return 6, nil
	case FrequencyAnnual:
		return 12, nil
	}

	return 0, apperrors.WithMessage(apperrors.ErrInvalidLoan, fmt.Sprintf("unknown payment frequency %q", f))
}

// Type selects how the principal is repaid.
type Type string

const (
	// TypeAmortizable repays principal and interest in equal payments.
	TypeAmortizable Type = "amortizable"
	// TypeBullet pays interest only and repays the whole principal with the last payment.
	TypeBullet Type = "bullet"
)

type Params struct {
	Principal         decimal.Decimal
	AnnualRatePercent decimal.Decimal
	DurationMonths    int
	Frequency         Frequency
	Type              Type
	StartDate         time.Time
}

type ScheduleItem struct {
	Period           int
	Date             time.Time
	Payment          decimal.Decimal
	Principal        decimal.Decimal
	Interest         decimal.Decimal
	RemainingBalance decimal.Decimal
}

type Result struct {
	PeriodicPayment decimal.Decimal
	TotalInterest   decimal.Decimal
	TotalAmount     decimal.Decimal
	Schedule        []ScheduleItem
}

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

func (p Params) validate() (int, error) {
	if !p.Principal.IsPositive() {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidLoan, "principal must be positive")
	}

	if p.DurationMonths <= 0 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidLoan, "duration must be at least one month")
	}

	if p.DurationMonths > MaxDurationMonths {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidLoan, fmt.Sprintf("duration cannot exceed %d months", MaxDurationMonths))
	}

	if p.AnnualRatePercent.IsNegative() {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidLoan, "interest rate cannot be negative")
	}

	if p.Type != TypeAmortizable && p.Type != TypeBullet {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidLoan, fmt.Sprintf("unknown loan type %q", p.Type))
	}

	return p.Frequency.Months()
}

// PeriodicRate converts the annual percentage into the rate of one payment period.
func PeriodicRate(annualRatePercent decimal.Decimal, frequencyMonths int) decimal.Decimal {
	return annualRatePercent.Div(hundred).Mul(decimal.NewFromInt(int64(frequencyMonths))).Div(twelve)
}

// Amortize builds the payment schedule for p. The number of periods is the
// duration divided by the payment frequency, rounded up.
func Amortize(p Params) (*Result, error) {
	months, err := p.validate()
	if err != nil {
		return nil, err
	}

	n := (p.DurationMonths + months - 1) / months
	rate := PeriodicRate(p.AnnualRatePercent, months)
	start := calendar.Day(p.StartDate)

	var res *Result

	switch p.Type {
	case TypeBullet:
		res = bullet(p.Principal, rate, n)
	default:
		res = amortizable(p.Principal, rate, n)
	}

	for i := range res.Schedule {
		res.Schedule[i].Date = calendar.AddMonths(start, (i+1)*months, start.Day())
	}

	res.TotalAmount = p.Principal.Add(res.TotalInterest)

	return res, nil
}

// annuityPayment returns the constant payment that repays principal over n
// periods at rate. A zero rate splits the principal evenly. When (1+rate)^n
// is beyond float64 range the payment is its limit, principal × rate.
func annuityPayment(principal, rate decimal.Decimal, n int) decimal.Decimal {
	if rate.IsZero() {
		return principal.Div(decimal.NewFromInt(int64(n)))
	}

	f := math.Pow(1+rate.InexactFloat64(), float64(n))
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return principal.Mul(rate)
	}

	factor := decimal.NewFromFloat(f)

	return principal.Mul(rate).Mul(factor).Div(factor.Sub(decimal.NewFromInt(1)))
}

func amortizable(principal, rate decimal.Decimal, n int) *Result {
	payment := annuityPayment(principal, rate, n)
	balance := principal
	totalInterest := decimal.Zero
	schedule := make([]ScheduleItem, n)

	for i := range n {
		interest := balance.Mul(rate)
		portion := payment.Sub(interest)

		balance = balance.Sub(portion)
		if balance.IsNegative() || i == n-1 {
			balance = decimal.Zero
		}

		totalInterest = totalInterest.Add(interest)
		schedule[i] = ScheduleItem{
			Period:           i + 1,
			Payment:          payment,
			Principal:        portion,
			Interest:         interest,
			RemainingBalance: balance,
		}
	}

	return &Result{
		PeriodicPayment: payment,
		TotalInterest:   totalInterest,
		Schedule:        schedule,
	}
}

func bullet(principal, rate decimal.Decimal, n int) *Result {
	interest := principal.Mul(rate)
	schedule := make([]ScheduleItem, n)

	for i := range n {
		item := ScheduleItem{
			Period:           i + 1,
			Payment:          interest,
			Principal:        decimal.Zero,
			Interest:         interest,
			RemainingBalance: principal,
		}

		if i == n-1 {
			item.Payment = interest.Add(principal)
			item.Principal = principal
			item.RemainingBalance = decimal.Zero
		}

		schedule[i] = item
	}

	return &Result{
		PeriodicPayment: interest,
		TotalInterest:   interest.Mul(decimal.NewFromInt(int64(n))),
		Schedule:        schedule,
	}
}
