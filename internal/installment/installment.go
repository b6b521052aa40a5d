package installment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/MrJamesThe3rd/finplan/internal/errors"
	"github.com/MrJamesThe3rd/finplan/internal/recurrence"
)

var (
	ErrNotFound            = apperrors.ErrPlanNotFound
	ErrInactive            = apperrors.ErrPlanInactive
	ErrInvalidPayment      = apperrors.ErrInvalidPayment
	ErrInvalidCustomAmount = apperrors.ErrInvalidCustomAmount
	ErrUnknownPolicy       = apperrors.ErrUnknownPolicy
)

// Frequency is how often an installment is due.
type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
)

// Interval maps the frequency onto the recurrence interval used by the
// plan's linked recurring transaction.
func (f Frequency) Interval() (recurrence.Interval, error) {
	switch f {
	case FrequencyWeekly:
		return recurrence.IntervalWeekly, nil
	case FrequencyMonthly:
		return recurrence.IntervalMonthly, nil
	case FrequencyQuarterly:
		return recurrence.IntervalQuarterly, nil
	}

	return "", apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("unknown installment frequency %q", f))
}

// Plan is a purchase or debt paid back in installments.
type Plan struct {
	ID                uuid.UUID
	Description       string
	TotalAmount       decimal.Decimal
	RemainingAmount   decimal.Decimal
	InstallmentAmount decimal.Decimal
	Frequency         Frequency
	StartDate         time.Time
	NextPaymentDate   time.Time
	AccountID         uuid.UUID
	CategoryID        *uuid.UUID
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// PaidAmount is the part of the total already paid back.
func (p *Plan) PaidAmount() decimal.Decimal {
	return p.TotalAmount.Sub(p.RemainingAmount)
}

// PaymentRecord is the history entry written for every recorded payment.
type PaymentRecord struct {
	ID            uuid.UUID
	PlanID        uuid.UUID
	PaymentDate   time.Time
	Amount        decimal.Decimal
	TransactionID *uuid.UUID
	CreatedAt     time.Time
}

// nextPaymentDate advances the plan's cursor by one frequency step, with the
// same month-end policy as recurring transactions.
func nextPaymentDate(p Plan) (time.Time, error) {
	interval, err := p.Frequency.Interval()
	if err != nil {
		return time.Time{}, err
	}

	return recurrence.Step(recurrence.Template{Interval: interval, StartDate: p.StartDate}, p.NextPaymentDate)
}

// RecordPayment applies a payment of amount to plan and returns the updated
// plan. The input plan is left untouched.
func RecordPayment(plan Plan, amount decimal.Decimal) (Plan, error) {
	if !plan.IsActive {
		return plan, ErrInactive
	}

	if !amount.IsPositive() {
		return plan, apperrors.WithMessage(ErrInvalidPayment, "payment amount must be positive")
	}

	if amount.GreaterThan(plan.RemainingAmount) {
		return plan, apperrors.WithMessage(ErrInvalidPayment,
			fmt.Sprintf("payment of %s exceeds the remaining %s", amount, plan.RemainingAmount))
	}

	next, err := nextPaymentDate(plan)
	if err != nil {
		return plan, err
	}

	plan.RemainingAmount = plan.RemainingAmount.Sub(amount)
	plan.NextPaymentDate = next
	plan.IsActive = plan.RemainingAmount.IsPositive()

	return plan, nil
}

// Policy decides how the installment amount follows a change of the
// remaining balance.
type Policy string

const (
	PolicyKeepCurrent  Policy = "keep_current"
	PolicyReduceAmount Policy = "reduce_amount"
	PolicyReduceCount  Policy = "reduce_count"
	PolicyCustom       Policy = "custom"
)

// Adjustment is the outcome of applying a policy to a plan.
type Adjustment struct {
	Policy            Policy
	InstallmentAmount decimal.Decimal
	EstimatedPayments int64
}

// paymentsLeft is ceil(remaining / amount).
func paymentsLeft(remaining, amount decimal.Decimal) int64 {
	if !amount.IsPositive() || !remaining.IsPositive() {
		return 0
	}

	return remaining.Div(amount).Ceil().IntPart()
}

// Preview computes the installment amount and estimated number of payments
// that policy would give plan. custom is only read by PolicyCustom.
func Preview(plan Plan, policy Policy, custom decimal.Decimal) (Adjustment, error) {
	if !plan.IsActive || !plan.RemainingAmount.IsPositive() {
		return Adjustment{}, ErrInactive
	}

	remaining := plan.RemainingAmount
	current := plan.InstallmentAmount

	switch policy {
	case PolicyKeepCurrent, PolicyReduceCount:
		// reduce_count keeps the amount; the count shrinks with the remaining balance.
		return Adjustment{Policy: policy, InstallmentAmount: current, EstimatedPayments: paymentsLeft(remaining, current)}, nil
	case PolicyReduceAmount:
		count := paymentsLeft(remaining, current)
		if count == 0 {
			return Adjustment{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "installment amount must be positive")
		}

		amount := remaining.Div(decimal.NewFromInt(count)).RoundCeil(2)

		return Adjustment{Policy: policy, InstallmentAmount: amount, EstimatedPayments: paymentsLeft(remaining, amount)}, nil
	case PolicyCustom:
		if !custom.IsPositive() || custom.GreaterThan(remaining) {
			return Adjustment{}, apperrors.WithMessage(ErrInvalidCustomAmount,
				fmt.Sprintf("custom amount must be greater than 0 and at most %s", remaining))
		}

		return Adjustment{Policy: policy, InstallmentAmount: custom, EstimatedPayments: paymentsLeft(remaining, custom)}, nil
	}

	return Adjustment{}, apperrors.WithMessage(ErrUnknownPolicy, fmt.Sprintf("unknown adjustment policy %q", policy))
}

// Adjust applies policy to plan and returns the updated plan.
func Adjust(plan Plan, policy Policy, custom decimal.Decimal) (Plan, error) {
	adj, err := Preview(plan, policy, custom)
	if err != nil {
		return plan, err
	}

	plan.InstallmentAmount = adj.InstallmentAmount

	return plan, nil
}
