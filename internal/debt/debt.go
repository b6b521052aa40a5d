// Package debt tracks money lent to or borrowed from other people and the
// payments made against it.
package debt

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/MrJamesThe3rd/finplan/internal/errors"
	"github.com/MrJamesThe3rd/finplan/internal/loan"
)

var (
	ErrNotFound        = apperrors.ErrDebtNotFound
	ErrClosed          = apperrors.ErrDebtClosed
	ErrPaymentNotFound = apperrors.ErrDebtPaymentNotFound
	ErrInvalidPayment  = apperrors.ErrInvalidPayment
)

// Type tells which side of the debt the user is on.
type Type string

const (
	// TypeLoanGiven is money the user lent and expects back.
	TypeLoanGiven Type = "loan_given"
	// TypeLoanReceived is money the user borrowed and owes.
	TypeLoanReceived Type = "loan_received"
	TypeCredit       Type = "credit"
)

func (t Type) valid() bool {
	switch t {
	case TypeLoanGiven, TypeLoanReceived, TypeCredit:
		return true
	}

	return false
}

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusDefaulted Status = "defaulted"
)

func (s Status) valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusDefaulted:
		return true
	}

	return false
}

type Debt struct {
	ID                uuid.UUID
	Description       string
	Type              Type
	TotalAmount       decimal.Decimal
	RemainingAmount   decimal.Decimal
	AnnualRatePercent decimal.Decimal
	DurationMonths    int
	PaymentFrequency  loan.Frequency
	LoanType          loan.Type
	PaymentAmount     decimal.Decimal
	StartDate         time.Time
	EndDate           time.Time
	Status            Status
	ContactName       string
	ContactInfo       string
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// PaidAmount is the part of the total already settled.
func (d *Debt) PaidAmount() decimal.Decimal {
	return d.TotalAmount.Sub(d.RemainingAmount)
}

// Progress is the settled share of the total as a percentage with two decimals.
func (d *Debt) Progress() decimal.Decimal {
	if !d.TotalAmount.IsPositive() {
		return decimal.Zero
	}

	return d.PaidAmount().Div(d.TotalAmount).Mul(decimal.NewFromInt(100)).Round(2)
}

// LoanParams describes the debt as a loan so its schedule can be rebuilt.
func (d *Debt) LoanParams() loan.Params {
	return loan.Params{
		Principal:         d.TotalAmount,
		AnnualRatePercent: d.AnnualRatePercent,
		DurationMonths:    d.DurationMonths,
		Frequency:         d.PaymentFrequency,
		Type:              d.LoanType,
		StartDate:         d.StartDate,
	}
}

type Payment struct {
	ID          uuid.UUID
	DebtID      uuid.UUID
	Amount      decimal.Decimal
	PaymentDate time.Time
	Notes       string
	CreatedAt   time.Time
}

// ApplyPayment lowers the remaining amount of debt by amount and completes
// it once nothing is left. The input debt is left untouched.
func ApplyPayment(debt Debt, amount decimal.Decimal) (Debt, error) {
	if debt.Status != StatusActive {
		return debt, apperrors.WithMessage(ErrClosed, fmt.Sprintf("debt is %s", debt.Status))
	}

	if !amount.IsPositive() {
		return debt, apperrors.WithMessage(ErrInvalidPayment, "payment amount must be positive")
	}

	if amount.GreaterThan(debt.RemainingAmount) {
		return debt, apperrors.WithMessage(ErrInvalidPayment,
			fmt.Sprintf("payment of %s exceeds the remaining %s", amount, debt.RemainingAmount))
	}

	debt.RemainingAmount = debt.RemainingAmount.Sub(amount)
	if debt.RemainingAmount.IsZero() {
		debt.Status = StatusCompleted
	}

	return debt, nil
}

// RevertPayment gives amount back to the remaining balance, capped at the
// total. A completed debt becomes active again.
func RevertPayment(debt Debt, amount decimal.Decimal) Debt {
	debt.RemainingAmount = decimal.Min(debt.RemainingAmount.Add(amount), debt.TotalAmount)
	if debt.Status == StatusCompleted && debt.RemainingAmount.IsPositive() {
		debt.Status = StatusActive
	}

	return debt
}

// Outstanding sums the remaining amount of the active debts per type.
func Outstanding(debts []*Debt) map[Type]decimal.Decimal {
	totals := map[Type]decimal.Decimal{
		TypeLoanGiven:    decimal.Zero,
		TypeLoanReceived: decimal.Zero,
		TypeCredit:       decimal.Zero,
	}

	for _, d := range debts {
		if d == nil || d.Status != StatusActive {
			continue
		}

		totals[d.Type] = totals[d.Type].Add(d.RemainingAmount)
	}

	return totals
}
