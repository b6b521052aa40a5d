package recurrence

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/calendar"
	apperrors "github.com/MrJamesThe3rd/finplan/internal/errors"
	"github.com/MrJamesThe3rd/finplan/internal/ledger"
)

var (
	ErrNotFound        = apperrors.ErrTemplateNotFound
	ErrUnknownInterval = apperrors.ErrUnknownInterval
)

// Interval is the step between two occurrences of a template.
type Interval string

const (
	IntervalDaily     Interval = "daily"
	IntervalWeekly    Interval = "weekly"
	IntervalBiweekly  Interval = "biweekly"
	IntervalMonthly   Interval = "monthly"
	IntervalQuarterly Interval = "quarterly"
	IntervalYearly    Interval = "yearly"
)

// step returns the interval either as a number of days or as a number of
// calendar months. Exactly one of the two is non-zero for known intervals.
func (i Interval) step() (days, months int, err error) {
	switch i {
	case IntervalDaily:
		return 1, 0, nil
	case IntervalWeekly:
		return 7, 0, nil
	case IntervalBiweekly:
		return 14, 0, nil
	case IntervalMonthly:
		return 0, 1, nil
	case IntervalQuarterly:
		return 0, 3, nil
	case IntervalYearly:
		return 0, 12, nil
	}

	return 0, 0, apperrors.WithMessage(apperrors.ErrUnknownInterval, fmt.Sprintf("unknown recurrence interval %q", i))
}

func (i Interval) Valid() bool {
	_, _, err := i.step()
	return err == nil
}

// Template is a recurring transaction definition. NextDueDate is the cursor
// of the next occurrence that has not been materialized yet.
type Template struct {
	ID                uuid.UUID
	Amount            decimal.Decimal
	Type              ledger.Type
	Description       string
	Interval          Interval
	StartDate         time.Time
	NextDueDate       time.Time
	EndDate           *time.Time // Inclusive
	IsActive          bool
	AccountID         uuid.UUID
	CategoryID        *uuid.UUID
	InstallmentPlanID *uuid.UUID // Set when the template pays an installment plan
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Occurrence is a single projected instance of a template. It is never persisted.
type Occurrence struct {
	TemplateID  uuid.UUID
	Date        time.Time
	Amount      decimal.Decimal
	Type        ledger.Type
	Description string
	AccountID   uuid.UUID
	CategoryID  *uuid.UUID
}

// SignedAmount returns the occurrence amount as a balance delta.
func (o Occurrence) SignedAmount() decimal.Decimal {
	if o.Type == ledger.TypeIncome {
		return o.Amount
	}

	return o.Amount.Neg()
}

func (t *Template) Validate() error {
	if !t.Amount.IsPositive() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
	}

	if t.Type != ledger.TypeIncome && t.Type != ledger.TypeExpense {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("recurring type must be income or expense, got %q", t.Type))
	}

	if _, _, err := t.Interval.step(); err != nil {
		return err
	}

	if t.StartDate.IsZero() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "start date is required")
	}

	if calendar.Day(t.NextDueDate).Before(calendar.Day(t.StartDate)) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "next due date cannot be before the start date")
	}

	if t.EndDate != nil && calendar.Day(*t.EndDate).Before(calendar.Day(t.StartDate)) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "end date cannot be before the start date")
	}

	return nil
}

// Ended reports whether the template's end date lies before day.
func (t *Template) Ended(day time.Time) bool {
	return t.EndDate != nil && calendar.Day(*t.EndDate).Before(calendar.Day(day))
}

func (t *Template) occurrence(date time.Time) Occurrence {
	return Occurrence{
		TemplateID:  t.ID,
		Date:        date,
		Amount:      t.Amount,
		Type:        t.Type,
		Description: t.Description,
		AccountID:   t.AccountID,
		CategoryID:  t.CategoryID,
	}
}
