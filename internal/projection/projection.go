// Package projection forecasts budget consumption and account balances for a
// period by blending booked transactions with either the recurring schedule
// or the spending pattern observed so far.
//
// The functions in this package are pure: they work on the snapshot they are
// given and keep no state between calls.
package projection

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/calendar"
	apperrors "github.com/MrJamesThe3rd/finplan/internal/errors"
	"github.com/MrJamesThe3rd/finplan/internal/recurrence"
)

// Strategy selects how the rest of the period is forecast.
type Strategy string

const (
	// StrategyRecurring forecasts with the occurrences of recurring transactions.
	StrategyRecurring Strategy = "recurring"
	// StrategyPattern extrapolates the daily average observed so far.
	StrategyPattern Strategy = "pattern"
)

func (s Strategy) validate() error {
	if s == StrategyRecurring || s == StrategyPattern {
		return nil
	}

	return apperrors.WithMessage(apperrors.ErrUnknownStrategy, fmt.Sprintf("unknown projection strategy %q", s))
}

// validateInput checks the strategy and that the data it forecasts from is
// present. An empty schedule is valid; a missing one is not.
func (s Strategy) validateInput(recurring []*recurrence.Template) error {
	if err := s.validate(); err != nil {
		return err
	}

	if s == StrategyRecurring && recurring == nil {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "recurring strategy needs the recurring schedule")
	}

	return nil
}

// Period is a range of civil days, both ends inclusive.
type Period struct {
	Start time.Time
	End   time.Time
}

// MonthPeriod returns the calendar month containing t.
func MonthPeriod(t time.Time) Period {
	start, end := calendar.MonthBounds(t)
	return Period{Start: start, End: end}
}

// Days is the number of days in the period.
func (p Period) Days() int {
	return calendar.DaysBetween(p.Start, p.End) + 1
}

func (p Period) validate() error {
	if p.Start.IsZero() || p.End.IsZero() || p.End.Before(p.Start) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "period end must not be before its start")
	}

	return nil
}

// split places today within the period. elapsed counts the days from Start
// to today inclusive and remaining the days after today up to End, so that
// elapsed+remaining always equals the period length.
type split struct {
	start     time.Time
	end       time.Time
	today     time.Time // Last day counted as actual; before start when nothing elapsed
	elapsed   int
	remaining int
}

func splitPeriod(p Period, today time.Time) split {
	s := split{
		start: calendar.Day(p.Start),
		end:   calendar.Day(p.End),
		today: calendar.Day(today),
	}

	total := calendar.DaysBetween(s.start, s.end) + 1

	switch {
	case s.today.Before(s.start):
		s.today = s.start.AddDate(0, 0, -1)
		s.elapsed = 0
	case s.today.After(s.end):
		s.today = s.end
		s.elapsed = total
	default:
		s.elapsed = calendar.DaysBetween(s.start, s.today) + 1
	}

	s.remaining = total - s.elapsed

	return s
}

// isActual reports whether day falls within [start, today].
func (s split) isActual(day time.Time) bool {
	day = calendar.Day(day)
	return !day.Before(s.start) && !day.After(s.today)
}

// futureStart is the first day after today, never before the period start.
func (s split) futureStart() time.Time {
	return s.today.AddDate(0, 0, 1)
}

func (s split) hasFuture() bool {
	return s.remaining > 0
}

func ratio(amount decimal.Decimal, elapsed, remaining int) decimal.Decimal {
	if elapsed <= 0 || remaining <= 0 {
		return decimal.Zero
	}

	return amount.Div(decimal.NewFromInt(int64(elapsed))).Mul(decimal.NewFromInt(int64(remaining)))
}
