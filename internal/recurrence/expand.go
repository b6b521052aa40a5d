package recurrence

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/calendar"
	"github.com/MrJamesThe3rd/finplan/internal/ledger"
)

// anchorDay is the day of month monthly-family schedules land on. A cursor
// that was clamped to a short month end falls back to the start date's day,
// so Jan 31 -> Feb 29 -> Mar 31 instead of drifting to the 29th.
func anchorDay(t Template, anchor time.Time) int {
	day := anchor.Day()
	if calendar.IsMonthEnd(anchor) && t.StartDate.Day() > day {
		return t.StartDate.Day()
	}

	return day
}

// nth returns the k-th occurrence counted from anchor. Each date is computed
// from the anchor rather than from the previous occurrence, so clamping in a
// short month never shifts the following dates.
func nth(t Template, anchor time.Time, day, k int) (time.Time, error) {
	if k == 0 {
		return anchor, nil
	}

	days, months, err := t.Interval.step()
	if err != nil {
		return time.Time{}, err
	}

	if days > 0 {
		return anchor.AddDate(0, 0, k*days), nil
	}

	return calendar.AddMonths(anchor, k*months, day), nil
}

// Step returns the due date following cursor.
func Step(t Template, cursor time.Time) (time.Time, error) {
	anchor := calendar.Day(cursor)
	return nth(t, anchor, anchorDay(t, anchor), 1)
}

// Expand returns the occurrences of t that fall within [from, to], both ends
// inclusive, in date order. The schedule is anchored on t.NextDueDate and
// bounded by t.EndDate. Expand never mutates t.
//
// An unknown interval stops the expansion: the occurrences collected so far
// are returned together with an error wrapping ErrUnknownInterval.
func Expand(t Template, from, to time.Time) ([]Occurrence, error) {
	from, to = calendar.Day(from), calendar.Day(to)
	occurrences := []Occurrence{}

	limit := to

	if t.EndDate != nil {
		end := calendar.Day(*t.EndDate)
		if end.Before(from) {
			return occurrences, nil
		}

		if end.Before(limit) {
			limit = end
		}
	}

	anchor := calendar.Day(t.NextDueDate)
	day := anchorDay(t, anchor)

	for k := 0; ; k++ {
		date, err := nth(t, anchor, day, k)
		if err != nil {
			return occurrences, fmt.Errorf("expanding recurring %s: %w", t.ID, err)
		}

		if date.After(limit) {
			break
		}

		if date.Before(from) {
			continue
		}

		occurrences = append(occurrences, t.occurrence(date))
	}

	return occurrences, nil
}

// ExpandAll expands every active template over [from, to] and merges the
// result in date order. A template that fails to expand contributes what it
// produced before failing; its error is logged and joined into the returned
// error while the remaining templates are still expanded.
func ExpandAll(templates []*Template, from, to time.Time) ([]Occurrence, error) {
	var (
		all  []Occurrence
		errs []error
	)

	for _, t := range templates {
		if t == nil || !t.IsActive {
			continue
		}

		occ, err := Expand(*t, from, to)
		if err != nil {
			slog.Warn("skipping remainder of recurring transaction", "id", t.ID, "error", err)
			errs = append(errs, err)
		}

		all = append(all, occ...)
	}

	slices.SortStableFunc(all, func(a, b Occurrence) int {
		return a.Date.Compare(b.Date)
	})

	return all, errors.Join(errs...)
}

var (
	monthsPerYear = decimal.NewFromInt(12)
	daysPerYear   = decimal.NewFromInt(365)
	weeksPerYear  = decimal.NewFromInt(52)
)

// MonthlyEquivalent normalises the template amount to an average month.
func MonthlyEquivalent(t Template) (decimal.Decimal, error) {
	switch t.Interval {
	case IntervalDaily:
		return t.Amount.Mul(daysPerYear).Div(monthsPerYear), nil
	case IntervalWeekly:
		return t.Amount.Mul(weeksPerYear).Div(monthsPerYear), nil
	case IntervalBiweekly:
		return t.Amount.Mul(decimal.NewFromInt(26)).Div(monthsPerYear), nil
	case IntervalMonthly:
		return t.Amount, nil
	case IntervalQuarterly:
		return t.Amount.Div(decimal.NewFromInt(3)), nil
	case IntervalYearly:
		return t.Amount.Div(monthsPerYear), nil
	}

	_, _, err := t.Interval.step()

	return decimal.Zero, err
}

// Totals is the monthly-equivalent sum of the active templates.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Net     decimal.Decimal
	Count   int
}

// MonthlyTotals sums the monthly equivalents of the active templates.
// Templates with an unknown interval are skipped and reported in the error.
func MonthlyTotals(templates []*Template) (Totals, error) {
	totals := Totals{Income: decimal.Zero, Expense: decimal.Zero}

	var errs []error

	for _, t := range templates {
		if t == nil || !t.IsActive {
			continue
		}

		m, err := MonthlyEquivalent(*t)
		if err != nil {
			errs = append(errs, fmt.Errorf("recurring %s: %w", t.ID, err))
			continue
		}

		switch t.Type {
		case ledger.TypeIncome:
			totals.Income = totals.Income.Add(m)
		case ledger.TypeExpense:
			totals.Expense = totals.Expense.Add(m)
		}

		totals.Count++
	}

	totals.Net = totals.Income.Sub(totals.Expense)

	return totals, errors.Join(errs...)
}
