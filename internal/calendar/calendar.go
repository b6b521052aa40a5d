// Package calendar holds the civil-date arithmetic shared by the recurrence,
// loan and installment packages. All helpers work on calendar days and keep
// the location of their input.
package calendar

import "time"

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysInMonth returns the number of days of the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonths moves t by n calendar months and lands on day, clamped to the last
// day of the target month. Jan 31 plus one month is Feb 28 (Feb 29 in leap years).
func AddMonths(t time.Time, n, day int) time.Time {
	y, m, _ := t.Date()

	// Normalise to the first of the target month before clamping.
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	last := DaysInMonth(first.Year(), first.Month())

	if day > last {
		day = last
	}

	if day < 1 {
		day = 1
	}

	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}

// IsMonthEnd reports whether t falls on the last day of its month.
func IsMonthEnd(t time.Time) bool {
	return t.Day() == DaysInMonth(t.Year(), t.Month())
}

// DaysBetween returns the number of calendar days from a to b. It is negative
// when b is before a.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()

	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)

	return int(ub.Sub(ua).Hours() / 24)
}

// MonthBounds returns the first and last day of the month containing t.
func MonthBounds(t time.Time) (time.Time, time.Time) {
	y, m, _ := t.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	end := time.Date(y, m, DaysInMonth(y, m), 0, 0, 0, 0, t.Location())

	return start, end
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()

	return ay == by && am == bm && ad == bd
}
