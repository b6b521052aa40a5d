package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/finplan/internal/calendar"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name   string
		start  time.Time
		months int
		day    int
		want   time.Time
	}{
		{name: "PlainStep", start: date(2024, 3, 15), months: 1, day: 15, want: date(2024, 4, 15)},
		{name: "ClampLeapFebruary", start: date(2024, 1, 31), months: 1, day: 31, want: date(2024, 2, 29)},
		{name: "ClampFebruary", start: date(2023, 1, 31), months: 1, day: 31, want: date(2023, 2, 28)},
		{name: "RestoreDayAfterClamp", start: date(2024, 1, 31), months: 2, day: 31, want: date(2024, 3, 31)},
		{name: "ClampThirtyDayMonth", start: date(2024, 3, 31), months: 1, day: 31, want: date(2024, 4, 30)},
		{name: "YearRollover", start: date(2024, 11, 10), months: 3, day: 10, want: date(2025, 2, 10)},
		{name: "Yearly", start: date(2024, 2, 29), months: 12, day: 29, want: date(2025, 2, 28)},
		{name: "Backwards", start: date(2024, 3, 31), months: -1, day: 31, want: date(2024, 2, 29)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calendar.AddMonths(tt.start, tt.months, tt.day))
		})
	}
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, calendar.DaysBetween(date(2024, 6, 1), date(2024, 6, 1)))
	assert.Equal(t, 29, calendar.DaysBetween(date(2024, 6, 1), date(2024, 6, 30)))
	assert.Equal(t, 366, calendar.DaysBetween(date(2024, 1, 1), date(2025, 1, 1)))
	assert.Equal(t, -1, calendar.DaysBetween(date(2024, 6, 2), date(2024, 6, 1)))
}

func TestDaysBetween_IgnoresTimeOfDay(t *testing.T) {
	a := time.Date(2024, 3, 30, 23, 0, 0, 0, time.UTC)
	b := time.Date(2024, 3, 31, 1, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, calendar.DaysBetween(a, b))
}

func TestMonthBounds(t *testing.T) {
	start, end := calendar.MonthBounds(time.Date(2024, 2, 14, 13, 5, 0, 0, time.UTC))

	assert.Equal(t, date(2024, 2, 1), start)
	assert.Equal(t, date(2024, 2, 29), end)
}

func TestDayAndMonthEnd(t *testing.T) {
	assert.Equal(t, date(2024, 5, 3), calendar.Day(time.Date(2024, 5, 3, 18, 30, 0, 0, time.UTC)))
	assert.True(t, calendar.IsMonthEnd(date(2023, 2, 28)))
	assert.False(t, calendar.IsMonthEnd(date(2024, 2, 28)))
	assert.True(t, calendar.SameDay(date(2024, 5, 3), time.Date(2024, 5, 3, 9, 0, 0, 0, time.UTC)))
}
