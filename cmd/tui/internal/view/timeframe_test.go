package view_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/finplan/cmd/tui/internal/view"
)

func TestDateRange(t *testing.T) {
	date := func(m time.Month, d int) time.Time { return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC) }
	saturday := time.Date(2024, 6, 15, 18, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		tf        view.Timeframe
		now       time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"this week", view.TimeframeThisWeek, saturday, date(6, 10), date(6, 15)},
		{"this week on sunday", view.TimeframeThisWeek, date(6, 16), date(6, 10), date(6, 16)},
		{"this week on monday", view.TimeframeThisWeek, date(6, 10), date(6, 10), date(6, 10)},
		{"this month", view.TimeframeThisMonth, saturday, date(6, 1), date(6, 15)},
		{"last month", view.TimeframeLastMonth, saturday, date(5, 1), date(5, 31)},
		{"last month in march", view.TimeframeLastMonth, date(3, 31), date(2, 1), date(2, 29)},
		{"this year", view.TimeframeThisYear, saturday, date(1, 1), date(6, 15)},
		{"all", view.TimeframeAll, saturday, time.Time{}, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := view.DateRange(tt.tf, tt.now)

			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}
