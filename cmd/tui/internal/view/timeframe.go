package view

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/MrJamesThe3rd/finplan/internal/calendar"
)

// Timeframe is a predefined or custom date range.
type Timeframe int

const (
	TimeframeThisWeek Timeframe = iota
	TimeframeThisMonth
	TimeframeLastMonth
	TimeframeThisYear
	TimeframeAll
	TimeframeCustom
)

var timeframeNames = map[Timeframe]string{
	TimeframeThisWeek:  "This Week",
	TimeframeThisMonth: "This Month",
	TimeframeLastMonth: "Last Month",
	TimeframeThisYear:  "This Year",
	TimeframeAll:       "All Time",
	TimeframeCustom:    "Custom Range",
}

func (t Timeframe) String() string {
	if name, ok := timeframeNames[t]; ok {
		return name
	}

	return "Unknown"
}

// DateRange returns the inclusive civil-date range tf covers on the day of
// now. Weeks start on Monday. All and Custom have no fixed range.
func DateRange(tf Timeframe, now time.Time) (time.Time, time.Time) {
	today := calendar.Day(now.UTC())

	switch tf {
	case TimeframeThisWeek:
		offset := (int(today.Weekday()) + 6) % 7
		return today.AddDate(0, 0, -offset), today
	case TimeframeThisMonth:
		start, _ := calendar.MonthBounds(today)
		return start, today
	case TimeframeLastMonth:
		return calendar.MonthBounds(calendar.AddMonths(today, -1, 1))
	case TimeframeThisYear:
		return time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), today
	}

	return time.Time{}, time.Time{}
}

// TimeframeSelectedMsg is emitted when the user has picked a range. Start and
// End are zero when All is set.
type TimeframeSelectedMsg struct {
	Start time.Time
	End   time.Time
	All   bool
}

type timeframeFields struct {
	selected Timeframe
	start    string
	end      string
}

// TimeframePicker asks for a predefined range, or for two dates when Custom
// is chosen.
type TimeframePicker struct {
	fields *timeframeFields
	form   *huh.Form
	now    func() time.Time
}

func NewTimeframePicker(initial Timeframe) TimeframePicker {
	m := TimeframePicker{
		fields: &timeframeFields{selected: initial},
		now:    time.Now,
	}
	m.form = m.buildForm()

	return m
}

func validDate(s string) error {
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return fmt.Errorf("use YYYY-MM-DD")
	}

	return nil
}

func (m TimeframePicker) buildForm() *huh.Form {
	options := make([]huh.Option[Timeframe], 0, len(timeframeNames))
	for tf := TimeframeThisWeek; tf <= TimeframeCustom; tf++ {
		options = append(options, huh.NewOption(tf.String(), tf))
	}

	f := m.fields

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[Timeframe]().
				Title("Timeframe").
				Options(options...).
				Value(&f.selected),
		),
		huh.NewGroup(
			huh.NewInput().Title("Start date").Placeholder("YYYY-MM-DD").Value(&f.start).Validate(validDate),
			huh.NewInput().Title("End date").Placeholder("YYYY-MM-DD").Value(&f.end).Validate(func(s string) error {
				if err := validDate(s); err != nil {
					return err
				}

				start, err := time.Parse(time.DateOnly, f.start)
				if err != nil {
					return nil
				}

				end, _ := time.Parse(time.DateOnly, s)
				if end.Before(start) {
					return fmt.Errorf("end date is before start date")
				}

				return nil
			}),
		).WithHideFunc(func() bool { return f.selected != TimeframeCustom }),
	).WithWidth(40).WithShowHelp(false)
}

func (m TimeframePicker) Init() tea.Cmd {
	return m.form.Init()
}

// Update feeds msg to the form and emits TimeframeSelectedMsg once it is
// complete.
func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	selected := m.selectedMsg()

	// Ready for the next time the picker is shown.
	m.form = m.buildForm()

	return m, func() tea.Msg { return selected }
}

func (m TimeframePicker) selectedMsg() TimeframeSelectedMsg {
	switch m.fields.selected {
	case TimeframeAll:
		return TimeframeSelectedMsg{All: true}
	case TimeframeCustom:
		start, _ := time.Parse(time.DateOnly, m.fields.start)
		end, _ := time.Parse(time.DateOnly, m.fields.end)

		return TimeframeSelectedMsg{Start: start, End: end}
	}

	start, end := DateRange(m.fields.selected, m.now())

	return TimeframeSelectedMsg{Start: start, End: end}
}

func (m TimeframePicker) View() string {
	return m.form.View()
}
