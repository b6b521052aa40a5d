package view

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/loan"
)

type loanState int

const (
	loanStateForm loanState = iota
	loanStateSchedule
)

// loanFields is shared by pointer so the form keeps writing to the same
// values while the model is copied between updates.
type loanFields struct {
	principal string
	rate      string
	months    string
	start     string
	frequency loan.Frequency
	kind      loan.Type
}

type LoanModel struct {
	CommonModel

	state  loanState
	fields *loanFields
	form   *huh.Form
	table  table.Model
	result *loan.Result
	err    error
}

func NewLoanModel() LoanModel {
	m := LoanModel{
		fields: &loanFields{
			months:    "12",
			start:     FormatDate(time.Now()),
			frequency: loan.FrequencyMonthly,
			kind:      loan.TypeAmortizable,
		},
		table: newTable([]table.Column{
			{Title: "#", Width: 4},
			{Title: "Date", Width: 12},
			{Title: "Payment", Width: 12},
			{Title: "Principal", Width: 12},
			{Title: "Interest", Width: 12},
			{Title: "Balance", Width: 14},
		}, 15),
	}
	m.form = m.buildForm()

	return m
}

func (m LoanModel) Title() string { return "Loan Calculator" }

func (m LoanModel) ShortHelp() string {
	if m.state == loanStateSchedule {
		return "Esc: back | n: new calculation"
	}

	return "Esc: back | Enter: next"
}

func (m LoanModel) Init() tea.Cmd {
	return m.form.Init()
}

func positiveDecimal(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		return fmt.Errorf("enter a non-negative number")
	}

	return nil
}

func (m LoanModel) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Principal").Value(&m.fields.principal).Validate(positiveDecimal),
			huh.NewInput().Title("Annual rate (%)").Value(&m.fields.rate).Validate(positiveDecimal),
			huh.NewInput().Title("Duration (months)").Value(&m.fields.months).Validate(func(s string) error {
				n, err := strconv.Atoi(strings.TrimSpace(s))
				if err != nil || n <= 0 {
					return fmt.Errorf("enter a whole number of months")
				}
				return nil
			}),
			huh.NewInput().Title("Start date").Placeholder("YYYY-MM-DD").Value(&m.fields.start).Validate(func(s string) error {
				if _, err := time.Parse(time.DateOnly, s); err != nil {
					return fmt.Errorf("use YYYY-MM-DD")
				}
				return nil
			}),
		),
		huh.NewGroup(
			huh.NewSelect[loan.Frequency]().
				Title("Payment frequency").
				Options(
					huh.NewOption("Monthly", loan.FrequencyMonthly),
					huh.NewOption("Quarterly", loan.FrequencyQuarterly),
					huh.NewOption("Semi-annual", loan.FrequencySemiAnnual),
					huh.NewOption("Annual", loan.FrequencyAnnual),
				).
				Value(&m.fields.frequency),
			huh.NewSelect[loan.Type]().
				Title("Repayment").
				Options(
					huh.NewOption("Amortizable", loan.TypeAmortizable),
					huh.NewOption("Bullet", loan.TypeBullet),
				).
				Value(&m.fields.kind),
		),
	).WithWidth(50).WithShowHelp(false)
}

// params converts the validated form input.
func (f *loanFields) params() loan.Params {
	months, _ := strconv.Atoi(strings.TrimSpace(f.months))
	start, _ := time.Parse(time.DateOnly, f.start)

	return loan.Params{
		Principal:         decimal.RequireFromString(strings.TrimSpace(f.principal)),
		AnnualRatePercent: decimal.RequireFromString(strings.TrimSpace(f.rate)),
		DurationMonths:    months,
		Frequency:         f.frequency,
		Type:              f.kind,
		StartDate:         start,
	}
}

func (m LoanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.table.SetHeight(size.Height - 12)
		return m, nil
	}

	switch m.state {
	case loanStateForm:
		return m.updateForm(msg)
	case loanStateSchedule:
		return m.updateSchedule(msg)
	}

	return m, nil
}

func (m LoanModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	res, err := loan.Amortize(m.fields.params())
	if err != nil {
		m.err = err
		m.form = m.buildForm()
		return m, m.form.Init()
	}

	m.err = nil
	m.result = res
	m.refreshTable()
	m.state = loanStateSchedule

	return m, nil
}

func (m LoanModel) updateSchedule(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "n":
			m.state = loanStateForm
			m.form = m.buildForm()
			return m, m.form.Init()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m *LoanModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.result.Schedule))
	for _, item := range m.result.Schedule {
		rows = append(rows, table.Row{
			strconv.Itoa(item.Period),
			FormatDate(item.Date),
			FormatMoney(item.Payment),
			FormatMoney(item.Principal),
			FormatMoney(item.Interest),
			FormatMoney(item.RemainingBalance),
		})
	}

	m.table.SetRows(rows)
	m.table.GotoTop()
}

func (m LoanModel) View() string {
	if m.state == loanStateForm {
		content := m.form.View()
		if m.err != nil {
			content = lipgloss.NewStyle().Foreground(errorColor).Render("Error: "+m.err.Error()) + "\n\n" + content
		}

		return lipgloss.NewStyle().Padding(1).Render(content)
	}

	summary := fmt.Sprintf("Payment: %s | Total interest: %s | Total paid: %s",
		activeStyle(FormatMoney(m.result.PeriodicPayment)),
		activeStyle(FormatMoney(m.result.TotalInterest)),
		activeStyle(FormatMoney(m.result.TotalAmount)),
	)

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(summary),
		boxed(m.table.View()),
	))
}
