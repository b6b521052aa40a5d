package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/finplan/internal/projection"
)

// BudgetModel shows the budget projection and monthly summary of one month.
type BudgetModel struct {
	CommonModel
	svc *projection.Service

	month    time.Time
	strategy projection.Strategy

	table   table.Model
	result  *projection.BudgetResult
	summary *projection.Summary

	jumping   bool
	monthJump textinput.Model

	loading bool
	err     error
}

func NewBudgetModel(svc *projection.Service) BudgetModel {
	now := time.Now()

	ti := textinput.New()
	ti.Placeholder = "YYYY-MM"
	ti.CharLimit = 7
	ti.Width = 9
	ti.Prompt = "Month: "

	return BudgetModel{
		svc:       svc,
		month:     time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
		strategy:  projection.StrategyRecurring,
		monthJump: ti,
		loading:   true,
		table: newTable([]table.Column{
			{Title: "Category", Width: 20},
			{Title: "Budget", Width: 11},
			{Title: "Actual", Width: 11},
			{Title: "Projected", Width: 11},
			{Title: "Total", Width: 11},
			{Title: "%", Width: 7},
			{Title: "", Width: 6},
		}, 12),
	}
}

func (m BudgetModel) Title() string { return "Budget Projection" }

func (m BudgetModel) ShortHelp() string {
	if m.jumping {
		return "Enter: go | Esc: cancel"
	}

	return "Esc: back | ←/→: month | g: go to month | s: strategy | r: refresh"
}

func (m BudgetModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m BudgetModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadBudgetMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.result = msg.result
		m.summary = msg.summary
		m.refreshTable()

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 14)
		return m, nil
	}

	if m.jumping {
		return m.updateJump(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "left", "h":
			m.month = m.month.AddDate(0, -1, 0)
			return m.reload()
		case "right", "l":
			m.month = m.month.AddDate(0, 1, 0)
			return m.reload()
		case "s":
			if m.strategy == projection.StrategyRecurring {
				m.strategy = projection.StrategyPattern
			} else {
				m.strategy = projection.StrategyRecurring
			}

			return m.reload()
		case "r":
			return m.reload()
		case "g":
			m.jumping = true
			m.monthJump.SetValue("")
			m.monthJump.Focus()
			m.table.Blur()

			return m, textinput.Blink
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m BudgetModel) reload() (tea.Model, tea.Cmd) {
	m.loading = true
	return m, m.loadCmd()
}

func (m BudgetModel) updateJump(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEsc:
			m.jumping = false
			m.monthJump.Blur()
			m.table.Focus()

			return m, nil
		case tea.KeyEnter:
			month, err := time.Parse("2006-01", strings.TrimSpace(m.monthJump.Value()))
			if err != nil {
				m.err = fmt.Errorf("invalid month (YYYY-MM)")
				return m, nil
			}

			m.jumping = false
			m.monthJump.Blur()
			m.table.Focus()
			m.month = month

			return m.reload()
		}
	}

	var cmd tea.Cmd
	m.monthJump, cmd = m.monthJump.Update(msg)

	return m, cmd
}

func (m *BudgetModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.result.Categories))
	for _, c := range m.result.Categories {
		flag := ""

		switch {
		case c.IsOverBudget:
			flag = lipgloss.NewStyle().Foreground(errorColor).Render("over")
		case c.IsNearLimit:
			flag = lipgloss.NewStyle().Foreground(warnColor).Render("near")
		}

		rows = append(rows, table.Row{
			c.Name,
			FormatMoney(c.Budget),
			FormatMoney(c.Actual),
			FormatMoney(c.Projected),
			FormatMoney(c.ProjectedTotal),
			c.Percentage.StringFixed(1),
			flag,
		})
	}

	m.table.SetRows(rows)
}

func (m BudgetModel) View() string {
	header := fmt.Sprintf("Month: %s | Strategy: [s] %s",
		activeStyle(m.month.Format("January 2006")),
		activeStyle(string(m.strategy)),
	)

	if m.jumping {
		return lipgloss.NewStyle().Padding(1).Render(header + "\n\n" + m.monthJump.View())
	}

	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Projecting budget...")
	}

	if m.err != nil {
		return errorView(m.err)
	}

	total := fmt.Sprintf("Budget %s | Actual %s | Projected %s",
		FormatMoney(m.result.TotalBudget),
		FormatMoney(m.result.TotalActual),
		FormatMoney(m.result.TotalProjected),
	)

	if m.result.IsOverBudget {
		total += lipgloss.NewStyle().Foreground(errorColor).Render(" | Over by " + FormatMoney(m.result.OverageAmount))
	} else {
		total += lipgloss.NewStyle().Foreground(okColor).Render(" | Within budget")
	}

	lines := []string{
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		boxed(m.table.View()),
		total,
	}

	if s := m.summary; s != nil {
		lines = append(lines, fmt.Sprintf("Income %s | Expenses %s | Net %s | %d days left, %s per day",
			FormatMoney(s.Income),
			FormatMoney(s.Expenses),
			FormatMoney(s.ProjectedNet),
			s.DaysRemaining,
			FormatMoney(s.DailyBudgetRecommended),
		))
	}

	for _, w := range m.result.Warnings {
		lines = append(lines, lipgloss.NewStyle().Foreground(warnColor).Render("! "+w))
	}

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// Messages

type loadBudgetMsg struct {
	result  *projection.BudgetResult
	summary *projection.Summary
	err     error
}

func (m BudgetModel) loadCmd() tea.Cmd {
	req := projection.Request{Period: projection.MonthPeriod(m.month), Strategy: m.strategy}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		res, err := m.svc.Budget(ctx, req)
		if err != nil {
			return loadBudgetMsg{err: err}
		}

		summary, err := m.svc.Summary(ctx, req.Period)
		if err != nil {
			return loadBudgetMsg{err: err}
		}

		return loadBudgetMsg{result: res, summary: summary}
	}
}
