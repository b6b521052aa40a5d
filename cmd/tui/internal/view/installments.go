package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/installment"
)

type installmentState int

const (
	installmentStateBrowse installmentState = iota
	installmentStateForm
	installmentStatePreview
)

type adjustFields struct {
	policy installment.Policy
	amount string
}

func (f *adjustFields) custom() decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(f.amount))
	if err != nil {
		return decimal.Zero
	}

	return d
}

type InstallmentsModel struct {
	CommonModel
	svc *installment.Service

	state   installmentState
	table   table.Model
	plans   []*installment.Plan
	form    *huh.Form
	fields  *adjustFields
	preview *installment.Adjustment
	spinner spinner.Model

	activeOnly bool
	loading    bool
	err        error
	status     string
}

func NewInstallmentsModel(svc *installment.Service) InstallmentsModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(activeColor)

	return InstallmentsModel{
		svc:        svc,
		activeOnly: true,
		loading:    true,
		spinner:    s,
		fields:     &adjustFields{policy: installment.PolicyKeepCurrent},
		table: newTable([]table.Column{
			{Title: "Description", Width: 28},
			{Title: "Remaining", Width: 12},
			{Title: "Installment", Width: 12},
			{Title: "Left", Width: 6},
			{Title: "Next", Width: 12},
			{Title: "Active", Width: 7},
		}, 15),
	}
}

func (m InstallmentsModel) Title() string { return "Installment Plans" }

func (m InstallmentsModel) ShortHelp() string {
	switch m.state {
	case installmentStateForm:
		return "Navigate form | Esc: cancel"
	case installmentStatePreview:
		return "y: apply | Esc: cancel"
	}

	return "Esc: back | a: adjust | c: complete | f: toggle inactive | r: refresh"
}

func (m InstallmentsModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd())
}

func (m InstallmentsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadPlansMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.plans = msg.plans
		m.refreshTable()

		return m, nil

	case previewMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			m.state = installmentStateBrowse
			m.table.Focus()

			return m, nil
		}

		m.preview = &msg.adj
		m.state = installmentStatePreview

		return m, nil

	case planSavedMsg:
		m.state = installmentStateBrowse
		m.preview = nil
		m.form = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.status = fmt.Sprintf("Saved %q", msg.plan.Description)

		return m, m.loadCmd()

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case installmentStateBrowse:
		return m.updateBrowse(msg)
	case installmentStateForm:
		return m.updateForm(msg)
	case installmentStatePreview:
		return m.updatePreview(msg)
	}

	return m, nil
}

func (m InstallmentsModel) selected() *installment.Plan {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.plans) {
		return nil
	}

	return m.plans[idx]
}

func (m InstallmentsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.loadCmd())
		case "f":
			m.activeOnly = !m.activeOnly
			return m, m.loadCmd()
		case "a":
			if m.selected() == nil {
				return m, nil
			}

			m.fields = &adjustFields{policy: installment.PolicyKeepCurrent}
			m.form = m.buildForm()
			m.state = installmentStateForm
			m.table.Blur()

			return m, m.form.Init()
		case "c":
			if plan := m.selected(); plan != nil {
				return m, m.completeCmd(plan)
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m InstallmentsModel) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[installment.Policy]().
				Title("Policy").
				Options(
					huh.NewOption("Keep current amount", installment.PolicyKeepCurrent),
					huh.NewOption("Same count, lower amount", installment.PolicyReduceAmount),
					huh.NewOption("Same amount, fewer payments", installment.PolicyReduceCount),
					huh.NewOption("Custom amount", installment.PolicyCustom),
				).
				Value(&m.fields.policy),
			huh.NewInput().
				Title("Custom amount").
				Description("Only used by the custom policy").
				Value(&m.fields.amount),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m InstallmentsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = installmentStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.previewCmd(m.selected())
}

func (m InstallmentsModel) updatePreview(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "y":
		return m, m.adjustCmd(m.selected())
	case "esc", "n":
		m.state = installmentStateBrowse
		m.preview = nil
		m.table.Focus()
	}

	return m, nil
}

func (m *InstallmentsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.plans))
	for _, p := range m.plans {
		left := "-"
		if p.IsActive && p.InstallmentAmount.IsPositive() {
			left = strconv.FormatInt(p.RemainingAmount.Div(p.InstallmentAmount).Ceil().IntPart(), 10)
		}

		active := "no"
		if p.IsActive {
			active = "yes"
		}

		rows = append(rows, table.Row{
			p.Description,
			FormatMoney(p.RemainingAmount),
			FormatMoney(p.InstallmentAmount),
			left,
			FormatDate(p.NextPaymentDate),
			active,
		})
	}

	m.table.SetRows(rows)
}

func (m InstallmentsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render(m.spinner.View() + " Loading installment plans...")
	}

	if m.err != nil {
		return errorView(m.err)
	}

	filter := "Active"
	if !m.activeOnly {
		filter = "All"
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render("Filter: [f] "+activeStyle(filter)),
		boxed(m.table.View()),
	)

	var panel string

	switch {
	case m.state == installmentStateForm && m.form != nil:
		panel = "Adjust Installment\n\n" + m.form.View()
	case m.state == installmentStatePreview && m.preview != nil:
		panel = fmt.Sprintf("Preview\n\nPolicy: %s\nInstallment: %s\nPayments left: %d\n\nApply? (y/n)",
			m.preview.Policy,
			activeStyle(FormatMoney(m.preview.InstallmentAmount)),
			m.preview.EstimatedPayments,
		)
	}

	if panel != "" {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(panel))
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

// Messages

type loadPlansMsg struct {
	plans []*installment.Plan
	err   error
}

func (m InstallmentsModel) loadCmd() tea.Cmd {
	filter := installment.ListFilter{ActiveOnly: m.activeOnly}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		plans, err := m.svc.List(ctx, filter)
		return loadPlansMsg{plans: plans, err: err}
	}
}

type previewMsg struct {
	adj installment.Adjustment
	err error
}

func (m InstallmentsModel) previewCmd(plan *installment.Plan) tea.Cmd {
	if plan == nil {
		return nil
	}

	policy, custom := m.fields.policy, m.fields.custom()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		adj, err := m.svc.Preview(ctx, plan.ID, policy, custom)
		return previewMsg{adj: adj, err: err}
	}
}

type planSavedMsg struct {
	plan *installment.Plan
	err  error
}

func (m InstallmentsModel) adjustCmd(plan *installment.Plan) tea.Cmd {
	if plan == nil {
		return nil
	}

	policy, custom := m.fields.policy, m.fields.custom()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		updated, err := m.svc.Adjust(ctx, plan.ID, policy, custom)
		return planSavedMsg{plan: updated, err: err}
	}
}

func (m InstallmentsModel) completeCmd(plan *installment.Plan) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		updated, err := m.svc.Complete(ctx, plan.ID)
		return planSavedMsg{plan: updated, err: err}
	}
}
