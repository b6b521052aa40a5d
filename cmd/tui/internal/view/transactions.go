package view

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/ledger"
)

type txState int

const (
	txStateTimeframe txState = iota
	txStateList
	txStateAdding
	txStateDeleting
)

// txItem wraps a transaction to implement list.Item.
type txItem struct {
	tx *ledger.Transaction
}

func (i txItem) Title() string {
	kind := lipgloss.NewStyle().Faint(true).Render(fmt.Sprintf("[%s]", i.tx.Type))

	amount := FormatMoney(i.tx.Amount)
	if i.tx.Type == ledger.TypeExpense {
		amount = "-" + amount
	}

	return fmt.Sprintf("%s  %10s  %s  %s", FormatDate(i.tx.TransactionDate), amount, kind, i.tx.Description)
}

func (i txItem) Description() string {
	var notes []string

	if i.tx.RecurringID != nil {
		notes = append(notes, "recurring")
	}

	if i.tx.ExcludeFromStats {
		notes = append(notes, "excluded from stats")
	}

	if i.tx.Type == ledger.TypeTransfer && i.tx.TransferFee.IsPositive() {
		notes = append(notes, "fee "+FormatMoney(i.tx.TransferFee))
	}

	return strings.Join(notes, ", ")
}

func (i txItem) FilterValue() string {
	return i.tx.Description
}

// txFields backs the new transaction form.
type txFields struct {
	kind        ledger.Type
	amount      string
	description string
	date        string
	accountID   uuid.UUID
	confirm     bool
}

type TransactionsModel struct {
	CommonModel
	svc *ledger.Service

	state           txState
	timeframePicker TimeframePicker
	list            list.Model
	form            *huh.Form
	fields          *txFields
	txs             []*ledger.Transaction
	accounts        []*ledger.Account
	selectedTx      *ledger.Transaction

	startDate time.Time
	endDate   time.Time
	allTime   bool
	loading   bool
	status    string
}

func NewTransactionsModel(svc *ledger.Service) TransactionsModel {
	l := list.New([]list.Item{}, txItemDelegate{}, 0, 0)
	l.Title = "Transactions"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(true)

	return TransactionsModel{
		svc:             svc,
		timeframePicker: NewTimeframePicker(TimeframeThisWeek),
		list:            l,
	}
}

func (m TransactionsModel) Title() string { return "Transactions" }

func (m TransactionsModel) ShortHelp() string {
	switch m.state {
	case txStateTimeframe:
		return "Esc: back | Enter: select"
	case txStateList:
		return "Esc: back | n: new | x: delete | /: filter"
	case txStateAdding, txStateDeleting:
		return "Esc: cancel | Enter/Tab: navigate form"
	}

	return ""
}

func (m TransactionsModel) Init() tea.Cmd {
	return m.timeframePicker.Init()
}

func (m TransactionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.startDate = msg.Start
		m.endDate = msg.End
		m.allTime = msg.All
		m.loading = true
		m.state = txStateList

		return m, m.loadTxsCmd()

	case loadTxsMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.txs = msg.txs
		m.accounts = msg.accounts
		m.refreshListItems()

		if len(msg.txs) == 0 {
			m.status = "No transactions found."
		}

		return m, nil

	case saveTxResultMsg:
		m.state = txStateList
		m.form = nil

		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
			return m, nil
		}

		m.status = msg.status

		return m, m.loadTxsCmd()

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil
	}

	switch m.state {
	case txStateTimeframe:
		return m.updateTimeframe(msg)
	case txStateList:
		return m.updateList(msg)
	case txStateAdding, txStateDeleting:
		return m.updateForm(msg)
	}

	return m, nil
}

func (m TransactionsModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	var cmd tea.Cmd
	m.timeframePicker, cmd = m.timeframePicker.Update(msg)

	return m, cmd
}

func (m TransactionsModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "n":
			return m.startAdding()
		case "x":
			return m.startDeleting()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m TransactionsModel) startAdding() (tea.Model, tea.Cmd) {
	if len(m.accounts) == 0 {
		m.status = "Create an account first."
		return m, nil
	}

	m.fields = &txFields{
		kind:      ledger.TypeExpense,
		date:      FormatDate(time.Now()),
		accountID: m.accounts[0].ID,
	}

	accounts := make([]huh.Option[uuid.UUID], len(m.accounts))
	for i, a := range m.accounts {
		accounts[i] = huh.NewOption(a.Name, a.ID)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[ledger.Type]().
				Title("Type").
				Options(
					huh.NewOption("Expense", ledger.TypeExpense),
					huh.NewOption("Income", ledger.TypeIncome),
				).
				Value(&m.fields.kind),
			huh.NewInput().
				Title("Amount").
				Value(&m.fields.amount).
				Validate(func(s string) error {
					d, err := decimal.NewFromString(strings.TrimSpace(s))
					if err != nil || !d.IsPositive() {
						return fmt.Errorf("amount must be a positive number")
					}
					return nil
				}),
			huh.NewInput().
				Title("Description").
				Value(&m.fields.description).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("description cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&m.fields.date).
				Validate(func(s string) error {
					if _, err := time.Parse(time.DateOnly, s); err != nil {
						return fmt.Errorf("use YYYY-MM-DD")
					}
					return nil
				}),
			huh.NewSelect[uuid.UUID]().
				Title("Account").
				Options(accounts...).
				Value(&m.fields.accountID),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = txStateAdding

	return m, m.form.Init()
}

func (m TransactionsModel) startDeleting() (tea.Model, tea.Cmd) {
	selected, ok := m.list.SelectedItem().(txItem)
	if !ok {
		return m, nil
	}

	m.selectedTx = selected.tx
	m.fields = &txFields{}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q?", selected.tx.Description)).
				Affirmative("Yes").
				Negative("No").
				Value(&m.fields.confirm),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = txStateDeleting

	return m, m.form.Init()
}

func (m TransactionsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = txStateList
		m.form = nil

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == txStateDeleting {
		if !m.fields.confirm {
			m.state = txStateList
			m.form = nil

			return m, nil
		}

		return m, m.deleteTxCmd(m.selectedTx.ID)
	}

	return m, m.createTxCmd()
}

func (m TransactionsModel) View() string {
	switch m.state {
	case txStateTimeframe:
		return lipgloss.NewStyle().Padding(1).Render(m.timeframePicker.View())

	case txStateList:
		if m.loading {
			return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
		}

		statusLine := ""
		if m.status != "" {
			statusLine = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n"
		}

		return lipgloss.NewStyle().Padding(1).Render(statusLine + m.list.View())

	case txStateAdding, txStateDeleting:
		if m.form == nil {
			return ""
		}

		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	}

	return ""
}

func (m *TransactionsModel) refreshListItems() {
	items := make([]list.Item, len(m.txs))
	for i, tx := range m.txs {
		items[i] = txItem{tx: tx}
	}

	m.list.SetItems(items)
}

// Messages

type loadTxsMsg struct {
	txs      []*ledger.Transaction
	accounts []*ledger.Account
	err      error
}

func (m TransactionsModel) loadTxsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		filter := ledger.ListFilter{}

		if !m.allTime {
			start, end := m.startDate, m.endDate
			filter.StartDate = &start
			filter.EndDate = &end
		}

		txs, err := m.svc.List(ctx, filter)
		if err != nil {
			return loadTxsMsg{err: err}
		}

		accounts, err := m.svc.Accounts(ctx)

		return loadTxsMsg{txs: txs, accounts: accounts, err: err}
	}
}

type saveTxResultMsg struct {
	status string
	err    error
}

func (m TransactionsModel) createTxCmd() tea.Cmd {
	f := *m.fields
	svc := m.svc

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		date, _ := time.Parse(time.DateOnly, f.date)

		_, err := svc.Create(ctx, ledger.CreateParams{
			Amount:          decimal.RequireFromString(strings.TrimSpace(f.amount)),
			Type:            f.kind,
			Description:     strings.TrimSpace(f.description),
			TransactionDate: date,
			AccountID:       f.accountID,
		})

		return saveTxResultMsg{status: "Saved.", err: err}
	}
}

func (m TransactionsModel) deleteTxCmd(id uuid.UUID) tea.Cmd {
	svc := m.svc

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return saveTxResultMsg{status: "Deleted.", err: svc.Delete(ctx, id)}
	}
}

// txItemDelegate renders items in the list.
type txItemDelegate struct{}

func (d txItemDelegate) Height() int                             { return 2 }
func (d txItemDelegate) Spacing() int                            { return 0 }
func (d txItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d txItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(txItem)
	if !ok {
		return
	}

	title := i.Title()
	desc := i.Description()

	if index == m.Index() {
		title = lipgloss.NewStyle().Foreground(activeColor).Bold(true).Render("> " + title)
	}

	fmt.Fprintf(w, "  %s\n", title)

	if desc == "" {
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintf(w, "    %s\n", lipgloss.NewStyle().Faint(true).Render(desc))
}
