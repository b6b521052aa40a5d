package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/finplan/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/finplan/internal/config"
	"github.com/MrJamesThe3rd/finplan/internal/database"
	"github.com/MrJamesThe3rd/finplan/internal/installment"
	installmentStore "github.com/MrJamesThe3rd/finplan/internal/installment/store"
	"github.com/MrJamesThe3rd/finplan/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/finplan/internal/ledger/store"
	"github.com/MrJamesThe3rd/finplan/internal/projection"
	recurrenceStore "github.com/MrJamesThe3rd/finplan/internal/recurrence/store"
)

type model struct {
	ledgerService      *ledger.Service
	installmentService *installment.Service
	projectionService  *projection.Service

	currentView View

	transactionsView view.TransactionsModel
	budgetView       view.BudgetModel
	installmentsView view.InstallmentsModel
	loanView         view.LoanModel
}

type View int

const (
	ViewMenu         View = 0
	ViewTransactions View = 1
	ViewBudget       View = 2
	ViewInstallments View = 3
	ViewLoan         View = 4
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(context.Background(), cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	ledgers := ledgerStore.New(db)

	return model{
		ledgerService:      ledger.NewService(ledgers),
		installmentService: installment.NewService(installmentStore.New(db)),
		projectionService:  projection.NewService(ledgers, recurrenceStore.New(db)),
		currentView:        ViewMenu,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewTransactions
				m.transactionsView = view.NewTransactionsModel(m.ledgerService)

				return m, m.transactionsView.Init()
			case "2":
				m.currentView = ViewBudget
				m.budgetView = view.NewBudgetModel(m.projectionService)

				return m, m.budgetView.Init()
			case "3":
				m.currentView = ViewInstallments
				m.installmentsView = view.NewInstallmentsModel(m.installmentService)

				return m, m.installmentsView.Init()
			case "4":
				m.currentView = ViewLoan
				m.loanView = view.NewLoanModel()

				return m, m.loanView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewTransactions:
		var newModel tea.Model
		newModel, cmd = m.transactionsView.Update(msg)
		m.transactionsView = newModel.(view.TransactionsModel)
	case ViewBudget:
		var newModel tea.Model
		newModel, cmd = m.budgetView.Update(msg)
		m.budgetView = newModel.(view.BudgetModel)
	case ViewInstallments:
		var newModel tea.Model
		newModel, cmd = m.installmentsView.Update(msg)
		m.installmentsView = newModel.(view.InstallmentsModel)
	case ViewLoan:
		var newModel tea.Model
		newModel, cmd = m.loanView.Update(msg)
		m.loanView = newModel.(view.LoanModel)
	}

	return m, cmd
}

func (m model) active() view.View {
	switch m.currentView {
	case ViewTransactions:
		return m.transactionsView
	case ViewBudget:
		return m.budgetView
	case ViewInstallments:
		return m.installmentsView
	case ViewLoan:
		return m.loanView
	}

	return nil
}

func (m model) View() string {
	if m.currentView == ViewMenu {
		return lipgloss.NewStyle().Padding(2).Render(
			"Finplan\n\n" +
				"1. Transactions\n" +
				"2. Budget Projection\n" +
				"3. Installment Plans\n" +
				"4. Loan Calculator\n\n" +
				"q. Quit",
		)
	}

	v := m.active()
	if v == nil {
		return "Unknown View"
	}

	title := lipgloss.NewStyle().Bold(true).PaddingLeft(1).Render(v.Title())
	help := lipgloss.NewStyle().Faint(true).PaddingLeft(1).Render(v.ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left, title, v.View(), help)
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
