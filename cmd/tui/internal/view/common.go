package view

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

const dbTimeout = 5 * time.Second

// View is implemented by every screen reachable from the menu.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// FormatMoney renders an amount with two decimals.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}

var (
	activeColor = lipgloss.Color("205")
	errorColor  = lipgloss.Color("196")
	warnColor   = lipgloss.Color("214")
	okColor     = lipgloss.Color("42")
)

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(activeColor).Render(s)
}

func errorView(err error) string {
	return lipgloss.NewStyle().Padding(2).Foreground(errorColor).Render("Error: " + err.Error())
}
