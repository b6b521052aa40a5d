package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/MrJamesThe3rd/finplan/internal/errors"
)

var (
	ErrNotFound         = apperrors.ErrTransactionNotFound
	ErrCategoryNotFound = apperrors.ErrCategoryNotFound
	ErrAccountNotFound  = apperrors.ErrAccountNotFound
)

// Type represents the type of transaction.
type Type string

const (
	TypeIncome   Type = "income"
	TypeExpense  Type = "expense"
	TypeTransfer Type = "transfer"
)

func (t Type) Valid() bool {
	switch t {
	case TypeIncome, TypeExpense, TypeTransfer:
		return true
	}

	return false
}

// Transaction is a booked movement on one of the user's accounts.
type Transaction struct {
	ID                  uuid.UUID
	Amount              decimal.Decimal
	Type                Type
	Description         string
	TransactionDate     time.Time
	ValueDate           *time.Time
	AccountID           uuid.UUID
	CategoryID          *uuid.UUID
	TransferToAccountID *uuid.UUID
	TransferFee         decimal.Decimal
	ExcludeFromStats    bool
	RecurringID         *uuid.UUID // Set when materialized from a recurring template
	CreatedAt           time.Time
}

// NetEffect returns the change this transaction makes to the combined balance
// of all accounts. A transfer only moves money between accounts, so only its
// fee leaves the total.
func (t *Transaction) NetEffect() decimal.Decimal {
	switch t.Type {
	case TypeIncome:
		return t.Amount
	case TypeExpense:
		return t.Amount.Neg()
	case TypeTransfer:
		return t.TransferFee.Neg()
	}

	return decimal.Zero
}

// Counts reports whether the transaction takes part in statistics and budgets.
func (t *Transaction) Counts() bool {
	return !t.ExcludeFromStats
}

// InCategory reports whether the transaction is booked on the given category.
func (t *Transaction) InCategory(id uuid.UUID) bool {
	return t.CategoryID != nil && *t.CategoryID == id
}

// Category groups transactions. A nil Budget means the category has no budget.
type Category struct {
	ID        uuid.UUID
	Name      string
	Color     string
	Budget    *decimal.Decimal
	CreatedAt time.Time
}

// BudgetAmount returns the monthly budget, or zero when none is set.
func (c *Category) BudgetAmount() decimal.Decimal {
	if c.Budget == nil {
		return decimal.Zero
	}

	return *c.Budget
}

// HasBudget reports whether a positive budget is set.
func (c *Category) HasBudget() bool {
	return c.BudgetAmount().IsPositive()
}

type Account struct {
	ID        uuid.UUID
	Name      string
	Balance   decimal.Decimal
	CreatedAt time.Time
}

// TotalBalance sums the balances of all accounts, skipping nil entries.
func TotalBalance(accounts []*Account) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accounts {
		if a == nil {
			continue
		}

		total = total.Add(a.Balance)
	}

	return total
}
