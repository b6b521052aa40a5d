package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/http/render"
	"github.com/MrJamesThe3rd/finplan/internal/ledger"
)

type transactionResponse struct {
	ID                  uuid.UUID       `json:"id"`
	Amount              decimal.Decimal `json:"amount"`
	Type                ledger.Type     `json:"type"`
	Description         string          `json:"description"`
	TransactionDate     render.Date     `json:"transaction_date"`
	ValueDate           *render.Date    `json:"value_date,omitempty"`
	AccountID           uuid.UUID       `json:"account_id"`
	CategoryID          *uuid.UUID      `json:"category_id,omitempty"`
	TransferToAccountID *uuid.UUID      `json:"transfer_to_account_id,omitempty"`
	TransferFee         decimal.Decimal `json:"transfer_fee"`
	IncludeInStats      bool            `json:"include_in_stats"`
	RecurringID         *uuid.UUID      `json:"recurring_id,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
}

func toTransactionResponse(tx *ledger.Transaction) transactionResponse {
	return transactionResponse{
		ID:                  tx.ID,
		Amount:              tx.Amount,
		Type:                tx.Type,
		Description:         tx.Description,
		TransactionDate:     render.NewDate(tx.TransactionDate),
		ValueDate:           render.DatePtr(tx.ValueDate),
		AccountID:           tx.AccountID,
		CategoryID:          tx.CategoryID,
		TransferToAccountID: tx.TransferToAccountID,
		TransferFee:         tx.TransferFee,
		IncludeInStats:      !tx.ExcludeFromStats,
		RecurringID:         tx.RecurringID,
		CreatedAt:           tx.CreatedAt,
	}
}

func toTransactionList(txs []*ledger.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toTransactionResponse(tx)
	}

	return resp
}

type categoryResponse struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Color     string           `json:"color"`
	Budget    *decimal.Decimal `json:"budget"`
	CreatedAt time.Time        `json:"created_at"`
}

func toCategoryResponse(c *ledger.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, Color: c.Color, Budget: c.Budget, CreatedAt: c.CreatedAt}
}

type accountResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}

func toAccountResponse(a *ledger.Account) accountResponse {
	return accountResponse{ID: a.ID, Name: a.Name, Balance: a.Balance, CreatedAt: a.CreatedAt}
}
