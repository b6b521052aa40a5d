package ledger

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/MrJamesThe3rd/finplan/internal/errors"
	"github.com/MrJamesThe3rd/finplan/internal/http/render"
	"github.com/MrJamesThe3rd/finplan/internal/ledger"
)

type Handler struct {
	svc *ledger.Service
}

func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) TransactionRoutes(r chi.Router) {
	r.Post("/", h.createTransaction)
	r.Get("/", h.listTransactions)
	r.Get("/{id}", h.getTransaction)
	r.Delete("/{id}", h.deleteTransaction)
}

func (h *Handler) CategoryRoutes(r chi.Router) {
	r.Post("/", h.createCategory)
	r.Get("/", h.listCategories)
}

func (h *Handler) AccountRoutes(r chi.Router) {
	r.Post("/", h.createAccount)
	r.Get("/", h.listAccounts)
}

type createTransactionRequest struct {
	Amount              decimal.Decimal  `json:"amount"`
	Type                ledger.Type      `json:"type"`
	Description         string           `json:"description"`
	TransactionDate     render.Date      `json:"transaction_date"`
	ValueDate           *render.Date     `json:"value_date"`
	AccountID           uuid.UUID        `json:"account_id"`
	CategoryID          *uuid.UUID       `json:"category_id"`
	TransferToAccountID *uuid.UUID       `json:"transfer_to_account_id"`
	TransferFee         *decimal.Decimal `json:"transfer_fee"`
	IncludeInStats      *bool            `json:"include_in_stats"`
}

func (h *Handler) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	params := ledger.CreateParams{
		Amount:              req.Amount,
		Type:                req.Type,
		Description:         req.Description,
		TransactionDate:     req.TransactionDate.Time,
		AccountID:           req.AccountID,
		CategoryID:          req.CategoryID,
		TransferToAccountID: req.TransferToAccountID,
		TransferFee:         decimal.Zero,
	}

	if req.ValueDate != nil {
		params.ValueDate = &req.ValueDate.Time
	}

	if req.TransferFee != nil {
		params.TransferFee = *req.TransferFee
	}

	if req.IncludeInStats != nil {
		params.ExcludeFromStats = !*req.IncludeInStats
	}

	tx, err := h.svc.Create(r.Context(), params)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, toTransactionResponse(tx))
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	var (
		filter ledger.ListFilter
		err    error
	)

	if filter.StartDate, err = render.QueryDate(r, "start_date"); err != nil {
		render.Error(w, r, err)
		return
	}

	if filter.EndDate, err = render.QueryDate(r, "end_date"); err != nil {
		render.Error(w, r, err)
		return
	}

	if s := r.URL.Query().Get("category_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			render.Error(w, r, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid category_id"))
			return
		}

		filter.CategoryID = &id
	}

	txs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toTransactionList(txs))
}

func (h *Handler) getTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := render.PathID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	tx, err := h.svc.Get(r.Context(), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (h *Handler) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := render.PathID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		render.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type createCategoryRequest struct {
	Name   string           `json:"name"`
	Color  string           `json:"color"`
	Budget *decimal.Decimal `json:"budget"`
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	c, err := h.svc.CreateCategory(r.Context(), ledger.CategoryParams{Name: req.Name, Color: req.Color, Budget: req.Budget})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, toCategoryResponse(c))
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.Categories(r.Context())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := make([]categoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = toCategoryResponse(c)
	}

	render.JSON(w, http.StatusOK, resp)
}

type createAccountRequest struct {
	Name           string          `json:"name"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	a, err := h.svc.CreateAccount(r.Context(), req.Name, req.OpeningBalance)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, toAccountResponse(a))
}

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.Accounts(r.Context())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := make([]accountResponse, len(accounts))
	for i, a := range accounts {
		resp[i] = toAccountResponse(a)
	}

	render.JSON(w, http.StatusOK, resp)
}
