package importcsv

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/MrJamesThe3rd/finplan/internal/errors"
	"github.com/MrJamesThe3rd/finplan/internal/http/render"
	"github.com/MrJamesThe3rd/finplan/internal/importer"
	"github.com/MrJamesThe3rd/finplan/internal/ledger"
)

const maxUpload = 10 << 20

type Handler struct {
	svc *importer.Service
}

func NewHandler(svc *importer.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
}

type rowResponse struct {
	ID              *uuid.UUID      `json:"id,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Type            ledger.Type     `json:"type"`
	Description     string          `json:"description"`
	TransactionDate render.Date     `json:"transaction_date"`
	ValueDate       *render.Date    `json:"value_date,omitempty"`
	CategoryID      *uuid.UUID      `json:"category_id,omitempty"`
}

type importResponse struct {
	Imported   []rowResponse `json:"imported"`
	Pending    []rowResponse `json:"pending"`
	Duplicates []rowResponse `json:"duplicates"`
}

// importCSV takes a multipart upload with the fields bank, account_id, file
// and the optional dry_run.
func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)

	if err := r.ParseMultipartForm(maxUpload); err != nil {
		render.Error(w, r, apperrors.WithMessage(apperrors.ErrInvalidInput, "failed to parse form: "+err.Error()))
		return
	}

	accountID, err := uuid.Parse(r.FormValue("account_id"))
	if err != nil {
		render.Error(w, r, apperrors.WithMessage(apperrors.ErrInvalidInput, "account_id field is required"))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		render.Error(w, r, apperrors.WithMessage(apperrors.ErrInvalidInput, "file field is required"))
		return
	}
	defer file.Close()

	params := importer.ImportParams{
		Bank:      importer.Bank(r.FormValue("bank")),
		AccountID: accountID,
		DryRun:    r.FormValue("dry_run") == "true",
	}

	res, err := h.svc.Import(r.Context(), params, file)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := importResponse{
		Imported:   make([]rowResponse, 0, len(res.Imported)),
		Pending:    toRows(res.Pending),
		Duplicates: toRows(res.Duplicates),
	}

	for _, tx := range res.Imported {
		resp.Imported = append(resp.Imported, rowResponse{
			ID:              &tx.ID,
			Amount:          tx.Amount,
			Type:            tx.Type,
			Description:     tx.Description,
			TransactionDate: render.NewDate(tx.TransactionDate),
			ValueDate:       render.DatePtr(tx.ValueDate),
			CategoryID:      tx.CategoryID,
		})
	}

	status := http.StatusCreated
	if params.DryRun {
		status = http.StatusOK
	}

	render.JSON(w, status, resp)
}

func toRows(params []ledger.CreateParams) []rowResponse {
	rows := make([]rowResponse, 0, len(params))
	for _, p := range params {
		rows = append(rows, rowResponse{
			Amount:          p.Amount,
			Type:            p.Type,
			Description:     p.Description,
			TransactionDate: render.NewDate(p.TransactionDate),
			ValueDate:       render.DatePtr(p.ValueDate),
			CategoryID:      p.CategoryID,
		})
	}

	return rows
}
