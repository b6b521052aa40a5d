package recurring

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/MrJamesThe3rd/finplan/internal/errors"
	"github.com/MrJamesThe3rd/finplan/internal/http/render"
	"github.com/MrJamesThe3rd/finplan/internal/ledger"
	"github.com/MrJamesThe3rd/finplan/internal/recurrence"
)

// defaultWindow is how far occurrences are listed when no end is given.
const defaultWindow = 90 * 24 * time.Hour

type Handler struct {
	svc *recurrence.Service
	now func() time.Time
}

func NewHandler(svc *recurrence.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/monthly", h.monthly)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Patch("/{id}/active", h.setActive)
	r.Get("/{id}/occurrences", h.occurrences)
}

type createRequest struct {
	Amount      decimal.Decimal     `json:"amount"`
	Type        ledger.Type         `json:"type"`
	Description string              `json:"description"`
	Interval    recurrence.Interval `json:"interval"`
	StartDate   render.Date         `json:"start_date"`
	EndDate     *render.Date        `json:"end_date"`
	AccountID   uuid.UUID           `json:"account_id"`
	CategoryID  *uuid.UUID          `json:"category_id"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	params := recurrence.CreateParams{
		Amount:      req.Amount,
		Type:        req.Type,
		Description: req.Description,
		Interval:    req.Interval,
		StartDate:   req.StartDate.Time,
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
	}

	if req.EndDate != nil {
		params.EndDate = &req.EndDate.Time
	}

	t, err := h.svc.Create(r.Context(), params)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, toTemplateResponse(t))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := recurrence.ListFilter{ActiveOnly: r.URL.Query().Get("active") == "true"}

	templates, err := h.svc.List(r.Context(), filter)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := make([]templateResponse, len(templates))
	for i, t := range templates {
		resp[i] = toTemplateResponse(t)
	}

	render.JSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := render.PathID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	t, err := h.svc.Get(r.Context(), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toTemplateResponse(t))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
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

type setActiveRequest struct {
	Active bool `json:"active"`
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request) {
	id, err := render.PathID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	var req setActiveRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	t, err := h.svc.SetActive(r.Context(), id, req.Active)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toTemplateResponse(t))
}

func (h *Handler) occurrences(w http.ResponseWriter, r *http.Request) {
	id, err := render.PathID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	from, err := render.QueryDate(r, "from")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	to, err := render.QueryDate(r, "to")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	if from == nil {
		from = new(h.now())
	}

	if to == nil {
		to = new(from.Add(defaultWindow))
	}

	occ, err := h.svc.Occurrences(r.Context(), id, *from, *to)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := make([]occurrenceResponse, len(occ))
	for i, o := range occ {
		resp[i] = toOccurrenceResponse(o)
	}

	render.JSON(w, http.StatusOK, resp)
}

func (h *Handler) monthly(w http.ResponseWriter, r *http.Request) {
	totals, err := h.svc.MonthlyTotals(r.Context())
	if err != nil {
		render.Error(w, r, apperrors.Wrap(apperrors.ErrInternal, err))
		return
	}

	render.JSON(w, http.StatusOK, totalsResponse{
		Income:  totals.Income.Round(2),
		Expense: totals.Expense.Round(2),
		Net:     totals.Net.Round(2),
		Count:   totals.Count,
	})
}
