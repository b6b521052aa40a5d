package debt

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/debt"
	"github.com/MrJamesThe3rd/finplan/internal/http/render"
	"github.com/MrJamesThe3rd/finplan/internal/loan"
)

type Handler struct {
	svc *debt.Service
}

func NewHandler(svc *debt.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/summary", h.summary)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/status", h.setStatus)
	r.Get("/{id}/schedule", h.schedule)
	r.Get("/{id}/payments", h.payments)
	r.Post("/{id}/payments", h.recordPayment)
	r.Delete("/{id}/payments/{paymentID}", h.deletePayment)
}

type createRequest struct {
	Description       string          `json:"description"`
	Type              debt.Type       `json:"type"`
	Amount            decimal.Decimal `json:"amount"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate"`
	DurationMonths    int             `json:"duration_months"`
	PaymentFrequency  loan.Frequency  `json:"payment_frequency"`
	LoanType          loan.Type       `json:"loan_type"`
	StartDate         render.Date     `json:"start_date"`
	ContactName       string          `json:"contact_name"`
	ContactInfo       string          `json:"contact_info"`
	Notes             string          `json:"notes"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	req := createRequest{
		PaymentFrequency: loan.FrequencyMonthly,
		LoanType:         loan.TypeAmortizable,
	}
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	d, err := h.svc.Create(r.Context(), debt.CreateParams{
		Description:       req.Description,
		Type:              req.Type,
		Amount:            req.Amount,
		AnnualRatePercent: req.AnnualRatePercent,
		DurationMonths:    req.DurationMonths,
		PaymentFrequency:  req.PaymentFrequency,
		LoanType:          req.LoanType,
		StartDate:         req.StartDate.Time,
		ContactName:       req.ContactName,
		ContactInfo:       req.ContactInfo,
		Notes:             req.Notes,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, toDebtResponse(d))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	debts, err := h.svc.List(r.Context(), debt.ListFilter{
		Type:   debt.Type(q.Get("type")),
		Status: debt.Status(q.Get("status")),
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := make([]debtResponse, len(debts))
	for i, d := range debts {
		resp[i] = toDebtResponse(d)
	}

	render.JSON(w, http.StatusOK, resp)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	totals, err := h.svc.Summary(r.Context())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, totals)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := render.PathID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	d, err := h.svc.Get(r.Context(), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toDebtResponse(d))
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

type statusRequest struct {
	Status debt.Status `json:"status"`
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	id, err := render.PathID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	var req statusRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	d, err := h.svc.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toDebtResponse(d))
}

func (h *Handler) schedule(w http.ResponseWriter, r *http.Request) {
	id, err := render.PathID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	res, err := h.svc.Schedule(r.Context(), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toScheduleResponse(res))
}

func (h *Handler) payments(w http.ResponseWriter, r *http.Request) {
	id, err := render.PathID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	payments, err := h.svc.Payments(r.Context(), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := make([]paymentResponse, len(payments))
	for i, p := range payments {
		resp[i] = toPaymentResponse(p)
	}

	render.JSON(w, http.StatusOK, resp)
}

type paymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	PaidOn *render.Date    `json:"paid_on"`
	Notes  string          `json:"notes"`
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := render.PathID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	var req paymentRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	params := debt.PaymentParams{Amount: req.Amount, Notes: req.Notes}
	if req.PaidOn != nil {
		params.PaidOn = req.PaidOn.Time
	}

	d, err := h.svc.RecordPayment(r.Context(), id, params)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toDebtResponse(d))
}

func (h *Handler) deletePayment(w http.ResponseWriter, r *http.Request) {
	id, err := render.PathID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	paymentID, err := render.PathID(r, "paymentID")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	d, err := h.svc.DeletePayment(r.Context(), id, paymentID)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toDebtResponse(d))
}
