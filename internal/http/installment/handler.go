package installment

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/http/render"
	"github.com/MrJamesThe3rd/finplan/internal/installment"
)

type Handler struct {
	svc *installment.Service
}

func NewHandler(svc *installment.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Get("/{id}/payments", h.payments)
	r.Post("/{id}/payments", h.recordPayment)
	r.Get("/{id}/adjustments", h.preview)
	r.Post("/{id}/adjust", h.adjust)
	r.Post("/{id}/complete", h.complete)
}

type createRequest struct {
	Description       string                `json:"description"`
	TotalAmount       decimal.Decimal       `json:"total_amount"`
	InstallmentAmount decimal.Decimal       `json:"installment_amount"`
	Frequency         installment.Frequency `json:"frequency"`
	StartDate         render.Date           `json:"start_date"`
	AccountID         uuid.UUID             `json:"account_id"`
	CategoryID        *uuid.UUID            `json:"category_id"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	plan, err := h.svc.Create(r.Context(), installment.CreateParams{
		Description:       req.Description,
		TotalAmount:       req.TotalAmount,
		InstallmentAmount: req.InstallmentAmount,
		Frequency:         req.Frequency,
		StartDate:         req.StartDate.Time,
		AccountID:         req.AccountID,
		CategoryID:        req.CategoryID,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, toPlanResponse(plan))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	plans, err := h.svc.List(r.Context(), installment.ListFilter{ActiveOnly: r.URL.Query().Get("active") == "true"})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := make([]planResponse, len(plans))
	for i, p := range plans {
		resp[i] = toPlanResponse(p)
	}

	render.JSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := render.PathID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	plan, err := h.svc.Get(r.Context(), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toPlanResponse(plan))
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

func (h *Handler) payments(w http.ResponseWriter, r *http.Request) {
	id, err := render.PathID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	records, err := h.svc.Payments(r.Context(), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := make([]paymentResponse, len(records))
	for i, rec := range records {
		resp[i] = toPaymentResponse(rec)
	}

	render.JSON(w, http.StatusOK, resp)
}

type paymentRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	PaidOn        *render.Date    `json:"paid_on"`
	TransactionID *uuid.UUID      `json:"transaction_id"`
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

	params := installment.PaymentParams{Amount: req.Amount, TransactionID: req.TransactionID}
	if req.PaidOn != nil {
		params.PaidOn = req.PaidOn.Time
	}

	plan, err := h.svc.RecordPayment(r.Context(), id, params)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toPlanResponse(plan))
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	id, err := render.PathID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	custom, err := render.QueryDecimal(r, "amount")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	policy := installment.Policy(r.URL.Query().Get("policy"))
	if policy == "" {
		policy = installment.PolicyKeepCurrent
	}

	adj, err := h.svc.Preview(r.Context(), id, policy, custom)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toAdjustmentResponse(adj))
}

type adjustRequest struct {
	Policy installment.Policy `json:"policy"`
	Amount *decimal.Decimal   `json:"amount"`
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request) {
	id, err := render.PathID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	var req adjustRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	custom := decimal.Zero
	if req.Amount != nil {
		custom = *req.Amount
	}

	plan, err := h.svc.Adjust(r.Context(), id, req.Policy, custom)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toPlanResponse(plan))
}

func (h *Handler) complete(w http.ResponseWriter, r *http.Request) {
	id, err := render.PathID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	plan, err := h.svc.Complete(r.Context(), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toPlanResponse(plan))
}
