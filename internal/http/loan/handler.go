package loan

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/http/render"
	"github.com/MrJamesThe3rd/finplan/internal/loan"
)

// Handler exposes the amortization calculator. It keeps no state.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/amortize", h.amortize)
}

type amortizeRequest struct {
	Principal         decimal.Decimal `json:"principal"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate"`
	DurationMonths    int             `json:"duration_months"`
	Frequency         loan.Frequency  `json:"frequency"`
	Type              loan.Type       `json:"type"`
	StartDate         render.Date     `json:"start_date"`
}

type scheduleItemResponse struct {
	Period           int             `json:"period"`
	Date             render.Date     `json:"date"`
	Payment          decimal.Decimal `json:"payment"`
	Principal        decimal.Decimal `json:"principal"`
	Interest         decimal.Decimal `json:"interest"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

type amortizeResponse struct {
	PeriodicPayment decimal.Decimal        `json:"periodic_payment"`
	TotalInterest   decimal.Decimal        `json:"total_interest"`
	TotalAmount     decimal.Decimal        `json:"total_amount"`
	Schedule        []scheduleItemResponse `json:"schedule"`
}

func (h *Handler) amortize(w http.ResponseWriter, r *http.Request) {
	var req amortizeRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	if req.Frequency == "" {
		req.Frequency = loan.FrequencyMonthly
	}

	if req.Type == "" {
		req.Type = loan.TypeAmortizable
	}

	if req.StartDate.IsZero() {
		req.StartDate = render.NewDate(time.Now())
	}

	res, err := loan.Amortize(loan.Params{
		Principal:         req.Principal,
		AnnualRatePercent: req.AnnualRatePercent,
		DurationMonths:    req.DurationMonths,
		Frequency:         req.Frequency,
		Type:              req.Type,
		StartDate:         req.StartDate.Time,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := amortizeResponse{
		PeriodicPayment: res.PeriodicPayment.Round(2),
		TotalInterest:   res.TotalInterest.Round(2),
		TotalAmount:     res.TotalAmount.Round(2),
		Schedule:        make([]scheduleItemResponse, len(res.Schedule)),
	}

	for i, item := range res.Schedule {
		resp.Schedule[i] = scheduleItemResponse{
			Period:           item.Period,
			Date:             render.NewDate(item.Date),
			Payment:          item.Payment.Round(2),
			Principal:        item.Principal.Round(2),
			Interest:         item.Interest.Round(2),
			RemainingBalance: item.RemainingBalance.Round(2),
		}
	}

	render.JSON(w, http.StatusOK, resp)
}
