package debt

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/debt"
	"github.com/MrJamesThe3rd/finplan/internal/http/render"
	"github.com/MrJamesThe3rd/finplan/internal/loan"
)

type debtResponse struct {
	ID                uuid.UUID       `json:"id"`
	Description       string          `json:"description"`
	Type              debt.Type       `json:"type"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	RemainingAmount   decimal.Decimal `json:"remaining_amount"`
	PaidAmount        decimal.Decimal `json:"paid_amount"`
	Progress          decimal.Decimal `json:"progress"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate"`
	DurationMonths    int             `json:"duration_months"`
	PaymentFrequency  loan.Frequency  `json:"payment_frequency"`
	LoanType          loan.Type       `json:"loan_type"`
	PaymentAmount     decimal.Decimal `json:"payment_amount"`
	StartDate         render.Date     `json:"start_date"`
	EndDate           render.Date     `json:"end_date"`
	Status            debt.Status     `json:"status"`
	ContactName       string          `json:"contact_name,omitempty"`
	ContactInfo       string          `json:"contact_info,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func toDebtResponse(d *debt.Debt) debtResponse {
	return debtResponse{
		ID:                d.ID,
		Description:       d.Description,
		Type:              d.Type,
		TotalAmount:       d.TotalAmount,
		RemainingAmount:   d.RemainingAmount,
		PaidAmount:        d.PaidAmount(),
		Progress:          d.Progress(),
		AnnualRatePercent: d.AnnualRatePercent,
		DurationMonths:    d.DurationMonths,
		PaymentFrequency:  d.PaymentFrequency,
		LoanType:          d.LoanType,
		PaymentAmount:     d.PaymentAmount,
		StartDate:         render.NewDate(d.StartDate),
		EndDate:           render.NewDate(d.EndDate),
		Status:            d.Status,
		ContactName:       d.ContactName,
		ContactInfo:       d.ContactInfo,
		Notes:             d.Notes,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

type paymentResponse struct {
	ID          uuid.UUID       `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate render.Date     `json:"payment_date"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func toPaymentResponse(p *debt.Payment) paymentResponse {
	return paymentResponse{
		ID:          p.ID,
		Amount:      p.Amount,
		PaymentDate: render.NewDate(p.PaymentDate),
		Notes:       p.Notes,
		CreatedAt:   p.CreatedAt,
	}
}

type scheduleItemResponse struct {
	Period           int             `json:"period"`
	Date             render.Date     `json:"date"`
	Payment          decimal.Decimal `json:"payment"`
	Principal        decimal.Decimal `json:"principal"`
	Interest         decimal.Decimal `json:"interest"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

type scheduleResponse struct {
	PeriodicPayment decimal.Decimal        `json:"periodic_payment"`
	TotalInterest   decimal.Decimal        `json:"total_interest"`
	TotalAmount     decimal.Decimal        `json:"total_amount"`
	Schedule        []scheduleItemResponse `json:"schedule"`
}

func toScheduleResponse(res *loan.Result) scheduleResponse {
	resp := scheduleResponse{
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

	return resp
}
