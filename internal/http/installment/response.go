package installment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/http/render"
	"github.com/MrJamesThe3rd/finplan/internal/installment"
)

type planResponse struct {
	ID                uuid.UUID             `json:"id"`
	Description       string                `json:"description"`
	TotalAmount       decimal.Decimal       `json:"total_amount"`
	RemainingAmount   decimal.Decimal       `json:"remaining_amount"`
	PaidAmount        decimal.Decimal       `json:"paid_amount"`
	InstallmentAmount decimal.Decimal       `json:"installment_amount"`
	Frequency         installment.Frequency `json:"frequency"`
	StartDate         render.Date           `json:"start_date"`
	NextPaymentDate   render.Date           `json:"next_payment_date"`
	AccountID         uuid.UUID             `json:"account_id"`
	CategoryID        *uuid.UUID            `json:"category_id,omitempty"`
	IsActive          bool                  `json:"is_active"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

func toPlanResponse(p *installment.Plan) planResponse {
	return planResponse{
		ID:                p.ID,
		Description:       p.Description,
		TotalAmount:       p.TotalAmount,
		RemainingAmount:   p.RemainingAmount,
		PaidAmount:        p.PaidAmount(),
		InstallmentAmount: p.InstallmentAmount,
		Frequency:         p.Frequency,
		StartDate:         render.NewDate(p.StartDate),
		NextPaymentDate:   render.NewDate(p.NextPaymentDate),
		AccountID:         p.AccountID,
		CategoryID:        p.CategoryID,
		IsActive:          p.IsActive,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

type paymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	PaymentDate   render.Date     `json:"payment_date"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID *uuid.UUID      `json:"transaction_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toPaymentResponse(rec *installment.PaymentRecord) paymentResponse {
	return paymentResponse{
		ID:            rec.ID,
		PaymentDate:   render.NewDate(rec.PaymentDate),
		Amount:        rec.Amount,
		TransactionID: rec.TransactionID,
		CreatedAt:     rec.CreatedAt,
	}
}

type adjustmentResponse struct {
	Policy            installment.Policy `json:"policy"`
	InstallmentAmount decimal.Decimal    `json:"installment_amount"`
	EstimatedPayments int64              `json:"estimated_payments"`
}

func toAdjustmentResponse(a installment.Adjustment) adjustmentResponse {
	return adjustmentResponse{Policy: a.Policy, InstallmentAmount: a.InstallmentAmount, EstimatedPayments: a.EstimatedPayments}
}
