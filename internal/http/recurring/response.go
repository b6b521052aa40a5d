package recurring

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/http/render"
	"github.com/MrJamesThe3rd/finplan/internal/ledger"
	"github.com/MrJamesThe3rd/finplan/internal/recurrence"
)

type templateResponse struct {
	ID                uuid.UUID           `json:"id"`
	Amount            decimal.Decimal     `json:"amount"`
	Type              ledger.Type         `json:"type"`
	Description       string              `json:"description"`
	Interval          recurrence.Interval `json:"interval"`
	StartDate         render.Date         `json:"start_date"`
	NextDueDate       render.Date         `json:"next_due_date"`
	EndDate           *render.Date        `json:"end_date,omitempty"`
	IsActive          bool                `json:"is_active"`
	AccountID         uuid.UUID           `json:"account_id"`
	CategoryID        *uuid.UUID          `json:"category_id,omitempty"`
	InstallmentPlanID *uuid.UUID          `json:"installment_plan_id,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

func toTemplateResponse(t *recurrence.Template) templateResponse {
	return templateResponse{
		ID:                t.ID,
		Amount:            t.Amount,
		Type:              t.Type,
		Description:       t.Description,
		Interval:          t.Interval,
		StartDate:         render.NewDate(t.StartDate),
		NextDueDate:       render.NewDate(t.NextDueDate),
		EndDate:           render.DatePtr(t.EndDate),
		IsActive:          t.IsActive,
		AccountID:         t.AccountID,
		CategoryID:        t.CategoryID,
		InstallmentPlanID: t.InstallmentPlanID,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}

type occurrenceResponse struct {
	TemplateID  uuid.UUID       `json:"recurring_id"`
	Date        render.Date     `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Type        ledger.Type     `json:"type"`
	Description string          `json:"description"`
	CategoryID  *uuid.UUID      `json:"category_id,omitempty"`
}

func toOccurrenceResponse(o recurrence.Occurrence) occurrenceResponse {
	return occurrenceResponse{
		TemplateID:  o.TemplateID,
		Date:        render.NewDate(o.Date),
		Amount:      o.Amount,
		Type:        o.Type,
		Description: o.Description,
		CategoryID:  o.CategoryID,
	}
}

type totalsResponse struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
	Count   int             `json:"count"`
}
