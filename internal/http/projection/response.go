package projection

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/http/render"
	"github.com/MrJamesThe3rd/finplan/internal/projection"
)

func money(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

type periodResponse struct {
	Start render.Date `json:"start"`
	End   render.Date `json:"end"`
}

func toPeriod(p projection.Period) periodResponse {
	return periodResponse{Start: render.NewDate(p.Start), End: render.NewDate(p.End)}
}

type categoryResponse struct {
	CategoryID     uuid.UUID       `json:"category_id"`
	Name           string          `json:"name"`
	Color          string          `json:"color"`
	Budget         decimal.Decimal `json:"budget"`
	Actual         decimal.Decimal `json:"actual"`
	Projected      decimal.Decimal `json:"projected"`
	ProjectedTotal decimal.Decimal `json:"projected_total"`
	Percentage     decimal.Decimal `json:"percentage"`
	IsOverBudget   bool            `json:"is_over_budget"`
	IsNearLimit    bool            `json:"is_near_limit"`
}

type budgetResponse struct {
	Strategy       projection.Strategy `json:"strategy"`
	Period         periodResponse      `json:"period"`
	Categories     []categoryResponse  `json:"categories"`
	TotalBudget    decimal.Decimal     `json:"total_budget"`
	TotalActual    decimal.Decimal     `json:"total_actual"`
	TotalProjected decimal.Decimal     `json:"total_projected"`
	IsOverBudget   bool                `json:"is_over_budget"`
	OverageAmount  decimal.Decimal     `json:"overage_amount"`
	Warnings       []string            `json:"warnings,omitempty"`
}

func toBudgetResponse(res *projection.BudgetResult) budgetResponse {
	resp := budgetResponse{
		Strategy:       res.Strategy,
		Period:         toPeriod(res.Period),
		Categories:     make([]categoryResponse, len(res.Categories)),
		TotalBudget:    money(res.TotalBudget),
		TotalActual:    money(res.TotalActual),
		TotalProjected: money(res.TotalProjected),
		IsOverBudget:   res.IsOverBudget,
		OverageAmount:  money(res.OverageAmount),
		Warnings:       res.Warnings,
	}

	for i, c := range res.Categories {
		resp.Categories[i] = categoryResponse{
			CategoryID:     c.CategoryID,
			Name:           c.Name,
			Color:          c.Color,
			Budget:         money(c.Budget),
			Actual:         money(c.Actual),
			Projected:      money(c.Projected),
			ProjectedTotal: money(c.ProjectedTotal),
			Percentage:     c.Percentage.Round(1),
			IsOverBudget:   c.IsOverBudget,
			IsNearLimit:    c.IsNearLimit,
		}
	}

	return resp
}

type pointResponse struct {
	Date      render.Date      `json:"date"`
	Income    decimal.Decimal  `json:"income"`
	Expense   decimal.Decimal  `json:"expense"`
	Balance   decimal.Decimal  `json:"balance"`
	Actual    *decimal.Decimal `json:"actual"`
	Projected *decimal.Decimal `json:"projected"`
}

type cashflowResponse struct {
	Strategy       projection.Strategy `json:"strategy"`
	Period         periodResponse      `json:"period"`
	OpeningBalance decimal.Decimal     `json:"opening_balance"`
	ClosingBalance decimal.Decimal     `json:"closing_balance"`
	Points         []pointResponse     `json:"points"`
	Warnings       []string            `json:"warnings,omitempty"`
}

func roundPtr(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}

	return new(money(*d))
}

func toCashflowResponse(res *projection.CashflowResult) cashflowResponse {
	resp := cashflowResponse{
		Strategy:       res.Strategy,
		Period:         toPeriod(res.Period),
		OpeningBalance: money(res.OpeningBalance),
		ClosingBalance: money(res.ClosingBalance),
		Points:         make([]pointResponse, len(res.Points)),
		Warnings:       res.Warnings,
	}

	for i, p := range res.Points {
		resp.Points[i] = pointResponse{
			Date:      render.NewDate(p.Date),
			Income:    money(p.Income),
			Expense:   money(p.Expense),
			Balance:   money(p.Balance),
			Actual:    roundPtr(p.Actual),
			Projected: roundPtr(p.Projected),
		}
	}

	return resp
}

type summaryResponse struct {
	Period                 periodResponse  `json:"period"`
	Income                 decimal.Decimal `json:"income"`
	Expenses               decimal.Decimal `json:"expenses"`
	ProjectedIncome        decimal.Decimal `json:"projected_income"`
	ProjectedExpenses      decimal.Decimal `json:"projected_expenses"`
	ProjectedNet           decimal.Decimal `json:"projected_net"`
	TotalBudget            decimal.Decimal `json:"total_budget"`
	RemainingBudget        decimal.Decimal `json:"remaining_budget"`
	DailyBudgetRecommended decimal.Decimal `json:"daily_budget_recommended"`
	DaysRemaining          int             `json:"days_remaining"`
	FutureOccurrences      int             `json:"future_occurrences"`
	IsOverBudget           bool            `json:"is_over_budget"`
	OverageAmount          decimal.Decimal `json:"overage_amount"`
	Warnings               []string        `json:"warnings,omitempty"`
}

func toSummaryResponse(s *projection.Summary) summaryResponse {
	return summaryResponse{
		Period:                 toPeriod(s.Period),
		Income:                 money(s.Income),
		Expenses:               money(s.Expenses),
		ProjectedIncome:        money(s.ProjectedIncome),
		ProjectedExpenses:      money(s.ProjectedExpenses),
		ProjectedNet:           money(s.ProjectedNet),
		TotalBudget:            money(s.TotalBudget),
		RemainingBudget:        money(s.RemainingBudget),
		DailyBudgetRecommended: money(s.DailyBudgetRecommended),
		DaysRemaining:          s.DaysRemaining,
		FutureOccurrences:      s.FutureOccurrences,
		IsOverBudget:           s.IsOverBudget,
		OverageAmount:          money(s.OverageAmount),
		Warnings:               s.Warnings,
	}
}
