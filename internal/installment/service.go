package installment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/calendar"
	apperrors "github.com/MrJamesThe3rd/finplan/internal/errors"
	"github.com/MrJamesThe3rd/finplan/internal/ledger"
	"github.com/MrJamesThe3rd/finplan/internal/recurrence"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=installment
type Repository interface {
	GetPlan(ctx context.Context, id uuid.UUID) (*Plan, error)
	ListPlans(ctx context.Context, filter ListFilter) ([]*Plan, error)
	ListPayments(ctx context.Context, planID uuid.UUID) ([]*PaymentRecord, error)

	Begin(ctx context.Context) (Tx, error)
}

// Tx groups the writes that must succeed or fail together: a plan and the
// recurring transaction that pays it.
type Tx interface {
	LockPlan(ctx context.Context, id uuid.UUID) (*Plan, error)
	CreatePlan(ctx context.Context, p *Plan) error
	UpdatePlan(ctx context.Context, p *Plan) error
	DeletePlan(ctx context.Context, id uuid.UUID) error
	CreatePayment(ctx context.Context, rec *PaymentRecord) error

	CreateTemplate(ctx context.Context, t *recurrence.Template) error
	SetTemplateAmount(ctx context.Context, planID uuid.UUID, amount decimal.Decimal) error
	DeactivateTemplates(ctx context.Context, planID uuid.UUID) error
	DeleteTemplates(ctx context.Context, planID uuid.UUID) error

	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type ListFilter struct {
	ActiveOnly bool
}

type CreateParams struct {
	Description       string
	TotalAmount       decimal.Decimal
	InstallmentAmount decimal.Decimal
	Frequency         Frequency
	StartDate         time.Time
	AccountID         uuid.UUID
	CategoryID        *uuid.UUID
}

type PaymentParams struct {
	Amount        decimal.Decimal
	PaidOn        time.Time
	TransactionID *uuid.UUID
}

func (p CreateParams) validate() (recurrence.Interval, error) {
	if p.Description == "" {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}

	if !p.TotalAmount.IsPositive() {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "total amount must be positive")
	}

	if !p.InstallmentAmount.IsPositive() || p.InstallmentAmount.GreaterThan(p.TotalAmount) {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "installment amount must be positive and at most the total amount")
	}

	if p.StartDate.IsZero() {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "start date is required")
	}

	return p.Frequency.Interval()
}

// Create stores a new plan together with the expense recurring transaction
// that pays it.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Plan, error) {
	interval, err := params.validate()
	if err != nil {
		return nil, err
	}

	start := calendar.Day(params.StartDate)
	plan := &Plan{
		Description:       params.Description,
		TotalAmount:       params.TotalAmount,
		RemainingAmount:   params.TotalAmount,
		InstallmentAmount: params.InstallmentAmount,
		Frequency:         params.Frequency,
		StartDate:         start,
		NextPaymentDate:   start,
		AccountID:         params.AccountID,
		CategoryID:        params.CategoryID,
		IsActive:          true,
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create plan: %w", err)
	}
	defer tx.Rollback()

	if err := tx.CreatePlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}

	tmpl := &recurrence.Template{
		Amount:            plan.InstallmentAmount,
		Type:              ledger.TypeExpense,
		Description:       plan.Description + " (installment)",
		Interval:          interval,
		StartDate:         start,
		NextDueDate:       start,
		IsActive:          true,
		AccountID:         plan.AccountID,
		CategoryID:        plan.CategoryID,
		InstallmentPlanID: &plan.ID,
	}
	if err := tx.CreateTemplate(ctx, tmpl); err != nil {
		return nil, fmt.Errorf("create linked recurring: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create plan: %w", err)
	}

	return plan, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Plan, error) {
	return s.repo.GetPlan(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Plan, error) {
	return s.repo.ListPlans(ctx, filter)
}

func (s *Service) Payments(ctx context.Context, planID uuid.UUID) ([]*PaymentRecord, error) {
	return s.repo.ListPayments(ctx, planID)
}

// RecordPayment applies a payment, writes its history record and, once the
// plan is paid off, deactivates the linked recurring transaction. Nothing is
// written unless every step succeeds.
func (s *Service) RecordPayment(ctx context.Context, id uuid.UUID, params PaymentParams) (*Plan, error) {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin record payment: %w", err)
	}
	defer tx.Rollback()

	current, err := tx.LockPlan(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := RecordPayment(*current, params.Amount)
	if err != nil {
		return nil, err
	}

	if err := tx.UpdatePlan(ctx, &updated); err != nil {
		return nil, fmt.Errorf("update plan: %w", err)
	}

	paidOn := params.PaidOn
	if paidOn.IsZero() {
		paidOn = time.Now()
	}

	rec := &PaymentRecord{
		PlanID:        id,
		PaymentDate:   calendar.Day(paidOn),
		Amount:        params.Amount,
		TransactionID: params.TransactionID,
	}
	if err := tx.CreatePayment(ctx, rec); err != nil {
		return nil, fmt.Errorf("create payment record: %w", err)
	}

	if !updated.IsActive {
		if err := tx.DeactivateTemplates(ctx, id); err != nil {
			return nil, fmt.Errorf("deactivate linked recurring: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit record payment: %w", err)
	}

	return &updated, nil
}

// Preview reports what an adjustment would do without writing anything.
func (s *Service) Preview(ctx context.Context, id uuid.UUID, policy Policy, custom decimal.Decimal) (Adjustment, error) {
	plan, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		return Adjustment{}, err
	}

	return Preview(*plan, policy, custom)
}

// Adjust changes the installment amount of the plan and of its linked
// recurring transaction together.
func (s *Service) Adjust(ctx context.Context, id uuid.UUID, policy Policy, custom decimal.Decimal) (*Plan, error) {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin adjust plan: %w", err)
	}
	defer tx.Rollback()

	current, err := tx.LockPlan(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := Adjust(*current, policy, custom)
	if err != nil {
		return nil, err
	}

	if err := tx.UpdatePlan(ctx, &updated); err != nil {
		return nil, fmt.Errorf("update plan: %w", err)
	}

	if err := tx.SetTemplateAmount(ctx, id, updated.InstallmentAmount); err != nil {
		return nil, fmt.Errorf("update linked recurring: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit adjust plan: %w", err)
	}

	return &updated, nil
}

// Complete marks the plan as paid off regardless of its remaining amount.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Plan, error) {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin complete plan: %w", err)
	}
	defer tx.Rollback()

	plan, err := tx.LockPlan(ctx, id)
	if err != nil {
		return nil, err
	}

	plan.RemainingAmount = decimal.Zero
	plan.IsActive = false

	if err := tx.UpdatePlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("update plan: %w", err)
	}

	if err := tx.DeactivateTemplates(ctx, id); err != nil {
		return nil, fmt.Errorf("deactivate linked recurring: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit complete plan: %w", err)
	}

	return plan, nil
}

// Delete removes the plan and its linked recurring transaction.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete plan: %w", err)
	}
	defer tx.Rollback()

	if err := tx.DeleteTemplates(ctx, id); err != nil {
		return fmt.Errorf("delete linked recurring: %w", err)
	}

	if err := tx.DeletePlan(ctx, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete plan: %w", err)
	}

	return nil
}
