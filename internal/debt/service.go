package debt

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/calendar"
	apperrors "github.com/MrJamesThe3rd/finplan/internal/errors"
	"github.com/MrJamesThe3rd/finplan/internal/loan"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=debt
type Repository interface {
	GetDebt(ctx context.Context, id uuid.UUID) (*Debt, error)
	ListDebts(ctx context.Context, filter ListFilter) ([]*Debt, error)
	ListPayments(ctx context.Context, debtID uuid.UUID) ([]*Payment, error)

	Begin(ctx context.Context) (Tx, error)
}

// Tx keeps a debt's remaining amount in step with its payment history.
type Tx interface {
	LockDebt(ctx context.Context, id uuid.UUID) (*Debt, error)
	CreateDebt(ctx context.Context, d *Debt) error
	UpdateDebt(ctx context.Context, d *Debt) error
	DeleteDebt(ctx context.Context, id uuid.UUID) error
	CreatePayment(ctx context.Context, p *Payment) error
	DeletePayment(ctx context.Context, debtID, paymentID uuid.UUID) (*Payment, error)

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
	Type   Type
	Status Status
}

type CreateParams struct {
	Description       string
	Type              Type
	Amount            decimal.Decimal
	AnnualRatePercent decimal.Decimal
	DurationMonths    int
	PaymentFrequency  loan.Frequency
	LoanType          loan.Type
	StartDate         time.Time
	ContactName       string
	ContactInfo       string
	Notes             string
}

type PaymentParams struct {
	Amount decimal.Decimal
	PaidOn time.Time
	Notes  string
}

func (p CreateParams) validate() error {
	if p.Description == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}

	if !p.Type.valid() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("unknown debt type %q", p.Type))
	}

	if p.StartDate.IsZero() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "start date is required")
	}

	return nil
}

// Create stores a new active debt. Its periodic payment comes from the loan
// schedule of the amount, rate and duration given.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Debt, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	start := calendar.Day(params.StartDate)
	debt := &Debt{
		Description:       params.Description,
		Type:              params.Type,
		TotalAmount:       params.Amount,
		RemainingAmount:   params.Amount,
		AnnualRatePercent: params.AnnualRatePercent,
		DurationMonths:    params.DurationMonths,
		PaymentFrequency:  params.PaymentFrequency,
		LoanType:          params.LoanType,
		StartDate:         start,
		EndDate:           calendar.AddMonths(start, params.DurationMonths, start.Day()),
		Status:            StatusActive,
		ContactName:       params.ContactName,
		ContactInfo:       params.ContactInfo,
		Notes:             params.Notes,
	}

	res, err := loan.Amortize(debt.LoanParams())
	if err != nil {
		return nil, err
	}

	debt.PaymentAmount = res.PeriodicPayment.Round(2)

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create debt: %w", err)
	}
	defer tx.Rollback()

	if err := tx.CreateDebt(ctx, debt); err != nil {
		return nil, fmt.Errorf("create debt: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create debt: %w", err)
	}

	return debt, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Debt, error) {
	return s.repo.GetDebt(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Debt, error) {
	return s.repo.ListDebts(ctx, filter)
}

func (s *Service) Payments(ctx context.Context, id uuid.UUID) ([]*Payment, error) {
	return s.repo.ListPayments(ctx, id)
}

// Schedule rebuilds the loan schedule the debt was created from.
func (s *Service) Schedule(ctx context.Context, id uuid.UUID) (*loan.Result, error) {
	debt, err := s.repo.GetDebt(ctx, id)
	if err != nil {
		return nil, err
	}

	return loan.Amortize(debt.LoanParams())
}

// Summary returns the outstanding amount of the active debts per type.
func (s *Service) Summary(ctx context.Context) (map[Type]decimal.Decimal, error) {
	debts, err := s.repo.ListDebts(ctx, ListFilter{Status: StatusActive})
	if err != nil {
		return nil, err
	}

	return Outstanding(debts), nil
}

// RecordPayment writes a payment and lowers the remaining amount by it in
// one transaction.
func (s *Service) RecordPayment(ctx context.Context, id uuid.UUID, params PaymentParams) (*Debt, error) {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin record debt payment: %w", err)
	}
	defer tx.Rollback()

	current, err := tx.LockDebt(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := ApplyPayment(*current, params.Amount)
	if err != nil {
		return nil, err
	}

	if err := tx.UpdateDebt(ctx, &updated); err != nil {
		return nil, fmt.Errorf("update debt: %w", err)
	}

	paidOn := params.PaidOn
	if paidOn.IsZero() {
		paidOn = time.Now()
	}

	payment := &Payment{
		DebtID:      id,
		Amount:      params.Amount,
		PaymentDate: calendar.Day(paidOn),
		Notes:       params.Notes,
	}
	if err := tx.CreatePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("create debt payment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit record debt payment: %w", err)
	}

	return &updated, nil
}

// DeletePayment removes a payment and gives its amount back to the debt.
func (s *Service) DeletePayment(ctx context.Context, id, paymentID uuid.UUID) (*Debt, error) {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin delete debt payment: %w", err)
	}
	defer tx.Rollback()

	current, err := tx.LockDebt(ctx, id)
	if err != nil {
		return nil, err
	}

	payment, err := tx.DeletePayment(ctx, id, paymentID)
	if err != nil {
		return nil, err
	}

	updated := RevertPayment(*current, payment.Amount)
	if err := tx.UpdateDebt(ctx, &updated); err != nil {
		return nil, fmt.Errorf("update debt: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit delete debt payment: %w", err)
	}

	return &updated, nil
}

// SetStatus moves the debt to status without touching its balance.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status Status) (*Debt, error) {
	if !status.valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("unknown debt status %q", status))
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin set debt status: %w", err)
	}
	defer tx.Rollback()

	debt, err := tx.LockDebt(ctx, id)
	if err != nil {
		return nil, err
	}

	debt.Status = status
	if err := tx.UpdateDebt(ctx, debt); err != nil {
		return nil, fmt.Errorf("update debt: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit set debt status: %w", err)
	}

	return debt, nil
}

// Delete removes the debt together with its payments.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete debt: %w", err)
	}
	defer tx.Rollback()

	if err := tx.DeleteDebt(ctx, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete debt: %w", err)
	}

	return nil
}
