package recurrence

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/calendar"
	apperrors "github.com/MrJamesThe3rd/finplan/internal/errors"
	"github.com/MrJamesThe3rd/finplan/internal/ledger"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=recurrence
type Repository interface {
	CreateTemplate(ctx context.Context, t *Template) error
	GetTemplate(ctx context.Context, id uuid.UUID) (*Template, error)
	ListTemplates(ctx context.Context, filter ListFilter) ([]*Template, error)
	UpdateTemplate(ctx context.Context, t *Template) error
	DeleteTemplate(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type ListFilter struct {
	ActiveOnly    bool
	DueOnOrBefore *time.Time
}

type CreateParams struct {
	Amount      decimal.Decimal
	Type        ledger.Type
	Description string
	Interval    Interval
	StartDate   time.Time
	EndDate     *time.Time
	AccountID   uuid.UUID
	CategoryID  *uuid.UUID
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Template, error) {
	start := calendar.Day(params.StartDate)

	t := &Template{
		Amount:      params.Amount,
		Type:        params.Type,
		Description: params.Description,
		Interval:    params.Interval,
		StartDate:   start,
		NextDueDate: start,
		EndDate:     params.EndDate,
		IsActive:    true,
		AccountID:   params.AccountID,
		CategoryID:  params.CategoryID,
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.CreateTemplate(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Template, error) {
	return s.repo.GetTemplate(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Template, error) {
	return s.repo.ListTemplates(ctx, filter)
}

// SetActive pauses or resumes a template. A template past its end date
// cannot be resumed.
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) (*Template, error) {
	t, err := s.repo.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}

	if active && t.Ended(time.Now()) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "recurring transaction has already ended")
	}

	t.IsActive = active
	if err := s.repo.UpdateTemplate(ctx, t); err != nil {
		return nil, fmt.Errorf("updating recurring: %w", err)
	}

	return t, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteTemplate(ctx, id)
}

// Occurrences expands a single template over [from, to].
func (s *Service) Occurrences(ctx context.Context, id uuid.UUID, from, to time.Time) ([]Occurrence, error) {
	if to.Before(from) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "window end is before its start")
	}

	t, err := s.repo.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}

	return Expand(*t, from, to)
}

// MonthlyTotals returns the monthly-equivalent totals of the active templates.
func (s *Service) MonthlyTotals(ctx context.Context) (Totals, error) {
	templates, err := s.repo.ListTemplates(ctx, ListFilter{ActiveOnly: true})
	if err != nil {
		return Totals{}, fmt.Errorf("listing recurring: %w", err)
	}

	totals, err := MonthlyTotals(templates)
	if err != nil {
		slog.WarnContext(ctx, "skipping recurring transactions in monthly totals", "error", err)
	}

	return totals, nil
}
