package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/MrJamesThe3rd/finplan/internal/errors"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID) error

	CreateCategory(ctx context.Context, c *Category) error
	ListCategories(ctx context.Context) ([]*Category, error)

	CreateAccount(ctx context.Context, a *Account) error
	ListAccounts(ctx context.Context) ([]*Account, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Amount              decimal.Decimal
	Type                Type
	Description         string
	TransactionDate     time.Time
	ValueDate           *time.Time
	AccountID           uuid.UUID
	CategoryID          *uuid.UUID
	TransferToAccountID *uuid.UUID
	TransferFee         decimal.Decimal
	ExcludeFromStats    bool
}

// ListFilter selects transactions by transaction date, both ends inclusive.
type ListFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	CategoryID *uuid.UUID
}

func (p CreateParams) validate() error {
	if !p.Type.Valid() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("unknown transaction type %q", p.Type))
	}

	if !p.Amount.IsPositive() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
	}

	if p.TransferFee.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "transfer fee cannot be negative")
	}

	if p.Type == TypeTransfer && p.TransferToAccountID == nil {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "transfer requires a destination account")
	}

	if p.Type == TypeTransfer && *p.TransferToAccountID == p.AccountID {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "cannot transfer to the same account")
	}

	return nil
}

// NewTransaction builds an unsaved transaction from params after validating them.
func NewTransaction(params CreateParams) (*Transaction, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	return &Transaction{
		Amount:              params.Amount,
		Type:                params.Type,
		Description:         params.Description,
		TransactionDate:     params.TransactionDate,
		ValueDate:           params.ValueDate,
		AccountID:           params.AccountID,
		CategoryID:          params.CategoryID,
		TransferToAccountID: params.TransferToAccountID,
		TransferFee:         params.TransferFee,
		ExcludeFromStats:    params.ExcludeFromStats,
	}, nil
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	tx, err := NewTransaction(params)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, filter)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteTransaction(ctx, id)
}

type CategoryParams struct {
	Name   string
	Color  string
	Budget *decimal.Decimal
}

func (s *Service) CreateCategory(ctx context.Context, params CategoryParams) (*Category, error) {
	if params.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}

	if params.Budget != nil && params.Budget.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget cannot be negative")
	}

	c := &Category{Name: params.Name, Color: params.Color, Budget: params.Budget}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Categories(ctx context.Context) ([]*Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) CreateAccount(ctx context.Context, name string, opening decimal.Decimal) (*Account, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}

	a := &Account{Name: name, Balance: opening}
	if err := s.repo.CreateAccount(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

func (s *Service) Accounts(ctx context.Context) ([]*Account, error) {
	return s.repo.ListAccounts(ctx)
}
