package projection

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/finplan/internal/calendar"
	"github.com/MrJamesThe3rd/finplan/internal/ledger"
	"github.com/MrJamesThe3rd/finplan/internal/recurrence"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=projection
type LedgerReader interface {
	ListTransactions(ctx context.Context, filter ledger.ListFilter) ([]*ledger.Transaction, error)
	ListCategories(ctx context.Context) ([]*ledger.Category, error)
	ListAccounts(ctx context.Context) ([]*ledger.Account, error)
}

type RecurringReader interface {
	ListTemplates(ctx context.Context, filter recurrence.ListFilter) ([]*recurrence.Template, error)
}

// Service loads a snapshot from storage and runs the projections on it.
type Service struct {
	ledger    LedgerReader
	recurring RecurringReader
	now       func() time.Time
}

func NewService(l LedgerReader, r RecurringReader) *Service {
	return &Service{ledger: l, recurring: r, now: time.Now}
}

// WithClock replaces the clock used to decide which day is today.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type Request struct {
	Period   Period
	Strategy Strategy
}

type snapshot struct {
	transactions []*ledger.Transaction
	categories   []*ledger.Category
	accounts     []*ledger.Account
	templates    []*recurrence.Template
}

// load reads the snapshot for p. Transactions are read for the period,
// stretched to today when throughToday is set and today lies past the period
// end. The schedule is never nil, so an empty one still serves the recurring
// strategy.
func (s *Service) load(ctx context.Context, p Period, throughToday bool) (*snapshot, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	txStart, txEnd := p.Start, p.End
	if today := calendar.Day(s.now()); throughToday && today.After(txEnd) {
		txEnd = today
	}

	var snap snapshot

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		txs, err := s.ledger.ListTransactions(ctx, ledger.ListFilter{StartDate: &txStart, EndDate: &txEnd})
		if err != nil {
			return fmt.Errorf("listing transactions: %w", err)
		}

		snap.transactions = txs

		return nil
	})

	g.Go(func() error {
		categories, err := s.ledger.ListCategories(ctx)
		if err != nil {
			return fmt.Errorf("listing categories: %w", err)
		}

		snap.categories = categories

		return nil
	})

	g.Go(func() error {
		accounts, err := s.ledger.ListAccounts(ctx)
		if err != nil {
			return fmt.Errorf("listing accounts: %w", err)
		}

		snap.accounts = accounts

		return nil
	})

	g.Go(func() error {
		templates, err := s.recurring.ListTemplates(ctx, recurrence.ListFilter{ActiveOnly: true})
		if err != nil {
			return fmt.Errorf("listing recurring: %w", err)
		}

		snap.templates = templates
		if snap.templates == nil {
			snap.templates = []*recurrence.Template{}
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &snap, nil
}

func (s *Service) Budget(ctx context.Context, req Request) (*BudgetResult, error) {
	if err := req.Strategy.validate(); err != nil {
		return nil, err
	}

	snap, err := s.load(ctx, req.Period, false)
	if err != nil {
		return nil, err
	}

	return Budget(BudgetInput{
		Transactions: snap.transactions,
		Recurring:    snap.templates,
		Categories:   snap.categories,
		Period:       req.Period,
		Today:        s.now(),
		Strategy:     req.Strategy,
	})
}

func (s *Service) Cashflow(ctx context.Context, req Request) (*CashflowResult, error) {
	if err := req.Strategy.validate(); err != nil {
		return nil, err
	}

	snap, err := s.load(ctx, req.Period, true)
	if err != nil {
		return nil, err
	}

	return Cashflow(CashflowInput{
		Transactions: snap.transactions,
		Recurring:    snap.templates,
		Accounts:     snap.accounts,
		Period:       req.Period,
		Today:        s.now(),
		Strategy:     req.Strategy,
	})
}

func (s *Service) Summary(ctx context.Context, p Period) (*Summary, error) {
	snap, err := s.load(ctx, p, false)
	if err != nil {
		return nil, err
	}

	return Summarize(BudgetInput{
		Transactions: snap.transactions,
		Recurring:    snap.templates,
		Categories:   snap.categories,
		Period:       p,
		Today:        s.now(),
	})
}
