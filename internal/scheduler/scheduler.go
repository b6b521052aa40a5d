// Package scheduler materializes the recurring transactions that have come
// due into ledger entries and keeps linked installment plans in step.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/calendar"
	"github.com/MrJamesThe3rd/finplan/internal/installment"
	"github.com/MrJamesThe3rd/finplan/internal/ledger"
	"github.com/MrJamesThe3rd/finplan/internal/recurrence"
)

// DescriptionSuffix is appended to the description of every materialized entry.
const DescriptionSuffix = " (recurring)"

//go:generate mockgen -source=scheduler.go -destination=repository_mock.go -package=scheduler
type Repository interface {
	ListTemplates(ctx context.Context, filter recurrence.ListFilter) ([]*recurrence.Template, error)
	Begin(ctx context.Context) (Tx, error)
}

// Tx holds the writes for one materialized occurrence.
type Tx interface {
	InsertTransaction(ctx context.Context, tx *ledger.Transaction) error
	UpdateTemplate(ctx context.Context, t *recurrence.Template) error

	LockPlan(ctx context.Context, id uuid.UUID) (*installment.Plan, error)
	SavePlan(ctx context.Context, p *installment.Plan) error
	InsertPayment(ctx context.Context, rec *installment.PaymentRecord) error

	Commit() error
	Rollback() error
}

type Processor struct {
	repo Repository
}

func NewProcessor(repo Repository) *Processor {
	return &Processor{repo: repo}
}

// ProcessResult counts what a run did. Processed is the number of ledger
// entries written; a template can contribute several when it was overdue.
type ProcessResult struct {
	Processed   int
	Deactivated int
	Failed      int
}

// ProcessDue books every occurrence due on or before today. A failing
// template is logged and counted, and the rest of the batch carries on.
func (p *Processor) ProcessDue(ctx context.Context, today time.Time) (ProcessResult, error) {
	today = calendar.Day(today)

	due, err := p.repo.ListTemplates(ctx, recurrence.ListFilter{ActiveOnly: true, DueOnOrBefore: &today})
	if err != nil {
		return ProcessResult{}, fmt.Errorf("listing due recurring: %w", err)
	}

	slog.Info("processing due recurring", "count", len(due), "today", today.Format(time.DateOnly))

	var res ProcessResult

	for _, t := range due {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if t.Ended(today) {
			if err := p.deactivate(ctx, t); err != nil {
				slog.Error("failed to deactivate expired recurring", "id", t.ID, "error", err)
				res.Failed++

				continue
			}

			slog.Info("deactivated expired recurring", "id", t.ID, "description", t.Description)
			res.Deactivated++

			continue
		}

		for t.IsActive && !calendar.Day(t.NextDueDate).After(today) {
			next, booked, err := p.materialize(ctx, *t)
			if err != nil {
				slog.Error("failed to process recurring", "id", t.ID, "due", t.NextDueDate.Format(time.DateOnly), "error", err)
				res.Failed++

				break
			}

			*t = next

			if booked {
				res.Processed++
			}

			if !t.IsActive {
				res.Deactivated++
			}
		}
	}

	slog.Info("processed due recurring", "processed", res.Processed, "deactivated", res.Deactivated, "failed", res.Failed)

	return res, nil
}

func (p *Processor) deactivate(ctx context.Context, t *recurrence.Template) error {
	tx, err := p.repo.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	next := *t
	next.IsActive = false

	if err := tx.UpdateTemplate(ctx, &next); err != nil {
		return fmt.Errorf("deactivating recurring: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}

	*t = next

	return nil
}

// materialize books the occurrence at t.NextDueDate and returns the template
// with its cursor advanced. booked is false when the linked plan was already
// settled and the template was only deactivated.
func (p *Processor) materialize(ctx context.Context, t recurrence.Template) (next recurrence.Template, booked bool, err error) {
	tx, err := p.repo.Begin(ctx)
	if err != nil {
		return t, false, err
	}
	defer tx.Rollback()

	next = t
	amount := t.Amount

	var plan *installment.Plan

	if t.InstallmentPlanID != nil {
		plan, err = tx.LockPlan(ctx, *t.InstallmentPlanID)
		if err != nil {
			return t, false, fmt.Errorf("locking plan: %w", err)
		}

		if !plan.IsActive || !plan.RemainingAmount.IsPositive() {
			next.IsActive = false

			if err := tx.UpdateTemplate(ctx, &next); err != nil {
				return t, false, fmt.Errorf("deactivating recurring: %w", err)
			}

			return next, false, commit(tx)
		}

		amount = decimal.Min(amount, plan.RemainingAmount)
	}

	entry := &ledger.Transaction{
		Amount:          amount,
		Type:            t.Type,
		Description:     t.Description + DescriptionSuffix,
		TransactionDate: calendar.Day(t.NextDueDate),
		AccountID:       t.AccountID,
		CategoryID:      t.CategoryID,
		RecurringID:     &t.ID,
	}

	if err := tx.InsertTransaction(ctx, entry); err != nil {
		return t, false, err
	}

	if plan != nil {
		updated, err := installment.RecordPayment(*plan, amount)
		if err != nil {
			return t, false, fmt.Errorf("recording installment payment: %w", err)
		}

		if err := tx.SavePlan(ctx, &updated); err != nil {
			return t, false, err
		}

		rec := &installment.PaymentRecord{
			PlanID:        plan.ID,
			PaymentDate:   entry.TransactionDate,
			Amount:        amount,
			TransactionID: &entry.ID,
		}

		if err := tx.InsertPayment(ctx, rec); err != nil {
			return t, false, err
		}

		if !updated.IsActive {
			slog.Info("installment plan paid off", "plan", plan.ID)
			next.IsActive = false
		}
	}

	due, err := recurrence.Step(t, t.NextDueDate)
	if err != nil {
		return t, false, err
	}

	next.NextDueDate = due
	if next.Ended(due) {
		next.IsActive = false
	}

	if err := tx.UpdateTemplate(ctx, &next); err != nil {
		return t, false, fmt.Errorf("advancing recurring: %w", err)
	}

	return next, true, commit(tx)
}

func commit(tx Tx) error {
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}

	return nil
}
