package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finplan/internal/installment"
	installmentStore "github.com/MrJamesThe3rd/finplan/internal/installment/store"
	"github.com/MrJamesThe3rd/finplan/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/finplan/internal/ledger/store"
	"github.com/MrJamesThe3rd/finplan/internal/recurrence"
	recurrenceStore "github.com/MrJamesThe3rd/finplan/internal/recurrence/store"
	"github.com/MrJamesThe3rd/finplan/internal/scheduler"
)

// Store reads due templates through the recurrence store and runs each
// occurrence in its own database transaction.
type Store struct {
	*recurrenceStore.Store
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{Store: recurrenceStore.New(db), db: db}
}

type runTx struct {
	tx *sql.Tx
}

func (s *Store) Begin(ctx context.Context) (scheduler.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning scheduler tx: %w", err)
	}

	return &runTx{tx: dbTx}, nil
}

func (r *runTx) Commit() error   { return r.tx.Commit() }
func (r *runTx) Rollback() error { return r.tx.Rollback() }

func (r *runTx) InsertTransaction(ctx context.Context, tx *ledger.Transaction) error {
	return ledgerStore.InsertTransaction(ctx, r.tx, tx)
}

func (r *runTx) UpdateTemplate(ctx context.Context, t *recurrence.Template) error {
	return recurrenceStore.SaveTemplate(ctx, r.tx, t)
}

func (r *runTx) LockPlan(ctx context.Context, id uuid.UUID) (*installment.Plan, error) {
	return installmentStore.LockPlan(ctx, r.tx, id)
}

func (r *runTx) SavePlan(ctx context.Context, p *installment.Plan) error {
	return installmentStore.SavePlan(ctx, r.tx, p)
}

func (r *runTx) InsertPayment(ctx context.Context, rec *installment.PaymentRecord) error {
	return installmentStore.InsertPayment(ctx, r.tx, rec)
}
