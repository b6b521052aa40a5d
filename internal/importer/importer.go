// Package importer turns bank statement exports into ledger transactions.
package importer

import (
	"context"
	"io"

	"github.com/MrJamesThe3rd/finplan/internal/ledger"
	"github.com/MrJamesThe3rd/finplan/internal/matching"
)

type Bank string

const (
	BankCGD Bank = "cgd"
)

// Parser reads one bank's export format. The returned params carry no
// account; the service assigns it.
type Parser interface {
	Parse(r io.Reader) ([]ledger.CreateParams, error)
}

//go:generate mockgen -source=importer.go -destination=repository_mock.go -package=importer
type Ledger interface {
	List(ctx context.Context, filter ledger.ListFilter) ([]*ledger.Transaction, error)
	Create(ctx context.Context, params ledger.CreateParams) (*ledger.Transaction, error)
}

// Rules rewrites raw statement descriptions. Suggest returns nil when no rule
// applies.
type Rules interface {
	Suggest(ctx context.Context, rawDescription string) (*matching.Rule, error)
}

// Result splits a statement into what was booked, what would be booked on a
// dry run and what was already in the ledger.
type Result struct {
	Imported   []*ledger.Transaction
	Pending    []ledger.CreateParams
	Duplicates []ledger.CreateParams
}
