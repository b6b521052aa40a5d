package importer_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	apperrors "github.com/MrJamesThe3rd/finplan/internal/errors"
	"github.com/MrJamesThe3rd/finplan/internal/importer"
	"github.com/MrJamesThe3rd/finplan/internal/ledger"
	"github.com/MrJamesThe3rd/finplan/internal/matching"
)

const statement = `Data mov.;Data-valor;Descrição;Montante;Saldo contabilístico após movimento
30-01-2026;30-01-2026;INSTITUTO GESTAO FINA;-588,74;48.825,46
09-01-2026;09-01-2026;TFI Wise;8.608,52;52.532,78
09-01-2026;09-01-2026;TFI Wise;8.608,52;61.141,30
`

func day(d int) time.Time {
	return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestService_Import(t *testing.T) {
	accountID := uuid.New()

	// One of the two identical Wise credits is already booked.
	booked := []*ledger.Transaction{
		{ID: uuid.New(), AccountID: accountID, Type: ledger.TypeIncome, Amount: decimal.RequireFromString("8608.52"), TransactionDate: day(9)},
		{ID: uuid.New(), AccountID: uuid.New(), Type: ledger.TypeExpense, Amount: decimal.RequireFromString("588.74"), TransactionDate: day(30)},
	}

	expectList := func(l *importer.MockLedger) {
		l.EXPECT().List(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, f ledger.ListFilter) ([]*ledger.Transaction, error) {
				assert.Equal(t, day(9), *f.StartDate)
				assert.Equal(t, day(30), *f.EndDate)
				return booked, nil
			})
	}

	t.Run("books new rows", func(t *testing.T) {
		l := importer.NewMockLedger(gomock.NewController(t))
		expectList(l)

		var created []ledger.CreateParams

		l.EXPECT().Create(gomock.Any(), gomock.Any()).Times(2).
			DoAndReturn(func(_ context.Context, p ledger.CreateParams) (*ledger.Transaction, error) {
				created = append(created, p)
				return &ledger.Transaction{ID: uuid.New(), AccountID: p.AccountID, Description: p.Description}, nil
			})

		svc := importer.NewService(l, nil)
		res, err := svc.Import(context.Background(), importer.ImportParams{Bank: importer.BankCGD, AccountID: accountID}, strings.NewReader(statement))
		require.NoError(t, err)

		assert.Len(t, res.Imported, 2)
		assert.Len(t, res.Duplicates, 1)
		assert.Empty(t, res.Pending)

		require.Len(t, created, 2)
		assert.Equal(t, "INSTITUTO GESTAO FINA", created[0].Description)
		assert.Equal(t, ledger.TypeExpense, created[0].Type)
		assert.Equal(t, accountID, created[0].AccountID)
		assert.Equal(t, "TFI Wise", created[1].Description)
	})

	t.Run("dry run", func(t *testing.T) {
		l := importer.NewMockLedger(gomock.NewController(t))
		expectList(l)

		svc := importer.NewService(l, nil)
		res, err := svc.Import(context.Background(), importer.ImportParams{Bank: importer.BankCGD, AccountID: accountID, DryRun: true}, strings.NewReader(statement))
		require.NoError(t, err)

		assert.Empty(t, res.Imported)
		assert.Len(t, res.Pending, 2)
		assert.Len(t, res.Duplicates, 1)
	})

	t.Run("create fails", func(t *testing.T) {
		l := importer.NewMockLedger(gomock.NewController(t))
		expectList(l)
		l.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

		svc := importer.NewService(l, nil)
		_, err := svc.Import(context.Background(), importer.ImportParams{Bank: importer.BankCGD, AccountID: accountID}, strings.NewReader(statement))
		assert.ErrorContains(t, err, "db down")
	})
}

func TestService_ImportRules(t *testing.T) {
	var (
		accountID  = uuid.New()
		categoryID = uuid.New()
		ctrl       = gomock.NewController(t)
		l          = importer.NewMockLedger(ctrl)
		rules      = importer.NewMockRules(ctrl)
	)

	l.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, nil)

	rules.EXPECT().Suggest(gomock.Any(), "INSTITUTO GESTAO FINA").
		Return(&matching.Rule{Description: "IGFSS", CategoryID: &categoryID}, nil)
	rules.EXPECT().Suggest(gomock.Any(), "TFI Wise").Return(nil, nil).Times(1)
	rules.EXPECT().Suggest(gomock.Any(), "TFI Wise").Return(nil, errors.New("timeout")).Times(1)

	svc := importer.NewService(l, rules)
	res, err := svc.Import(context.Background(), importer.ImportParams{Bank: importer.BankCGD, AccountID: accountID, DryRun: true}, strings.NewReader(statement))
	require.NoError(t, err)

	require.Len(t, res.Pending, 3)
	assert.Equal(t, "IGFSS", res.Pending[0].Description)
	assert.Equal(t, &categoryID, res.Pending[0].CategoryID)
	assert.Equal(t, "TFI Wise", res.Pending[1].Description)
	assert.Nil(t, res.Pending[1].CategoryID)
	assert.Equal(t, "TFI Wise", res.Pending[2].Description)
}

func TestService_ImportInvalid(t *testing.T) {
	tests := []struct {
		name   string
		params importer.ImportParams
		body   string
	}{
		{name: "unknown bank", params: importer.ImportParams{Bank: "bpi", AccountID: uuid.New()}, body: statement},
		{name: "missing account", params: importer.ImportParams{Bank: importer.BankCGD}, body: statement},
		{name: "unrecognised file", params: importer.ImportParams{Bank: importer.BankCGD, AccountID: uuid.New()}, body: "a;b;c\n1;2;3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := importer.NewService(importer.NewMockLedger(gomock.NewController(t)), nil)

			_, err := svc.Import(context.Background(), tt.params, strings.NewReader(tt.body))
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}

func TestService_ImportEmpty(t *testing.T) {
	svc := importer.NewService(importer.NewMockLedger(gomock.NewController(t)), nil)

	res, err := svc.Import(context.Background(),
		importer.ImportParams{Bank: importer.BankCGD, AccountID: uuid.New()},
		strings.NewReader("Data mov.;Descrição;Montante\n"))
	require.NoError(t, err)
	assert.Empty(t, res.Imported)
}
