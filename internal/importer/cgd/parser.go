package cgd

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	enc "github.com/MrJamesThe3rd/finplan/internal/encoding"
	"github.com/MrJamesThe3rd/finplan/internal/ledger"
)

const dateLayout = "02-01-2006"

// layout is the header set of one CGD export. A layout with debit and credit
// columns splits the amount; otherwise amount holds one signed value.
type layout struct {
	name      string
	date      string
	valueDate string
	desc      string
	amount    string
	debit     string
	credit    string
}

func (l layout) split() bool { return l.debit != "" }

func (l layout) required() []string {
	if l.split() {
		return []string{l.date, l.desc, l.debit, l.credit}
	}

	return []string{l.date, l.desc, l.amount}
}

// layouts are tried in order and the first one whose columns are all present
// wins.
var layouts = []layout{
	{name: "cartão", date: "Data", valueDate: "Data valor", desc: "Descrição", debit: "Débito", credit: "Crédito"},
	{name: "extrato", date: "Data mov.", valueDate: "Data valor", desc: "Descrição", amount: "Movimento"},
	{name: "conta", date: "Data mov.", valueDate: "Data-valor", desc: "Descrição", amount: "Montante"},
}

// Parser reads CGD bank CSV exports. It detects which CGD format (conta,
// extrato, cartão) is being used by matching column headers against known
// layouts. AccountID is left for the caller to fill in.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]ledger.CreateParams, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	l, colMap, headerIdx := detectLayout(rows)
	if l == nil {
		return nil, fmt.Errorf("no matching CGD format found: expected columns for conta, extrato, or cartão")
	}

	slog.Debug("parsing CGD export", "layout", l.name, "charset", utf8r.Charset, "rows", len(rows)-headerIdx-1)

	return parseRows(l, colMap, rows[headerIdx+1:], headerIdx+1)
}

// colIndex maps column names to their index in the row.
type colIndex map[string]int

func (c colIndex) lookup(name string) int {
	if name == "" {
		return -1
	}

	if i, ok := c[name]; ok {
		return i
	}

	return -1
}

// detectLayout scans rows for a header that matches a known layout and
// returns it with the column map and the header row index.
func detectLayout(rows [][]string) (*layout, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			if name := strings.TrimSpace(cell); name != "" {
				cols[name] = i
			}
		}

		for i := range layouts {
			if cols.hasAll(layouts[i].required()) {
				return &layouts[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func (c colIndex) hasAll(names []string) bool {
	for _, name := range names {
		if _, ok := c[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows extracts transactions from the data rows. headerRowNum is the
// 0-based index of the header in the file, for error messages.
func parseRows(l *layout, cols colIndex, rows [][]string, headerRowNum int) ([]ledger.CreateParams, error) {
	var (
		dateIdx      = cols.lookup(l.date)
		valueDateIdx = cols.lookup(l.valueDate)
		descIdx      = cols.lookup(l.desc)
	)

	var txs []ledger.CreateParams

	for i, row := range rows {
		rowNum := headerRowNum + i + 2 // 1-based, skipping header

		date, ok := parseDate(row, dateIdx)
		if !ok {
			continue
		}

		desc := cellValue(row, descIdx)
		if desc == "" {
			return nil, fmt.Errorf("row %d: missing description", rowNum)
		}

		amount, txType, ok := parseAmount(l, cols, row)
		if !ok {
			continue
		}

		params := ledger.CreateParams{
			Amount:          amount,
			Type:            txType,
			Description:     desc,
			TransactionDate: date,
		}

		if valueDate, ok := parseDate(row, valueDateIdx); ok && !valueDate.Equal(date) {
			params.ValueDate = &valueDate
		}

		txs = append(txs, params)
	}

	return txs, nil
}

// parseDate returns false for empty or unparseable cells (footer rows, etc).
func parseDate(row []string, idx int) (time.Time, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return time.Time{}, false
	}

	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

func parseAmount(l *layout, cols colIndex, row []string) (decimal.Decimal, ledger.Type, bool) {
	if l.split() {
		return parseSplitAmount(row, cols.lookup(l.debit), cols.lookup(l.credit))
	}

	return parseSingleAmount(row, cols.lookup(l.amount))
}

// parseSingleAmount reads one signed column; negative amounts are expenses.
func parseSingleAmount(row []string, idx int) (decimal.Decimal, ledger.Type, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return decimal.Zero, "", false
	}

	amount, err := parseEuropeanAmount(s)
	if err != nil || amount.IsZero() {
		return decimal.Zero, "", false
	}

	if amount.IsNegative() {
		return amount.Neg(), ledger.TypeExpense, true
	}

	return amount, ledger.TypeIncome, true
}

// parseSplitAmount reads separate debit and credit columns.
func parseSplitAmount(row []string, debitIdx, creditIdx int) (decimal.Decimal, ledger.Type, bool) {
	if s := cellValue(row, debitIdx); s != "" {
		amount, err := parseEuropeanAmount(s)
		if err == nil && !amount.IsZero() {
			return amount.Abs(), ledger.TypeExpense, true
		}
	}

	if s := cellValue(row, creditIdx); s != "" {
		amount, err := parseEuropeanAmount(s)
		if err == nil && !amount.IsZero() {
			return amount.Abs(), ledger.TypeIncome, true
		}
	}

	return decimal.Zero, "", false
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
