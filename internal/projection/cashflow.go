package projection

import (
	"log/slog"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finplan/internal/calendar"
	"github.com/MrJamesThe3rd/finplan/internal/ledger"
	"github.com/MrJamesThe3rd/finplan/internal/recurrence"
)

// CashflowInput is the snapshot a cashflow projection works on. Transactions
// must cover the period start through today, even when today lies past the
// period end, so that the opening balance can be solved backwards from the
// current account balances. Recurring may be nil only with the pattern
// strategy.
type CashflowInput struct {
	Transactions []*ledger.Transaction
	Recurring    []*recurrence.Template
	Accounts     []*ledger.Account
	Period       Period
	Today        time.Time
	Strategy     Strategy
}

// CashflowPoint is the running balance at the end of one day. Actual is set
// up to today and Projected from today on; today carries both so the two
// series join without a gap.
type CashflowPoint struct {
	Date      time.Time
	Income    decimal.Decimal
	Expense   decimal.Decimal
	Balance   decimal.Decimal
	Actual    *decimal.Decimal
	Projected *decimal.Decimal
}

type CashflowResult struct {
	Strategy       Strategy
	Period         Period
	OpeningBalance decimal.Decimal
	ClosingBalance decimal.Decimal
	Points         []CashflowPoint
	Warnings       []string
}

type dayTotals struct {
	income  decimal.Decimal
	expense decimal.Decimal
	net     decimal.Decimal
}

func dayKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

// Cashflow projects the combined balance of all accounts for every day of the
// period. The opening balance is solved backwards from the current balances:
// the net of everything booked from the period start through today is taken
// off, and for a period that starts after tomorrow the recurring occurrences
// in between are added on.
func Cashflow(in CashflowInput) (*CashflowResult, error) {
	if err := in.Strategy.validateInput(in.Recurring); err != nil {
		return nil, err
	}

	if err := in.Period.validate(); err != nil {
		return nil, err
	}

	s := splitPeriod(in.Period, in.Today)
	today := calendar.Day(in.Today)

	actual := make(map[string]dayTotals)
	booked := dayTotals{}
	sinceStart := decimal.Zero

	for _, tx := range in.Transactions {
		if tx == nil {
			continue
		}

		if d := calendar.Day(tx.TransactionDate); !d.Before(s.start) && !d.After(today) {
			sinceStart = sinceStart.Add(tx.NetEffect())
		}

		if !s.isActual(tx.TransactionDate) {
			continue
		}

		k := dayKey(tx.TransactionDate)
		day := actual[k]

		switch tx.Type {
		case ledger.TypeIncome:
			day.income = day.income.Add(tx.Amount)
			booked.income = booked.income.Add(tx.Amount)
		case ledger.TypeExpense:
			day.expense = day.expense.Add(tx.Amount)
			booked.expense = booked.expense.Add(tx.Amount)
		}

		day.net = day.net.Add(tx.NetEffect())
		booked.net = booked.net.Add(tx.NetEffect())
		actual[k] = day
	}

	res := &CashflowResult{
		Strategy:       in.Strategy,
		Period:         Period{Start: s.start, End: s.end},
		OpeningBalance: ledger.TotalBalance(in.Accounts).Sub(sinceStart),
	}

	if in.Strategy == StrategyRecurring {
		gap, warnings := recurringNet(in.Recurring, today.AddDate(0, 0, 1), s.start.AddDate(0, 0, -1))
		res.OpeningBalance = res.OpeningBalance.Add(gap)
		res.Warnings = append(res.Warnings, warnings...)
	}

	forecast := make(map[string]dayTotals)

	switch in.Strategy {
	case StrategyRecurring:
		occ, warnings := upcoming(in.Recurring, s)
		for _, w := range warnings {
			if !slices.Contains(res.Warnings, w) {
				res.Warnings = append(res.Warnings, w)
			}
		}

		for _, o := range occ {
			k := dayKey(o.Date)
			day := forecast[k]

			if o.Type == ledger.TypeIncome {
				day.income = day.income.Add(o.Amount)
			} else {
				day.expense = day.expense.Add(o.Amount)
			}

			day.net = day.net.Add(o.SignedAmount())
			forecast[k] = day
		}
	case StrategyPattern:
		avg := dayTotals{
			income:  ratio(booked.income, s.elapsed, 1),
			expense: ratio(booked.expense, s.elapsed, 1),
			net:     ratio(booked.net, s.elapsed, 1),
		}

		for d := s.futureStart(); !d.After(s.end); d = d.AddDate(0, 0, 1) {
			forecast[dayKey(d)] = avg
		}
	}

	balance := res.OpeningBalance
	points := make([]CashflowPoint, 0, s.elapsed+s.remaining)

	for d := s.start; !d.After(s.end); d = d.AddDate(0, 0, 1) {
		k := dayKey(d)

		if s.isActual(d) {
			day := actual[k]
			balance = balance.Add(day.net)

			p := CashflowPoint{Date: d, Income: day.income, Expense: day.expense, Balance: balance, Actual: new(balance)}
			if calendar.SameDay(d, s.today) {
				p.Projected = new(balance)
			}

			points = append(points, p)

			continue
		}

		day := forecast[k]
		balance = balance.Add(day.net)

		points = append(points, CashflowPoint{Date: d, Income: day.income, Expense: day.expense, Balance: balance, Projected: new(balance)})
	}

	res.Points = points
	res.ClosingBalance = balance

	return res, nil
}

// recurringNet sums the signed occurrences in [from, to]; zero when the range
// is empty.
func recurringNet(templates []*recurrence.Template, from, to time.Time) (decimal.Decimal, []string) {
	if to.Before(from) || len(templates) == 0 {
		return decimal.Zero, nil
	}

	var warnings []string

	occ, err := recurrence.ExpandAll(templates, from, to)
	if err != nil {
		slog.Warn("opening balance uses partial recurring schedule", "error", err)
		warnings = append(warnings, err.Error())
	}

	net := decimal.Zero
	for _, o := range occ {
		net = net.Add(o.SignedAmount())
	}

	return net, warnings
}
