// Package portfolio builds account reports on top of a broker.Reader.
package portfolio

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"iqtrade/internal/broker"
	"iqtrade/pkg/model"
	"iqtrade/pkg/questrade"
)

// ReportCurrencies are always present in totals, in this order.
var ReportCurrencies = []model.Currency{model.CurrencyCAD, model.CurrencyUSD}

// Line is the day P&L of one position.
type Line struct {
	Symbol      string
	DisplayName string
	Currency    model.Currency
	DayPnL      decimal.Decimal
}

// AccountPnL is the day P&L of every position of one account.
type AccountPnL struct {
	Account model.Account
	Lines   []Line
	Totals  Totals
}

// Totals sums P&L per currency.
type Totals map[model.Currency]decimal.Decimal

func newTotals() Totals {
	t := Totals{}
	for _, c := range ReportCurrencies {
		t[c] = decimal.Zero
	}
	return t
}

func (t Totals) add(c model.Currency, v decimal.Decimal) {
	t[c] = t[c].Add(v)
}

// Currencies returns the report currencies followed by any other currency
// that showed up, in enumeration order.
func (t Totals) Currencies() []model.Currency {
	var extra []model.Currency
	for c := range t {
		if c != model.CurrencyCAD && c != model.CurrencyUSD {
			extra = append(extra, c)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(append([]model.Currency(nil), ReportCurrencies...), extra...)
}

type DayPnLReport struct {
	Accounts []AccountPnL
	Totals   Totals
}

// ProgressFunc is told how many accounts have been fetched so far.
type ProgressFunc func(done, total int)

// DayPnL fetches every account, its positions and the details of all held
// symbols in one call, and sums each position's day P&L by the currency its
// symbol trades in.
func DayPnL(ctx context.Context, r broker.Reader, progress ProgressFunc) (*DayPnLReport, error) {
	accounts, err := r.GetAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("get accounts: %w", err)
	}
	model.SortAccounts(accounts)

	positions := make([][]model.Position, len(accounts))
	var refs []questrade.Ref
	seen := map[int]bool{}
	for i, acct := range accounts {
		ps, err := r.GetPositions(ctx, acct.Number)
		if err != nil {
			return nil, fmt.Errorf("get positions for %s: %w", acct.Number, err)
		}
		model.SortPositions(ps)
		positions[i] = ps
		for _, p := range ps {
			if !seen[p.SymbolID] {
				seen[p.SymbolID] = true
				refs = append(refs, questrade.ByEntity(p))
			}
		}
		if progress != nil {
			progress(i+1, len(accounts))
		}
	}

	tickers, err := r.GetTickers(ctx, refs...)
	if err != nil {
		return nil, fmt.Errorf("get symbols: %w", err)
	}
	details := make(map[int]model.TickerDetails, len(tickers))
	for _, t := range tickers {
		details[t.SymbolID] = t
	}

	report := &DayPnLReport{Totals: newTotals()}
	for i, acct := range accounts {
		ap := AccountPnL{Account: acct, Totals: newTotals()}
		for _, p := range positions[i] {
			line := Line{
				Symbol:      p.Symbol,
				DisplayName: p.Symbol,
				DayPnL:      decimal.NewFromFloat(p.DayPnL),
			}
			if d, ok := details[p.SymbolID]; ok {
				line.DisplayName = d.DisplayName()
				line.Currency = d.Currency
			}
			ap.Lines = append(ap.Lines, line)
			ap.Totals.add(line.Currency, line.DayPnL)
			report.Totals.add(line.Currency, line.DayPnL)
		}
		report.Accounts = append(report.Accounts, ap)
	}
	return report, nil
}
