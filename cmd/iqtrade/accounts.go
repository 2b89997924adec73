package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"iqtrade/internal/portfolio"
	"iqtrade/pkg/model"
	"iqtrade/pkg/questrade"
)

func timeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "time",
		Short: "Show the server time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			t, err := client.GetTime(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(map[string]string{"time": model.FormatTime(t)})
			}
			printf("%s\n", t.Format(time.RFC3339))
			return nil
		},
	}
}

func accountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			accounts, err := client.GetAccounts(cmd.Context())
			if err != nil {
				return err
			}
			model.SortAccounts(accounts)
			if jsonOutput() {
				return outputJSON(accounts)
			}

			rows := make([][]string, 0, len(accounts))
			for _, a := range accounts {
				rows = append(rows, []string{
					a.Number, a.Type.String(), a.ClientAccountType.String(), a.Status,
					yesNo(a.IsPrimary), yesNo(a.IsBilling),
				})
			}
			renderTable([]string{"Number", "Type", "Client", "Status", "Primary", "Billing"}, rows)
			return nil
		},
	}
}

func balancesCmd() *cobra.Command {
	var sod bool
	cmd := &cobra.Command{
		Use:   "balances [account]",
		Short: "Show account balances",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := accountArg(args)
			if err != nil {
				return err
			}
			client, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			b, err := client.GetBalances(cmd.Context(), account)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(b)
			}

			perCurrency, combined := b.PerCurrency, b.Combined
			if sod {
				perCurrency, combined = b.SODPerCurrency, b.SODCombined
			}
			var rows [][]string
			for _, bal := range perCurrency {
				rows = append(rows, balanceRow("per currency", bal))
			}
			for _, bal := range combined {
				rows = append(rows, balanceRow("combined", bal))
			}
			renderTable([]string{"Scope", "Currency", "Cash", "Market Value", "Total Equity", "Buying Power", "Maint. Excess"}, rows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&sod, "sod", false, "show start-of-day balances")
	return cmd
}

func balanceRow(scope string, b model.Balance) []string {
	return []string{
		scope, b.Currency.String(), price(b.Cash), price(b.MarketValue),
		price(b.TotalEquity), price(b.BuyingPower), price(b.MaintenanceExcess),
	}
}

func positionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "positions [account]",
		Short: "List open positions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := accountArg(args)
			if err != nil {
				return err
			}
			client, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			positions, err := client.GetPositions(cmd.Context(), account)
			if err != nil {
				return err
			}
			model.SortPositions(positions)
			if jsonOutput() {
				return outputJSON(positions)
			}

			rows := make([][]string, 0, len(positions))
			for _, p := range positions {
				rows = append(rows, []string{
					p.Symbol, qty(p.OpenQuantity), price(p.AverageEntryPrice), price(p.CurrentPrice),
					price(p.CurrentMarketValue), price(p.OpenPnL), price(p.DayPnL),
				})
			}
			renderTable([]string{"Symbol", "Qty", "Avg Price", "Price", "Market Value", "Open P&L", "Day P&L"}, rows)
			return nil
		},
	}
}

func ordersCmd() *cobra.Command {
	var state, start, end string
	var orderID int
	cmd := &cobra.Command{
		Use:   "orders [account]",
		Short: "List orders",
		Long: `List orders of an account, optionally filtered by state (All, Open, Closed)
and creation time. With --id a single order is fetched.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := accountArg(args)
			if err != nil {
				return err
			}
			var q questrade.OrdersQuery
			if q.StartTime, err = timeFlag(start); err != nil {
				return err
			}
			if q.EndTime, err = timeFlag(end); err != nil {
				return err
			}
			if state != "" {
				if q.StateFilter, err = model.ParseOrderStateFilter(state); err != nil {
					return err
				}
			}

			client, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			var orders []model.Order
			if orderID > 0 {
				o, err := client.GetOrder(cmd.Context(), account, orderID)
				if err != nil {
					return err
				}
				orders = []model.Order{*o}
			} else if orders, err = client.GetOrders(cmd.Context(), account, q); err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(orders)
			}

			rows := make([][]string, 0, len(orders))
			for _, o := range orders {
				rows = append(rows, []string{
					itoa(o.ID), o.Symbol, o.Side.String(), o.Type.String(),
					qty(o.TotalQuantity), qty(o.FilledQuantity), o.PriceLabel(),
					o.State.String(), stamp(o.CreationTime),
				})
			}
			renderTable([]string{"ID", "Symbol", "Side", "Type", "Qty", "Filled", "Price", "State", "Created"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&state, "state", "", "state filter: All, Open, Closed")
	cmd.Flags().StringVar(&start, "start", "", "earliest creation time")
	cmd.Flags().StringVar(&end, "end", "", "latest creation time")
	cmd.Flags().IntVar(&orderID, "id", 0, "fetch a single order by id")
	return cmd
}

func executionsCmd() *cobra.Command {
	var start, end string
	cmd := &cobra.Command{
		Use:   "executions [account]",
		Short: "List executions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := accountArg(args)
			if err != nil {
				return err
			}
			var r questrade.TimeRange
			if r.Start, err = timeFlag(start); err != nil {
				return err
			}
			if r.End, err = timeFlag(end); err != nil {
				return err
			}

			client, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			execs, err := client.GetExecutions(cmd.Context(), account, r)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(execs)
			}

			rows := make([][]string, 0, len(execs))
			for _, e := range execs {
				rows = append(rows, []string{
					itoa(e.ID), e.Symbol, e.Side.String(), qty(e.Quantity), price(e.Price),
					price(e.Commission), e.Venue, stamp(e.Timestamp),
				})
			}
			renderTable([]string{"ID", "Symbol", "Side", "Qty", "Price", "Commission", "Venue", "Time"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "earliest execution time")
	cmd.Flags().StringVar(&end, "end", "", "latest execution time")
	return cmd
}

func activitiesCmd() *cobra.Command {
	var start, end string
	var days int
	cmd := &cobra.Command{
		Use:   "activities [account]",
		Short: "List account activities",
		Long: `List account activities between --start and --end. Without --start the
last --days days up to --end (default now) are shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := accountArg(args)
			if err != nil {
				return err
			}
			to := time.Now()
			if end != "" {
				if to, err = parseTime(end); err != nil {
					return err
				}
			}
			from := to.AddDate(0, 0, -days)
			if start != "" {
				if from, err = parseTime(start); err != nil {
					return err
				}
			}

			client, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			activities, err := client.GetActivities(cmd.Context(), account, from, to)
			if err != nil {
				return err
			}
			model.SortActivities(activities)
			if jsonOutput() {
				return outputJSON(activities)
			}

			rows := make([][]string, 0, len(activities))
			for _, a := range activities {
				rows = append(rows, []string{
					day(a.TradeDate), a.Type, a.Action, a.Symbol, qty(a.Quantity),
					price(a.Price), price(a.NetAmount), a.Currency.String(),
				})
			}
			renderTable([]string{"Date", "Type", "Action", "Symbol", "Qty", "Price", "Net", "Currency"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "start of the period")
	cmd.Flags().StringVar(&end, "end", "", "end of the period (default now)")
	cmd.Flags().IntVar(&days, "days", 30, "period length when --start is not given")
	return cmd
}

func pnlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pnl",
		Short: "Show today's P&L of every position in every account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connect(cmd.Context())
			if err != nil {
				return err
			}

			var progress portfolio.ProgressFunc
			if !jsonOutput() {
				bar := newProgressBar(-1, "Fetching accounts")
				defer func() {
					_ = bar.Finish()
					fmt.Fprintln(os.Stderr)
				}()
				progress = func(done, total int) {
					bar.ChangeMax(total)
					_ = bar.Set(done)
				}
			}

			report, err := portfolio.DayPnL(cmd.Context(), client, progress)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(pnlJSON(report))
			}

			var rows [][]string
			for _, ap := range report.Accounts {
				for _, l := range ap.Lines {
					rows = append(rows, []string{ap.Account.String(), l.DisplayName, l.Currency.String(), l.DayPnL.StringFixed(2)})
				}
				for _, c := range ap.Totals.Currencies() {
					rows = append(rows, []string{ap.Account.String(), "Total", c.String(), ap.Totals[c].StringFixed(2)})
				}
			}
			for _, c := range report.Totals.Currencies() {
				rows = append(rows, []string{"All accounts", "Total", c.String(), report.Totals[c].StringFixed(2)})
			}
			renderTable([]string{"Account", "Position", "Currency", "Day P&L"}, rows)
			return nil
		},
	}
}

type pnlLine struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
	DayPnL   string `json:"dayPnl"`
}

type pnlAccount struct {
	Number string            `json:"number"`
	Type   string            `json:"type"`
	Lines  []pnlLine         `json:"positions"`
	Totals map[string]string `json:"totals"`
}

func pnlTotals(t portfolio.Totals) map[string]string {
	out := make(map[string]string, len(t))
	for c, v := range t {
		out[c.String()] = v.StringFixed(2)
	}
	return out
}

func pnlJSON(r *portfolio.DayPnLReport) map[string]any {
	accounts := make([]pnlAccount, 0, len(r.Accounts))
	for _, ap := range r.Accounts {
		a := pnlAccount{
			Number: ap.Account.Number,
			Type:   ap.Account.Type.String(),
			Lines:  []pnlLine{},
			Totals: pnlTotals(ap.Totals),
		}
		for _, l := range ap.Lines {
			a.Lines = append(a.Lines, pnlLine{l.Symbol, l.DisplayName, l.Currency.String(), l.DayPnL.StringFixed(2)})
		}
		accounts = append(accounts, a)
	}
	return map[string]any{"accounts": accounts, "totals": pnlTotals(r.Totals)}
}

func streamPortCmd() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "streamport [ticker...]",
		Short: "Get a streaming port for notifications, or for quotes of the given tickers",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := model.ParseSocketMode(mode)
			if err != nil {
				return err
			}
			client, err := connect(cmd.Context())
			if err != nil {
				return err
			}

			var port int
			if len(args) == 0 {
				port, err = client.GetNotificationsStreamPort(cmd.Context(), m)
			} else {
				port, err = client.GetQuotesStreamPort(cmd.Context(), m, tickerRefs(args)...)
			}
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(map[string]int{"streamPort": port})
			}
			printf("%s\n", strconv.Itoa(port))
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "WebSocket", "socket mode: RawSocket, WebSocket")
	return cmd
}
