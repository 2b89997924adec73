package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"iqtrade/pkg/model"
)

func symbolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "symbols <ticker>...",
		Short: "Show symbol details by name or id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			tickers, err := client.GetTickers(cmd.Context(), tickerRefs(args)...)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(tickers)
			}

			rows := make([][]string, 0, len(tickers))
			for _, t := range tickers {
				rows = append(rows, []string{
					t.DisplayName(), itoa(t.SymbolID), t.Description, t.ListingExchange.String(),
					t.Currency.String(), t.SecurityType.String(), price(t.PrevDayClosePrice), yesNo(t.HasOptions),
				})
			}
			renderTable([]string{"Symbol", "ID", "Description", "Exchange", "Currency", "Type", "Prev Close", "Options"}, rows)
			return nil
		},
	}
}

func searchCmd() *cobra.Command {
	var offset int
	cmd := &cobra.Command{
		Use:   "search <prefix>",
		Short: "Search symbols by prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			tickers, err := client.SearchSymbols(cmd.Context(), args[0], offset)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(tickers)
			}

			rows := make([][]string, 0, len(tickers))
			for _, t := range tickers {
				rows = append(rows, []string{
					t.Symbol, itoa(t.SymbolID), t.Description, t.ListingExchange.String(),
					t.Currency.String(), t.SecurityType.String(),
				})
			}
			renderTable([]string{"Symbol", "ID", "Description", "Exchange", "Currency", "Type"}, rows)
			return nil
		},
	}
	cmd.Flags().IntVar(&offset, "offset", -1, "skip this many results")
	return cmd
}

func quoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quote <ticker>...",
		Short: "Show Level 1 quotes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			quotes, err := client.GetQuotes(cmd.Context(), tickerRefs(args)...)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(quotes)
			}

			rows := make([][]string, 0, len(quotes))
			for _, q := range quotes {
				halted := ""
				if q.IsHalted {
					halted = "halted"
				}
				rows = append(rows, []string{
					q.Symbol, price(q.BidPrice), price(q.AskPrice), price(q.LastTradePrice),
					i64(q.Volume), price(q.OpenPrice), price(q.HighPrice), price(q.LowPrice), halted,
				})
			}
			renderTable([]string{"Symbol", "Bid", "Ask", "Last", "Volume", "Open", "High", "Low", ""}, rows)
			return nil
		},
	}
}

func chainCmd() *cobra.Command {
	var expiry, optType string
	var minStrike, maxStrike float64
	cmd := &cobra.Command{
		Use:   "chain <ticker>",
		Short: "Show the option chain of a symbol",
		Long: `Without --expiry the available expiry dates are listed. With --expiry the
strikes of that date are shown. Adding --type fetches option quotes for the
matching contracts, limited by --min-strike and --max-strike.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			refs := tickerRefs(args)
			if len(refs) != 1 {
				return fmt.Errorf("exactly one ticker expected")
			}
			client, err := connect(cmd.Context())
			if err != nil {
				return err
			}

			if optType != "" {
				if expiry == "" || maxStrike <= 0 {
					return fmt.Errorf("--type needs --expiry and --max-strike")
				}
				ot, err := model.ParseOptionType(optType)
				if err != nil {
					return err
				}
				exp, err := parseTime(expiry)
				if err != nil {
					return err
				}
				tickers, err := client.GetTickers(cmd.Context(), refs[0])
				if err != nil {
					return err
				}
				if len(tickers) == 0 {
					return fmt.Errorf("symbol %s not found", refs[0])
				}
				quotes, err := client.GetOptionQuotes(cmd.Context(), nil, []model.OptionIDFilter{{
					OptionType:     ot,
					UnderlyingID:   tickers[0].SymbolID,
					ExpiryDate:     exp,
					MinStrikePrice: minStrike,
					MaxStrikePrice: maxStrike,
				}})
				if err != nil {
					return err
				}
				if jsonOutput() {
					return outputJSON(quotes)
				}
				rows := make([][]string, 0, len(quotes))
				for _, q := range quotes {
					rows = append(rows, []string{
						q.DisplayName(), price(q.BidPrice), price(q.AskPrice), price(q.LastTradePrice),
						fmt.Sprintf("%.4f", q.Delta), fmt.Sprintf("%.2f", q.Volatility), i64(q.OpenInterest),
					})
				}
				renderTable([]string{"Option", "Bid", "Ask", "Last", "Delta", "IV", "Open Int."}, rows)
				return nil
			}

			chain, err := client.GetOptionChain(cmd.Context(), refs[0])
			if err != nil {
				return err
			}
			if expiry == "" {
				if jsonOutput() {
					return outputJSON(chain)
				}
				rows := make([][]string, 0, len(chain))
				for _, e := range chain {
					roots := make([]string, 0, len(e.Roots))
					strikes := 0
					for _, r := range e.Roots {
						roots = append(roots, r.OptionRoot)
						strikes += len(r.Strikes)
					}
					rows = append(rows, []string{
						day(e.ExpiryDate), e.Description, e.OptionExerciseType.String(),
						strings.Join(roots, ","), itoa(strikes),
					})
				}
				renderTable([]string{"Expiry", "Description", "Style", "Roots", "Strikes"}, rows)
				return nil
			}

			exp, err := parseTime(expiry)
			if err != nil {
				return err
			}
			for _, e := range chain {
				if day(e.ExpiryDate) != exp.Format("2006-01-02") {
					continue
				}
				if jsonOutput() {
					return outputJSON(e)
				}
				var rows [][]string
				for _, r := range e.Roots {
					for _, s := range r.Strikes {
						if s.StrikePrice < minStrike || (maxStrike > 0 && s.StrikePrice > maxStrike) {
							continue
						}
						rows = append(rows, []string{r.OptionRoot, price(s.StrikePrice), itoa(s.CallSymbolID), itoa(s.PutSymbolID)})
					}
				}
				renderTable([]string{"Root", "Strike", "Call ID", "Put ID"}, rows)
				return nil
			}
			return fmt.Errorf("no options expiring on %s", exp.Format("2006-01-02"))
		},
	}
	cmd.Flags().StringVar(&expiry, "expiry", "", "expiry date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&optType, "type", "", "fetch quotes for Call or Put contracts of --expiry")
	cmd.Flags().Float64Var(&minStrike, "min-strike", 0, "lowest strike")
	cmd.Flags().Float64Var(&maxStrike, "max-strike", 0, "highest strike (0 means no limit)")
	return cmd
}

func candlesCmd() *cobra.Command {
	var interval, start, end string
	cmd := &cobra.Command{
		Use:   "candles <ticker>",
		Short: "Show historical candles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			refs := tickerRefs(args)
			if len(refs) != 1 {
				return fmt.Errorf("exactly one ticker expected")
			}
			gran, err := model.ParseGranularity(interval)
			if err != nil {
				return err
			}
			to := time.Now()
			if end != "" {
				if to, err = parseTime(end); err != nil {
					return err
				}
			}
			from := to.AddDate(0, -1, 0)
			if start != "" {
				if from, err = parseTime(start); err != nil {
					return err
				}
			}

			client, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			candles, err := client.GetCandles(cmd.Context(), refs[0], gran, from, to)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(candles)
			}

			rows := make([][]string, 0, len(candles))
			for _, c := range candles {
				rows = append(rows, []string{
					stamp(c.Start), price(c.Open), price(c.High), price(c.Low), price(c.Close), i64(c.Volume),
				})
			}
			renderTable([]string{"Start", "Open", "High", "Low", "Close", "Volume"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&interval, "interval", "OneDay", "candle interval, e.g. OneMinute, OneHour, OneDay")
	cmd.Flags().StringVar(&start, "start", "", "start of the period (default one month before --end)")
	cmd.Flags().StringVar(&end, "end", "", "end of the period (default now)")
	return cmd
}
