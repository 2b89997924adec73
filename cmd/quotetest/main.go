package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"iqtrade/internal/config"
	"iqtrade/internal/logging"
	"iqtrade/pkg/model"
	"iqtrade/pkg/questrade"
)

func main() {
	cfg, err := config.Load("iqtrade.yaml")
	if err != nil {
		log.Fatal(err)
	}
	if _, err := os.Stat(cfg.Questrade.Secrets); err != nil {
		log.Fatalf("No secrets file at %s", cfg.Questrade.Secrets)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("=== Questrade API Test ===")
	ctx := context.Background()

	// 1. Login
	fmt.Println("\n[1] Login with stored refresh token")
	start := time.Now()
	client, err := questrade.NewFromFile(ctx, cfg.Questrade.Secrets,
		append(cfg.ClientOptions(), questrade.WithLogger(logger))...)
	if err != nil {
		log.Fatalf("    ERROR: %v", err)
	}
	fmt.Printf("    OK in %s, api server %s\n", time.Since(start), client.APIServer())

	// 2. Server time
	fmt.Println("\n[2] Server time")
	if t, err := client.GetTime(ctx); err != nil {
		fmt.Printf("    ERROR: %v\n", err)
	} else {
		fmt.Printf("    OK: %s (local clock off by %s)\n", t.Format(time.RFC3339), time.Since(t).Round(time.Millisecond))
	}

	// 3. Accounts
	fmt.Println("\n[3] Accounts")
	accounts, err := client.GetAccounts(ctx)
	if err != nil {
		fmt.Printf("    ERROR: %v\n", err)
	} else {
		model.SortAccounts(accounts)
		for _, a := range accounts {
			fmt.Printf("    %s (%s)\n", a, a.Status)
		}
	}

	// 4. Quotes, mixing a name and an id
	fmt.Println("\n[4] Quotes for AAPL and 27426 (MSFT)")
	start = time.Now()
	quotes, err := client.GetQuotes(ctx, questrade.ByName("AAPL"), questrade.ByID(27426))
	if err != nil {
		fmt.Printf("    ERROR: %v\n", err)
	} else {
		fmt.Printf("    OK: %d quotes in %s\n", len(quotes), time.Since(start))
		for _, q := range quotes {
			fmt.Printf("    %s bid=%.2f ask=%.2f last=%.2f vol=%d\n",
				q.Symbol, q.BidPrice, q.AskPrice, q.LastTradePrice, q.Volume)
		}
	}

	// 5. Daily candles
	fmt.Println("\n[5] Daily candles for AAPL, last 30 days")
	end := time.Now()
	candles, err := client.GetCandles(ctx, questrade.ByName("AAPL"), model.GranularityOneDay, end.AddDate(0, 0, -30), end)
	if err != nil {
		fmt.Printf("    ERROR: %v\n", err)
	} else {
		fmt.Printf("    OK: %d candles\n", len(candles))
		if len(candles) > 0 {
			last := candles[len(candles)-1]
			fmt.Printf("    Last: %s O=%.2f H=%.2f L=%.2f C=%.2f V=%d\n",
				last.Start.Format("2006-01-02"), last.Open, last.High, last.Low, last.Close, last.Volume)
		}
	}

	fmt.Println("\n=== Done ===")
}
