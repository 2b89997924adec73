package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"iqtrade/internal/config"
	"iqtrade/internal/logging"
	"iqtrade/pkg/questrade"
)

var (
	cfgFile     string
	secretsFile string
	noSave      bool
	format      string
	verbose     bool

	cfg *config.Config
	log *logrus.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "iqtrade",
		Short: "Questrade account and market data from the command line",
		Long: `iqtrade reads accounts, orders and market data from the Questrade API.

Authentication uses the refresh token stored under "iq_refresh_token" in the
secrets file. Questrade rotates the token on every login and iqtrade writes the
new one back unless --no-save is given.

Examples:
  iqtrade accounts
  iqtrade positions 26598145
  iqtrade quote AAPL MSFT 8049
  iqtrade candles AAPL --interval OneDay --start 2021-10-01 --end 2021-10-15`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "iqtrade.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&secretsFile, "secrets", "", "secrets file holding iq_refresh_token (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&noSave, "no-save", false, "do not write the rotated refresh token back")
	rootCmd.PersistentFlags().StringVar(&format, "format", "", "output format: table, json")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log every API call")

	rootCmd.AddCommand(
		timeCmd(),
		accountsCmd(),
		balancesCmd(),
		positionsCmd(),
		ordersCmd(),
		executionsCmd(),
		activitiesCmd(),
		symbolsCmd(),
		searchCmd(),
		quoteCmd(),
		chainCmd(),
		candlesCmd(),
		pnlCmd(),
		streamPortCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// setup loads the configuration and applies flag overrides.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if secretsFile != "" {
		cfg.Questrade.Secrets = secretsFile
	}
	if noSave {
		cfg.Questrade.Persist = false
	}
	if format != "" {
		cfg.Output.Format = format
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err = logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	return nil
}

// connect authenticates against Questrade.
func connect(ctx context.Context) (*questrade.Client, error) {
	opts := append(cfg.ClientOptions(), questrade.WithLogger(log))
	client, err := questrade.NewFromFile(ctx, cfg.Questrade.Secrets, opts...)
	if err != nil {
		return nil, err
	}
	log.WithField("api_server", client.APIServer()).Debug("connected")
	return client, nil
}

// accountArg returns the account given on the command line or the configured
// default account.
func accountArg(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Questrade.Account != "" {
		return cfg.Questrade.Account, nil
	}
	return "", fmt.Errorf("account number required (argument or questrade.account in config)")
}

func tickerRefs(args []string) []questrade.Ref {
	var refs []questrade.Ref
	for _, arg := range args {
		for _, s := range strings.Split(arg, ",") {
			if s = strings.TrimSpace(s); s != "" {
				refs = append(refs, questrade.ParseRef(strings.ToUpper(s)))
			}
		}
	}
	return refs
}

// parseTime accepts a date (local midnight) or an RFC 3339 timestamp.
func parseTime(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: use YYYY-MM-DD or RFC 3339", s)
	}
	return t, nil
}

// timeFlag parses an optional time flag; an empty value gives nil.
func timeFlag(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseTime(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
