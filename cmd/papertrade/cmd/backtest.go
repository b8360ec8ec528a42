package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantor/papertrade/backtest"
	"github.com/quantor/papertrade/broker/paper"
	"github.com/quantor/papertrade/config"
	"github.com/quantor/papertrade/engine"
	"github.com/quantor/papertrade/internal/id"
	"github.com/quantor/papertrade/internal/logging"
	"github.com/quantor/papertrade/strategy"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay daily history through a strategy and report performance",
	Long: `Backtest runs a strategy over a closed date range against the simulated
venue. Each run trades in a fresh session so results never contaminate an
existing account.

Example:
  papertrade backtest -c config.yaml --symbols 600519,000001 --start 2024-01-02 --end 2024-06-28`,
	RunE: runBacktest,
}

var (
	btConfigPath string
	btSymbols    string
	btStart      string
	btEnd        string
	btSession    string
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btConfigPath, "config", "c", "papertrade.yaml", "path to config file")
	backtestCmd.Flags().StringVarP(&btSymbols, "symbols", "s", "", "comma-separated symbols (required)")
	backtestCmd.Flags().StringVar(&btStart, "start", "", "first day, YYYY-MM-DD (required)")
	backtestCmd.Flags().StringVar(&btEnd, "end", "", "last day, YYYY-MM-DD (required)")
	backtestCmd.Flags().StringVar(&btSession, "session", "", "session id (default: a fresh backtest session)")

	backtestCmd.MarkFlagRequired("symbols")
	backtestCmd.MarkFlagRequired("start")
	backtestCmd.MarkFlagRequired("end")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(btConfigPath)
	if err != nil {
		return err
	}

	start, err := time.Parse("2006-01-02", btStart)
	if err != nil {
		return fmt.Errorf("parse start: %w", err)
	}
	end, err := time.Parse("2006-01-02", btEnd)
	if err != nil {
		return fmt.Errorf("parse end: %w", err)
	}
	if end.Before(start) {
		return fmt.Errorf("end %s is before start %s", btEnd, btStart)
	}

	var symbols []string
	for _, s := range strings.Split(btSymbols, ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}
	if len(symbols) == 0 {
		return fmt.Errorf("no symbols given")
	}

	sessionID := btSession
	if sessionID == "" {
		sessionID = id.NewSession("backtest")
	}

	log := logging.New(os.Stderr, cfg.Log.Level)

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	strat, err := strategy.DefaultRegistry().New(cfg.Trading.Strategy, cfg.Trading.MaxPositionValue)
	if err != nil {
		return err
	}

	pb, err := paper.New(st, sessionID, cfg.Account.InitialCapital, cfg.Account.Currency, log)
	if err != nil {
		return err
	}

	driver := &backtest.Driver{
		Engine:  engine.New(pb, st, strat, log, true),
		Broker:  pb,
		Store:   st,
		Source:  backtest.NewCachedSource(&backtest.StoreSource{Store: st}, cfg.Backtest.CacheDir),
		Signals: backtest.TrendProvider{},
		Log:     log,
	}

	fmt.Printf("Running backtest %s\n", sessionID)
	fmt.Printf("  Strategy: %s\n", strat.Name())
	fmt.Printf("  Symbols: %s\n", strings.Join(symbols, ", "))
	fmt.Printf("  Period: %s to %s\n", btStart, btEnd)

	report, err := driver.Run(context.Background(), symbols, start, end)
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	backtest.PrintReport(os.Stdout, report)
	return nil
}
