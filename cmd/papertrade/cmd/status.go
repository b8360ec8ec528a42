package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the session balance and open positions",
	Long: `Display the current account snapshot for the configured session.

Example:
  papertrade status -c config.yaml`,
	RunE: runStatus,
}

var statusConfigPath string

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusConfigPath, "config", "c", "papertrade.yaml", "path to config file")
}

func runStatus(cmd *cobra.Command, args []string) error {
	s, err := newSession(statusConfigPath)
	if err != nil {
		return err
	}
	defer s.close()

	status, err := s.engine.Status(context.Background())
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}

	fmt.Printf("Session: %s\n", s.cfg.Account.Session)
	fmt.Printf("  Total Assets: %.2f %s\n", status.Balance.TotalAssets, status.Balance.Currency)
	fmt.Printf("  Available Cash: %.2f\n", status.Balance.AvailableCash)
	fmt.Printf("  Market Value: %.2f\n", status.Balance.MarketValue)
	fmt.Printf("  Frozen Cash: %.2f\n", status.Balance.FrozenCash)

	if len(status.Positions) == 0 {
		fmt.Println("\nNo open positions")
		return nil
	}

	fmt.Printf("\nPositions:\n")
	for _, p := range status.Positions {
		pnl := (p.CurrentPrice - p.CostPrice) * float64(p.Quantity)
		fmt.Printf("  %-10s qty=%-8d cost=%-10.2f last=%-10.2f value=%-12.2f pnl=%.2f\n",
			p.Symbol, p.Quantity, p.CostPrice, p.CurrentPrice, p.MarketValue, pnl)
	}
	return nil
}
