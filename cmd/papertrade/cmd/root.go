package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "papertrade",
	Short: "A deterministic paper-trading simulator and backtesting engine",
	Long: `Papertrade simulates order execution against a virtual account so that
strategies can be exercised without touching a real brokerage.

It provides tools for:
  - Backtesting strategies over daily history with no-lookahead guarantees
  - Running a persistent paper-trading account
  - Placing manual orders against a session
  - Inspecting account balance and open positions`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
