package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quantor/papertrade/broker"
)

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Place a manual order against the configured session",
	Long: `Place an order directly, bypassing the strategy. The order fills
immediately at the given price on the simulated venue.

Example:
  papertrade order -c config.yaml --symbol 600519 --side BUY --quantity 100 --price 1688.00`,
	RunE: runOrder,
}

var (
	orderConfigPath string
	orderSymbol     string
	orderSide       string
	orderQuantity   int64
	orderPrice      float64
)

func init() {
	rootCmd.AddCommand(orderCmd)

	orderCmd.Flags().StringVarP(&orderConfigPath, "config", "c", "papertrade.yaml", "path to config file")
	orderCmd.Flags().StringVar(&orderSymbol, "symbol", "", "symbol to trade (required)")
	orderCmd.Flags().StringVar(&orderSide, "side", "", "BUY or SELL (required)")
	orderCmd.Flags().Int64VarP(&orderQuantity, "quantity", "q", 0, "share quantity, a multiple of 100 (required)")
	orderCmd.Flags().Float64VarP(&orderPrice, "price", "p", 0, "execution price (required)")

	orderCmd.MarkFlagRequired("symbol")
	orderCmd.MarkFlagRequired("side")
	orderCmd.MarkFlagRequired("quantity")
	orderCmd.MarkFlagRequired("price")
}

func runOrder(cmd *cobra.Command, args []string) error {
	s, err := newSession(orderConfigPath)
	if err != nil {
		return err
	}
	defer s.close()

	order, err := s.engine.PlaceManualOrder(context.Background(), broker.OrderRequest{
		Symbol:   orderSymbol,
		Side:     broker.Side(strings.ToUpper(orderSide)),
		Quantity: orderQuantity,
		Type:     broker.OrderTypeMarket,
		Price:    orderPrice,
	})
	if err != nil {
		return fmt.Errorf("place order: %w", err)
	}

	fmt.Printf("Order filled:\n")
	fmt.Printf("  ID: %s\n", order.ID)
	fmt.Printf("  %s %d %s @ %.2f\n", order.Side, order.Quantity, order.Symbol, order.Price)

	bal, err := s.broker.Balance(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("  Available Cash: %.2f\n", bal.AvailableCash)
	fmt.Printf("  Total Assets: %.2f\n", bal.TotalAssets)
	return nil
}
