package backtest

import (
	"context"
	"fmt"

	"github.com/quantor/papertrade/market"
)

// SignalProvider turns a decision context into a trading signal. The driver
// only ever hands it contexts built from bars at or before the simulated
// day, so a provider cannot peek into the future even if it wants to.
type SignalProvider interface {
	Signal(ctx context.Context, dc *market.DecisionContext) (market.Signal, error)
}

// TrendProvider derives signals from the moving-average trend alone: buy on
// a bullish alignment, sell on a bearish one, hold everything else.
type TrendProvider struct{}

var _ SignalProvider = (*TrendProvider)(nil)

func (TrendProvider) Signal(_ context.Context, dc *market.DecisionContext) (market.Signal, error) {
	rec := market.Hold
	switch dc.Trend {
	case market.TrendBullish:
		rec = market.Buy
	case market.TrendBearish:
		rec = market.Sell
	}
	return market.Signal{
		Recommendation: rec,
		Rationale:      fmt.Sprintf("trend %s at %.2f", dc.Trend, dc.Close),
	}, nil
}
