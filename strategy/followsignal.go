package strategy

import (
	"github.com/quantor/papertrade/broker"
	"github.com/quantor/papertrade/market"
)

// FollowSignal trades in the direction of the recommendation: it opens a
// position on Buy when flat and closes the whole position on Sell.
type FollowSignal struct {
	// MaxPositionValue caps the value of a single symbol's position at buy
	// time. A cap smaller than one lot's cost blocks buying the symbol.
	MaxPositionValue float64
}

func (f *FollowSignal) Name() string { return "follow-signal" }

// ShouldBuy requires a Buy recommendation, no existing position, enough
// cash for at least one lot, and a post-trade position value within the
// per-symbol cap.
func (f *FollowSignal) ShouldBuy(s Snapshot) bool {
	if s.Signal.Recommendation != market.Buy {
		return false
	}
	if held(s.Position) > 0 {
		return false
	}
	if !withinCap(s.Position, s.Price, f.MaxPositionValue) {
		return false
	}
	return s.Balance.AvailableCash >= s.Price*float64(broker.LotSize)
}

// ShouldSell requires a Sell recommendation and a position to close.
func (f *FollowSignal) ShouldSell(s Snapshot) bool {
	return s.Signal.Recommendation == market.Sell && held(s.Position) > 0
}

func (f *FollowSignal) BuyQuantity(s Snapshot) int64 {
	return buyQuantity(s.Price, s.Balance.AvailableCash, f.MaxPositionValue)
}

// SellQuantity closes the full position, floored to whole lots.
func (f *FollowSignal) SellQuantity(s Snapshot) int64 {
	return held(s.Position) / broker.LotSize * broker.LotSize
}
