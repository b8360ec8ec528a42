package strategy

import (
	"github.com/quantor/papertrade/broker"
)

// BuyAndHold opens a position the first time it sees a symbol and never
// exits. Useful as a benchmark against the signal-driven strategies.
type BuyAndHold struct {
	MaxPositionValue float64
}

func (b *BuyAndHold) Name() string { return "buy-and-hold" }

// ShouldBuy ignores the signal: any flat symbol with cash for a lot gets
// bought, subject to the same per-symbol cap as the signal strategies.
func (b *BuyAndHold) ShouldBuy(s Snapshot) bool {
	if held(s.Position) > 0 {
		return false
	}
	if !withinCap(s.Position, s.Price, b.MaxPositionValue) {
		return false
	}
	return s.Balance.AvailableCash >= s.Price*float64(broker.LotSize)
}

func (b *BuyAndHold) ShouldSell(Snapshot) bool { return false }

func (b *BuyAndHold) BuyQuantity(s Snapshot) int64 {
	return buyQuantity(s.Price, s.Balance.AvailableCash, b.MaxPositionValue)
}

func (b *BuyAndHold) SellQuantity(Snapshot) int64 { return 0 }
