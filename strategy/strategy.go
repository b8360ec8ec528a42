// Package strategy holds the pure decision policies that turn a signal and
// an account snapshot into buy/sell decisions. Strategies never touch the
// broker or the store; sizing is arithmetic over the snapshot the caller
// passes in.
package strategy

import (
	"fmt"
	"strings"

	"github.com/quantor/papertrade/broker"
	"github.com/quantor/papertrade/market"
)

// Snapshot is the account state a strategy decides against. Position is nil
// when the symbol is not held. AvailableCash is spendable cash only; frozen
// cash never counts toward buying power.
type Snapshot struct {
	Symbol   string
	Price    float64
	Signal   market.Signal
	Position *broker.Position
	Balance  broker.Balance
}

// Strategy is a side-effect-free decision policy. The same snapshot must
// always produce the same answer.
type Strategy interface {
	Name() string

	ShouldBuy(s Snapshot) bool
	ShouldSell(s Snapshot) bool

	// BuyQuantity returns the lot-multiple quantity to buy, 0 when nothing
	// affordable. Only meaningful after ShouldBuy reports true.
	BuyQuantity(s Snapshot) int64

	// SellQuantity returns the lot-multiple quantity to sell.
	SellQuantity(s Snapshot) int64
}

// Factory builds a strategy with the per-symbol position value cap applied.
type Factory func(maxPositionValue float64) Strategy

// Registry maps strategy names to factories. It is a value handed to the
// engine constructor, not package-global state.
type Registry map[string]Factory

// DefaultRegistry lists the built-in strategies.
func DefaultRegistry() Registry {
	return Registry{
		"follow-signal": func(cap float64) Strategy { return &FollowSignal{MaxPositionValue: cap} },
		"buy-and-hold":  func(cap float64) Strategy { return &BuyAndHold{MaxPositionValue: cap} },
	}
}

// New builds the named strategy. An unknown name is a construction error so
// that a bad configuration fails before the first decision, not during it.
func (r Registry) New(name string, maxPositionValue float64) (Strategy, error) {
	f, ok := r[strings.ToLower(strings.TrimSpace(name))]
	if ok {
		return f(maxPositionValue), nil
	}

	names := make([]string, 0, len(r))
	for n := range r {
		names = append(names, n)
	}
	return nil, fmt.Errorf("unknown strategy %q (supported: %s)", name, strings.Join(names, ", "))
}

func held(p *broker.Position) int64 {
	if p == nil {
		return 0
	}
	return p.Quantity
}

func positionValue(p *broker.Position) float64 {
	if p == nil {
		return 0
	}
	return p.MarketValue
}

// withinCap reports whether adding one lot at price keeps the symbol's
// position value inside the cap. Buying even a single lot over the cap is
// refused outright; the quantity floor in buyQuantity never overrides this.
func withinCap(pos *broker.Position, price, maxPositionValue float64) bool {
	return positionValue(pos)+price*float64(broker.LotSize) <= maxPositionValue
}

// buyQuantity sizes a buy as the smaller of what cash affords and what the
// position value cap affords, floored to whole lots. A cap smaller than one
// lot still allows a single lot so a tight cap does not silence the strategy
// entirely.
func buyQuantity(price, cash, maxPositionValue float64) int64 {
	if price <= 0 {
		return 0
	}

	lot := float64(broker.LotSize)
	byCash := int64(cash/price/lot) * broker.LotSize
	byCap := int64(maxPositionValue/price/lot) * broker.LotSize
	if byCap == 0 {
		byCap = broker.LotSize
	}

	if byCash < byCap {
		return byCash
	}
	return byCap
}
