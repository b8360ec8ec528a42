// Package engine orchestrates one trading cycle per symbol: snapshot the
// account, ask the strategy, place at most one order through the broker, and
// commit or roll back the store as a unit.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/quantor/papertrade/broker"
	"github.com/quantor/papertrade/market"
	"github.com/quantor/papertrade/store"
	"github.com/quantor/papertrade/strategy"
)

// Marker is implemented by venues that support mark-to-market. Only the
// simulated venue does; live venues quote their own prices.
type Marker interface {
	UpdatePositionPrice(ctx context.Context, symbol string, price float64) (bool, error)
}

// Engine drives strategy decisions against a broker. It owns the store
// transaction boundary: each symbol cycle is durable only as a whole.
type Engine struct {
	broker broker.Broker
	store  store.Store
	strat  strategy.Strategy
	log    *slog.Logger

	// markPrices is set in backtest mode, where the engine marks the symbol
	// to the supplied price before deciding. Live venues already carry
	// current prices.
	markPrices bool
}

// New wires an engine. The strategy comes pre-built from the registry so a
// bad strategy name has already failed by now.
func New(b broker.Broker, st store.Store, strat strategy.Strategy, log *slog.Logger, markPrices bool) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		broker:     b,
		store:      st,
		strat:      strat,
		log:        log.With("strategy", strat.Name()),
		markPrices: markPrices,
	}
}

// Status is the dashboard snapshot of one session.
type Status struct {
	Balance   broker.Balance    `json:"balance"`
	Positions []broker.Position `json:"positions"`
}

// Status reports the current balance and open positions.
func (e *Engine) Status(ctx context.Context) (*Status, error) {
	bal, err := e.broker.Balance(ctx)
	if err != nil {
		return nil, err
	}
	positions, err := e.broker.Positions(ctx)
	if err != nil {
		return nil, err
	}
	return &Status{Balance: bal, Positions: positions}, nil
}

// ProcessSignal runs one decision cycle for a symbol at the given price.
// Sell is evaluated before buy and at most one order is placed. A failed
// cycle is rolled back and swallowed so the rest of the batch keeps going;
// only a missing session account, which means the store is corrupt,
// propagates.
func (e *Engine) ProcessSignal(ctx context.Context, symbol string, price float64, sig market.Signal) error {
	if err := e.processSignal(ctx, symbol, price, sig); err != nil {
		if rbErr := e.store.Rollback(); rbErr != nil {
			e.log.Error("rollback failed", "symbol", symbol, "error", rbErr)
		}

		if errors.Is(err, broker.ErrUnknownSession) {
			return err
		}
		if broker.IsRejection(err) {
			e.log.Debug("order rejected", "symbol", symbol, "reason", err)
			return nil
		}
		e.log.Error("trading cycle failed", "symbol", symbol, "error", err)
		return nil
	}

	if err := e.store.Commit(); err != nil {
		e.log.Error("commit failed", "symbol", symbol, "error", err)
		if rbErr := e.store.Rollback(); rbErr != nil {
			e.log.Error("rollback failed", "symbol", symbol, "error", rbErr)
		}
	}
	return nil
}

func (e *Engine) processSignal(ctx context.Context, symbol string, price float64, sig market.Signal) error {
	if e.markPrices {
		if m, ok := e.broker.(Marker); ok {
			if _, err := m.UpdatePositionPrice(ctx, symbol, price); err != nil {
				return fmt.Errorf("mark %s: %w", symbol, err)
			}
		}
	}

	bal, err := e.broker.Balance(ctx)
	if err != nil {
		return fmt.Errorf("balance: %w", err)
	}
	pos, err := e.broker.Position(ctx, symbol)
	if err != nil {
		return fmt.Errorf("position %s: %w", symbol, err)
	}

	snap := strategy.Snapshot{
		Symbol:   symbol,
		Price:    price,
		Signal:   sig,
		Position: pos,
		Balance:  bal,
	}

	switch {
	case e.strat.ShouldSell(snap):
		qty := e.strat.SellQuantity(snap)
		if qty <= 0 {
			return nil
		}
		return e.place(ctx, broker.OrderRequest{
			Symbol: symbol, Side: broker.SideSell, Quantity: qty,
			Type: broker.OrderTypeMarket, Price: price,
		})

	case e.strat.ShouldBuy(snap):
		qty := e.strat.BuyQuantity(snap)
		if qty <= 0 {
			return nil
		}
		return e.place(ctx, broker.OrderRequest{
			Symbol: symbol, Side: broker.SideBuy, Quantity: qty,
			Type: broker.OrderTypeMarket, Price: price,
		})
	}
	return nil
}

func (e *Engine) place(ctx context.Context, req broker.OrderRequest) error {
	order, err := e.broker.PlaceOrder(ctx, req)
	if err != nil {
		return err
	}
	e.log.Info("order placed",
		"order", order.ID,
		"symbol", req.Symbol,
		"side", req.Side,
		"quantity", req.Quantity,
		"price", req.Price,
	)
	return nil
}

// PlaceManualOrder bypasses the strategy and commits immediately. It is the
// path behind the order command.
func (e *Engine) PlaceManualOrder(ctx context.Context, req broker.OrderRequest) (*broker.Order, error) {
	order, err := e.broker.PlaceOrder(ctx, req)
	if err != nil {
		if rbErr := e.store.Rollback(); rbErr != nil {
			e.log.Error("rollback failed", "symbol", req.Symbol, "error", rbErr)
		}
		return nil, err
	}
	if err := e.store.Commit(); err != nil {
		return nil, fmt.Errorf("commit order %s: %w", order.ID, err)
	}
	return order, nil
}
