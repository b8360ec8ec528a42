// Package paper implements the simulated execution venue. Orders fill
// immediately and synchronously at the caller-supplied price against a
// session-scoped virtual account held in the store; no external calls are
// ever made.
package paper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quantor/papertrade/broker"
	"github.com/quantor/papertrade/internal/id"
	"github.com/quantor/papertrade/store"
)

var _ broker.Broker = (*Broker)(nil)

// Broker is the paper-trading venue for one session. It never commits the
// store itself: the orchestrator owns the transaction boundary so that one
// symbol-day decision is durable only as a whole.
type Broker struct {
	store          store.Store
	sessionID      string
	initialCapital float64
	currency       string
	log            *slog.Logger

	now func() time.Time
}

// New creates a paper broker bound to a session, ensuring its account row
// exists. A missing account is funded with initialCapital.
func New(st store.Store, sessionID string, initialCapital float64, currency string, log *slog.Logger) (*Broker, error) {
	if log == nil {
		log = slog.Default()
	}
	b := &Broker{
		store:          st,
		sessionID:      sessionID,
		initialCapital: initialCapital,
		currency:       currency,
		now:            time.Now,
	}
	_, created, err := b.ensureAccount()
	if err != nil {
		return nil, err
	}
	if created {
		// A freshly funded account is committed right away so the session
		// exists durably even if no order ever fills. Everything after
		// construction stays inside the orchestrator's transaction.
		if err := st.Commit(); err != nil {
			return nil, fmt.Errorf("commit new account %q: %w", sessionID, err)
		}
	}
	b.log = log.With("broker", b.Name(), "session", sessionID)
	return b, nil
}

// SetClock overrides the timestamp source. The backtest driver pins it to
// the simulated day so that recorded rows carry simulation time, not wall
// time.
func (b *Broker) SetClock(now func() time.Time) {
	b.now = now
}

// SessionID returns the session this broker trades in.
func (b *Broker) SessionID() string { return b.sessionID }

// Name returns "paper".
func (b *Broker) Name() string { return "paper" }

// Connect is a no-op: the simulated venue has nothing to connect to.
func (b *Broker) Connect(context.Context) error { return nil }

// Disconnect is a no-op.
func (b *Broker) Disconnect(context.Context) error { return nil }

// ensureAccount loads the session account, creating and funding it on first
// access. The second result reports whether the row was just created.
func (b *Broker) ensureAccount() (*broker.Account, bool, error) {
	acct, err := b.store.Account(b.sessionID)
	if err != nil {
		return nil, false, err
	}
	if acct != nil {
		return acct, false, nil
	}

	now := b.now()
	acct = &broker.Account{
		SessionID:      b.sessionID,
		InitialCapital: b.initialCapital,
		AvailableCash:  b.initialCapital,
		TotalAssets:    b.initialCapital,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := b.store.SaveAccount(acct); err != nil {
		return nil, false, err
	}
	return acct, true, nil
}

// mustAccount loads the session account and treats a missing row as an
// invariant violation.
func (b *Broker) mustAccount() (*broker.Account, error) {
	acct, err := b.store.Account(b.sessionID)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, fmt.Errorf("session %q: %w", b.sessionID, broker.ErrUnknownSession)
	}
	return acct, nil
}

// Balance recomputes the market value of every open position from its last
// marked price and returns the refreshed snapshot. The recompute also
// repairs the cached total_assets aggregate, so the identity
// total = cash + frozen + market value holds at every observation point.
func (b *Broker) Balance(ctx context.Context) (broker.Balance, error) {
	acct, _, err := b.ensureAccount()
	if err != nil {
		return broker.Balance{}, err
	}

	positions, err := b.store.Positions(b.sessionID)
	if err != nil {
		return broker.Balance{}, err
	}

	var marketValue float64
	for _, p := range positions {
		marketValue += float64(p.Quantity) * p.CurrentPrice
	}

	acct.TotalAssets = acct.AvailableCash + acct.FrozenCash + marketValue
	acct.UpdatedAt = b.now()
	if err := b.store.SaveAccount(acct); err != nil {
		return broker.Balance{}, err
	}

	return broker.Balance{
		TotalAssets:   acct.TotalAssets,
		AvailableCash: acct.AvailableCash,
		MarketValue:   marketValue,
		FrozenCash:    acct.FrozenCash,
		Currency:      b.currency,
	}, nil
}

// Positions lists all open positions for the session.
func (b *Broker) Positions(context.Context) ([]broker.Position, error) {
	return b.store.Positions(b.sessionID)
}

// Position returns the holding for one symbol, or nil when none exists.
func (b *Broker) Position(_ context.Context, symbol string) (*broker.Position, error) {
	return b.store.Position(b.sessionID, symbol)
}

// PlaceOrder validates and immediately fills an order at req.Price,
// recording the order, its fill, and the resulting position and account
// mutations. Rejections come back as the typed errors in package broker.
func (b *Broker) PlaceOrder(ctx context.Context, req broker.OrderRequest) (*broker.Order, error) {
	if req.Side != broker.SideBuy && req.Side != broker.SideSell {
		return nil, &broker.InvalidOrderError{Reason: fmt.Sprintf("side must be BUY or SELL, got %q", req.Side)}
	}
	if req.Quantity <= 0 {
		return nil, &broker.InvalidOrderError{Reason: fmt.Sprintf("quantity must be positive, got %d", req.Quantity)}
	}
	if req.Quantity%broker.LotSize != 0 {
		return nil, &broker.InvalidOrderError{Reason: fmt.Sprintf("quantity %d is not a multiple of lot size %d", req.Quantity, broker.LotSize)}
	}
	if req.Price <= 0 {
		// Immediate-fill simulation needs a usable execution price; the
		// venue never fetches quotes on its own.
		return nil, &broker.InvalidOrderError{Reason: "order requires an execution price"}
	}

	acct, err := b.mustAccount()
	if err != nil {
		return nil, err
	}

	amount := req.Price * float64(req.Quantity)

	pos, err := b.store.Position(b.sessionID, req.Symbol)
	if err != nil {
		return nil, err
	}

	switch req.Side {
	case broker.SideBuy:
		if amount > acct.AvailableCash {
			return nil, &broker.InsufficientFundsError{Need: amount, Have: acct.AvailableCash}
		}
	case broker.SideSell:
		held := int64(0)
		if pos != nil {
			held = pos.Quantity
		}
		if held < req.Quantity {
			return nil, &broker.InsufficientPositionError{Want: req.Quantity, Held: held}
		}
	}

	now := b.now()
	order := &broker.Order{
		ID:        id.New(),
		SessionID: b.sessionID,
		Symbol:    req.Symbol,
		Side:      req.Side,
		Type:      req.Type,
		Quantity:  req.Quantity,
		Price:     req.Price,
		Status:    broker.OrderFilled,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := b.store.SaveOrder(order); err != nil {
		return nil, err
	}

	trade := &broker.Trade{
		ID:         id.New(),
		OrderID:    order.ID,
		SessionID:  b.sessionID,
		Symbol:     req.Symbol,
		Side:       req.Side,
		Quantity:   req.Quantity,
		Price:      req.Price,
		Amount:     amount,
		ExecutedAt: now,
	}
	if err := b.store.SaveTrade(trade); err != nil {
		return nil, err
	}

	switch req.Side {
	case broker.SideBuy:
		if pos != nil {
			totalQty := pos.Quantity + req.Quantity
			totalCost := float64(pos.Quantity)*pos.CostPrice + amount
			pos.CostPrice = totalCost / float64(totalQty)
			pos.Quantity = totalQty
		} else {
			pos = &broker.Position{
				SessionID: b.sessionID,
				Symbol:    req.Symbol,
				Quantity:  req.Quantity,
				CostPrice: req.Price,
			}
		}
		pos.CurrentPrice = req.Price
		pos.MarketValue = float64(pos.Quantity) * pos.CurrentPrice
		pos.UpdatedAt = now
		if err := b.store.SavePosition(pos); err != nil {
			return nil, err
		}

		// The cash debit and the position credit cancel out; the cached
		// aggregate is repaired on the next balance query either way.
		acct.AvailableCash -= amount
		acct.TotalAssets += amount

	case broker.SideSell:
		pos.Quantity -= req.Quantity
		if pos.Quantity == 0 {
			if err := b.store.DeletePosition(b.sessionID, req.Symbol); err != nil {
				return nil, err
			}
		} else {
			pos.MarketValue = float64(pos.Quantity) * pos.CurrentPrice
			pos.UpdatedAt = now
			if err := b.store.SavePosition(pos); err != nil {
				return nil, err
			}
		}

		acct.AvailableCash += amount
		acct.TotalAssets -= amount
	}

	acct.UpdatedAt = now
	if err := b.store.SaveAccount(acct); err != nil {
		return nil, err
	}

	b.log.Info("order filled",
		"order", order.ID,
		"symbol", req.Symbol,
		"side", req.Side,
		"quantity", req.Quantity,
		"price", req.Price,
	)
	return order, nil
}

// Order returns an order by ID, or nil when it does not exist.
func (b *Broker) Order(_ context.Context, orderID string) (*broker.Order, error) {
	return b.store.Order(b.sessionID, orderID)
}

// CancelOrder cancels an order only while it is still PENDING. Because this
// venue fills every order immediately, cancellation always reports false in
// practice; that is a consequence of the immediate-fill model, not a bug.
func (b *Broker) CancelOrder(_ context.Context, orderID string) (bool, error) {
	order, err := b.store.Order(b.sessionID, orderID)
	if err != nil {
		return false, err
	}
	if order == nil {
		b.log.Debug("cancel: order not found", "order", orderID)
		return false, nil
	}
	if order.Status != broker.OrderPending {
		b.log.Debug("cancel: order not cancellable", "order", orderID, "status", order.Status)
		return false, nil
	}

	order.Status = broker.OrderCanceled
	order.UpdatedAt = b.now()
	if err := b.store.SaveOrder(order); err != nil {
		return false, err
	}
	return true, nil
}

// TradesByOrder lists the fills recorded for an order.
func (b *Broker) TradesByOrder(_ context.Context, orderID string) ([]broker.Trade, error) {
	return b.store.TradesByOrder(b.sessionID, orderID)
}

// UpdatePositionPrice marks a position to price: it overwrites the last
// market price and market value only, never cash or cost basis. Reports
// false when the symbol is not held.
func (b *Broker) UpdatePositionPrice(_ context.Context, symbol string, price float64) (bool, error) {
	pos, err := b.store.Position(b.sessionID, symbol)
	if err != nil {
		return false, err
	}
	if pos == nil {
		return false, nil
	}

	pos.CurrentPrice = price
	pos.MarketValue = float64(pos.Quantity) * price
	pos.UpdatedAt = b.now()
	if err := b.store.SavePosition(pos); err != nil {
		return false, err
	}

	b.log.Debug("marked position", "symbol", symbol, "price", price)
	return true, nil
}
