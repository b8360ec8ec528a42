// Package broker defines the capability interface every execution venue
// must satisfy, plus the order/position/trade/account records the venues
// trade in. The simulated venue lives in broker/paper; real-brokerage
// variants (broker/tiger, broker/uibot) are interface-conforming stubs.
package broker

import "context"

// Broker is the venue capability contract. The orchestrator is written
// against this interface only, so the execution venue is swappable at
// construction time by configuration.
type Broker interface {
	// Name returns the venue identifier (e.g. "paper", "tiger", "uibot").
	Name() string

	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error

	// Balance returns the account snapshot. Implementations recompute the
	// market value of all open positions before answering, so the snapshot
	// always satisfies total = cash + frozen + market value.
	Balance(ctx context.Context) (Balance, error)

	// Positions lists all open positions for the venue's session.
	Positions(ctx context.Context) ([]Position, error)

	// Position returns the position for one symbol, or nil when none is held.
	Position(ctx context.Context, symbol string) (*Position, error)

	// PlaceOrder submits an order for execution. Policy rejections come back
	// as the typed errors in this package; see IsRejection.
	PlaceOrder(ctx context.Context, req OrderRequest) (*Order, error)

	// Order returns an order by ID, or nil when it does not exist.
	Order(ctx context.Context, orderID string) (*Order, error)

	// CancelOrder attempts to cancel an order. Only PENDING orders are
	// cancellable; the reported bool says whether a cancellation happened.
	CancelOrder(ctx context.Context, orderID string) (bool, error)

	// TradesByOrder lists the fills recorded for an order.
	TradesByOrder(ctx context.Context, orderID string) ([]Trade, error)
}

// OrderRequest describes one order submission.
type OrderRequest struct {
	Symbol   string
	Side     Side
	Quantity int64
	Type     OrderType

	// Price is the execution price for the simulated venue. The caller is
	// the sole source of "current price"; the paper broker never fetches
	// quotes on its own.
	Price float64
}
