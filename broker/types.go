package broker

import "time"

// LotSize is the minimum tradable unit. Every order quantity must be a
// positive multiple of it.
const LotSize int64 = 100

// Side is the order direction.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderType distinguishes market and limit orders. The paper venue fills
// both immediately at the supplied price.
type OrderType string

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
)

// OrderStatus is the order lifecycle state. Transitions are monotonic:
// PENDING may move to FILLED, CANCELED or FAILED, and terminal states never
// change again.
type OrderStatus string

const (
	OrderPending  OrderStatus = "PENDING"
	OrderFilled   OrderStatus = "FILLED"
	OrderCanceled OrderStatus = "CANCELED"
	OrderFailed   OrderStatus = "FAILED"
)

// Terminal reports whether the status permits no further transitions.
func (s OrderStatus) Terminal() bool {
	return s == OrderFilled || s == OrderCanceled || s == OrderFailed
}

// Order is one order row, scoped to a session.
type Order struct {
	ID        string
	SessionID string
	Symbol    string
	Side      Side
	Type      OrderType
	Quantity  int64
	Price     float64 // requested/executed price
	Status    OrderStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Position is the holding for one (session, symbol) pair. Quantity is a
// non-negative lot multiple; a position that reaches zero is deleted rather
// than kept as a zero row.
type Position struct {
	SessionID    string
	Symbol       string
	Quantity     int64
	CostPrice    float64 // weighted average cost basis
	CurrentPrice float64 // last marked market price
	MarketValue  float64 // Quantity * CurrentPrice
	UpdatedAt    time.Time
}

// Trade is an immutable fill record linked to its originating order.
type Trade struct {
	ID         string
	OrderID    string
	SessionID  string
	Symbol     string
	Side       Side
	Quantity   int64
	Price      float64
	Amount     float64 // Quantity * Price
	ExecutedAt time.Time
}

// Account is the per-session cash ledger. TotalAssets is a cached aggregate
// that every balance query recomputes as cash + frozen + market value.
type Account struct {
	SessionID      string
	InitialCapital float64
	AvailableCash  float64
	FrozenCash     float64 // reserved for future limit-order support
	TotalAssets    float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Balance is the account snapshot returned to callers.
type Balance struct {
	TotalAssets   float64
	AvailableCash float64
	MarketValue   float64
	FrozenCash    float64
	Currency      string
}
