// Package store is the persistence boundary for simulation state: orders,
// trades, positions and accounts scoped by session ID, plus the daily bar
// history the backtester replays. Implementations hide the storage
// technology entirely; the simulation logic only sees this interface.
package store

import (
	"time"

	"github.com/quantor/papertrade/broker"
	"github.com/quantor/papertrade/market"
)

// Store is the repository handle injected into each component constructor.
//
// Mutations accumulate in an implicit transaction: nothing is durable until
// Commit, and Rollback discards everything since the last Commit. The
// trading engine wraps each symbol-day decision in exactly one such unit of
// work. A Store is single-writer; concurrent runs must use separate session
// IDs and their own Store handles.
type Store interface {
	// Account returns the account row for a session, or nil when none
	// exists yet.
	Account(sessionID string) (*broker.Account, error)

	// SaveAccount inserts or updates an account row.
	SaveAccount(acct *broker.Account) error

	// SaveOrder inserts or updates an order by ID.
	SaveOrder(o *broker.Order) error

	// Order returns an order by ID within a session, or nil when missing.
	Order(sessionID, orderID string) (*broker.Order, error)

	// SaveTrade appends an immutable fill record.
	SaveTrade(t *broker.Trade) error

	// TradesByOrder lists fills for one order, oldest first.
	TradesByOrder(sessionID, orderID string) ([]broker.Trade, error)

	// SavePosition inserts or updates the position keyed (session, symbol).
	SavePosition(p *broker.Position) error

	// Position returns one position, or nil when the symbol is not held.
	Position(sessionID, symbol string) (*broker.Position, error)

	// Positions lists all positions for a session, ordered by symbol.
	Positions(sessionID string) ([]broker.Position, error)

	// DeletePosition removes a position row. Removing a missing row is not
	// an error.
	DeletePosition(sessionID, symbol string) error

	// SaveBars upserts daily bar history.
	SaveBars(bars []market.Bar) error

	// BarsBetween returns a symbol's bars with start <= date <= end, in
	// date order.
	BarsBetween(symbol string, start, end time.Time) ([]market.Bar, error)

	Commit() error
	Rollback() error
	Close() error
}
