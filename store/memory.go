package store

import (
	"sort"
	"time"

	"github.com/quantor/papertrade/broker"
	"github.com/quantor/papertrade/market"
)

var _ Store = (*Memory)(nil)

// Memory implements Store entirely in memory. It keeps a committed snapshot
// alongside the live state, which gives it the same commit/rollback
// semantics as the SQLite store. Useful for tests and throwaway runs.
type Memory struct {
	live      memState
	committed memState
}

type memState struct {
	accounts  map[string]broker.Account
	orders    map[string]broker.Order
	trades    []broker.Trade
	positions map[string]broker.Position // keyed sessionID + "\x00" + symbol
	bars      map[string][]market.Bar
}

func newMemState() memState {
	return memState{
		accounts:  make(map[string]broker.Account),
		orders:    make(map[string]broker.Order),
		positions: make(map[string]broker.Position),
		bars:      make(map[string][]market.Bar),
	}
}

func (st memState) clone() memState {
	c := newMemState()
	for k, v := range st.accounts {
		c.accounts[k] = v
	}
	for k, v := range st.orders {
		c.orders[k] = v
	}
	c.trades = append(c.trades, st.trades...)
	for k, v := range st.positions {
		c.positions[k] = v
	}
	for k, v := range st.bars {
		c.bars[k] = append([]market.Bar(nil), v...)
	}
	return c
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{live: newMemState(), committed: newMemState()}
}

func posKey(sessionID, symbol string) string {
	return sessionID + "\x00" + symbol
}

func (m *Memory) Commit() error {
	m.committed = m.live.clone()
	return nil
}

func (m *Memory) Rollback() error {
	m.live = m.committed.clone()
	return nil
}

func (m *Memory) Close() error { return nil }

func (m *Memory) Account(sessionID string) (*broker.Account, error) {
	a, ok := m.live.accounts[sessionID]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m *Memory) SaveAccount(a *broker.Account) error {
	m.live.accounts[a.SessionID] = *a
	return nil
}

func (m *Memory) SaveOrder(o *broker.Order) error {
	m.live.orders[o.ID] = *o
	return nil
}

func (m *Memory) Order(sessionID, orderID string) (*broker.Order, error) {
	o, ok := m.live.orders[orderID]
	if !ok || o.SessionID != sessionID {
		return nil, nil
	}
	return &o, nil
}

func (m *Memory) SaveTrade(t *broker.Trade) error {
	m.live.trades = append(m.live.trades, *t)
	return nil
}

func (m *Memory) TradesByOrder(sessionID, orderID string) ([]broker.Trade, error) {
	var out []broker.Trade
	for _, t := range m.live.trades {
		if t.SessionID == sessionID && t.OrderID == orderID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *Memory) SavePosition(p *broker.Position) error {
	m.live.positions[posKey(p.SessionID, p.Symbol)] = *p
	return nil
}

func (m *Memory) Position(sessionID, symbol string) (*broker.Position, error) {
	p, ok := m.live.positions[posKey(sessionID, symbol)]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *Memory) Positions(sessionID string) ([]broker.Position, error) {
	var out []broker.Position
	for _, p := range m.live.positions {
		if p.SessionID == sessionID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (m *Memory) DeletePosition(sessionID, symbol string) error {
	delete(m.live.positions, posKey(sessionID, symbol))
	return nil
}

func (m *Memory) SaveBars(bars []market.Bar) error {
	for _, b := range bars {
		b.Date = market.Day(b.Date)
		sym := m.live.bars[b.Symbol]
		replaced := false
		for i := range sym {
			if sym[i].Date.Equal(b.Date) {
				sym[i] = b
				replaced = true
				break
			}
		}
		if !replaced {
			sym = append(sym, b)
		}
		sort.Slice(sym, func(i, j int) bool { return sym[i].Date.Before(sym[j].Date) })
		m.live.bars[b.Symbol] = sym
	}
	return nil
}

func (m *Memory) BarsBetween(symbol string, start, end time.Time) ([]market.Bar, error) {
	start, end = market.Day(start), market.Day(end)
	var out []market.Bar
	for _, b := range m.live.bars[symbol] {
		if b.Date.Before(start) || b.Date.After(end) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}
