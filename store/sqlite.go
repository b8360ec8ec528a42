package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/quantor/papertrade/broker"
	"github.com/quantor/papertrade/market"
)

var _ Store = (*SQLite)(nil)

// SQLite implements Store on a local SQLite database. Operations run inside
// a lazily opened transaction that Commit/Rollback close, so a symbol-day
// decision is durable only as a whole.
type SQLite struct {
	db *sql.DB
	tx *sql.Tx
}

// NewSQLite opens (or creates) the database at path and ensures the schema.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// cur returns the active transaction, starting one if needed.
func (s *SQLite) cur() (*sql.Tx, error) {
	if s.tx == nil {
		tx, err := s.db.Begin()
		if err != nil {
			return nil, err
		}
		s.tx = tx
	}
	return s.tx, nil
}

func (s *SQLite) Commit() error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Commit()
	s.tx = nil
	return err
}

func (s *SQLite) Rollback() error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Rollback()
	s.tx = nil
	return err
}

func (s *SQLite) Close() error {
	if s.tx != nil {
		_ = s.tx.Rollback()
		s.tx = nil
	}
	return s.db.Close()
}

func (s *SQLite) Account(sessionID string) (*broker.Account, error) {
	tx, err := s.cur()
	if err != nil {
		return nil, err
	}

	var a broker.Account
	err = tx.QueryRow(`
		SELECT session_id, initial_capital, available_cash, frozen_cash, total_assets, created_at, updated_at
		FROM accounts WHERE session_id = ?`, sessionID).Scan(
		&a.SessionID, &a.InitialCapital, &a.AvailableCash, &a.FrozenCash,
		&a.TotalAssets, &a.CreatedAt, &a.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *SQLite) SaveAccount(a *broker.Account) error {
	tx, err := s.cur()
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO accounts (session_id, initial_capital, available_cash, frozen_cash, total_assets, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			available_cash = excluded.available_cash,
			frozen_cash = excluded.frozen_cash,
			total_assets = excluded.total_assets,
			updated_at = excluded.updated_at`,
		a.SessionID, a.InitialCapital, a.AvailableCash, a.FrozenCash,
		a.TotalAssets, a.CreatedAt, a.UpdatedAt,
	)
	return err
}

func (s *SQLite) SaveOrder(o *broker.Order) error {
	tx, err := s.cur()
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO orders (order_id, session_id, symbol, side, order_type, quantity, price, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(order_id) DO UPDATE SET
			status = excluded.status,
			price = excluded.price,
			updated_at = excluded.updated_at`,
		o.ID, o.SessionID, o.Symbol, o.Side, o.Type, o.Quantity, o.Price,
		o.Status, o.CreatedAt, o.UpdatedAt,
	)
	return err
}

func (s *SQLite) Order(sessionID, orderID string) (*broker.Order, error) {
	tx, err := s.cur()
	if err != nil {
		return nil, err
	}

	var o broker.Order
	err = tx.QueryRow(`
		SELECT order_id, session_id, symbol, side, order_type, quantity, price, status, created_at, updated_at
		FROM orders WHERE session_id = ? AND order_id = ?`, sessionID, orderID).Scan(
		&o.ID, &o.SessionID, &o.Symbol, &o.Side, &o.Type, &o.Quantity,
		&o.Price, &o.Status, &o.CreatedAt, &o.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *SQLite) SaveTrade(t *broker.Trade) error {
	tx, err := s.cur()
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO trades (trade_id, order_id, session_id, symbol, side, quantity, price, amount, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.OrderID, t.SessionID, t.Symbol, t.Side, t.Quantity,
		t.Price, t.Amount, t.ExecutedAt,
	)
	return err
}

func (s *SQLite) TradesByOrder(sessionID, orderID string) ([]broker.Trade, error) {
	tx, err := s.cur()
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(`
		SELECT trade_id, order_id, session_id, symbol, side, quantity, price, amount, executed_at
		FROM trades
		WHERE session_id = ? AND order_id = ?
		ORDER BY executed_at ASC`, sessionID, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []broker.Trade
	for rows.Next() {
		var t broker.Trade
		if err := rows.Scan(
			&t.ID, &t.OrderID, &t.SessionID, &t.Symbol, &t.Side,
			&t.Quantity, &t.Price, &t.Amount, &t.ExecutedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLite) SavePosition(p *broker.Position) error {
	tx, err := s.cur()
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO positions (session_id, symbol, quantity, cost_price, current_price, market_value, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, symbol) DO UPDATE SET
			quantity = excluded.quantity,
			cost_price = excluded.cost_price,
			current_price = excluded.current_price,
			market_value = excluded.market_value,
			updated_at = excluded.updated_at`,
		p.SessionID, p.Symbol, p.Quantity, p.CostPrice, p.CurrentPrice,
		p.MarketValue, p.UpdatedAt,
	)
	return err
}

func (s *SQLite) Position(sessionID, symbol string) (*broker.Position, error) {
	tx, err := s.cur()
	if err != nil {
		return nil, err
	}

	var p broker.Position
	err = tx.QueryRow(`
		SELECT session_id, symbol, quantity, cost_price, current_price, market_value, updated_at
		FROM positions WHERE session_id = ? AND symbol = ?`, sessionID, symbol).Scan(
		&p.SessionID, &p.Symbol, &p.Quantity, &p.CostPrice,
		&p.CurrentPrice, &p.MarketValue, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SQLite) Positions(sessionID string) ([]broker.Position, error) {
	tx, err := s.cur()
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(`
		SELECT session_id, symbol, quantity, cost_price, current_price, market_value, updated_at
		FROM positions
		WHERE session_id = ?
		ORDER BY symbol ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []broker.Position
	for rows.Next() {
		var p broker.Position
		if err := rows.Scan(
			&p.SessionID, &p.Symbol, &p.Quantity, &p.CostPrice,
			&p.CurrentPrice, &p.MarketValue, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLite) DeletePosition(sessionID, symbol string) error {
	tx, err := s.cur()
	if err != nil {
		return err
	}

	_, err = tx.Exec(`DELETE FROM positions WHERE session_id = ? AND symbol = ?`,
		sessionID, symbol)
	return err
}

func (s *SQLite) SaveBars(bars []market.Bar) error {
	tx, err := s.cur()
	if err != nil {
		return err
	}

	for _, b := range bars {
		_, err := tx.Exec(`
			INSERT INTO daily_bars (symbol, date, open, high, low, close, volume, ma5, ma10, ma20)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(symbol, date) DO UPDATE SET
				open = excluded.open,
				high = excluded.high,
				low = excluded.low,
				close = excluded.close,
				volume = excluded.volume,
				ma5 = excluded.ma5,
				ma10 = excluded.ma10,
				ma20 = excluded.ma20`,
			b.Symbol, market.Day(b.Date), b.Open, b.High, b.Low, b.Close,
			b.Volume, b.MA5, b.MA10, b.MA20,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) BarsBetween(symbol string, start, end time.Time) ([]market.Bar, error) {
	tx, err := s.cur()
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(`
		SELECT symbol, date, open, high, low, close, volume, ma5, ma10, ma20
		FROM daily_bars
		WHERE symbol = ? AND date >= ? AND date <= ?
		ORDER BY date ASC`, symbol, market.Day(start), market.Day(end))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []market.Bar
	for rows.Next() {
		var b market.Bar
		if err := rows.Scan(
			&b.Symbol, &b.Date, &b.Open, &b.High, &b.Low, &b.Close,
			&b.Volume, &b.MA5, &b.MA10, &b.MA20,
		); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
