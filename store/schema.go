package store

const schema = `
CREATE TABLE IF NOT EXISTS orders (
	order_id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	order_type TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	price REAL NOT NULL,
	status TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_session ON orders(session_id, symbol);

CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	order_id TEXT NOT NULL,
	session_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	price REAL NOT NULL,
	amount REAL NOT NULL,
	executed_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_order ON trades(session_id, order_id);

CREATE TABLE IF NOT EXISTS positions (
	session_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	cost_price REAL NOT NULL,
	current_price REAL NOT NULL,
	market_value REAL NOT NULL,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (session_id, symbol)
);

CREATE TABLE IF NOT EXISTS accounts (
	session_id TEXT PRIMARY KEY,
	initial_capital REAL NOT NULL,
	available_cash REAL NOT NULL,
	frozen_cash REAL NOT NULL,
	total_assets REAL NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS daily_bars (
	symbol TEXT NOT NULL,
	date DATETIME NOT NULL,
	open REAL NOT NULL,
	high REAL NOT NULL,
	low REAL NOT NULL,
	close REAL NOT NULL,
	volume INTEGER NOT NULL,
	ma5 REAL NOT NULL DEFAULT 0,
	ma10 REAL NOT NULL DEFAULT 0,
	ma20 REAL NOT NULL DEFAULT 0,
	PRIMARY KEY (symbol, date)
);
`
