// Package market holds the shared market-data types consumed by the
// simulation core: daily bars, trading signals and per-day decision
// contexts.
package market

import "time"

// Bar is one daily OHLCV bar for a symbol, plus the moving-average fields
// the upstream analytics layer precomputes. The engine operates strictly at
// daily granularity.
type Bar struct {
	Symbol string
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64

	MA5  float64
	MA10 float64
	MA20 float64
}

// Day truncates t to midnight UTC. All bar dates and backtest clock values
// are normalized through this so that map lookups by day are exact.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
