package backtest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/quantor/papertrade/market"
	"github.com/quantor/papertrade/store"
)

// BarSource loads daily history for one symbol over a closed date range.
type BarSource interface {
	History(ctx context.Context, symbol string, start, end time.Time) ([]market.Bar, error)
}

// StoreSource reads history from the daily_bars table.
type StoreSource struct {
	Store store.Store
}

var _ BarSource = (*StoreSource)(nil)

func (s *StoreSource) History(_ context.Context, symbol string, start, end time.Time) ([]market.Bar, error) {
	return s.Store.BarsBetween(symbol, market.Day(start), market.Day(end))
}

// barRecord is the parquet schema for cached history files.
type barRecord struct {
	Symbol    string  `parquet:"symbol"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	Volume    int64   `parquet:"volume"`
	MA5       float64 `parquet:"ma5"`
	MA10      float64 `parquet:"ma10"`
	MA20      float64 `parquet:"ma20"`
}

// CachedSource memoizes another source to parquet files on disk, one file
// per (symbol, start, end) request. Repeated backtests over the same window
// never hit the underlying source twice.
type CachedSource struct {
	Next BarSource
	Dir  string
}

var _ BarSource = (*CachedSource)(nil)

func NewCachedSource(next BarSource, dir string) *CachedSource {
	return &CachedSource{Next: next, Dir: dir}
}

func (c *CachedSource) History(ctx context.Context, symbol string, start, end time.Time) ([]market.Bar, error) {
	path := c.path(symbol, start, end)

	if records, err := parquet.ReadFile[barRecord](path); err == nil {
		return fromRecords(records), nil
	}

	bars, err := c.Next.History(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("cache dir: %w", err)
	}
	if err := parquet.WriteFile(path, toRecords(bars)); err != nil {
		return nil, fmt.Errorf("write cache %s: %w", path, err)
	}
	return bars, nil
}

// path keys the cache by symbol and the exact requested window.
func (c *CachedSource) path(symbol string, start, end time.Time) string {
	name := fmt.Sprintf("%s_%s_%s.parquet",
		symbol,
		market.Day(start).Format("2006-01-02"),
		market.Day(end).Format("2006-01-02"),
	)
	return filepath.Join(c.Dir, name)
}

func toRecords(bars []market.Bar) []barRecord {
	records := make([]barRecord, len(bars))
	for i, b := range bars {
		records[i] = barRecord{
			Symbol:    b.Symbol,
			Timestamp: b.Date.UnixMilli(),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
			MA5:       b.MA5,
			MA10:      b.MA10,
			MA20:      b.MA20,
		}
	}
	return records
}

func fromRecords(records []barRecord) []market.Bar {
	bars := make([]market.Bar, len(records))
	for i, r := range records {
		bars[i] = market.Bar{
			Symbol: r.Symbol,
			Date:   time.UnixMilli(r.Timestamp).UTC(),
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
			MA5:    r.MA5,
			MA10:   r.MA10,
			MA20:   r.MA20,
		}
	}
	return bars
}
