// Package backtest replays daily history through the trading engine against
// the simulated venue and reports performance over the run.
package backtest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quantor/papertrade/broker/paper"
	"github.com/quantor/papertrade/engine"
	"github.com/quantor/papertrade/market"
	"github.com/quantor/papertrade/store"
)

// Driver runs one backtest session. Each simulated day it marks every open
// position to that day's close, then runs one engine cycle per symbol with
// data, then records total assets.
type Driver struct {
	Engine  *engine.Engine
	Broker  *paper.Broker
	Store   store.Store
	Source  BarSource
	Signals SignalProvider
	Log     *slog.Logger
}

// Run replays the closed day range for the given symbols, one calendar day
// at a time. There is no trading-calendar awareness: weekends and holidays
// simply have no bars and are skipped per symbol, while the day's total
// assets are still recorded. Symbols with no history at all are dropped
// from the run; if nothing loads, the report carries the error instead of
// results.
func (d *Driver) Run(ctx context.Context, symbols []string, start, end time.Time) (*Report, error) {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}

	acct, err := d.Store.Account(d.Broker.SessionID())
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, fmt.Errorf("session %q has no account", d.Broker.SessionID())
	}

	start, end = market.Day(start), market.Day(end)

	histories := make(map[string][]market.Bar, len(symbols))
	var traded []string
	for _, sym := range symbols {
		bars, err := d.Source.History(ctx, sym, start, end)
		if err != nil {
			return nil, fmt.Errorf("load history %s: %w", sym, err)
		}
		if len(bars) == 0 {
			log.Warn("no history, symbol skipped", "symbol", sym)
			continue
		}
		histories[sym] = bars
		traded = append(traded, sym)
	}

	report := &Report{
		SessionID:      d.Broker.SessionID(),
		StartDate:      start,
		EndDate:        end,
		InitialCapital: acct.InitialCapital,
	}
	if len(traded) == 0 {
		report.Err = "no history loaded for any symbol"
		return report, nil
	}

	var assets []float64

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		closes := make(map[string]float64, len(traded))
		for _, sym := range traded {
			if dc := market.BuildContext(sym, day, histories[sym]); dc != nil {
				closes[sym] = dc.Close
			}
		}

		d.Broker.SetClock(func() time.Time { return day })

		// Mark every open position before any decision so the balance the
		// strategies see reflects this day's prices.
		if err := d.markPositions(ctx, closes); err != nil {
			return nil, err
		}

		for _, sym := range traded {
			dc := market.BuildContext(sym, day, histories[sym])
			if dc == nil {
				continue
			}

			sig, err := d.Signals.Signal(ctx, dc)
			if err != nil {
				log.Error("signal failed", "symbol", sym, "date", day, "error", err)
				continue
			}

			if err := d.Engine.ProcessSignal(ctx, sym, dc.Close, sig); err != nil {
				return nil, err
			}
		}

		// Total assets are recorded for every calendar day, bars or not, so
		// the daily series has one point per day of the range.
		bal, err := d.Broker.Balance(ctx)
		if err != nil {
			return nil, err
		}
		if err := d.Store.Commit(); err != nil {
			return nil, fmt.Errorf("commit day %s: %w", day.Format("2006-01-02"), err)
		}

		assets = append(assets, bal.TotalAssets)
		log.Debug("day complete", "date", day, "total_assets", bal.TotalAssets)
	}

	report.finish(assets)
	return report, nil
}

func (d *Driver) markPositions(ctx context.Context, closes map[string]float64) error {
	positions, err := d.Broker.Positions(ctx)
	if err != nil {
		return err
	}
	for _, p := range positions {
		price, ok := closes[p.Symbol]
		if !ok {
			// No bar for a held symbol today: it keeps yesterday's mark.
			continue
		}
		if _, err := d.Broker.UpdatePositionPrice(ctx, p.Symbol, price); err != nil {
			return err
		}
	}
	return nil
}
