package backtest

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantor/papertrade/broker/paper"
	"github.com/quantor/papertrade/engine"
	"github.com/quantor/papertrade/market"
	"github.com/quantor/papertrade/store"
	"github.com/quantor/papertrade/strategy"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// scripted replays a fixed recommendation per (symbol, date).
type scripted struct {
	plan map[string]market.Recommendation // key: symbol + "@" + date
}

func (s *scripted) Signal(_ context.Context, dc *market.DecisionContext) (market.Signal, error) {
	rec, ok := s.plan[dc.Symbol+"@"+dc.Date.Format("2006-01-02")]
	if !ok {
		rec = market.Hold
	}
	return market.Signal{Recommendation: rec}, nil
}

func newTestDriver(t *testing.T, bars []market.Bar, signals SignalProvider) *Driver {
	t.Helper()

	st := store.NewMemory()
	require.NoError(t, st.SaveBars(bars))
	require.NoError(t, st.Commit())

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	pb, err := paper.New(st, "bt-test", 100000, "CNY", log)
	require.NoError(t, err)

	strat, err := strategy.DefaultRegistry().New("follow-signal", 10000)
	require.NoError(t, err)

	return &Driver{
		Engine:  engine.New(pb, st, strat, log, true),
		Broker:  pb,
		Store:   st,
		Source:  &StoreSource{Store: st},
		Signals: signals,
		Log:     log,
	}
}

// Mon Jan 8 2024 through Wed Jan 10 2024.
func scenarioBars() []market.Bar {
	return []market.Bar{
		{Symbol: "600519", Date: day(2024, 1, 8), Close: 100, Volume: 1000},
		{Symbol: "600519", Date: day(2024, 1, 9), Close: 110, Volume: 1100},
		{Symbol: "600519", Date: day(2024, 1, 10), Close: 110, Volume: 900},
	}
}

func scenarioPlan() *scripted {
	return &scripted{plan: map[string]market.Recommendation{
		"600519@2024-01-08": market.Buy,
		"600519@2024-01-09": market.Hold,
		"600519@2024-01-10": market.Sell,
	}}
}

func TestRunThreeDayScenario(t *testing.T) {
	t.Parallel()

	d := newTestDriver(t, scenarioBars(), scenarioPlan())

	report, err := d.Run(context.Background(), []string{"600519"}, day(2024, 1, 8), day(2024, 1, 10))
	require.NoError(t, err)
	require.Empty(t, report.Err)

	// Buy 100 @ 100 on day one (capped at 10000), marked to 110 on day two,
	// sold on day three.
	assert.Equal(t, 3, report.Days)
	assert.Equal(t, []float64{100000, 101000, 101000}, report.DailyAssets)
	assert.InDelta(t, 101000.0, report.FinalAssets, 1e-9)
	assert.InDelta(t, 1.0, report.TotalReturnPct, 1e-9)
	assert.Positive(t, report.AnnualizedReturnPct)
	assert.Zero(t, report.MaxDrawdownPct)

	// The position was fully closed.
	pos, err := d.Broker.Position(context.Background(), "600519")
	require.NoError(t, err)
	assert.Nil(t, pos)
}

func TestRunIsDeterministic(t *testing.T) {
	t.Parallel()

	run := func() *Report {
		d := newTestDriver(t, scenarioBars(), scenarioPlan())
		report, err := d.Run(context.Background(), []string{"600519"}, day(2024, 1, 8), day(2024, 1, 10))
		require.NoError(t, err)
		return report
	}

	first := run()
	for i := 0; i < 3; i++ {
		got := run()
		got.SessionID = first.SessionID
		assert.Equal(t, first, got)
	}
}

func TestRunNeverUsesFutureCloses(t *testing.T) {
	t.Parallel()

	// Day two closes far higher; a lookahead bug would buy at 200.
	bars := []market.Bar{
		{Symbol: "600519", Date: day(2024, 1, 8), Close: 100},
		{Symbol: "600519", Date: day(2024, 1, 9), Close: 200},
	}
	plan := &scripted{plan: map[string]market.Recommendation{
		"600519@2024-01-08": market.Buy,
	}}

	d := newTestDriver(t, bars, plan)
	_, err := d.Run(context.Background(), []string{"600519"}, day(2024, 1, 8), day(2024, 1, 9))
	require.NoError(t, err)

	pos, err := d.Broker.Position(context.Background(), "600519")
	require.NoError(t, err)
	require.NotNil(t, pos)
	assert.Equal(t, 100.0, pos.CostPrice, "fill must use the decision day's close")
}

func TestRunRecordsEveryCalendarDay(t *testing.T) {
	t.Parallel()

	// Fri Jan 5 through Mon Jan 8: the weekend has no bars, and 000001 has
	// no Monday bar. Every calendar day still gets an asset point; only the
	// per-symbol decisions are skipped.
	bars := []market.Bar{
		{Symbol: "600519", Date: day(2024, 1, 5), Close: 100},
		{Symbol: "600519", Date: day(2024, 1, 8), Close: 100},
		{Symbol: "000001", Date: day(2024, 1, 5), Close: 50},
	}

	d := newTestDriver(t, bars, &scripted{})
	report, err := d.Run(context.Background(), []string{"600519", "000001"},
		day(2024, 1, 5), day(2024, 1, 8))
	require.NoError(t, err)

	assert.Equal(t, 4, report.Days)
	assert.Equal(t, []float64{100000, 100000, 100000, 100000}, report.DailyAssets)
}

func TestRunNoHistoryYieldsErrorReport(t *testing.T) {
	t.Parallel()

	d := newTestDriver(t, nil, &scripted{})
	report, err := d.Run(context.Background(), []string{"600519"}, day(2024, 1, 8), day(2024, 1, 10))
	require.NoError(t, err, "an empty run is reported, not failed")
	assert.Equal(t, "no history loaded for any symbol", report.Err)
	assert.Equal(t, "bt-test", report.SessionID)
	assert.Equal(t, 100000.0, report.InitialCapital)
}

func TestRunMarksHeldPositionsBeforeDecisions(t *testing.T) {
	t.Parallel()

	bars := []market.Bar{
		{Symbol: "600519", Date: day(2024, 1, 8), Close: 100},
		{Symbol: "600519", Date: day(2024, 1, 9), Close: 90},
	}
	plan := &scripted{plan: map[string]market.Recommendation{
		"600519@2024-01-08": market.Buy,
	}}

	d := newTestDriver(t, bars, plan)
	report, err := d.Run(context.Background(), []string{"600519"}, day(2024, 1, 8), day(2024, 1, 9))
	require.NoError(t, err)

	// Day two assets reflect the 90 close on the held lot.
	assert.Equal(t, []float64{100000, 99000}, report.DailyAssets)
	assert.InDelta(t, -1.0, report.MaxDrawdownPct, 1e-9)
}
