package engine

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantor/papertrade/broker"
	"github.com/quantor/papertrade/broker/paper"
	"github.com/quantor/papertrade/market"
	"github.com/quantor/papertrade/store"
	"github.com/quantor/papertrade/strategy"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T, capital float64) (*Engine, *paper.Broker, store.Store) {
	t.Helper()

	st := store.NewMemory()
	pb, err := paper.New(st, "eng-test", capital, "CNY", discard())
	require.NoError(t, err)

	strat, err := strategy.DefaultRegistry().New("follow-signal", 10000)
	require.NoError(t, err)

	return New(pb, st, strat, discard(), true), pb, st
}

func sig(r market.Recommendation) market.Signal {
	return market.Signal{Recommendation: r}
}

func TestProcessSignalBuysAndCommits(t *testing.T) {
	t.Parallel()

	e, pb, st := newTestEngine(t, 100000)
	ctx := context.Background()

	require.NoError(t, e.ProcessSignal(ctx, "600519", 100, sig(market.Buy)))

	// The cycle committed: a rollback afterwards must not undo it.
	require.NoError(t, st.Rollback())

	pos, err := pb.Position(ctx, "600519")
	require.NoError(t, err)
	require.NotNil(t, pos)
	assert.Equal(t, int64(100), pos.Quantity, "cap of 10000 at price 100 sizes one lot")
}

func TestProcessSignalSellBeforeBuy(t *testing.T) {
	t.Parallel()

	e, pb, _ := newTestEngine(t, 100000)
	ctx := context.Background()

	require.NoError(t, e.ProcessSignal(ctx, "600519", 100, sig(market.Buy)))

	// A Sell signal on a held symbol closes it; nothing is re-bought in the
	// same cycle.
	require.NoError(t, e.ProcessSignal(ctx, "600519", 110, sig(market.Sell)))

	pos, err := pb.Position(ctx, "600519")
	require.NoError(t, err)
	assert.Nil(t, pos)

	bal, err := pb.Balance(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 101000.0, bal.AvailableCash, 1e-9)
}

func TestProcessSignalHoldDoesNothing(t *testing.T) {
	t.Parallel()

	e, pb, _ := newTestEngine(t, 100000)
	ctx := context.Background()

	require.NoError(t, e.ProcessSignal(ctx, "600519", 100, sig(market.Hold)))

	orders, err := pb.Positions(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestProcessSignalMarksPriceInBacktestMode(t *testing.T) {
	t.Parallel()

	e, pb, _ := newTestEngine(t, 100000)
	ctx := context.Background()

	require.NoError(t, e.ProcessSignal(ctx, "600519", 100, sig(market.Buy)))
	require.NoError(t, e.ProcessSignal(ctx, "600519", 125, sig(market.Hold)))

	pos, err := pb.Position(ctx, "600519")
	require.NoError(t, err)
	require.NotNil(t, pos)
	assert.Equal(t, 125.0, pos.CurrentPrice)
}

// greedy always wants to buy far more than the account can afford, forcing
// a broker-level rejection.
type greedy struct{}

func (greedy) Name() string                        { return "greedy" }
func (greedy) ShouldBuy(strategy.Snapshot) bool    { return true }
func (greedy) ShouldSell(strategy.Snapshot) bool   { return false }
func (greedy) BuyQuantity(strategy.Snapshot) int64 { return 1_000_000 }
func (greedy) SellQuantity(strategy.Snapshot) int64 {
	return 0
}

func TestRejectionIsSwallowedAndRolledBack(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	pb, err := paper.New(st, "eng-test", 1000, "CNY", discard())
	require.NoError(t, err)
	e := New(pb, st, greedy{}, discard(), false)
	ctx := context.Background()

	// The rejection must not fail the batch.
	require.NoError(t, e.ProcessSignal(ctx, "600519", 100, sig(market.Buy)))

	bal, err := pb.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, bal.AvailableCash)
}

// brokenBroker fails every call with a fixed error.
type brokenBroker struct {
	broker.Broker
	err error
}

func (b brokenBroker) Balance(context.Context) (broker.Balance, error) {
	return broker.Balance{}, b.err
}

func TestUnknownSessionPropagates(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	bb := brokenBroker{err: broker.ErrUnknownSession}
	e := New(bb, st, greedy{}, discard(), false)

	err := e.ProcessSignal(context.Background(), "600519", 100, sig(market.Buy))
	assert.ErrorIs(t, err, broker.ErrUnknownSession)
}

func TestFaultIsSwallowed(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	bb := brokenBroker{err: assert.AnError}
	e := New(bb, st, greedy{}, discard(), false)

	assert.NoError(t, e.ProcessSignal(context.Background(), "600519", 100, sig(market.Buy)))
}

func TestPlaceManualOrder(t *testing.T) {
	t.Parallel()

	e, pb, st := newTestEngine(t, 100000)
	ctx := context.Background()

	order, err := e.PlaceManualOrder(ctx, broker.OrderRequest{
		Symbol: "000001", Side: broker.SideBuy, Quantity: 200,
		Type: broker.OrderTypeMarket, Price: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, broker.OrderFilled, order.Status)

	require.NoError(t, st.Rollback())
	pos, err := pb.Position(ctx, "000001")
	require.NoError(t, err)
	require.NotNil(t, pos, "manual orders commit immediately")

	// Manual rejections surface to the caller, unlike strategy cycles.
	_, err = e.PlaceManualOrder(ctx, broker.OrderRequest{
		Symbol: "000001", Side: broker.SideBuy, Quantity: 150,
		Type: broker.OrderTypeMarket, Price: 50,
	})
	require.Error(t, err)
	assert.True(t, broker.IsRejection(err))
}

func TestStatus(t *testing.T) {
	t.Parallel()

	e, _, _ := newTestEngine(t, 100000)
	ctx := context.Background()

	require.NoError(t, e.ProcessSignal(ctx, "600519", 100, sig(market.Buy)))

	status, err := e.Status(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 100000.0, status.Balance.TotalAssets, 1e-9)
	require.Len(t, status.Positions, 1)
	assert.Equal(t, "600519", status.Positions[0].Symbol)
}
