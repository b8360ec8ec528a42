package backtest

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMaxDrawdown(t *testing.T) {
	t.Parallel()

	// Peak 101000, trough 99000.
	got := maxDrawdown([]float64{100000, 101000, 99000})
	assert.InDelta(t, -1.9802, got, 1e-4)

	assert.Zero(t, maxDrawdown(nil))
	assert.Zero(t, maxDrawdown([]float64{100, 110, 120}), "monotonic rise never draws down")
	assert.InDelta(t, -50.0, maxDrawdown([]float64{100, 50, 75}), 1e-9)
}

func TestAnnualize(t *testing.T) {
	t.Parallel()

	assert.Zero(t, annualize(5, 0))
	assert.Zero(t, annualize(5, -3))

	// A 1% gain over a full year annualizes to itself.
	assert.InDelta(t, 1.0, annualize(1.0, 365), 1e-9)

	// Over half a year it compounds.
	assert.InDelta(t, 2.01, annualize(1.0, 182.5), 1e-2)
}

func TestSharpe(t *testing.T) {
	t.Parallel()

	assert.Zero(t, sharpe(nil))
	assert.Zero(t, sharpe([]float64{100000}))
	assert.Zero(t, sharpe([]float64{100000, 100000, 100000}), "flat series has zero deviation")

	// Steady gains score positive, steady losses negative.
	assert.Positive(t, sharpe([]float64{100, 101, 102, 103}))
	assert.Negative(t, sharpe([]float64{103, 102, 101, 100}))
}

func TestReportFinishEmptySeries(t *testing.T) {
	t.Parallel()

	r := &Report{InitialCapital: 100000}
	r.finish(nil)
	assert.NotEmpty(t, r.Err)
	assert.Zero(t, r.TotalReturnPct)
}

func TestReportFinishAnnualizesOverRequestedRange(t *testing.T) {
	t.Parallel()

	// A 1% gain over a requested one-year range annualizes to 1%, no
	// matter how many points the series holds.
	r := &Report{
		InitialCapital: 100000,
		StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	r.finish([]float64{100000, 101000})
	assert.InDelta(t, 1.0, r.TotalReturnPct, 1e-9)
	assert.InDelta(t, 1.0, r.AnnualizedReturnPct, 2e-2)
	assert.Equal(t, 2, r.Days)
}

func TestPrintReport(t *testing.T) {
	t.Parallel()

	r := &Report{
		SessionID:      "bt-1",
		StartDate:      time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		InitialCapital: 100000,
		FinalAssets:    101000,
		TotalReturnPct: 1.0,
		Days:           3,
	}

	var buf bytes.Buffer
	PrintReport(&buf, r)
	out := buf.String()
	assert.Contains(t, out, "bt-1")
	assert.Contains(t, out, "Total Return: 1.00%")
	assert.Contains(t, out, "2024-01-08 to 2024-01-10")

	buf.Reset()
	PrintReport(&buf, &Report{SessionID: "bt-2", Err: "no history loaded for any symbol"})
	assert.Contains(t, buf.String(), "Error: no history loaded")
}
