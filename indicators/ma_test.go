package indicators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantor/papertrade/market"
)

func barsWithCloses(closes ...float64) []market.Bar {
	bars := make([]market.Bar, len(closes))
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = market.Bar{Symbol: "X", Date: d.AddDate(0, 0, i), Close: c}
	}
	return bars
}

func TestMA(t *testing.T) {
	t.Parallel()

	bars := barsWithCloses(1, 2, 3, 4, 5, 6)

	got, err := MA(bars, 3)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, got, 1e-9, "trailing window ends at the last bar")

	_, err = MA(bars, 0)
	assert.Error(t, err)

	_, err = MA(bars, 10)
	assert.Error(t, err)
}

func TestFillMovingAverages(t *testing.T) {
	t.Parallel()

	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = float64(i + 1)
	}
	bars := barsWithCloses(closes...)

	FillMovingAverages(bars)

	// Too early for any window.
	assert.Zero(t, bars[3].MA5)

	// Bar index 4 is the first with five closes: (1+2+3+4+5)/5.
	assert.InDelta(t, 3.0, bars[4].MA5, 1e-9)
	assert.Zero(t, bars[4].MA10)

	last := bars[24]
	assert.InDelta(t, 23.0, last.MA5, 1e-9)
	assert.InDelta(t, 20.5, last.MA10, 1e-9)
	assert.InDelta(t, 15.5, last.MA20, 1e-9)
}

func TestFillMovingAveragesKeepsExisting(t *testing.T) {
	t.Parallel()

	bars := barsWithCloses(1, 2, 3, 4, 5, 6)
	bars[5].MA5 = 42

	FillMovingAverages(bars)
	assert.Equal(t, 42.0, bars[5].MA5, "precomputed values are not overwritten")
}
