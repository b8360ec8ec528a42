package cmd

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantor/papertrade/market"
)

func TestReadBarCSV(t *testing.T) {
	t.Parallel()

	in := `symbol,date,open,high,low,close,volume,ma5,ma10,ma20
600519,2024-01-08,99.0,101.0,98.5,100.0,12000,99.1,98.7,97.9
600519,2024-01-09,100.5,111.0,100.0,110.0,15000,101.2,99.4,98.2
000001,2024-01-08,10.0,10.5,9.9,10.2,90000
`
	bars, err := readBarCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, bars, 3)

	assert.Equal(t, "600519", bars[0].Symbol)
	assert.Equal(t, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), bars[0].Date)
	assert.Equal(t, 100.0, bars[0].Close)
	assert.Equal(t, int64(12000), bars[0].Volume)
	assert.Equal(t, 99.1, bars[0].MA5)

	// Moving averages are optional.
	assert.Equal(t, "000001", bars[2].Symbol)
	assert.Zero(t, bars[2].MA5)
}

func TestFillMissingAveragesPerSymbol(t *testing.T) {
	t.Parallel()

	var bars []market.Bar
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		bars = append(bars,
			market.Bar{Symbol: "A", Date: d.AddDate(0, 0, i), Close: float64(i + 1)},
			market.Bar{Symbol: "B", Date: d.AddDate(0, 0, i), Close: 100},
		)
	}

	fillMissingAverages(bars)

	var a5, b5 float64
	for _, b := range bars {
		if b.Date.Equal(d.AddDate(0, 0, 4)) {
			switch b.Symbol {
			case "A":
				a5 = b.MA5
			case "B":
				b5 = b.MA5
			}
		}
	}
	assert.InDelta(t, 3.0, a5, 1e-9, "averages use only the symbol's own closes")
	assert.InDelta(t, 100.0, b5, 1e-9)
}

func TestReadBarCSVRejectsBadRows(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
	}{
		{"short row", "600519,2024-01-08,99.0\n"},
		{"bad date mid-file", "600519,2024-01-08,99,101,98,100,1\nX,notadate,1,1,1,1,1\n"},
		{"bad close", "600519,2024-01-08,99,101,98,oops,1\n"},
		{"bad volume", "600519,2024-01-08,99,101,98,100,many\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := readBarCSV(strings.NewReader(tc.in))
			assert.Error(t, err)
		})
	}
}
