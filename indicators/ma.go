// Package indicators provides the technical indicators derived from daily
// bars.
package indicators

import (
	"fmt"

	"github.com/quantor/papertrade/market"
)

// MA calculates the simple moving average of the closes over the trailing
// period, ending at the last bar.
func MA(bars []market.Bar, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(bars) < period {
		return 0, fmt.Errorf("not enough bars: need %d, got %d", period, len(bars))
	}

	sum := 0.0
	for i := len(bars) - period; i < len(bars); i++ {
		sum += bars[i].Close
	}
	return sum / float64(period), nil
}

// FillMovingAverages computes MA5/MA10/MA20 in place for every bar that has
// none set, using the bars before it. Bars must be one symbol in
// chronological order. Bars too early for a window keep zero, which the
// trend classifier treats as no signal.
func FillMovingAverages(bars []market.Bar) {
	for i := range bars {
		if bars[i].MA5 != 0 || bars[i].MA10 != 0 || bars[i].MA20 != 0 {
			continue
		}
		window := bars[:i+1]
		if ma, err := MA(window, 5); err == nil {
			bars[i].MA5 = ma
		}
		if ma, err := MA(window, 10); err == nil {
			bars[i].MA10 = ma
		}
		if ma, err := MA(window, 20); err == nil {
			bars[i].MA20 = ma
		}
	}
}
