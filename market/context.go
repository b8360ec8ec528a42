package market

import "time"

// Trend labels produced by ClassifyTrend from a bar's moving averages.
const (
	TrendBullish      = "bullish-alignment" // close > ma5 > ma10 > ma20
	TrendBearish      = "bearish-alignment" // close < ma5 < ma10 < ma20
	TrendShortTermUp  = "short-term-up"
	TrendShortTermDwn = "short-term-down"
	TrendRanging      = "ranging"
)

// DecisionContext is the per-(symbol, day) snapshot handed to the trading
// engine. It is built only from bars dated at or before Date; the backtest
// driver relies on that to keep future data out of every decision.
type DecisionContext struct {
	Symbol string
	Date   time.Time
	Close  float64

	Today     Bar
	Yesterday *Bar

	// Comparison fields, present only when a prior bar exists.
	VolumeChangeRatio float64 // today volume / yesterday volume
	PriceChangePct    float64 // close-over-close change, percent
	Trend             string
}

// BuildContext assembles a DecisionContext for the given day from a
// chronologically ordered bar history. Bars after the day are ignored, never
// inspected. Returns nil when the history holds no bar for that exact day.
func BuildContext(symbol string, day time.Time, history []Bar) *DecisionContext {
	day = Day(day)

	var today *Bar
	var yesterday *Bar
	for i := range history {
		d := Day(history[i].Date)
		if d.After(day) {
			break
		}
		if d.Equal(day) {
			today = &history[i]
			break
		}
		yesterday = &history[i]
	}
	if today == nil {
		return nil
	}

	ctx := &DecisionContext{
		Symbol: symbol,
		Date:   day,
		Close:  today.Close,
		Today:  *today,
	}

	if yesterday != nil {
		y := *yesterday
		ctx.Yesterday = &y
		if y.Volume > 0 {
			ctx.VolumeChangeRatio = float64(today.Volume) / float64(y.Volume)
		}
		if y.Close > 0 {
			ctx.PriceChangePct = (today.Close - y.Close) / y.Close * 100
		}
		ctx.Trend = ClassifyTrend(*today)
	}

	return ctx
}

// ClassifyTrend buckets a bar's close against its moving averages.
func ClassifyTrend(b Bar) string {
	switch {
	case b.Close > b.MA5 && b.MA5 > b.MA10 && b.MA10 > b.MA20 && b.MA20 > 0:
		return TrendBullish
	case b.Close < b.MA5 && b.MA5 < b.MA10 && b.MA10 < b.MA20 && b.MA20 > 0:
		return TrendBearish
	case b.Close > b.MA5 && b.MA5 > b.MA10:
		return TrendShortTermUp
	case b.Close < b.MA5 && b.MA5 < b.MA10:
		return TrendShortTermDwn
	default:
		return TrendRanging
	}
}
