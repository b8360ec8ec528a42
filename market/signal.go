package market

import "strings"

// Recommendation is the normalized trade direction carried by a Signal.
type Recommendation string

const (
	Buy  Recommendation = "BUY"
	Sell Recommendation = "SELL"
	Hold Recommendation = "HOLD"
)

// Signal is the opaque recommendation payload produced by the excluded
// analysis layer. The core only interprets Recommendation; the rationale
// fields ride along for journaling and display.
type Signal struct {
	Recommendation Recommendation
	Rationale      string
	Confidence     float64
}

// ParseRecommendation normalizes a free-form recommendation label. Labels
// the core does not recognize map to Hold so that an unexpected upstream
// value can never trigger a trade.
func ParseRecommendation(s string) Recommendation {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY", "STRONG_BUY", "STRONG BUY":
		return Buy
	case "SELL", "STRONG_SELL", "STRONG SELL":
		return Sell
	default:
		return Hold
	}
}
