package backtest

import (
	"fmt"
	"io"
	"math"
	"time"
)

// Report is the performance summary of one backtest run. All percentages
// are in percent, not fractions.
type Report struct {
	SessionID      string    `json:"session_id"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	InitialCapital float64   `json:"initial_capital"`
	FinalAssets    float64   `json:"final_assets"`

	TotalReturnPct      float64 `json:"total_return_pct"`
	AnnualizedReturnPct float64 `json:"annualized_return_pct"`
	MaxDrawdownPct      float64 `json:"max_drawdown_pct"`
	SharpeRatio         float64 `json:"sharpe_ratio"`

	// Days counts every calendar day of the range; DailyAssets has one
	// entry per day, including days with no bars.
	Days        int       `json:"days"`
	DailyAssets []float64 `json:"daily_assets,omitempty"`

	// Err is set instead of the metrics when the run could not produce
	// results, e.g. no history loaded.
	Err string `json:"error,omitempty"`
}

// finish computes the metrics from the recorded daily asset series.
func (r *Report) finish(assets []float64) {
	r.Days = len(assets)
	r.DailyAssets = assets
	if len(assets) == 0 {
		r.Err = "no days in range"
		return
	}

	r.FinalAssets = assets[len(assets)-1]
	if r.InitialCapital > 0 {
		r.TotalReturnPct = (r.FinalAssets - r.InitialCapital) / r.InitialCapital * 100
	}

	// Annualization is over the requested calendar range, not the points
	// that happened to trade.
	elapsed := r.EndDate.Sub(r.StartDate).Hours() / 24
	r.AnnualizedReturnPct = annualize(r.TotalReturnPct, elapsed)
	r.MaxDrawdownPct = maxDrawdown(assets)
	r.SharpeRatio = sharpe(assets)
}

// annualize compounds a total return over elapsed calendar days to a yearly
// rate. Zero when no time elapsed.
func annualize(totalPct, days float64) float64 {
	if days <= 0 {
		return 0
	}
	return (math.Pow(1+totalPct/100, 365/days) - 1) * 100
}

// maxDrawdown is the deepest peak-to-trough decline of the series, in
// percent. Always <= 0; 0 for an empty or monotonic series.
func maxDrawdown(assets []float64) float64 {
	var worst float64
	var peak float64
	for _, v := range assets {
		if v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		dd := (v - peak) / peak * 100
		if dd < worst {
			worst = dd
		}
	}
	return worst
}

// sharpe is the annualized ratio of mean to standard deviation of daily
// percent changes. Zero with fewer than two points or a flat series.
func sharpe(assets []float64) float64 {
	if len(assets) < 2 {
		return 0
	}

	changes := make([]float64, 0, len(assets)-1)
	for i := 1; i < len(assets); i++ {
		if assets[i-1] == 0 {
			continue
		}
		changes = append(changes, (assets[i]-assets[i-1])/assets[i-1]*100)
	}
	if len(changes) < 2 {
		return 0
	}

	var mean float64
	for _, c := range changes {
		mean += c
	}
	mean /= float64(len(changes))

	var variance float64
	for _, c := range changes {
		variance += (c - mean) * (c - mean)
	}
	variance /= float64(len(changes) - 1)
	if variance == 0 {
		return 0
	}

	return mean / math.Sqrt(variance) * math.Sqrt(252)
}

// PrintReport writes the human-readable summary.
func PrintReport(w io.Writer, r *Report) {
	fmt.Fprintf(w, "\nBacktest Results (%s):\n", r.SessionID)
	fmt.Fprintf(w, "  Period: %s to %s (%d days)\n",
		r.StartDate.Format("2006-01-02"), r.EndDate.Format("2006-01-02"), r.Days)

	if r.Err != "" {
		fmt.Fprintf(w, "  Error: %s\n", r.Err)
		return
	}

	fmt.Fprintf(w, "  Initial Capital: %.2f\n", r.InitialCapital)
	fmt.Fprintf(w, "  Final Assets: %.2f\n", r.FinalAssets)
	fmt.Fprintf(w, "  Total Return: %.2f%%\n", r.TotalReturnPct)
	fmt.Fprintf(w, "  Annualized Return: %.2f%%\n", r.AnnualizedReturnPct)
	fmt.Fprintf(w, "  Max Drawdown: %.2f%%\n", r.MaxDrawdownPct)
	fmt.Fprintf(w, "  Sharpe Ratio: %.2f\n", r.SharpeRatio)
}
