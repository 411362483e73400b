package backtest

import (
	"math"

	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/core"
)

// tradingDaysPerYear annualizes daily statistics. Crypto trades every
// calendar day, so 365 rather than the equity-market 252.
const tradingDaysPerYear = 365

// ComputeMetrics derives performance statistics from an equity curve.
// Pure function; degenerate inputs (flat curves, no losing days)
// produce sentinel zeros, never a panic.
func ComputeMetrics(curve core.EquityCurve) core.PerformanceMetrics {
	if len(curve) < 2 {
		return core.PerformanceMetrics{Days: len(curve)}
	}

	returns := curve.DailyReturns()
	mean := meanOf(returns)
	std := stddev(returns, mean)

	m := core.PerformanceMetrics{
		Days:        len(curve),
		TotalReturn: curve[len(curve)-1].Value/curve[0].Value - 1,
		MaxDrawdown: maxDrawdown(curve),
		Volatility:  std * math.Sqrt(tradingDaysPerYear),
	}

	calendarDays := curve[len(curve)-1].Date.Sub(curve[0].Date).Hours() / 24
	if calendarDays > 0 {
		m.CAGR = math.Pow(curve[len(curve)-1].Value/curve[0].Value, tradingDaysPerYear/calendarDays) - 1
	}

	if std > 0 {
		m.Sharpe = mean / std * math.Sqrt(tradingDaysPerYear)
	}

	var downside []float64
	wins := 0
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		} else if r > 0 {
			wins++
		}
	}
	m.WinRate = float64(wins) / float64(len(returns))

	if len(downside) >= 2 {
		if dstd := stddev(downside, meanOf(downside)); dstd > 0 {
			m.Sortino = mean / dstd * math.Sqrt(tradingDaysPerYear)
		}
	}

	return m
}

// maxDrawdown scans the cumulative maximum and returns the deepest
// peak-to-trough decline as a value in [-1, 0].
func maxDrawdown(curve core.EquityCurve) float64 {
	var maxDD float64
	peak := curve[0].Value

	for _, p := range curve {
		if p.Value > peak {
			peak = p.Value
		}
		if dd := p.Value/peak - 1; dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

func meanOf(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddev is the sample standard deviation (n-1 denominator).
func stddev(xs []float64, mean float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	var variance float64
	for _, x := range xs {
		variance += (x - mean) * (x - mean)
	}
	return math.Sqrt(variance / float64(len(xs)-1))
}
