package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/core"
)

func curveFrom(values []float64) core.EquityCurve {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	curve := make(core.EquityCurve, len(values))
	for i, v := range values {
		curve[i] = core.EquityPoint{Date: start.AddDate(0, 0, i), Value: v}
	}
	return curve
}

func TestComputeMetrics_CAGR(t *testing.T) {
	// Curve doubling over exactly one year.
	values := make([]float64, 366)
	for i := range values {
		values[i] = math.Pow(2, float64(i)/365)
	}
	m := ComputeMetrics(curveFrom(values))

	if math.Abs(m.CAGR-1.0) > 1e-6 {
		t.Errorf("CAGR = %f, want 1.0", m.CAGR)
	}
	if math.Abs(m.TotalReturn-1.0) > 1e-6 {
		t.Errorf("TotalReturn = %f, want 1.0", m.TotalReturn)
	}
}

func TestComputeMetrics_MaxDrawdown(t *testing.T) {
	m := ComputeMetrics(curveFrom([]float64{1.0, 1.5, 0.75, 1.2, 1.8}))

	// Peak 1.5 to trough 0.75 is a 50% decline.
	if math.Abs(m.MaxDrawdown-(-0.5)) > 1e-9 {
		t.Errorf("MaxDrawdown = %f, want -0.5", m.MaxDrawdown)
	}
	if m.MaxDrawdown < -1 || m.MaxDrawdown > 0 {
		t.Errorf("MaxDrawdown out of [-1, 0]: %f", m.MaxDrawdown)
	}
}

func TestComputeMetrics_MonotonicCurveSentinels(t *testing.T) {
	// Constant daily gain: zero downside, Sortino must be the
	// sentinel, not a crash or an infinity.
	values := make([]float64, 60)
	for i := range values {
		values[i] = math.Pow(1.01, float64(i))
	}
	m := ComputeMetrics(curveFrom(values))

	if m.Sortino != 0 {
		t.Errorf("Sortino sentinel = %f, want 0", m.Sortino)
	}
	if m.CAGR <= 0 {
		t.Errorf("CAGR should be positive, got %f", m.CAGR)
	}
	if m.WinRate != 1.0 {
		t.Errorf("WinRate = %f, want 1.0", m.WinRate)
	}
	if m.MaxDrawdown != 0 {
		t.Errorf("MaxDrawdown = %f, want 0", m.MaxDrawdown)
	}
}

func TestComputeMetrics_FlatCurveSentinels(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = 1.0
	}
	m := ComputeMetrics(curveFrom(values))

	if m.Sharpe != 0 || m.Sortino != 0 {
		t.Errorf("flat curve should report sentinel ratios, got Sharpe=%f Sortino=%f", m.Sharpe, m.Sortino)
	}
	if m.Volatility != 0 {
		t.Errorf("Volatility = %f, want 0", m.Volatility)
	}
	if m.CAGR != 0 {
		t.Errorf("CAGR = %f, want 0", m.CAGR)
	}
}

func TestComputeMetrics_ShortCurve(t *testing.T) {
	m := ComputeMetrics(curveFrom([]float64{1.0}))
	if m.Days != 1 {
		t.Errorf("Days = %d, want 1", m.Days)
	}

	empty := ComputeMetrics(nil)
	if empty.Days != 0 {
		t.Errorf("empty curve Days = %d, want 0", empty.Days)
	}
}

func TestComputeMetrics_SharpeSign(t *testing.T) {
	// Noisy but clearly rising curve should have positive Sharpe,
	// clearly falling negative.
	up := curveFrom([]float64{1.0, 1.05, 1.02, 1.10, 1.08, 1.18, 1.15, 1.25})
	down := curveFrom([]float64{1.0, 0.95, 0.97, 0.90, 0.92, 0.84, 0.86, 0.78})

	if m := ComputeMetrics(up); m.Sharpe <= 0 {
		t.Errorf("rising curve Sharpe = %f, want > 0", m.Sharpe)
	}
	if m := ComputeMetrics(down); m.Sharpe >= 0 {
		t.Errorf("falling curve Sharpe = %f, want < 0", m.Sharpe)
	}
}

func TestComputeMetrics_WinRate(t *testing.T) {
	// 2 up days, 1 down day, 1 flat day: 2 wins of 4 returns.
	m := ComputeMetrics(curveFrom([]float64{1.0, 1.1, 1.05, 1.05, 1.2}))
	if math.Abs(m.WinRate-0.5) > 1e-9 {
		t.Errorf("WinRate = %f, want 0.5", m.WinRate)
	}
}
