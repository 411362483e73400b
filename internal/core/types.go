package core

import "time"

// Asset identifies one of the two configured assets.
type Asset string

const (
	AssetBTC Asset = "BTC"
	AssetETH Asset = "ETH"
)

// Strategy identifies one of the four portfolio constructions.
type Strategy string

const (
	StrategyBTCOnly       Strategy = "btc_only"
	StrategyETHOnly       Strategy = "eth_only"
	StrategyRebalance5050 Strategy = "rebalance_50_50"
	StrategyRebalance6040 Strategy = "rebalance_60_40"
)

// Strategies lists all strategies in their fixed reporting order.
func Strategies() []Strategy {
	return []Strategy{
		StrategyBTCOnly,
		StrategyETHOnly,
		StrategyRebalance5050,
		StrategyRebalance6040,
	}
}

// PricePoint is one daily close for an asset.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries is an ordered sequence of daily closes, strictly
// increasing by date with no duplicates. The engine only reads it.
type PriceSeries struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
}

// Len returns the number of price points.
func (s PriceSeries) Len() int {
	return len(s.Points)
}

// Closes returns the closing prices in order.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// Validate checks ordering, duplicate dates and non-positive prices.
func (s PriceSeries) Validate() error {
	if len(s.Points) == 0 {
		return ErrNoData
	}
	for i, p := range s.Points {
		if p.Close <= 0 {
			return WrapError(ErrInvalidSeries,
				errf("non-positive close %.4f at %s", p.Close, p.Date.Format("2006-01-02")))
		}
		if i > 0 && !s.Points[i-1].Date.Before(p.Date) {
			return WrapError(ErrInvalidSeries, errf("dates not strictly increasing at index %d", i))
		}
	}
	return nil
}

// Align intersects two series on their common dates, mirroring how
// both assets must share a calendar before portfolio blending.
func Align(a, b PriceSeries) (PriceSeries, PriceSeries) {
	dates := make(map[time.Time]int, b.Len())
	for i, p := range b.Points {
		dates[p.Date] = i
	}

	outA := PriceSeries{Symbol: a.Symbol}
	outB := PriceSeries{Symbol: b.Symbol}
	for _, p := range a.Points {
		if j, ok := dates[p.Date]; ok {
			outA.Points = append(outA.Points, p)
			outB.Points = append(outB.Points, b.Points[j])
		}
	}
	return outA, outB
}

// EquityPoint is one daily portfolio value on an equity curve.
type EquityPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// EquityCurve is the simulated portfolio value over time, normalized
// to 1.0 at its first point.
type EquityCurve []EquityPoint

// DailyReturns returns the day-over-day relative changes (length len-1).
func (c EquityCurve) DailyReturns() []float64 {
	if len(c) < 2 {
		return nil
	}
	returns := make([]float64, len(c)-1)
	for i := 1; i < len(c); i++ {
		returns[i-1] = c[i].Value/c[i-1].Value - 1
	}
	return returns
}

// Tail returns the trailing n points, renormalized to start at 1.0.
// The whole curve is returned (renormalized) when n >= len.
func (c EquityCurve) Tail(n int) EquityCurve {
	if n >= len(c) {
		n = len(c)
	}
	if n == 0 {
		return nil
	}
	tail := c[len(c)-n:]
	base := tail[0].Value
	out := make(EquityCurve, n)
	for i, p := range tail {
		out[i] = EquityPoint{Date: p.Date, Value: p.Value / base}
	}
	return out
}

// PerformanceMetrics are the scalar statistics of one equity curve.
// Sharpe and Sortino report 0 when the underlying volatility is zero.
type PerformanceMetrics struct {
	CAGR        float64 `json:"cagr"`
	MaxDrawdown float64 `json:"max_drawdown"` // in [-1, 0]
	Sharpe      float64 `json:"sharpe"`
	Sortino     float64 `json:"sortino"`
	Volatility  float64 `json:"volatility"` // annualized
	TotalReturn float64 `json:"total_return"`
	WinRate     float64 `json:"win_rate"` // fraction of positive days
	Days        int     `json:"days"`
}

// Position is the trading position of the signal state machine.
type Position string

const (
	PositionLong Position = "long"
	PositionCash Position = "cash"
	PositionMixed Position = "mixed" // rebalanced aggregate when legs disagree
)

// SignalState is the current trading signal for one strategy.
// Recomputed every run from the latest price, the optimal moving
// average and the previously persisted state; never rewritten.
type SignalState struct {
	Position  Position  `json:"position"`
	Strength  float64   `json:"strength"` // in [0, 1]
	EnteredAt time.Time `json:"entered_at"`
	Duration  int       `json:"duration_days"`
	IsNew     bool      `json:"is_new"`
}

// StrategyResult is the immutable per-strategy outcome of one run.
// Unavailable results carry a reason instead of metrics.
type StrategyResult struct {
	Strategy      Strategy              `json:"strategy"`
	Window        int                   `json:"optimal_window,omitempty"`
	LegWindows    map[Asset]int         `json:"leg_windows,omitempty"`
	Score         float64               `json:"combined_score,omitempty"`
	Metrics       PerformanceMetrics    `json:"metrics"`
	TradeCount    int                   `json:"trade_count,omitempty"`
	Signal        SignalState           `json:"signal"`
	LegSignals    map[Asset]SignalState `json:"leg_signals,omitempty"`
	Unavailable   bool                  `json:"unavailable,omitempty"`
	UnavailReason string                `json:"unavailable_reason,omitempty"`
}

// Snapshot is the self-describing document persisted after each run.
// Downstream readers never recompute anything from it.
type Snapshot struct {
	RunID      string           `json:"run_id"`
	Generated  time.Time        `json:"generated_at"`
	Version    string           `json:"engine_version"`
	ConfigHash string           `json:"config_hash"`
	StartDate  time.Time        `json:"start_date"`
	EndDate    time.Time        `json:"end_date"`
	DataPoints map[Asset]int    `json:"data_points"`
	Strategies []StrategyResult `json:"strategies"`
}

// Result returns the snapshot's result for a strategy, nil if absent.
func (s *Snapshot) Result(strat Strategy) *StrategyResult {
	for i := range s.Strategies {
		if s.Strategies[i].Strategy == strat {
			return &s.Strategies[i]
		}
	}
	return nil
}
