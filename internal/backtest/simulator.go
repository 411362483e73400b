package backtest

import (
	"fmt"

	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/core"
	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/indicator"
)

// MinEquityDays is the warm-up margin: a series must cover the window
// plus this many tradable days to produce a usable equity curve.
const MinEquityDays = 5

// Simulate replays a moving-average crossover strategy over a price
// series: long while the previous close is above its trailing moving
// average, cash otherwise. The position applied to day t's return is
// decided from day t-1 only, so the simulation never looks ahead.
//
// The curve starts at 1.0 on the first day the moving average exists
// and has length len(series) - window + 1. A long day earns the
// asset's realized return, a cash day earns zero. Transaction costs
// are not modeled.
func Simulate(series core.PriceSeries, window int, maType indicator.Type) (core.EquityCurve, error) {
	if window <= 0 {
		return nil, core.WrapError(core.ErrInsufficientData, fmt.Errorf("window must be positive, got %d", window))
	}
	if series.Len() < window+MinEquityDays {
		return nil, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("%s: %d points, need %d for window %d", series.Symbol, series.Len(), window+MinEquityDays, window))
	}

	closes := series.Closes()
	ma := indicator.MovingAverage(maType, closes, window)

	curve := make(core.EquityCurve, 0, len(closes)-window+1)
	curve = append(curve, core.EquityPoint{Date: series.Points[window-1].Date, Value: 1.0})

	value := 1.0
	for t := window; t < len(closes); t++ {
		// ma[t-window] is the average ending at closes[t-1]
		if closes[t-1] > ma[t-window] {
			value *= closes[t] / closes[t-1]
		}
		curve = append(curve, core.EquityPoint{Date: series.Points[t].Date, Value: value})
	}

	return curve, nil
}

// Trades counts position transitions over the same simulation.
// Starting flat, entering on the first long day counts as one trade.
func Trades(series core.PriceSeries, window int, maType indicator.Type) int {
	if window <= 0 || series.Len() < window+MinEquityDays {
		return 0
	}

	closes := series.Closes()
	ma := indicator.MovingAverage(maType, closes, window)

	trades := 0
	long := false
	for t := window; t < len(closes); t++ {
		next := closes[t-1] > ma[t-window]
		if next != long {
			trades++
			long = next
		}
	}
	return trades
}
