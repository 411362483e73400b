// Package signal derives the current buy/sell/hold state for a
// strategy from the latest price and its optimal moving average.
//
// The state machine has two states, long and cash, separated by a
// hysteresis band: cash flips to long only when price rises more than
// the buffer fraction above the moving average, long flips to cash
// only when price falls more than the buffer below it. Inside the band
// the previous state holds, which suppresses whipsaws near the
// average.
package signal

import (
	"math"
	"time"

	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/core"
)

// Config holds the hysteresis band width and the divergence that maps
// to full signal strength.
type Config struct {
	Buffer       float64 // dead-band fraction around the moving average
	StrengthSpan float64 // |price/MA - 1| at which strength saturates at 1
}

// DefaultConfig mirrors the documented configuration defaults.
var DefaultConfig = Config{
	Buffer:       0.02,
	StrengthSpan: 0.05,
}

// Generate recomputes the signal state from the latest price, the
// optimal moving average and the previously persisted state. The
// prior state is read-only; a fresh state is always returned.
//
// With no prior state the position starts as cash and the first
// evaluation is never marked as a transition, even when it lands in a
// position.
func Generate(price, ma float64, prior *core.SignalState, now time.Time, cfg Config) core.SignalState {
	if cfg.StrengthSpan <= 0 {
		cfg.StrengthSpan = DefaultConfig.StrengthSpan
	}

	divergence := 0.0
	if ma > 0 {
		divergence = price/ma - 1
	}

	from := core.PositionCash
	if prior != nil {
		from = prior.Position
	}

	to := from
	switch {
	case from == core.PositionCash && divergence > cfg.Buffer:
		to = core.PositionLong
	case from == core.PositionLong && divergence < -cfg.Buffer:
		to = core.PositionCash
	}

	state := core.SignalState{
		Position: to,
		Strength: math.Min(1, math.Abs(divergence)/cfg.StrengthSpan),
	}

	switch {
	case prior == nil:
		// First observation: not a transition by definition.
		state.EnteredAt = now
	case to != from:
		state.EnteredAt = now
		state.IsNew = true
	default:
		state.EnteredAt = prior.EnteredAt
	}
	state.Duration = int(now.Sub(state.EnteredAt).Hours() / 24)

	return state
}

// Aggregate combines per-leg signal states of a rebalanced strategy
// into one headline state. The position is unanimous or mixed, the
// strength is the weight-blended leg strength, and the aggregate is
// new if any leg transitioned this run.
func Aggregate(legs map[core.Asset]core.SignalState, weights map[core.Asset]float64) core.SignalState {
	if len(legs) == 0 {
		return core.SignalState{Position: core.PositionCash}
	}

	var agg core.SignalState
	var totalWeight float64
	first := true
	unanimous := true

	for asset, leg := range legs {
		w := weights[asset]
		agg.Strength += w * leg.Strength
		totalWeight += w

		if first {
			agg.Position = leg.Position
			agg.EnteredAt = leg.EnteredAt
			agg.Duration = leg.Duration
			first = false
		} else {
			if leg.Position != agg.Position {
				unanimous = false
			}
			if leg.EnteredAt.After(agg.EnteredAt) {
				agg.EnteredAt = leg.EnteredAt
			}
			if leg.Duration < agg.Duration {
				agg.Duration = leg.Duration
			}
		}
		if leg.IsNew {
			agg.IsNew = true
		}
	}

	if !unanimous {
		agg.Position = core.PositionMixed
	}
	if totalWeight > 0 {
		agg.Strength /= totalWeight
	}
	return agg
}
