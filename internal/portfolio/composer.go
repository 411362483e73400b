// Package portfolio assembles the four strategy results of one run:
// two single-asset strategies straight from the window search, and two
// rebalanced strategies blending the single-asset position decisions
// at fixed target weights.
package portfolio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/backtest"
	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/core"
	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/indicator"
	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/optimizer"
	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/signal"
)

// Cadence is how often a rebalanced strategy is restored to its
// target weights.
type Cadence string

const (
	CadenceDaily   Cadence = "daily"
	CadenceMonthly Cadence = "monthly"
)

// Valid reports whether c names a known cadence.
func (c Cadence) Valid() bool {
	return c == CadenceDaily || c == CadenceMonthly
}

// Config drives the composer: the per-asset window search, the signal
// band, and the rebalancing cadence.
type Config struct {
	Search   optimizer.Config
	Signal   signal.Config
	Cadence  Cadence
	Observer SearchObserver
}

// SearchObserver receives window search telemetry. Implemented by the
// metrics registry; nil disables recording.
type SearchObserver interface {
	RecordSearch(asset string, duration float64)
	RecordWindowEvaluations(asset string, count int)
}

// AssetData is one asset's input to a run. A non-nil Err marks the
// asset failed upstream (fetch or validation); strategies depending on
// it report unavailable instead of aborting the run.
type AssetData struct {
	Asset  core.Asset
	Series core.PriceSeries
	Err    error
}

// Composer builds the four strategy results.
type Composer struct {
	cfg Config
	log *zap.Logger
}

// New creates a Composer.
func New(cfg Config, log *zap.Logger) *Composer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Composer{cfg: cfg, log: log}
}

var strategyWeights = map[core.Strategy]map[core.Asset]float64{
	core.StrategyRebalance5050: {core.AssetBTC: 0.5, core.AssetETH: 0.5},
	core.StrategyRebalance6040: {core.AssetBTC: 0.6, core.AssetETH: 0.4},
}

// Compose runs the window search once per viable asset and builds all
// four results concurrently, each into its own slot. The merge is the
// fixed strategy order; failed legs degrade only the strategies that
// need them. The prior snapshot is read-only input for signal
// continuity.
func (c *Composer) Compose(ctx context.Context, btc, eth AssetData, prior *core.Snapshot, now time.Time) []core.StrategyResult {
	evals := map[core.Asset]*optimizer.Evaluation{}
	searchErrs := map[core.Asset]error{btc.Asset: btc.Err, eth.Asset: eth.Err}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, asset := range []AssetData{btc, eth} {
		if asset.Err != nil {
			c.log.Warn("asset unavailable, skipping search",
				zap.String("asset", string(asset.Asset)), zap.Error(asset.Err))
			continue
		}
		wg.Add(1)
		go func(a AssetData) {
			defer wg.Done()
			began := time.Now()
			eval, err := optimizer.Search(ctx, a.Series, c.cfg.Search, c.log)
			if c.cfg.Observer != nil {
				c.cfg.Observer.RecordSearch(string(a.Asset), time.Since(began).Seconds())
				c.cfg.Observer.RecordWindowEvaluations(string(a.Asset), c.cfg.Search.Windows())
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				searchErrs[a.Asset] = err
				return
			}
			evals[a.Asset] = eval
		}(asset)
	}
	wg.Wait()

	assets := map[core.Asset]AssetData{btc.Asset: btc, eth.Asset: eth}
	results := make([]core.StrategyResult, 4)

	wg.Add(4)
	go func() {
		defer wg.Done()
		results[0] = c.buildSingle(core.StrategyBTCOnly, assets[core.AssetBTC], evals[core.AssetBTC], searchErrs[core.AssetBTC], prior, now)
	}()
	go func() {
		defer wg.Done()
		results[1] = c.buildSingle(core.StrategyETHOnly, assets[core.AssetETH], evals[core.AssetETH], searchErrs[core.AssetETH], prior, now)
	}()
	go func() {
		defer wg.Done()
		results[2] = c.buildRebalanced(core.StrategyRebalance5050, assets, evals, searchErrs, prior, now)
	}()
	go func() {
		defer wg.Done()
		results[3] = c.buildRebalanced(core.StrategyRebalance6040, assets, evals, searchErrs, prior, now)
	}()
	wg.Wait()

	return results
}

func (c *Composer) buildSingle(strat core.Strategy, data AssetData, eval *optimizer.Evaluation, searchErr error, prior *core.Snapshot, now time.Time) core.StrategyResult {
	if eval == nil {
		return unavailable(strat, searchErr)
	}

	closes := data.Series.Closes()
	ma := indicator.MovingAverage(c.cfg.Search.MAType, closes, eval.Window)

	return core.StrategyResult{
		Strategy:   strat,
		Window:     eval.Window,
		Score:      eval.Score,
		Metrics:    eval.Metrics,
		TradeCount: eval.Trades,
		Signal: signal.Generate(
			closes[len(closes)-1], ma[len(ma)-1],
			priorSignal(prior, strat), now, c.cfg.Signal),
	}
}

func (c *Composer) buildRebalanced(strat core.Strategy, assets map[core.Asset]AssetData, evals map[core.Asset]*optimizer.Evaluation, searchErrs map[core.Asset]error, prior *core.Snapshot, now time.Time) core.StrategyResult {
	weights := strategyWeights[strat]

	for asset := range weights {
		if evals[asset] == nil {
			err := searchErrs[asset]
			if err == nil {
				err = fmt.Errorf("%s leg unavailable", asset)
			}
			return unavailable(strat, fmt.Errorf("%s leg: %w", asset, err))
		}
	}

	btcEval, ethEval := evals[core.AssetBTC], evals[core.AssetETH]
	curve := blend(btcEval.Curve, ethEval.Curve, weights, c.cfg.Cadence)

	legs := make(map[core.Asset]core.SignalState, 2)
	legWindows := make(map[core.Asset]int, 2)
	for asset, eval := range evals {
		closes := assets[asset].Series.Closes()
		ma := indicator.MovingAverage(c.cfg.Search.MAType, closes, eval.Window)
		legs[asset] = signal.Generate(
			closes[len(closes)-1], ma[len(ma)-1],
			priorLegSignal(prior, strat, asset), now, c.cfg.Signal)
		legWindows[asset] = eval.Window
	}

	return core.StrategyResult{
		Strategy:   strat,
		LegWindows: legWindows,
		Metrics:    backtest.ComputeMetrics(curve),
		TradeCount: btcEval.Trades + ethEval.Trades,
		Signal:     signal.Aggregate(legs, weights),
		LegSignals: legs,
	}
}

// blend combines two position-gated equity curves at target weights.
// Daily cadence restores the weights every close; monthly lets the
// component values drift within a calendar month and resets them when
// the month changes. The blend starts at the later of the two curves'
// first days, renormalized to 1.0.
func blend(btcCurve, ethCurve core.EquityCurve, weights map[core.Asset]float64, cadence Cadence) core.EquityCurve {
	wBTC, wETH := weights[core.AssetBTC], weights[core.AssetETH]

	ethByDate := make(map[time.Time]int, len(ethCurve))
	for i, p := range ethCurve {
		ethByDate[p.Date] = i
	}

	// Walk BTC dates, pairing each day's leg returns where both
	// curves have the previous day too.
	out := core.EquityCurve{}
	vBTC, vETH := wBTC, wETH
	var lastMonth time.Month

	for i := 1; i < len(btcCurve); i++ {
		j, ok := ethByDate[btcCurve[i].Date]
		if !ok || j == 0 {
			continue
		}
		if len(out) == 0 {
			out = append(out, core.EquityPoint{Date: btcCurve[i-1].Date, Value: 1.0})
			lastMonth = btcCurve[i-1].Date.Month()
		}

		rBTC := btcCurve[i].Value/btcCurve[i-1].Value - 1
		rETH := ethCurve[j].Value/ethCurve[j-1].Value - 1

		vBTC *= 1 + rBTC
		vETH *= 1 + rETH
		total := vBTC + vETH

		switch cadence {
		case CadenceMonthly:
			if m := btcCurve[i].Date.Month(); m != lastMonth {
				vBTC, vETH = wBTC*total, wETH*total
				lastMonth = m
			}
		default: // daily
			vBTC, vETH = wBTC*total, wETH*total
		}

		out = append(out, core.EquityPoint{Date: btcCurve[i].Date, Value: total})
	}

	return out
}

func unavailable(strat core.Strategy, err error) core.StrategyResult {
	reason := "unavailable"
	if err != nil {
		reason = err.Error()
	}
	return core.StrategyResult{
		Strategy:      strat,
		Unavailable:   true,
		UnavailReason: reason,
		Signal:        core.SignalState{Position: core.PositionCash},
	}
}

func priorSignal(prior *core.Snapshot, strat core.Strategy) *core.SignalState {
	if prior == nil {
		return nil
	}
	r := prior.Result(strat)
	if r == nil || r.Unavailable {
		return nil
	}
	s := r.Signal
	return &s
}

func priorLegSignal(prior *core.Snapshot, strat core.Strategy, asset core.Asset) *core.SignalState {
	if prior == nil {
		return nil
	}
	r := prior.Result(strat)
	if r == nil || r.Unavailable {
		return nil
	}
	if s, ok := r.LegSignals[asset]; ok {
		return &s
	}
	return nil
}
