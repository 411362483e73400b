// Package optimizer finds the moving-average window with the best
// combined score for one price series.
package optimizer

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/backtest"
	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/core"
	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/indicator"
	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/scoring"
)

// Config bounds the search space and the worker pool.
type Config struct {
	MinWindow int
	MaxWindow int
	Step      int
	Workers   int
	MAType    indicator.Type
	Scoring   scoring.Config
}

// Windows returns the number of candidate windows in the range.
func (c Config) Windows() int {
	step := c.Step
	if step < 1 {
		step = 1
	}
	if c.MaxWindow < c.MinWindow {
		return 0
	}
	return (c.MaxWindow-c.MinWindow)/step + 1
}

// Evaluation is the outcome for one candidate window.
type Evaluation struct {
	Window  int
	Curve   core.EquityCurve
	Metrics core.PerformanceMetrics   // full-curve metrics
	Periods []core.PerformanceMetrics // per-subperiod, matching Scoring.Subperiods
	Trades  int
	Score   float64
}

// Search evaluates every candidate window through the simulator and
// the weighting scheme and returns the best one. Candidates are
// independent pure computations, so they run on a bounded worker pool;
// each worker writes into its own result slot and scoring happens in a
// single-threaded pass after all workers finish (peer ranks need the
// full candidate set). The selection is deterministic regardless of
// worker count: max score, ties broken by the smaller window.
func Search(ctx context.Context, series core.PriceSeries, cfg Config, log *zap.Logger) (*Evaluation, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Step < 1 {
		cfg.Step = 1
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	var windows []int
	for w := cfg.MinWindow; w <= cfg.MaxWindow; w += cfg.Step {
		windows = append(windows, w)
	}
	if len(windows) == 0 {
		return nil, core.WrapError(core.ErrNoViableWindow,
			fmt.Errorf("empty window range [%d, %d]", cfg.MinWindow, cfg.MaxWindow))
	}

	evals := make([]*Evaluation, len(windows))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					continue // drain remaining jobs without evaluating
				}
				evals[idx] = evaluate(series, windows[idx], cfg)
			}
		}()
	}

feed:
	for idx := range windows {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Collect survivors in window order; windows without enough data
	// are simply skipped.
	var candidates []scoring.Candidate
	var survivors []*Evaluation
	for _, ev := range evals {
		if ev == nil {
			continue
		}
		candidates = append(candidates, scoring.Candidate{Window: ev.Window, Periods: ev.Periods})
		survivors = append(survivors, ev)
	}
	if len(survivors) == 0 {
		return nil, core.WrapError(core.ErrNoViableWindow,
			fmt.Errorf("%s: all %d candidate windows lacked data", series.Symbol, len(windows)))
	}

	scores := scoring.Score(cfg.Scoring, candidates)

	best := survivors[0]
	best.Score = scores[0]
	for i := 1; i < len(survivors); i++ {
		survivors[i].Score = scores[i]
		// Strictly greater keeps ties on the smaller window.
		if scores[i] > best.Score {
			best = survivors[i]
		}
	}

	log.Debug("window search complete",
		zap.String("symbol", series.Symbol),
		zap.Int("candidates", len(windows)),
		zap.Int("viable", len(survivors)),
		zap.Int("optimal_window", best.Window),
		zap.Float64("score", best.Score))

	return best, nil
}

// evaluate simulates one window and computes its full-curve and
// per-subperiod metrics. Returns nil when the series cannot support
// the window.
func evaluate(series core.PriceSeries, window int, cfg Config) *Evaluation {
	curve, err := backtest.Simulate(series, window, cfg.MAType)
	if err != nil {
		return nil
	}

	subperiods := cfg.Scoring.Subperiods
	if len(subperiods) == 0 {
		subperiods = scoring.Defaults.Subperiods
	}
	periods := make([]core.PerformanceMetrics, len(subperiods))
	for i, days := range subperiods {
		periods[i] = backtest.ComputeMetrics(curve.Tail(days))
	}

	return &Evaluation{
		Window:  window,
		Curve:   curve,
		Metrics: backtest.ComputeMetrics(curve),
		Periods: periods,
		Trades:  backtest.Trades(series, window, cfg.MAType),
	}
}
