package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/backtest"
	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/core"
	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/portfolio"
	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/storage/snapshot"
)

// Fetcher supplies daily closes for a symbol. Implemented by the
// provider chain.
type Fetcher interface {
	FetchDaily(ctx context.Context, symbol string, start, end time.Time) (core.PriceSeries, error)
}

// Observer receives run telemetry. Implemented by the metrics
// registry; nil disables recording.
type Observer interface {
	RecordRun(status string, duration float64)
	RecordSnapshotWrite(status string)
	RecordSignalTransition(strategy, position string)
	SetDataPoints(asset string, count int)
}

// Config carries everything a run needs beyond its collaborators.
type Config struct {
	BTCSymbol  string
	ETHSymbol  string
	Start      time.Time
	Version    string
	ConfigHash string
	Portfolio  portfolio.Config
}

// Engine runs one full analysis cycle: fetch, search, compose, persist.
type Engine struct {
	cfg   Config
	fetch Fetcher
	store snapshot.Store
	log   *zap.Logger
	obs   Observer
}

// New creates an engine. obs may be nil.
func New(cfg Config, fetch Fetcher, store snapshot.Store, log *zap.Logger, obs Observer) *Engine {
	return &Engine{cfg: cfg, fetch: fetch, store: store, log: log, obs: obs}
}

// RunOnce executes a single analysis cycle and returns the persisted
// snapshot. A single asset failing degrades its dependent strategies;
// both assets failing aborts the run before anything is written.
func (e *Engine) RunOnce(ctx context.Context) (*core.Snapshot, error) {
	started := time.Now()
	now := started.UTC()

	btc, eth := e.acquire(ctx, now)
	if btc.Err != nil && eth.Err != nil {
		e.record("error", started)
		return nil, core.WrapError(core.ErrDataAcquisition, btc.Err)
	}

	prior, err := e.store.Latest(ctx)
	if err != nil {
		if !errors.Is(err, core.ErrSnapshotNotFound) {
			e.log.Warn("prior snapshot unreadable, continuing without it", zap.Error(err))
		}
		prior = nil
	}

	composer := portfolio.New(e.cfg.Portfolio, e.log)
	results := composer.Compose(ctx, btc, eth, prior, now)

	snap := &core.Snapshot{
		RunID:      uuid.NewString(),
		Generated:  now,
		Version:    e.cfg.Version,
		ConfigHash: e.cfg.ConfigHash,
		StartDate:  e.cfg.Start,
		EndDate:    latestClose(btc, eth),
		DataPoints: map[core.Asset]int{
			core.AssetBTC: btc.Series.Len(),
			core.AssetETH: eth.Series.Len(),
		},
		Strategies: results,
	}

	if err := e.store.Save(ctx, snap); err != nil {
		if e.obs != nil {
			e.obs.RecordSnapshotWrite("error")
		}
		e.record("error", started)
		return nil, err
	}
	if e.obs != nil {
		e.obs.RecordSnapshotWrite("success")
		e.recordTransitions(prior, snap)
	}

	e.record("success", started)
	e.log.Info("analysis run complete",
		zap.String("run_id", snap.RunID),
		zap.Duration("elapsed", time.Since(started)))
	return snap, nil
}

// acquire fetches and validates both assets concurrently. Failures are
// folded into the AssetData rather than returned.
func (e *Engine) acquire(ctx context.Context, now time.Time) (btc, eth portfolio.AssetData) {
	btc = portfolio.AssetData{Asset: core.AssetBTC}
	eth = portfolio.AssetData{Asset: core.AssetETH}

	var wg sync.WaitGroup
	for _, job := range []struct {
		symbol string
		out    *portfolio.AssetData
	}{
		{e.cfg.BTCSymbol, &btc},
		{e.cfg.ETHSymbol, &eth},
	} {
		wg.Add(1)
		go func(symbol string, out *portfolio.AssetData) {
			defer wg.Done()
			series, err := e.fetch.FetchDaily(ctx, symbol, e.cfg.Start, now)
			if err == nil {
				err = e.validate(series)
			}
			if err != nil {
				e.log.Warn("asset unavailable",
					zap.String("asset", string(out.Asset)),
					zap.String("symbol", symbol),
					zap.Error(err))
				out.Err = err
				return
			}
			out.Series = series
			if e.obs != nil {
				e.obs.SetDataPoints(string(out.Asset), series.Len())
			}
		}(job.symbol, job.out)
	}
	wg.Wait()

	if btc.Err == nil && eth.Err == nil {
		btc.Series, eth.Series = core.Align(btc.Series, eth.Series)
	}
	return btc, eth
}

func (e *Engine) validate(series core.PriceSeries) error {
	if err := series.Validate(); err != nil {
		return err
	}
	need := e.cfg.Portfolio.Search.MaxWindow + backtest.MinEquityDays
	if series.Len() < need {
		return core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("%s has %d daily closes, need %d", series.Symbol, series.Len(), need))
	}
	return nil
}

func (e *Engine) record(status string, started time.Time) {
	if e.obs != nil {
		e.obs.RecordRun(status, time.Since(started).Seconds())
	}
}

// recordTransitions counts strategies whose position changed since the
// prior run.
func (e *Engine) recordTransitions(prior, current *core.Snapshot) {
	if prior == nil {
		return
	}
	for _, r := range current.Strategies {
		if r.Unavailable {
			continue
		}
		p := prior.Result(r.Strategy)
		if p == nil || p.Unavailable {
			continue
		}
		if p.Signal.Position != r.Signal.Position {
			e.obs.RecordSignalTransition(string(r.Strategy), string(r.Signal.Position))
		}
	}
}

func latestClose(btc, eth portfolio.AssetData) time.Time {
	var end time.Time
	for _, d := range []portfolio.AssetData{btc, eth} {
		if n := d.Series.Len(); n > 0 {
			if last := d.Series.Points[n-1].Date; last.After(end) {
				end = last
			}
		}
	}
	return end
}
