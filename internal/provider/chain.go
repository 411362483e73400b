package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/core"
)

// ChainConfig bounds each acquisition attempt.
type ChainConfig struct {
	Timeout time.Duration // per-attempt timeout
	Retries int           // attempts per provider
	Backoff time.Duration // base delay, doubled per attempt
}

// DefaultChainConfig mirrors the documented configuration defaults.
var DefaultChainConfig = ChainConfig{
	Timeout: 30 * time.Second,
	Retries: 3,
	Backoff: 2 * time.Second,
}

// Recorder observes provider traffic. Implemented by the metrics
// registry; nil disables recording.
type Recorder interface {
	RecordProviderRequest(provider, status string)
	RecordProviderRetry(provider string)
}

// Chain tries providers in configured order. Transient failures are
// retried with exponential backoff before falling through to the next
// provider; a permanent ErrNoData skips retries entirely, since a
// symbol unknown to a source will not appear on the next attempt.
type Chain struct {
	providers []Provider
	cfg       ChainConfig
	log       *zap.Logger
	rec       Recorder
}

// NewChain creates a provider chain.
func NewChain(providers []Provider, cfg ChainConfig, log *zap.Logger, rec Recorder) *Chain {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultChainConfig.Timeout
	}
	if cfg.Retries <= 0 {
		cfg.Retries = DefaultChainConfig.Retries
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultChainConfig.Backoff
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Chain{providers: providers, cfg: cfg, log: log, rec: rec}
}

// FetchDaily acquires the series from the first provider that
// delivers. It returns ErrNoData when every source lacks the symbol
// and ErrDataAcquisition when all attempts failed transiently.
func (c *Chain) FetchDaily(ctx context.Context, symbol string, start, end time.Time) (core.PriceSeries, error) {
	if len(c.providers) == 0 {
		return core.PriceSeries{}, core.WrapError(core.ErrDataAcquisition, fmt.Errorf("no providers configured"))
	}

	var lastErr error
	sawTransient := false

	for _, p := range c.providers {
		series, err := c.fetchWithRetries(ctx, p, symbol, start, end)
		if err == nil {
			return series, nil
		}
		lastErr = err
		if !errors.Is(err, core.ErrNoData) {
			sawTransient = true
		}
		if ctx.Err() != nil {
			return core.PriceSeries{}, core.WrapError(core.ErrDataAcquisition, ctx.Err())
		}
	}

	if sawTransient {
		return core.PriceSeries{}, core.WrapError(core.ErrDataAcquisition,
			fmt.Errorf("all providers failed for %s: %w", symbol, lastErr))
	}
	return core.PriceSeries{}, core.WrapError(core.ErrNoData,
		fmt.Errorf("no provider has data for %s: %w", symbol, lastErr))
}

func (c *Chain) fetchWithRetries(ctx context.Context, p Provider, symbol string, start, end time.Time) (core.PriceSeries, error) {
	var lastErr error

	for attempt := 0; attempt < c.cfg.Retries; attempt++ {
		if attempt > 0 {
			if c.rec != nil {
				c.rec.RecordProviderRetry(p.Name())
			}
			if err := sleepCtx(ctx, c.cfg.Backoff<<(attempt-1)); err != nil {
				return core.PriceSeries{}, err
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		series, err := p.FetchDaily(attemptCtx, symbol, start, end)
		cancel()

		if err == nil {
			if c.rec != nil {
				c.rec.RecordProviderRequest(p.Name(), "ok")
			}
			return series, nil
		}
		lastErr = err

		if errors.Is(err, core.ErrNoData) {
			if c.rec != nil {
				c.rec.RecordProviderRequest(p.Name(), "no_data")
			}
			return core.PriceSeries{}, err
		}
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			lastErr = core.WrapError(core.ErrProviderTimeout, err)
		}
		if c.rec != nil {
			c.rec.RecordProviderRequest(p.Name(), "error")
		}

		c.log.Warn("provider attempt failed",
			zap.String("provider", p.Name()),
			zap.String("symbol", symbol),
			zap.Int("attempt", attempt+1),
			zap.Error(err))

		if ctx.Err() != nil {
			break
		}
	}

	return core.PriceSeries{}, lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
