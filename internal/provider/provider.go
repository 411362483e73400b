// Package provider acquires daily closing prices from external market
// data sources. This is the engine's only blocking collaborator; the
// Chain client wraps the individual sources with timeouts, bounded
// retries and ordered fallback.
package provider

import (
	"context"
	"time"

	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/core"
)

// Provider is one market data source. FetchDaily returns daily closes
// for a dashed pair symbol ("BTC-USD") over [start, end], ordered and
// deduplicated. A source with no data for the symbol returns
// core.ErrNoData; anything else is treated as transient.
type Provider interface {
	Name() string
	FetchDaily(ctx context.Context, symbol string, start, end time.Time) (core.PriceSeries, error)
}
