// Package binance fetches daily closes from the Binance klines API.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/core"
	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/provider"
)

const (
	baseURL   = "https://api.binance.com"
	pageLimit = 1000 // klines per request, the API maximum
)

// Binance fetches daily klines, paginating past the per-request limit
// to cover multi-year ranges.
type Binance struct {
	client  *http.Client
	baseURL string
}

// New creates a new Binance provider.
func New() *Binance {
	return &Binance{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: baseURL,
	}
}

// NewWithBaseURL creates a Binance provider with a custom base URL (for testing).
func NewWithBaseURL(url string) *Binance {
	b := New()
	b.baseURL = url
	return b
}

func (b *Binance) Name() string {
	return "binance"
}

// FetchDaily fetches daily closing prices for a pair over [start, end].
func (b *Binance) FetchDaily(ctx context.Context, symbol string, start, end time.Time) (core.PriceSeries, error) {
	if err := provider.ValidateSymbol(symbol); err != nil {
		return core.PriceSeries{}, core.WrapError(core.ErrNoData, err)
	}
	pair := provider.ToBinance(symbol)

	series := core.PriceSeries{Symbol: symbol}
	cursor := start

	for cursor.Before(end) {
		page, err := b.fetchPage(ctx, pair, cursor, end)
		if err != nil {
			return core.PriceSeries{}, err
		}
		if len(page) == 0 {
			break
		}

		for _, p := range page {
			if series.Len() > 0 && !series.Points[series.Len()-1].Date.Before(p.Date) {
				continue
			}
			series.Points = append(series.Points, p)
		}

		cursor = page[len(page)-1].Date.AddDate(0, 0, 1)
		if len(page) < pageLimit {
			break
		}
	}

	if series.Len() == 0 {
		return core.PriceSeries{}, core.WrapError(core.ErrNoData, fmt.Errorf("no klines for %s", pair))
	}
	return series, nil
}

func (b *Binance) fetchPage(ctx context.Context, pair string, start, end time.Time) ([]core.PricePoint, error) {
	url := fmt.Sprintf("%s/api/v3/klines?symbol=%s&interval=1d&startTime=%d&endTime=%d&limit=%d",
		b.baseURL, pair, start.UnixMilli(), end.UnixMilli(), pageLimit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, core.WrapError(core.ErrDataAcquisition, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		// Binance answers 400 with code -1121 for unknown symbols.
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("unknown pair %s", pair))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, core.WrapError(core.ErrDataAcquisition, fmt.Errorf("unexpected status: %d", resp.StatusCode))
	}

	var klines [][]any
	if err := json.NewDecoder(resp.Body).Decode(&klines); err != nil {
		return nil, core.WrapError(core.ErrDataAcquisition, fmt.Errorf("decoding response: %w", err))
	}

	points := make([]core.PricePoint, 0, len(klines))
	for _, k := range klines {
		if len(k) < 5 {
			continue
		}
		openTime, _ := k[0].(float64)
		closeStr, _ := k[4].(string)
		close, err := strconv.ParseFloat(closeStr, 64)
		if err != nil || close <= 0 {
			continue
		}

		points = append(points, core.PricePoint{
			Date:  time.UnixMilli(int64(openTime)).UTC().Truncate(24 * time.Hour),
			Close: close,
		})
	}
	return points, nil
}
