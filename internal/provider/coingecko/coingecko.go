// Package coingecko fetches daily closes from the CoinGecko
// market_chart range API.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/core"
	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/provider"
)

const baseURL = "https://api.coingecko.com/api/v3"

// CoinGecko fetches price history by coin id. Ranges beyond 90 days
// come back at daily granularity, which is all the engine needs.
type CoinGecko struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// New creates a new CoinGecko provider. The API key is optional; the
// free tier works without one at lower rate limits.
func New(apiKey string) *CoinGecko {
	return &CoinGecko{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// NewWithBaseURL creates a CoinGecko provider with a custom base URL (for testing).
func NewWithBaseURL(url, apiKey string) *CoinGecko {
	c := New(apiKey)
	c.baseURL = url
	return c
}

func (c *CoinGecko) Name() string {
	return "coingecko"
}

// FetchDaily fetches daily closing prices for a pair over [start, end].
func (c *CoinGecko) FetchDaily(ctx context.Context, symbol string, start, end time.Time) (core.PriceSeries, error) {
	coinID := provider.ToCoinGeckoID(symbol)
	if coinID == "" {
		return core.PriceSeries{}, core.WrapError(core.ErrNoData, fmt.Errorf("no coin id for %s", symbol))
	}
	_, quote := provider.SplitSymbol(symbol)
	vsCurrency := strings.ToLower(quote)

	url := fmt.Sprintf("%s/coins/%s/market_chart/range?vs_currency=%s&from=%d&to=%d",
		c.baseURL, coinID, vsCurrency, start.Unix(), end.Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return core.PriceSeries{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return core.PriceSeries{}, core.WrapError(core.ErrDataAcquisition, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return core.PriceSeries{}, core.WrapError(core.ErrNoData, fmt.Errorf("unknown coin %s", coinID))
	}
	if resp.StatusCode != http.StatusOK {
		return core.PriceSeries{}, core.WrapError(core.ErrDataAcquisition,
			fmt.Errorf("unexpected status: %d", resp.StatusCode))
	}

	// Response shape: {"prices": [[ms, price], ...]}
	var result struct {
		Prices [][]float64 `json:"prices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return core.PriceSeries{}, core.WrapError(core.ErrDataAcquisition, fmt.Errorf("decoding response: %w", err))
	}

	series := core.PriceSeries{Symbol: symbol}
	var lastDay time.Time
	for _, p := range result.Prices {
		if len(p) < 2 || p[1] <= 0 {
			continue
		}
		day := time.UnixMilli(int64(p[0])).UTC().Truncate(24 * time.Hour)
		if !lastDay.IsZero() && day.Equal(lastDay) {
			series.Points[len(series.Points)-1].Close = p[1]
			continue
		}
		series.Points = append(series.Points, core.PricePoint{Date: day, Close: p[1]})
		lastDay = day
	}

	if series.Len() == 0 {
		return core.PriceSeries{}, core.WrapError(core.ErrNoData, fmt.Errorf("empty history for %s", coinID))
	}
	return series, nil
}
