// Package yahoo fetches daily closes from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/core"
	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/provider"
)

const baseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// Yahoo fetches daily price history from the chart endpoint. Crypto
// pairs use Yahoo's dashed form ("BTC-USD") natively, so no symbol
// translation is needed.
type Yahoo struct {
	client  *http.Client
	baseURL string
}

// New creates a new Yahoo provider.
func New() *Yahoo {
	return &Yahoo{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: baseURL,
	}
}

// NewWithBaseURL creates a Yahoo provider with a custom base URL (for testing).
func NewWithBaseURL(url string) *Yahoo {
	y := New()
	y.baseURL = url
	return y
}

func (y *Yahoo) Name() string {
	return "yahoo"
}

// FetchDaily fetches daily closing prices for a pair over [start, end].
func (y *Yahoo) FetchDaily(ctx context.Context, symbol string, start, end time.Time) (core.PriceSeries, error) {
	if err := provider.ValidateSymbol(symbol); err != nil {
		return core.PriceSeries{}, core.WrapError(core.ErrNoData, err)
	}

	url := fmt.Sprintf("%s/%s?interval=1d&period1=%d&period2=%d",
		y.baseURL, symbol, start.Unix(), end.Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return core.PriceSeries{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := y.client.Do(req)
	if err != nil {
		return core.PriceSeries{}, core.WrapError(core.ErrDataAcquisition, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return core.PriceSeries{}, core.WrapError(core.ErrNoData, fmt.Errorf("unknown symbol %s", symbol))
	}
	if resp.StatusCode != http.StatusOK {
		return core.PriceSeries{}, core.WrapError(core.ErrDataAcquisition,
			fmt.Errorf("unexpected status: %d", resp.StatusCode))
	}

	var result chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return core.PriceSeries{}, core.WrapError(core.ErrDataAcquisition, fmt.Errorf("decoding response: %w", err))
	}

	if result.Chart.Error != nil {
		return core.PriceSeries{}, core.WrapError(core.ErrNoData,
			fmt.Errorf("yahoo error: %s", result.Chart.Error.Description))
	}
	if len(result.Chart.Result) == 0 {
		return core.PriceSeries{}, core.WrapError(core.ErrNoData, fmt.Errorf("no chart for symbol %s", symbol))
	}

	r := result.Chart.Result[0]
	if len(r.Indicators.Quote) == 0 {
		return core.PriceSeries{}, core.WrapError(core.ErrNoData, fmt.Errorf("no quotes for symbol %s", symbol))
	}
	closes := r.Indicators.Quote[0].Close

	series := core.PriceSeries{Symbol: symbol}
	var lastDay time.Time
	for i, ts := range r.Timestamp {
		if i >= len(closes) || closes[i] == nil || *closes[i] <= 0 {
			continue
		}
		// Bars arrive with intraday timestamps; collapse to the UTC day
		// and keep the last close per day.
		day := time.Unix(ts, 0).UTC().Truncate(24 * time.Hour)
		if !lastDay.IsZero() && day.Equal(lastDay) {
			series.Points[len(series.Points)-1].Close = *closes[i]
			continue
		}
		series.Points = append(series.Points, core.PricePoint{Date: day, Close: *closes[i]})
		lastDay = day
	}

	if series.Len() == 0 {
		return core.PriceSeries{}, core.WrapError(core.ErrNoData, fmt.Errorf("empty history for %s", symbol))
	}
	return series, nil
}

// Yahoo chart API response types
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}
