package core

import (
	"errors"
	"math"
	"testing"
	"time"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestPriceSeries_Validate(t *testing.T) {
	valid := PriceSeries{
		Symbol: "BTC-USD",
		Points: []PricePoint{
			{Date: day(0), Close: 100},
			{Date: day(1), Close: 101},
			{Date: day(2), Close: 99},
		},
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid series should pass: %v", err)
	}

	empty := PriceSeries{Symbol: "BTC-USD"}
	if !errors.Is(empty.Validate(), ErrNoData) {
		t.Error("empty series should be ErrNoData")
	}

	duplicate := PriceSeries{
		Points: []PricePoint{
			{Date: day(0), Close: 100},
			{Date: day(0), Close: 101},
		},
	}
	if !errors.Is(duplicate.Validate(), ErrInvalidSeries) {
		t.Error("duplicate dates should be ErrInvalidSeries")
	}

	negative := PriceSeries{
		Points: []PricePoint{{Date: day(0), Close: -1}},
	}
	if !errors.Is(negative.Validate(), ErrInvalidSeries) {
		t.Error("negative close should be ErrInvalidSeries")
	}
}

func TestPriceSeries_Closes(t *testing.T) {
	s := PriceSeries{Points: []PricePoint{
		{Date: day(0), Close: 10},
		{Date: day(1), Close: 20},
	}}
	closes := s.Closes()
	if len(closes) != 2 || closes[0] != 10 || closes[1] != 20 {
		t.Errorf("Closes() = %v, want [10 20]", closes)
	}
}

func TestEquityCurve_DailyReturns(t *testing.T) {
	curve := EquityCurve{
		{Date: day(0), Value: 1.0},
		{Date: day(1), Value: 1.1},
		{Date: day(2), Value: 0.99},
	}

	returns := curve.DailyReturns()
	if len(returns) != 2 {
		t.Fatalf("expected 2 returns, got %d", len(returns))
	}
	if math.Abs(returns[0]-0.1) > 1e-9 {
		t.Errorf("returns[0] = %f, want 0.1", returns[0])
	}
	if math.Abs(returns[1]-(0.99/1.1-1)) > 1e-9 {
		t.Errorf("returns[1] = %f, want %f", returns[1], 0.99/1.1-1)
	}

	if short := (EquityCurve{{Date: day(0), Value: 1}}).DailyReturns(); short != nil {
		t.Errorf("single-point curve should have no returns, got %v", short)
	}
}

func TestEquityCurve_Tail(t *testing.T) {
	curve := EquityCurve{
		{Date: day(0), Value: 1.0},
		{Date: day(1), Value: 2.0},
		{Date: day(2), Value: 4.0},
	}

	tail := curve.Tail(2)
	if len(tail) != 2 {
		t.Fatalf("expected 2 points, got %d", len(tail))
	}
	if tail[0].Value != 1.0 {
		t.Errorf("tail must renormalize to 1.0, got %f", tail[0].Value)
	}
	if tail[1].Value != 2.0 {
		t.Errorf("tail[1] = %f, want 2.0", tail[1].Value)
	}

	// n beyond length returns the whole curve
	whole := curve.Tail(10)
	if len(whole) != 3 || whole[0].Value != 1.0 {
		t.Errorf("oversized tail should return whole renormalized curve, got %v", whole)
	}
}

func TestAlign(t *testing.T) {
	a := PriceSeries{Symbol: "BTC-USD", Points: []PricePoint{
		{Date: day(0), Close: 100},
		{Date: day(1), Close: 101},
		{Date: day(2), Close: 102},
		{Date: day(4), Close: 104},
	}}
	b := PriceSeries{Symbol: "ETH-USD", Points: []PricePoint{
		{Date: day(1), Close: 10},
		{Date: day(2), Close: 11},
		{Date: day(3), Close: 12},
		{Date: day(4), Close: 13},
	}}

	alignedA, alignedB := Align(a, b)

	if alignedA.Len() != 3 || alignedB.Len() != 3 {
		t.Fatalf("aligned lengths = %d, %d, want 3, 3", alignedA.Len(), alignedB.Len())
	}
	for i := range alignedA.Points {
		if !alignedA.Points[i].Date.Equal(alignedB.Points[i].Date) {
			t.Errorf("aligned dates differ at %d", i)
		}
	}
	if alignedA.Points[2].Close != 104 || alignedB.Points[2].Close != 13 {
		t.Errorf("aligned closes wrong: %v %v", alignedA.Points[2], alignedB.Points[2])
	}
}

func TestStrategies_Order(t *testing.T) {
	strategies := Strategies()
	expected := []string{"btc_only", "eth_only", "rebalance_50_50", "rebalance_60_40"}

	if len(strategies) != len(expected) {
		t.Fatalf("expected %d strategies, got %d", len(expected), len(strategies))
	}
	for i, s := range strategies {
		if string(s) != expected[i] {
			t.Errorf("strategies[%d] = %s, want %s", i, s, expected[i])
		}
	}
}

func TestSnapshot_Result(t *testing.T) {
	snap := &Snapshot{
		Strategies: []StrategyResult{
			{Strategy: StrategyBTCOnly, Window: 20},
			{Strategy: StrategyETHOnly, Window: 35},
		},
	}

	if r := snap.Result(StrategyETHOnly); r == nil || r.Window != 35 {
		t.Errorf("Result(eth_only) = %+v, want window 35", r)
	}
	if r := snap.Result(StrategyRebalance5050); r != nil {
		t.Errorf("missing strategy should return nil, got %+v", r)
	}
}
