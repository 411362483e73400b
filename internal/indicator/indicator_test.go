package indicator

import (
	"testing"
)

func TestSMA_Calculate(t *testing.T) {
	prices := []float64{10, 11, 12, 13, 14, 15}

	sma := SMA(prices, 3)

	// SMA(3) for [10,11,12,13,14,15]:
	// [0] = (10+11+12)/3 = 11
	// [1] = (11+12+13)/3 = 12
	// [2] = (12+13+14)/3 = 13
	// [3] = (13+14+15)/3 = 14
	expected := []float64{11, 12, 13, 14}

	if len(sma) != len(expected) {
		t.Fatalf("expected %d values, got %d", len(expected), len(sma))
	}
	for i, v := range expected {
		if sma[i] != v {
			t.Errorf("sma[%d] = %f, want %f", i, sma[i], v)
		}
	}
}

func TestSMA_NotEnoughData(t *testing.T) {
	if sma := SMA([]float64{10, 11}, 5); len(sma) != 0 {
		t.Errorf("expected empty slice, got %d values", len(sma))
	}
	if sma := SMA([]float64{10, 11}, 0); len(sma) != 0 {
		t.Errorf("zero period should yield empty slice, got %d values", len(sma))
	}
}

func TestEMA_Calculate(t *testing.T) {
	prices := []float64{10, 11, 12, 13, 14, 15}
	ema := EMA(prices, 3)

	if len(ema) != 4 {
		t.Fatalf("expected 4 values, got %d", len(ema))
	}

	// First EMA = SMA = 11
	if ema[0] != 11 {
		t.Errorf("first EMA should equal SMA, got %f", ema[0])
	}

	for i := 1; i < len(ema); i++ {
		if ema[i] <= ema[i-1] {
			t.Errorf("EMA should be increasing, ema[%d]=%f <= ema[%d]=%f", i, ema[i], i-1, ema[i-1])
		}
	}
}

func TestMovingAverage_Dispatch(t *testing.T) {
	prices := []float64{10, 11, 12, 13, 14, 15}

	sma := MovingAverage(TypeSMA, prices, 3)
	ema := MovingAverage(TypeEMA, prices, 3)

	if len(sma) != len(ema) {
		t.Fatalf("sma and ema lengths differ: %d vs %d", len(sma), len(ema))
	}

	// Beyond the seed value the two types must diverge on this input.
	diverged := false
	for i := 1; i < len(sma); i++ {
		if sma[i] != ema[i] {
			diverged = true
		}
	}
	if !diverged {
		t.Error("expected SMA and EMA to diverge after the seed value")
	}
}

func TestType_Valid(t *testing.T) {
	tests := []struct {
		typ  Type
		want bool
	}{
		{TypeSMA, true},
		{TypeEMA, true},
		{Type("wma"), false},
		{Type(""), false},
	}

	for _, tt := range tests {
		if got := tt.typ.Valid(); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.typ, got, tt.want)
		}
	}
}
