package scoring

import (
	"testing"

	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/core"
)

func metricsWith(cagr, mdd, sortino, vol float64) core.PerformanceMetrics {
	return core.PerformanceMetrics{
		CAGR:        cagr,
		MaxDrawdown: mdd,
		Sortino:     sortino,
		Volatility:  vol,
	}
}

func TestScore_PrefersBetterRecentPerformance(t *testing.T) {
	good := Candidate{Window: 10, Periods: []core.PerformanceMetrics{
		metricsWith(0.8, -0.1, 2.5, 0.5),
		metricsWith(0.5, -0.2, 1.5, 0.5),
		metricsWith(0.3, -0.3, 1.0, 0.5),
	}}
	bad := Candidate{Window: 20, Periods: []core.PerformanceMetrics{
		metricsWith(-0.2, -0.5, -1.0, 0.5),
		metricsWith(-0.1, -0.4, -0.5, 0.5),
		metricsWith(0.0, -0.4, 0.0, 0.5),
	}}

	scores := Score(Config{}, []Candidate{good, bad})
	if scores[0] <= scores[1] {
		t.Errorf("better candidate scored %f, worse scored %f", scores[0], scores[1])
	}
}

func TestScore_MonotonicInRecentSortino(t *testing.T) {
	base := []Candidate{
		{Window: 10, Periods: []core.PerformanceMetrics{
			metricsWith(0.4, -0.2, 1.0, 0.6),
			metricsWith(0.3, -0.25, 0.8, 0.6),
			metricsWith(0.2, -0.3, 0.6, 0.6),
		}},
		{Window: 20, Periods: []core.PerformanceMetrics{
			metricsWith(0.35, -0.2, 1.2, 0.6),
			metricsWith(0.3, -0.25, 0.8, 0.6),
			metricsWith(0.2, -0.3, 0.6, 0.6),
		}},
		{Window: 30, Periods: []core.PerformanceMetrics{
			metricsWith(0.3, -0.2, 0.5, 0.6),
			metricsWith(0.3, -0.25, 0.8, 0.6),
			metricsWith(0.2, -0.3, 0.6, 0.6),
		}},
	}

	before := Score(Config{}, base)[0]

	// Raise only the most recent subperiod's Sortino of candidate 0.
	for _, sortino := range []float64{1.1, 1.5, 3.0, 10.0} {
		raised := make([]Candidate, len(base))
		copy(raised, base)
		periods := make([]core.PerformanceMetrics, len(base[0].Periods))
		copy(periods, base[0].Periods)
		periods[0].Sortino = sortino
		raised[0] = Candidate{Window: 10, Periods: periods}

		after := Score(Config{}, raised)[0]
		if after < before {
			t.Errorf("score decreased from %f to %f when Sortino rose to %f", before, after, sortino)
		}
		before = after
	}
}

func TestScore_MonotonicInRecentCAGR(t *testing.T) {
	cand := func(cagr float64) Candidate {
		return Candidate{Window: 10, Periods: []core.PerformanceMetrics{
			metricsWith(cagr, -0.2, 1.0, 0.6),
			metricsWith(0.3, -0.25, 0.8, 0.6),
		}}
	}
	peer := Candidate{Window: 20, Periods: []core.PerformanceMetrics{
		metricsWith(0.2, -0.3, 0.5, 0.6),
		metricsWith(0.2, -0.3, 0.5, 0.6),
	}}

	prev := -1e9
	for _, cagr := range []float64{-0.5, 0.0, 0.4, 0.8, 1.5, 3.0} {
		score := Score(Config{}, []Candidate{cand(cagr), peer})[0]
		if score < prev {
			t.Errorf("score decreased to %f at CAGR %f", score, cagr)
		}
		prev = score
	}
}

func TestScore_RecentOutweighsOld(t *testing.T) {
	// Identical magnitudes, opposite placement: strength in the recent
	// subperiod must beat strength in the oldest.
	recentStrong := Candidate{Window: 10, Periods: []core.PerformanceMetrics{
		metricsWith(0.6, -0.1, 2.0, 0.5),
		metricsWith(0.1, -0.4, 0.2, 0.5),
		metricsWith(0.1, -0.4, 0.2, 0.5),
	}}
	oldStrong := Candidate{Window: 20, Periods: []core.PerformanceMetrics{
		metricsWith(0.1, -0.4, 0.2, 0.5),
		metricsWith(0.1, -0.4, 0.2, 0.5),
		metricsWith(0.6, -0.1, 2.0, 0.5),
	}}

	scores := Score(Config{}, []Candidate{recentStrong, oldStrong})
	if scores[0] <= scores[1] {
		t.Errorf("recent strength %f should beat old strength %f", scores[0], scores[1])
	}
}

func TestScore_VolatilityDampensReturns(t *testing.T) {
	calm := Candidate{Window: 10, Periods: []core.PerformanceMetrics{
		metricsWith(0.5, -0.2, 1.0, 0.4),
	}}
	// Same raw return, earned through triple the volatility.
	wild := Candidate{Window: 20, Periods: []core.PerformanceMetrics{
		metricsWith(0.5, -0.2, 1.0, 2.4),
	}}

	scores := Score(Config{}, []Candidate{calm, wild})
	if scores[0] <= scores[1] {
		t.Errorf("calm candidate %f should beat volatile candidate %f", scores[0], scores[1])
	}
}

func TestScore_Deterministic(t *testing.T) {
	candidates := []Candidate{
		{Window: 10, Periods: []core.PerformanceMetrics{metricsWith(0.4, -0.2, 1.0, 0.6)}},
		{Window: 20, Periods: []core.PerformanceMetrics{metricsWith(0.3, -0.1, 1.2, 0.5)}},
		{Window: 30, Periods: []core.PerformanceMetrics{metricsWith(0.5, -0.3, 0.8, 0.9)}},
	}

	first := Score(Config{}, candidates)
	for run := 0; run < 10; run++ {
		again := Score(Config{}, candidates)
		for i := range first {
			if first[i] != again[i] {
				t.Fatalf("score[%d] varies across runs: %f vs %f", i, first[i], again[i])
			}
		}
	}
}

func TestScore_EmptyAndPeerless(t *testing.T) {
	if scores := Score(Config{}, nil); len(scores) != 0 {
		t.Errorf("no candidates should yield no scores, got %v", scores)
	}

	solo := []Candidate{{Window: 10, Periods: []core.PerformanceMetrics{
		metricsWith(0.4, -0.2, 1.0, 0.6),
	}}}
	scores := Score(Config{}, solo)
	if len(scores) != 1 {
		t.Fatalf("expected 1 score, got %d", len(scores))
	}
	// A peerless candidate must still get a finite score.
	if scores[0] == 0 {
		t.Error("peerless candidate should still be scored")
	}
}
