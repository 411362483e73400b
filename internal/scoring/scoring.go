// Package scoring ranks candidate moving-average windows by combining
// per-subperiod performance metrics into one scalar.
//
// Three factors shape the score. Recent subperiods outweigh old ones
// (exponential age decay). Returns earned in abnormally volatile
// subperiods are dampened. The split between return quality and
// drawdown protection shifts toward return for candidates whose
// Sortino ranks high among their peers in that subperiod.
package scoring

import (
	"math"

	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/core"
)

// Config holds the weighting constants. Zero values are replaced by
// the documented defaults.
type Config struct {
	Subperiods       []int   // trailing days per subperiod, shortest first
	DecayRate        float64 // per-year exponential age decay
	VolReference     float64 // annualized volatility above which returns dampen
	BaseReturnWeight float64 // return share of the quality blend
	RankWeightSpan   float64 // extra return share granted to the top Sortino rank
}

// Defaults are applied for unset fields.
var Defaults = Config{
	Subperiods:       []int{90, 180, 365},
	DecayRate:        1.0,
	VolReference:     0.80,
	BaseReturnWeight: 0.35,
	RankWeightSpan:   0.30,
}

func (c Config) withDefaults() Config {
	if len(c.Subperiods) == 0 {
		c.Subperiods = Defaults.Subperiods
	}
	if c.DecayRate == 0 {
		c.DecayRate = Defaults.DecayRate
	}
	if c.VolReference == 0 {
		c.VolReference = Defaults.VolReference
	}
	if c.BaseReturnWeight == 0 {
		c.BaseReturnWeight = Defaults.BaseReturnWeight
	}
	if c.RankWeightSpan == 0 {
		c.RankWeightSpan = Defaults.RankWeightSpan
	}
	return c
}

// Candidate carries one window's metrics per subperiod, in the same
// order as Config.Subperiods.
type Candidate struct {
	Window  int
	Periods []core.PerformanceMetrics
}

// Score computes the combined score for every candidate. Candidates
// are scored jointly because the dynamic return weight depends on each
// candidate's Sortino rank among its peers per subperiod. The result
// is index-aligned with the input. Deterministic: no map iteration,
// no randomness.
func Score(cfg Config, candidates []Candidate) []float64 {
	cfg = cfg.withDefaults()
	scores := make([]float64, len(candidates))

	for i, cand := range candidates {
		var weighted, totalWeight float64

		for p, days := range cfg.Subperiods {
			if p >= len(cand.Periods) {
				break
			}
			m := cand.Periods[p]

			quality := subperiodQuality(cfg, m, sortinoRank(candidates, i, p))
			age := math.Exp(-cfg.DecayRate * float64(days) / 365.0)

			weighted += age * quality
			totalWeight += age
		}

		if totalWeight > 0 {
			scores[i] = weighted / totalWeight
		}
	}

	return scores
}

// subperiodQuality blends volatility-dampened return against drawdown
// protection. The rank bonus on the return weight only applies when
// the return term is at least the protection term, which keeps the
// score monotonic in Sortino and CAGR.
func subperiodQuality(cfg Config, m core.PerformanceMetrics, rank float64) float64 {
	dampener := 1.0
	if cfg.VolReference > 0 && m.Volatility > cfg.VolReference {
		dampener = m.Volatility / cfg.VolReference
	}
	returnQuality := m.CAGR / dampener
	protection := 1 + m.MaxDrawdown // MDD in [-1, 0], so this lands in [0, 1]

	returnWeight := cfg.BaseReturnWeight
	if returnQuality >= protection {
		returnWeight += cfg.RankWeightSpan * rank
	}

	return returnWeight*returnQuality + (1-returnWeight)*protection
}

// sortinoRank is the fraction of peers with strictly lower Sortino in
// subperiod p, in [0, 1]. A peerless candidate ranks 1.0.
func sortinoRank(candidates []Candidate, i, p int) float64 {
	peers, lower := 0, 0
	for j, other := range candidates {
		if j == i || p >= len(other.Periods) {
			continue
		}
		peers++
		if other.Periods[p].Sortino < candidates[i].Periods[p].Sortino {
			lower++
		}
	}
	if peers == 0 {
		return 1.0
	}
	return float64(lower) / float64(peers)
}
