package sim

import (
	"fmt"
	"math"
	"math/rand"
)

// minLatency is the floor applied to sampled latencies so a wide spread can
// never produce a non-positive value. There is no upper cap: tail latencies
// are a legitimate signal to the reward function.
const minLatency = 0.01

// qualityNoiseStd is the std dev of the zero-mean Gaussian perturbation
// applied to effective quality.
const qualityNoiseStd = 0.02

// TierConfig describes one backend service tier. Immutable after construction;
// a fixed ordered collection of tiers defines the action space (action = index).
type TierConfig struct {
	Name        string  // unique identifier within a collection
	CostPerCall float64 // currency units, deterministic per call
	LatencyMean float64 // seconds
	LatencyStd  float64 // seconds
	Quality     float64 // base quality score in [0,1]
}

// Validate checks the tier's own invariants.
func (t TierConfig) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("tier name must be non-empty")
	}
	if t.CostPerCall < 0 {
		return fmt.Errorf("tier %q: cost_per_call must be non-negative, got %f", t.Name, t.CostPerCall)
	}
	if t.Quality < 0 || t.Quality > 1 {
		return fmt.Errorf("tier %q: quality must be in [0,1], got %f", t.Name, t.Quality)
	}
	if t.LatencyStd < 0 {
		return fmt.Errorf("tier %q: latency_std must be non-negative, got %f", t.Name, t.LatencyStd)
	}
	return nil
}

// SampleLatency draws a latency from Normal(LatencyMean, LatencyStd),
// floored at minLatency. Consumes exactly one normal draw.
func (t TierConfig) SampleLatency(rng *rand.Rand) float64 {
	raw := rng.NormFloat64()*t.LatencyStd + t.LatencyMean
	return math.Max(minLatency, raw)
}

// SampleQuality draws the effective quality delivered for a request of the
// given complexity. Complexity amplifies the gap between the tier's base
// quality and perfect quality: simple requests look similar across tiers,
// hard requests expose the difference. Consumes exactly one normal draw.
func (t TierConfig) SampleQuality(complexity float64, rng *rand.Rand) float64 {
	gap := 1.0 - t.Quality
	effective := 1.0 - gap*(0.5+0.5*complexity)
	noise := rng.NormFloat64() * qualityNoiseStd
	return clip(effective+noise, 0.0, 1.0)
}

// DefaultTiers returns the five preset tiers spanning the cost/latency/quality
// trade-off frontier, from a premium large-model tier down to an inexpensive
// open one. Callers get a fresh slice each time.
func DefaultTiers() []TierConfig {
	return []TierConfig{
		{Name: "tier1-large", CostPerCall: 0.030, LatencyMean: 2.0, LatencyStd: 0.5, Quality: 0.95},
		{Name: "tier1-small", CostPerCall: 0.003, LatencyMean: 0.5, LatencyStd: 0.1, Quality: 0.82},
		{Name: "tier2-large", CostPerCall: 0.015, LatencyMean: 1.5, LatencyStd: 0.4, Quality: 0.90},
		{Name: "tier2-small", CostPerCall: 0.001, LatencyMean: 0.3, LatencyStd: 0.08, Quality: 0.75},
		{Name: "open-source", CostPerCall: 0.0005, LatencyMean: 0.8, LatencyStd: 0.3, Quality: 0.70},
	}
}

// ValidateTiers checks a tier collection: at least one tier, per-tier
// invariants, and name uniqueness.
func ValidateTiers(tiers []TierConfig) error {
	if len(tiers) == 0 {
		return fmt.Errorf("tier collection must not be empty")
	}
	seen := make(map[string]bool, len(tiers))
	for i, t := range tiers {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("tier %d: %w", i, err)
		}
		if seen[t.Name] {
			return fmt.Errorf("duplicate tier name %q", t.Name)
		}
		seen[t.Name] = true
	}
	return nil
}

// clip bounds v to [lo, hi].
func clip(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
