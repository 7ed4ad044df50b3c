package sim

import "math"

// RewardConfig holds the weights and thresholds for the routing reward.
// Weights may be zero or negative if the operator wants inverted incentives;
// cost always enters with a negative sign.
type RewardConfig struct {
	CostWeight         float64 // multiplier on incurred cost (subtracted)
	QualityWeight      float64 // multiplier on delivered quality (added)
	LatencyPenalty     float64 // multiplier on latency beyond the SLA threshold
	SLAThreshold       float64 // seconds; latency above this is a violation
	QualityMissPenalty float64 // multiplier on shortfall below the required quality
}

// DefaultRewardConfig returns the standard weight set.
func DefaultRewardConfig() RewardConfig {
	return RewardConfig{
		CostWeight:         1.0,
		QualityWeight:      0.5,
		LatencyPenalty:     2.0,
		SLAThreshold:       1.0,
		QualityMissPenalty: 1.0,
	}
}

// ComputeReward scores a single routing decision:
//
//	r = -cost_weight*cost + quality_weight*quality
//	    - latency_penalty*max(0, latency - sla_threshold)
//	    - quality_miss_penalty*max(0, quality_required - quality)
//
// Pure function, no state. Finite for all finite inputs.
func ComputeReward(cost, quality, latency, qualityRequired float64, cfg RewardConfig) float64 {
	latencyViolation := math.Max(0.0, latency-cfg.SLAThreshold)
	qualityShortfall := math.Max(0.0, qualityRequired-quality)
	return -cfg.CostWeight*cost +
		cfg.QualityWeight*quality -
		cfg.LatencyPenalty*latencyViolation -
		cfg.QualityMissPenalty*qualityShortfall
}
