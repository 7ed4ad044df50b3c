package trace

// RolloutSummary aggregates statistics from a RolloutTrace.
type RolloutSummary struct {
	Episodes          int
	TotalSteps        int
	MeanEpisodeReward float64
	MeanStepReward    float64
	TotalCost         float64
	SLAViolationRate  float64 // fraction of steps with latency over the SLA
	QualityMissRate   float64 // fraction of steps with quality below the requirement
	UniqueTiers       int
	TierDistribution  map[string]int // tier name → number of requests routed
}

// Summarize computes aggregate statistics from a RolloutTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(rt *RolloutTrace) *RolloutSummary {
	summary := &RolloutSummary{
		TierDistribution: make(map[string]int),
	}
	if rt == nil || len(rt.Steps) == 0 {
		return summary
	}

	episodes := make(map[int]bool)
	totalReward := 0.0
	slaViolations := 0
	qualityMisses := 0
	for _, s := range rt.Steps {
		episodes[s.Episode] = true
		totalReward += s.Reward
		summary.TotalCost += s.Cost
		summary.TierDistribution[s.TierName]++
		if s.SLAViolated {
			slaViolations++
		}
		if s.Quality < s.QualityRequired {
			qualityMisses++
		}
	}

	summary.Episodes = len(episodes)
	summary.TotalSteps = len(rt.Steps)
	summary.MeanStepReward = totalReward / float64(summary.TotalSteps)
	summary.MeanEpisodeReward = totalReward / float64(summary.Episodes)
	summary.SLAViolationRate = float64(slaViolations) / float64(summary.TotalSteps)
	summary.QualityMissRate = float64(qualityMisses) / float64(summary.TotalSteps)
	summary.UniqueTiers = len(summary.TierDistribution)

	return summary
}
