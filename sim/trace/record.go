// Package trace provides rollout step recording and summary statistics.
// This package has no dependency on sim/ — it stores pure data types.
package trace

// StepRecord captures one routing decision and its sampled outcome.
type StepRecord struct {
	Episode         int
	Step            int // 1-based step index within the episode
	Action          int
	TierName        string
	Reward          float64
	Cost            float64
	Quality         float64
	QualityRequired float64
	Latency         float64
	SLAViolated     bool
	BudgetRemaining float64
}
