package sim

import (
	"fmt"
	"math"
)

// Default episode parameters.
const (
	DefaultEpisodeLength = 1000
	DefaultBudget        = 10.0
	DefaultMaxQueueDepth = 50.0
)

// Config groups all simulator construction parameters. The zero value is not
// usable; start from DefaultConfig and override fields as needed.
type Config struct {
	Tiers         []TierConfig // ordered action space (must be non-empty)
	Reward        RewardConfig
	EpisodeLength int     // prompts per episode (must be > 0)
	Budget        float64 // total cost budget per episode, currency units (must be > 0)
	MaxQueueDepth float64 // queue-depth cap and normalization constant (must be > 0)
	Seed          int64   // master seed used by Reset()
}

// DefaultConfig returns a Config with the preset tier fleet and standard
// reward weights.
func DefaultConfig() Config {
	return Config{
		Tiers:         DefaultTiers(),
		Reward:        DefaultRewardConfig(),
		EpisodeLength: DefaultEpisodeLength,
		Budget:        DefaultBudget,
		MaxQueueDepth: DefaultMaxQueueDepth,
		Seed:          0,
	}
}

// Validate checks all configuration invariants.
func (c Config) Validate() error {
	if err := ValidateTiers(c.Tiers); err != nil {
		return err
	}
	if c.EpisodeLength <= 0 {
		return fmt.Errorf("episode_length must be positive, got %d", c.EpisodeLength)
	}
	if c.Budget <= 0 {
		return fmt.Errorf("budget must be positive, got %f", c.Budget)
	}
	if c.MaxQueueDepth <= 0 {
		return fmt.Errorf("max_queue_depth must be positive, got %f", c.MaxQueueDepth)
	}
	for name, w := range map[string]float64{
		"cost_weight":          c.Reward.CostWeight,
		"quality_weight":       c.Reward.QualityWeight,
		"latency_penalty":      c.Reward.LatencyPenalty,
		"sla_threshold":        c.Reward.SLAThreshold,
		"quality_miss_penalty": c.Reward.QualityMissPenalty,
	} {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%s must be finite, got %f", name, w)
		}
	}
	return nil
}
