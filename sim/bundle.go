package sim

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ScenarioBundle is a YAML-loadable environment definition: a tier fleet plus
// reward weights and episode parameters. Nil pointer fields mean "not set in
// YAML" — they do not override the defaults from DefaultConfig.
type ScenarioBundle struct {
	Tiers         []TierYAML  `yaml:"tiers"`
	Reward        *RewardYAML `yaml:"reward"`
	EpisodeLength *int        `yaml:"episode_length"`
	Budget        *float64    `yaml:"budget"`
	MaxQueueDepth *float64    `yaml:"max_queue_depth"`
}

// TierYAML is the YAML shape of one tier entry.
type TierYAML struct {
	Name        string  `yaml:"name"`
	CostPerCall float64 `yaml:"cost_per_call"`
	LatencyMean float64 `yaml:"latency_mean"`
	LatencyStd  float64 `yaml:"latency_std"`
	Quality     float64 `yaml:"quality"`
}

// RewardYAML is the YAML shape of the reward weight block.
type RewardYAML struct {
	CostWeight         *float64 `yaml:"cost_weight"`
	QualityWeight      *float64 `yaml:"quality_weight"`
	LatencyPenalty     *float64 `yaml:"latency_penalty"`
	SLAThreshold       *float64 `yaml:"sla_threshold"`
	QualityMissPenalty *float64 `yaml:"quality_miss_penalty"`
}

// LoadScenarioBundle reads and parses a YAML scenario file with strict field
// checking, so typos in keys cause errors instead of silent defaults.
func LoadScenarioBundle(path string) (*ScenarioBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}
	var bundle ScenarioBundle
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&bundle); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}
	return &bundle, nil
}

// Apply overlays the bundle's set fields onto base and validates the result.
func (b *ScenarioBundle) Apply(base Config) (Config, error) {
	cfg := base
	if len(b.Tiers) > 0 {
		tiers := make([]TierConfig, len(b.Tiers))
		for i, t := range b.Tiers {
			tiers[i] = TierConfig{
				Name:        t.Name,
				CostPerCall: t.CostPerCall,
				LatencyMean: t.LatencyMean,
				LatencyStd:  t.LatencyStd,
				Quality:     t.Quality,
			}
		}
		cfg.Tiers = tiers
	}
	if b.Reward != nil {
		if b.Reward.CostWeight != nil {
			cfg.Reward.CostWeight = *b.Reward.CostWeight
		}
		if b.Reward.QualityWeight != nil {
			cfg.Reward.QualityWeight = *b.Reward.QualityWeight
		}
		if b.Reward.LatencyPenalty != nil {
			cfg.Reward.LatencyPenalty = *b.Reward.LatencyPenalty
		}
		if b.Reward.SLAThreshold != nil {
			cfg.Reward.SLAThreshold = *b.Reward.SLAThreshold
		}
		if b.Reward.QualityMissPenalty != nil {
			cfg.Reward.QualityMissPenalty = *b.Reward.QualityMissPenalty
		}
	}
	if b.EpisodeLength != nil {
		cfg.EpisodeLength = *b.EpisodeLength
	}
	if b.Budget != nil {
		cfg.Budget = *b.Budget
	}
	if b.MaxQueueDepth != nil {
		cfg.MaxQueueDepth = *b.MaxQueueDepth
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("scenario config: %w", err)
	}
	return cfg, nil
}
