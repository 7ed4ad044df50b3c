package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/router-sim/router-sim/sim"
	"github.com/router-sim/router-sim/sim/policy"
	"github.com/router-sim/router-sim/sim/trace"
)

var (
	// CLI flags for the rollout command
	seed          int64   // Master seed; episode e reseeds with seed+e
	episodes      int     // Number of episodes to roll out
	episodeLength int     // Steps per episode
	budget        float64 // Cost budget per episode (currency units)
	maxQueueDepth float64 // Queue depth cap / normalization constant
	policyName    string  // Baseline policy name
	scenarioFile  string  // Optional YAML scenario bundle
	traceOut      string  // Optional CSV path for the step trace
	logLevel      string  // Log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "router-sim",
	Short: "Episode simulator for inference request routing",
}

// rolloutCmd runs seeded baseline-policy rollouts against the simulator
var rolloutCmd = &cobra.Command{
	Use:   "rollout",
	Short: "Roll out a baseline policy and report summary statistics",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg := sim.DefaultConfig()
		cfg.EpisodeLength = episodeLength
		cfg.Budget = budget
		cfg.MaxQueueDepth = maxQueueDepth
		cfg.Seed = seed

		if scenarioFile != "" {
			bundle, err := sim.LoadScenarioBundle(scenarioFile)
			if err != nil {
				logrus.Fatalf("Failed to load scenario: %v", err)
			}
			cfg, err = bundle.Apply(cfg)
			if err != nil {
				logrus.Fatalf("Invalid scenario: %v", err)
			}
		}

		if !policy.IsValidPolicy(policyName) {
			logrus.Fatalf("Unknown policy %q", policyName)
		}

		logrus.Infof("Starting rollout: policy=%s episodes=%d episode_length=%d budget=%.2f seed=%d",
			policyName, episodes, cfg.EpisodeLength, cfg.Budget, seed)

		rt, err := runRollout(cfg, policyName, episodes, seed)
		if err != nil {
			logrus.Fatalf("Rollout failed: %v", err)
		}

		summary := trace.Summarize(rt)
		logrus.Infof("Rollout complete: episodes=%d steps=%d mean_episode_reward=%.4f total_cost=%.4f sla_violation_rate=%.3f quality_miss_rate=%.3f tiers=%v",
			summary.Episodes, summary.TotalSteps, summary.MeanEpisodeReward,
			summary.TotalCost, summary.SLAViolationRate, summary.QualityMissRate,
			summary.TierDistribution)

		if traceOut != "" {
			if err := rt.WriteCSV(traceOut); err != nil {
				logrus.Fatalf("Failed to write trace: %v", err)
			}
			logrus.Infof("Wrote step trace to %s", traceOut)
		}
	},
}

// runRollout plays the named baseline policy for the given number of
// episodes, reseeding episode e with seed+e so runs are reproducible yet not
// identical across episodes.
func runRollout(cfg sim.Config, policyName string, episodes int, seed int64) (*trace.RolloutTrace, error) {
	registry := sim.NewRegistry()
	env, err := registry.Make(sim.DefaultEnvID, cfg)
	if err != nil {
		return nil, err
	}
	defer env.Close()

	rt := trace.NewRolloutTrace(trace.TraceLevelSteps)
	for ep := 0; ep < episodes; ep++ {
		epSeed := seed + int64(ep)
		obs, _ := env.ResetSeed(epSeed)

		// The policy draws from its own RNG subsystem so stochastic policies
		// never perturb the environment's streams.
		policyRNG := sim.NewPartitionedRNG(sim.NewSimulationKey(epSeed)).ForSubsystem(sim.SubsystemPolicy)
		pol, err := policy.NewPolicy(policyName, cfg.Tiers, policyRNG)
		if err != nil {
			return nil, err
		}

		for step := 1; ; step++ {
			action := pol.Decide(obs)
			result, err := env.Step(action)
			if err != nil {
				return nil, err
			}
			obs = result.Observation
			rt.RecordStep(trace.StepRecord{
				Episode:         ep,
				Step:            step,
				Action:          action,
				TierName:        result.Info[sim.InfoTierName].(string),
				Reward:          result.Reward,
				Cost:            result.Info[sim.InfoCost].(float64),
				Quality:         result.Info[sim.InfoQuality].(float64),
				QualityRequired: result.Info[sim.InfoQualityRequired].(float64),
				Latency:         result.Info[sim.InfoLatency].(float64),
				SLAViolated:     result.Info[sim.InfoSLAViolated].(bool),
				BudgetRemaining: result.Info[sim.InfoBudgetRemaining].(float64),
			})
			if result.Terminated || result.Truncated {
				break
			}
		}
		logrus.Debugf("episode %d finished after %d steps, budget left %.4f",
			ep, env.StepCount(), env.BudgetRemaining())
	}
	return rt, nil
}

func init() {
	rolloutCmd.Flags().Int64Var(&seed, "seed", 42, "Master random seed")
	rolloutCmd.Flags().IntVar(&episodes, "episodes", 10, "Number of episodes")
	rolloutCmd.Flags().IntVar(&episodeLength, "episode-length", sim.DefaultEpisodeLength, "Steps per episode")
	rolloutCmd.Flags().Float64Var(&budget, "budget", sim.DefaultBudget, "Cost budget per episode")
	rolloutCmd.Flags().Float64Var(&maxQueueDepth, "max-queue-depth", sim.DefaultMaxQueueDepth, "Queue depth cap")
	rolloutCmd.Flags().StringVar(&policyName, "policy", "random", "Baseline policy: random, round-robin, cheapest, premium")
	rolloutCmd.Flags().StringVar(&scenarioFile, "scenario", "", "YAML scenario bundle (tiers, reward weights, episode params)")
	rolloutCmd.Flags().StringVar(&traceOut, "trace-out", "", "Write per-step CSV trace to this path")
	rolloutCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.AddCommand(rolloutCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
