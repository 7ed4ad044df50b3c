package sim

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSimulator(t *testing.T, mutate func(*Config)) *Simulator {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := NewSimulator(cfg)
	require.NoError(t, err)
	return s
}

func TestNewSimulator_RejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no tiers", func(c *Config) { c.Tiers = nil }},
		{"zero episode length", func(c *Config) { c.EpisodeLength = 0 }},
		{"negative budget", func(c *Config) { c.Budget = -1 }},
		{"zero max queue depth", func(c *Config) { c.MaxQueueDepth = 0 }},
		{"nan weight", func(c *Config) { c.Reward.CostWeight = math.NaN() }},
		{"bad tier", func(c *Config) { c.Tiers[0].Quality = 2.0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := NewSimulator(cfg)
			assert.Error(t, err)
		})
	}
}

func TestSimulator_Shape(t *testing.T) {
	s := newTestSimulator(t, nil)
	assert.Equal(t, 5, s.NumTiers())
	assert.Equal(t, 2+5+3, s.ObservationDim())

	obs, info := s.ResetSeed(0)
	assert.Len(t, obs, s.ObservationDim())
	assert.Empty(t, info)
}

func TestStep_BeforeResetFails(t *testing.T) {
	s := newTestSimulator(t, nil)
	_, err := s.Step(0)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestStep_InvalidAction(t *testing.T) {
	s := newTestSimulator(t, nil)
	s.ResetSeed(0)

	for _, action := range []int{-1, 5, 100} {
		_, err := s.Step(action)
		var invalid *InvalidActionError
		require.ErrorAs(t, err, &invalid, "action %d", action)
		assert.Equal(t, action, invalid.Action)
		assert.Equal(t, 5, invalid.NumTiers)
	}

	// A failed step must not advance the episode.
	assert.Equal(t, 0, s.StepCount())
}

func TestStep_AfterTerminationFails(t *testing.T) {
	s := newTestSimulator(t, func(c *Config) { c.EpisodeLength = 1 })
	s.ResetSeed(0)

	result, err := s.Step(0)
	require.NoError(t, err)
	require.True(t, result.Terminated)

	_, err = s.Step(0)
	assert.ErrorIs(t, err, ErrEpisodeTerminated)

	// Reset is the only way out of the terminated state.
	s.ResetSeed(1)
	_, err = s.Step(0)
	assert.NoError(t, err)
}

func TestObservation_BoundsAcrossEpisode(t *testing.T) {
	s := newTestSimulator(t, func(c *Config) { c.EpisodeLength = 200 })
	actionRNG := rand.New(rand.NewSource(123))

	for ep := 0; ep < 3; ep++ {
		obs, _ := s.ResetSeed(int64(ep))
		for {
			for i, v := range obs {
				if v < 0.0 || v > 1.0 {
					t.Fatalf("episode %d: obs[%d] = %v out of [0,1]", ep, i, v)
				}
			}
			result, err := s.Step(actionRNG.Intn(s.NumTiers()))
			require.NoError(t, err)
			obs = result.Observation
			if result.Terminated {
				break
			}
		}
	}
}

func TestBudget_MonotonicNonIncreasing(t *testing.T) {
	s := newTestSimulator(t, func(c *Config) { c.EpisodeLength = 300 })
	s.ResetSeed(7)

	prev := s.BudgetRemaining()
	assert.Equal(t, DefaultBudget, prev)
	for i := 0; i < 300; i++ {
		result, err := s.Step(i % s.NumTiers())
		require.NoError(t, err)
		budget := result.Info[InfoBudgetRemaining].(float64)
		assert.LessOrEqual(t, budget, prev, "step %d: budget increased", i+1)
		assert.GreaterOrEqual(t, budget, 0.0, "step %d: budget went negative", i+1)
		prev = budget
		if result.Terminated {
			break
		}
	}
}

func TestQueueDepths_StayBounded(t *testing.T) {
	s := newTestSimulator(t, func(c *Config) {
		c.EpisodeLength = 500
		c.MaxQueueDepth = 5.0 // low cap so the exponential increments press against it
	})
	s.ResetSeed(11)

	for i := 0; i < 500; i++ {
		// Hammer one tier to drive its queue toward the cap.
		result, err := s.Step(0)
		require.NoError(t, err)
		for tierIdx, depth := range s.QueueDepths() {
			if depth < 0 || depth > 5.0 {
				t.Fatalf("step %d: queue[%d] = %v out of [0, 5]", i+1, tierIdx, depth)
			}
		}
		if result.Terminated {
			break
		}
	}
}

func TestTermination_ExactlyAtEpisodeLength(t *testing.T) {
	// episode_length=20 with ample budget: terminated flips exactly at step 20.
	s := newTestSimulator(t, func(c *Config) {
		c.EpisodeLength = 20
		c.Budget = 1000.0
	})
	s.ResetSeed(0)

	for i := 1; i <= 20; i++ {
		result, err := s.Step(4) // cheapest tier, budget never runs out
		require.NoError(t, err)
		if i < 20 {
			assert.False(t, result.Terminated, "terminated early at step %d", i)
		} else {
			assert.True(t, result.Terminated, "not terminated at step 20")
		}
		assert.False(t, result.Truncated)
	}
}

func TestTermination_BudgetExhaustion(t *testing.T) {
	// budget=0.003 and always the 0.030 tier: terminates after step 1.
	s := newTestSimulator(t, func(c *Config) {
		c.EpisodeLength = 10000
		c.Budget = 0.003
	})
	s.ResetSeed(0)

	result, err := s.Step(0) // tier1-large, cost 0.030
	require.NoError(t, err)
	assert.True(t, result.Terminated, "episode should end when the budget is exhausted")
	assert.Equal(t, 0.0, result.Info[InfoBudgetRemaining].(float64))
	assert.Equal(t, 1, s.StepCount())
}

func TestStep_InfoKeys(t *testing.T) {
	s := newTestSimulator(t, nil)
	s.ResetSeed(0)
	served := s.pending

	result, err := s.Step(2)
	require.NoError(t, err)

	for _, key := range []string{
		InfoCost, InfoQuality, InfoLatency, InfoTierName,
		InfoBudgetRemaining, InfoQualityRequired, InfoSLAViolated,
	} {
		assert.Contains(t, result.Info, key)
	}
	assert.Equal(t, "tier2-large", result.Info[InfoTierName])
	assert.Equal(t, 0.015, result.Info[InfoCost])
	// The info reports the requirement of the request that was just served,
	// not the next pending one.
	assert.Equal(t, served.QualityRequired, result.Info[InfoQualityRequired])
	assert.Equal(t,
		result.Info[InfoLatency].(float64) > s.cfg.Reward.SLAThreshold,
		result.Info[InfoSLAViolated].(bool))
}

func TestStep_RewardMatchesInfoUnderZeroedPenalties(t *testing.T) {
	s := newTestSimulator(t, func(c *Config) {
		c.Reward = RewardConfig{CostWeight: 2.0, QualityWeight: 1.0}
	})
	s.ResetSeed(42)

	result, err := s.Step(0)
	require.NoError(t, err)
	expected := -2.0*result.Info[InfoCost].(float64) + result.Info[InfoQuality].(float64)
	assert.InDelta(t, expected, result.Reward, 1e-9)
}

func TestStep_RewardFinite(t *testing.T) {
	s := newTestSimulator(t, func(c *Config) { c.EpisodeLength = 200 })
	s.ResetSeed(5)
	actionRNG := rand.New(rand.NewSource(9))
	for {
		result, err := s.Step(actionRNG.Intn(s.NumTiers()))
		require.NoError(t, err)
		if math.IsNaN(result.Reward) || math.IsInf(result.Reward, 0) {
			t.Fatalf("non-finite reward %v at step %d", result.Reward, s.StepCount())
		}
		if result.Terminated {
			break
		}
	}
}

func TestDeterminism_IdenticalSeedIdenticalTrajectory(t *testing.T) {
	// Two instances, same seed, same action sequence: observation and reward
	// sequences must match exactly, element for element.
	mkActions := func() []int {
		rng := rand.New(rand.NewSource(77))
		actions := make([]int, 150)
		for i := range actions {
			actions[i] = rng.Intn(5)
		}
		return actions
	}

	run := func() ([][]float64, []float64) {
		s := newTestSimulator(t, func(c *Config) { c.EpisodeLength = 150 })
		obs, _ := s.ResetSeed(2024)
		allObs := [][]float64{obs}
		var rewards []float64
		for _, a := range mkActions() {
			result, err := s.Step(a)
			require.NoError(t, err)
			allObs = append(allObs, result.Observation)
			rewards = append(rewards, result.Reward)
			if result.Terminated {
				break
			}
		}
		return allObs, rewards
	}

	obs1, rewards1 := run()
	obs2, rewards2 := run()
	assert.Equal(t, obs1, obs2, "observation sequences diverged")
	assert.Equal(t, rewards1, rewards2, "reward sequences diverged")
}

func TestDeterminism_DifferentSeedsDiverge(t *testing.T) {
	s1 := newTestSimulator(t, nil)
	s2 := newTestSimulator(t, nil)
	obs1, _ := s1.ResetSeed(1)
	obs2, _ := s2.ResetSeed(2)
	assert.NotEqual(t, obs1, obs2)
}

func TestReset_NoStateLeakage(t *testing.T) {
	s := newTestSimulator(t, nil)

	obs1, _ := s.ResetSeed(3)
	// Burn through part of an episode, then reset with the same seed.
	for i := 0; i < 50; i++ {
		_, err := s.Step(i % s.NumTiers())
		require.NoError(t, err)
	}
	obs2, _ := s.ResetSeed(3)

	assert.Equal(t, obs1, obs2, "reset must not leak state from the prior episode")
	assert.Equal(t, 0, s.StepCount())
	assert.Equal(t, DefaultBudget, s.BudgetRemaining())
}

func TestReset_UsesConfiguredSeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 99
	s, err := NewSimulator(cfg)
	require.NoError(t, err)

	obsDefault, _ := s.Reset()
	obsExplicit, _ := s.ResetSeed(99)
	assert.Equal(t, obsExplicit, obsDefault)
}

func TestObservation_Layout(t *testing.T) {
	s := newTestSimulator(t, nil)
	obs, _ := s.ResetSeed(8)

	k := s.NumTiers()
	assert.Equal(t, s.pending.Length, obs[0])
	assert.Equal(t, s.pending.Complexity, obs[1])
	maxDepth := s.cfg.MaxQueueDepth
	for i, depth := range s.QueueDepths() {
		assert.InDelta(t, depth/maxDepth, obs[2+i], 1e-12)
	}
	assert.Equal(t, s.TimeOfDay(), obs[2+k])
	assert.Equal(t, 1.0, obs[2+k+1]) // full budget at reset
	assert.Equal(t, s.pending.QualityRequired, obs[2+k+2])
}

func TestTimeOfDay_AdvancesAndWraps(t *testing.T) {
	s := newTestSimulator(t, func(c *Config) { c.EpisodeLength = 3000 })
	s.ResetSeed(13)

	prev := s.TimeOfDay()
	for i := 0; i < 2000; i++ {
		_, err := s.Step(4)
		require.NoError(t, err)
		tod := s.TimeOfDay()
		if tod < 0 || tod >= 1 {
			t.Fatalf("step %d: time_of_day %v out of [0,1)", i+1, tod)
		}
		delta := tod - prev
		if delta < 0 {
			delta += 1.0 // wrapped past midnight
		}
		assert.InDelta(t, 1.0/1440.0, delta, 1e-9, "step %d", i+1)
		prev = tod
	}
}

func TestClose_NoOp(t *testing.T) {
	s := newTestSimulator(t, nil)
	assert.NoError(t, s.Close())
	// Close holds no resources; the simulator remains usable.
	s.ResetSeed(0)
	_, err := s.Step(0)
	assert.NoError(t, err)
}

func TestConfig_ReturnsCopy(t *testing.T) {
	s := newTestSimulator(t, nil)
	cfg := s.Config()
	cfg.Budget = -100
	assert.Equal(t, DefaultBudget, s.Config().Budget)
}

func TestWrapUnit(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.0, 0.0},
		{0.5, 0.5},
		{1.0, 0.0},
		{1.25, 0.25},
		{2.75, 0.75},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, wrapUnit(tt.in), 1e-12, "wrapUnit(%v)", tt.in)
	}
}
