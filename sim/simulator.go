package sim

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// One step advances the simulated clock by one minute; 1440 steps = one day.
const timeStepFraction = 1.0 / 1440.0

// Initial queue depths are drawn uniformly from [0, initialQueueCeiling):
// episodes start lightly loaded, never empty-by-fiat.
const initialQueueCeiling = 0.2

// Mean of the exponential queue-depth increment applied to the chosen tier.
const queueIncrementMean = 2.0

// Per-step multiplicative queue decay is drawn uniformly from this range.
const (
	queueDecayMin = 0.90
	queueDecayMax = 0.98
)

// ErrNotInitialized is returned by Step when Reset has never been called.
var ErrNotInitialized = errors.New("simulator not initialized: call Reset before Step")

// ErrEpisodeTerminated is returned by Step once the episode has ended; the
// only valid transition out of a terminated episode is another Reset.
var ErrEpisodeTerminated = errors.New("episode terminated: call Reset to start a new episode")

// InvalidActionError reports an action outside the tier index range.
type InvalidActionError struct {
	Action   int
	NumTiers int
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("invalid action %d: must be in [0, %d)", e.Action, e.NumTiers)
}

// Info is the advisory diagnostics mapping returned by Reset and Step.
// Documented keys are always present in Step info; extra keys must never be
// load-bearing for episode semantics.
type Info map[string]any

// Documented Step info keys.
const (
	InfoCost            = "cost"
	InfoQuality         = "quality"
	InfoLatency         = "latency"
	InfoTierName        = "tier_name"
	InfoBudgetRemaining = "budget_remaining"
	InfoQualityRequired = "quality_required"
	InfoSLAViolated     = "sla_violated"
)

// StepResult bundles everything one Step returns.
type StepResult struct {
	Observation []float64
	Reward      float64
	Terminated  bool // episode ended (step limit or budget exhausted)
	Truncated   bool // always false: no external time-limit wrapper at this layer
	Info        Info
}

// Simulator simulates an inference-routing decision loop: at each step a
// controller assigns the pending request to one backend tier; the simulator
// samples the service outcome, advances the hidden dynamics (budget, queues,
// time of day), scores the decision, and produces the next observation.
//
// State machine: uninitialized → (Reset) → running → (termination) →
// terminated; only another Reset leaves the terminated state.
//
// Episode state is owned exclusively by one Simulator instance and must not
// be mutated concurrently. For parallel rollouts, instantiate one Simulator
// per rollout, each with its own seed.
//
// RNG draw order (fixed per call, audited by the determinism tests):
//
//	Reset: state[start-time uniform, k initial-queue uniforms],
//	       traffic[first request]
//	Step:  service[latency normal, quality-noise normal],
//	       state[queue-increment exponential, k decay uniforms],
//	       traffic[next request]
type Simulator struct {
	cfg     Config
	traffic *TrafficGenerator

	// episode state, valid only after Reset
	rng             *PartitionedRNG
	stepCount       int
	budgetRemaining float64
	queueDepths     []float64
	timeOfDay       float64 // [0,1), wraps
	pending         Request
	initialized     bool
	terminated      bool
}

// NewSimulator validates cfg and constructs a Simulator in the uninitialized
// state. Reset must be called before Step.
func NewSimulator(cfg Config) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulator config: %w", err)
	}
	return &Simulator{
		cfg:     cfg,
		traffic: NewTrafficGenerator(),
	}, nil
}

// NumTiers returns the size of the action space.
func (s *Simulator) NumTiers() int {
	return len(s.cfg.Tiers)
}

// ObservationDim returns the fixed observation dimensionality:
// [length, complexity, k queue depths, time of day, budget, quality required].
func (s *Simulator) ObservationDim() int {
	return 2 + len(s.cfg.Tiers) + 3
}

// Config returns a copy of the simulator's configuration.
func (s *Simulator) Config() Config {
	return s.cfg
}

// Reset starts a new episode using the configured master seed.
func (s *Simulator) Reset() ([]float64, Info) {
	return s.ResetSeed(s.cfg.Seed)
}

// ResetSeed starts a new episode reseeded from the given value. Callable any
// number of times on the same instance; the partitioned RNG is rebuilt from
// scratch so no draws leak between episodes.
func (s *Simulator) ResetSeed(seed int64) ([]float64, Info) {
	s.rng = NewPartitionedRNG(NewSimulationKey(seed))

	s.stepCount = 0
	s.budgetRemaining = s.cfg.Budget
	s.terminated = false
	s.initialized = true

	stateRNG := s.rng.ForSubsystem(SubsystemState)
	// Episodes start at an arbitrary point in the daily cycle.
	s.timeOfDay = stateRNG.Float64()
	s.queueDepths = make([]float64, len(s.cfg.Tiers))
	for i := range s.queueDepths {
		s.queueDepths[i] = stateRNG.Float64() * initialQueueCeiling
	}

	s.pending = s.traffic.Sample(s.rng.ForSubsystem(SubsystemTraffic), s.timeOfDay)

	logrus.Debugf("episode reset: seed=%d time_of_day=%.4f budget=%.4f", seed, s.timeOfDay, s.budgetRemaining)
	return s.observation(), Info{}
}

// Step routes the pending request to the tier at the given index and advances
// the episode by one decision.
func (s *Simulator) Step(action int) (*StepResult, error) {
	if !s.initialized {
		return nil, ErrNotInitialized
	}
	if s.terminated {
		return nil, ErrEpisodeTerminated
	}
	if action < 0 || action >= len(s.cfg.Tiers) {
		return nil, &InvalidActionError{Action: action, NumTiers: len(s.cfg.Tiers)}
	}

	tier := s.cfg.Tiers[action]
	served := s.pending

	// 1. Sample the service outcome for the chosen tier.
	serviceRNG := s.rng.ForSubsystem(SubsystemService)
	latency := tier.SampleLatency(serviceRNG)
	quality := tier.SampleQuality(served.Complexity, serviceRNG)
	cost := tier.CostPerCall

	// 2-4. Budget, step counter, clock.
	s.budgetRemaining = max(0.0, s.budgetRemaining-cost)
	s.stepCount++
	s.timeOfDay = wrapUnit(s.timeOfDay + timeStepFraction)

	// 5. Queue dynamics: the chosen tier takes a load spike, then every tier
	// drains. Idle tiers decay toward empty, busy tiers from a higher baseline.
	stateRNG := s.rng.ForSubsystem(SubsystemState)
	s.queueDepths[action] = min(s.cfg.MaxQueueDepth,
		s.queueDepths[action]+stateRNG.ExpFloat64()*queueIncrementMean)
	for i := range s.queueDepths {
		decay := queueDecayMin + stateRNG.Float64()*(queueDecayMax-queueDecayMin)
		s.queueDepths[i] *= decay
	}

	// 6. Score against the request that was just served.
	reward := ComputeReward(cost, quality, latency, served.QualityRequired, s.cfg.Reward)

	// 7. Draw the next pending request at the new time of day.
	s.pending = s.traffic.Sample(s.rng.ForSubsystem(SubsystemTraffic), s.timeOfDay)

	// 8. Termination.
	s.terminated = s.stepCount >= s.cfg.EpisodeLength || s.budgetRemaining <= 0.0

	logrus.Debugf("step %d: tier=%s cost=%.4f quality=%.3f latency=%.3fs reward=%.4f budget=%.4f",
		s.stepCount, tier.Name, cost, quality, latency, reward, s.budgetRemaining)

	return &StepResult{
		Observation: s.observation(),
		Reward:      reward,
		Terminated:  s.terminated,
		Truncated:   false,
		Info: Info{
			InfoCost:            cost,
			InfoQuality:         quality,
			InfoLatency:         latency,
			InfoTierName:        tier.Name,
			InfoBudgetRemaining: s.budgetRemaining,
			InfoQualityRequired: served.QualityRequired,
			InfoSLAViolated:     latency > s.cfg.Reward.SLAThreshold,
		},
	}, nil
}

// Close releases nothing: the simulator holds no external resources. Present
// so callers can treat it like any closable environment.
func (s *Simulator) Close() error {
	return nil
}

// StepCount returns the number of steps taken in the current episode.
func (s *Simulator) StepCount() int { return s.stepCount }

// BudgetRemaining returns the unspent portion of the episode budget.
func (s *Simulator) BudgetRemaining() float64 { return s.budgetRemaining }

// TimeOfDay returns the current simulated time of day in [0,1).
func (s *Simulator) TimeOfDay() float64 { return s.timeOfDay }

// QueueDepths returns a copy of the per-tier queue depths.
func (s *Simulator) QueueDepths() []float64 {
	out := make([]float64, len(s.queueDepths))
	copy(out, s.queueDepths)
	return out
}

// observation builds the normalized observation vector:
// [length, complexity, queue_0/max … queue_{k-1}/max, time_of_day,
// budget/initial, quality_required], every component in [0,1].
func (s *Simulator) observation() []float64 {
	k := len(s.cfg.Tiers)
	obs := make([]float64, 0, 2+k+3)
	obs = append(obs, s.pending.Length, s.pending.Complexity)
	for _, depth := range s.queueDepths {
		// Bounded by construction; clipping keeps the vector in [0,1] regardless.
		obs = append(obs, clip(depth/s.cfg.MaxQueueDepth, 0.0, 1.0))
	}
	obs = append(obs,
		s.timeOfDay,
		clip(s.budgetRemaining/s.cfg.Budget, 0.0, 1.0),
		s.pending.QualityRequired,
	)
	return obs
}

// wrapUnit wraps v into [0,1).
func wrapUnit(v float64) float64 {
	v -= float64(int(v))
	if v < 0 {
		v += 1.0
	}
	return v
}
