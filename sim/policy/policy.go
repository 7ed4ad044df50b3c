// Package policy provides baseline routing policies for rolling out the
// simulator without a trained controller. They serve as evaluation floors:
// a learned policy that cannot beat them has learned nothing.
package policy

import (
	"fmt"
	"math/rand"

	"github.com/router-sim/router-sim/sim"
)

// RoutingPolicy picks a tier index given the current observation.
type RoutingPolicy interface {
	Decide(obs []float64) int
}

// ValidPolicies is the set of recognized policy names.
// Shared by Validate-style checks and NewPolicy to avoid duplication.
var ValidPolicies = map[string]bool{
	"":            true, // empty defaults to random
	"random":      true,
	"round-robin": true,
	"cheapest":    true,
	"premium":     true,
}

// IsValidPolicy returns true if name is a recognized policy name.
func IsValidPolicy(name string) bool {
	return ValidPolicies[name]
}

// Random routes each request to a uniformly random tier.
type Random struct {
	numTiers int
	rng      *rand.Rand
}

func (p *Random) Decide(_ []float64) int {
	return p.rng.Intn(p.numTiers)
}

// RoundRobin cycles through the tiers in order.
type RoundRobin struct {
	numTiers int
	next     int
}

func (p *RoundRobin) Decide(_ []float64) int {
	action := p.next
	p.next = (p.next + 1) % p.numTiers
	return action
}

// Fixed always routes to one tier. Used for both the cheapest-first and
// premium-only baselines.
type Fixed struct {
	action int
}

func (p *Fixed) Decide(_ []float64) int {
	return p.action
}

// NewPolicy creates a baseline policy by name.
// Valid names: "random" (default), "round-robin", "cheapest", "premium".
// The tier collection determines the action space and the fixed baselines'
// targets; rng drives stochastic policies and may be nil for the others.
func NewPolicy(name string, tiers []sim.TierConfig, rng *rand.Rand) (RoutingPolicy, error) {
	if !IsValidPolicy(name) {
		return nil, fmt.Errorf("unknown policy %q", name)
	}
	if len(tiers) == 0 {
		return nil, fmt.Errorf("policy %q: tier collection must not be empty", name)
	}
	switch name {
	case "", "random":
		if rng == nil {
			return nil, fmt.Errorf("random policy requires an RNG")
		}
		return &Random{numTiers: len(tiers), rng: rng}, nil
	case "round-robin":
		return &RoundRobin{numTiers: len(tiers)}, nil
	case "cheapest":
		return &Fixed{action: argminCost(tiers)}, nil
	case "premium":
		return &Fixed{action: argmaxQuality(tiers)}, nil
	default:
		return nil, fmt.Errorf("unhandled policy %q", name)
	}
}

func argminCost(tiers []sim.TierConfig) int {
	best := 0
	for i, t := range tiers {
		if t.CostPerCall < tiers[best].CostPerCall {
			best = i
		}
	}
	return best
}

func argmaxQuality(tiers []sim.TierConfig) int {
	best := 0
	for i, t := range tiers {
		if t.Quality > tiers[best].Quality {
			best = i
		}
	}
	return best
}
