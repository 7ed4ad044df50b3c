package sim

import (
	"math"
	"math/rand"
)

// Request is one synthetic incoming request. All fields are normalized to [0,1].
type Request struct {
	Length          float64 // normalized prompt length (cosmetic: observation only)
	Complexity      float64 // right-skewed: most requests simple, a tail is complex
	QualityRequired float64 // minimum acceptable quality for this request
}

// Traffic shape defaults. Beta(2,5) gives the right-skewed complexity mass;
// Beta(2,3) gives a milder skew for lengths.
const (
	defaultComplexityAlpha = 2.0
	defaultComplexityBeta  = 5.0
	defaultLengthAlpha     = 2.0
	defaultLengthBeta      = 3.0

	// loadPhase is the time-of-day offset placing the sinusoid's peak at
	// 0.375 (the 9am-equivalent) and its trough at 0.875.
	loadPhase = 0.125

	loadFloor   = 0.1
	loadCeiling = 1.0

	qualityReqNoiseStd = 0.05
)

// TrafficGenerator produces synthetic request traffic with Beta-distributed
// complexity and length, and per-request quality requirements, all modulated
// by a deterministic time-of-day load curve.
type TrafficGenerator struct {
	ComplexityAlpha float64
	ComplexityBeta  float64
	LengthAlpha     float64
	LengthBeta      float64
}

// NewTrafficGenerator returns a generator with the default shape parameters.
func NewTrafficGenerator() *TrafficGenerator {
	return &TrafficGenerator{
		ComplexityAlpha: defaultComplexityAlpha,
		ComplexityBeta:  defaultComplexityBeta,
		LengthAlpha:     defaultLengthAlpha,
		LengthBeta:      defaultLengthBeta,
	}
}

// LoadFactor computes the demand multiplier at the given time of day
// (0 = midnight, 0.375 ≈ 9am peak, 0.875 ≈ 9pm trough), clipped to
// [loadFloor, loadCeiling] so load never vanishes or saturates.
//
// This function is purely deterministic and consumes no RNG draws. Keeping
// stochasticity out of it means callers with seeded RNGs see a stable draw
// count per Sample call and can reproduce trajectories exactly.
func (g *TrafficGenerator) LoadFactor(timeOfDay float64) float64 {
	base := 0.5 + 0.4*math.Sin(2*math.Pi*(timeOfDay-loadPhase))
	return clip(base, loadFloor, loadCeiling)
}

// Sample draws one request at the given time of day.
//
// RNG draw order per call (fixed, load factor consumes none):
//  1. complexity ~ Beta(ComplexityAlpha, ComplexityBeta)
//  2. length     ~ Beta(LengthAlpha, LengthBeta)
//  3. quality-requirement noise ~ Normal(0, qualityReqNoiseStd)
//
// High load shifts complexity upward (busy periods correlate with harder
// requests) and nudges the quality requirement up with it.
func (g *TrafficGenerator) Sample(rng *rand.Rand, timeOfDay float64) Request {
	load := g.LoadFactor(timeOfDay)

	complexityRaw := betaRand(rng, g.ComplexityAlpha, g.ComplexityBeta)
	complexity := clip(complexityRaw+(load-0.5)*0.2, 0.0, 1.0)

	length := clip(betaRand(rng, g.LengthAlpha, g.LengthBeta), 0.0, 1.0)

	qualityBase := 0.5 + 0.4*complexity + 0.1*(load-0.5)
	qualityNoise := rng.NormFloat64() * qualityReqNoiseStd
	qualityRequired := clip(qualityBase+qualityNoise, 0.0, 1.0)

	return Request{
		Length:          length,
		Complexity:      complexity,
		QualityRequired: qualityRequired,
	}
}

// betaRand samples from Beta(alpha, beta) as Ga/(Ga+Gb) with two unit-scale
// Gamma draws.
func betaRand(rng *rand.Rand, alpha, beta float64) float64 {
	x := gammaRand(rng, alpha, 1.0)
	y := gammaRand(rng, beta, 1.0)
	sum := x + y
	if sum == 0 {
		return 0
	}
	return x / sum
}

// gammaRand samples from Gamma(shape, scale) using Marsaglia-Tsang's method.
// For shape >= 1: direct method.
// For shape < 1: Gamma(shape) = Gamma(shape+1) * U^(1/shape).
func gammaRand(rng *rand.Rand, shape, scale float64) float64 {
	if shape < 1.0 {
		// Ahrens-Dieter: Gamma(a) = Gamma(a+1) * U^(1/a)
		u := rng.Float64()
		return gammaRand(rng, shape+1.0, scale) * math.Pow(u, 1.0/shape)
	}

	// Marsaglia-Tsang for shape >= 1
	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)

	for {
		var x, v float64
		for {
			x = rng.NormFloat64()
			v = 1.0 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := rng.Float64()

		// Squeeze test
		if u < 1.0-0.0331*(x*x)*(x*x) {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x*x+d*(1.0-v+math.Log(v)) {
			return d * v * scale
		}
	}
}
