package rff

import (
	"github.com/YuminosukeSato/lowrank/core/random"
	"github.com/YuminosukeSato/lowrank/pkg/log"
)

// Source is the injectable random source. *rand.Rand from math/rand/v2
// satisfies it.
type Source = random.Source

// Option is a function that configures RFF
type Option func(*RFF)

// WithGammaRange sets the ordered kernel bandwidths. The model approximates
// the sum of exponential kernels exp(-γ‖x − x'‖²) over the range.
func WithGammaRange(gammas ...float64) Option {
	return func(r *RFF) {
		r.gammaRange = append([]float64(nil), gammas...)
	}
}

// WithDelta sets the number of look-ahead candidate features drawn per bandwidth
func WithDelta(delta int) Option {
	return func(r *RFF) {
		r.delta = delta
	}
}

// WithLambda sets the ridge regularization strength (0 = least squares)
func WithLambda(lambda float64) Option {
	return func(r *RFF) {
		r.lambda = lambda
	}
}

// WithRandomState makes fitting deterministic. Every Fit restarts the
// stream from seed.
func WithRandomState(seed int64) Option {
	return func(r *RFF) {
		r.seed = seed
		r.hasSeed = true
	}
}

// WithSource injects a random source. Consecutive fits continue the same
// stream. It takes precedence over WithRandomState.
func WithSource(src Source) Option {
	return func(r *RFF) {
		r.src = src
	}
}

// WithNormalize sets whether feature columns are scaled to unit L2 norm on
// the training data
func WithNormalize(normalize bool) Option {
	return func(r *RFF) {
		r.normalize = normalize
	}
}

// WithLogger sets the structured logger
func WithLogger(logger log.Logger) Option {
	return func(r *RFF) {
		r.logger = logger
	}
}
