package linear

import "github.com/YuminosukeSato/lowrank/pkg/log"

// Option is a function that configures Ridge
type Option func(*Ridge)

// WithLambda sets the L2 regularization strength (0 = ordinary least squares)
func WithLambda(lambda float64) Option {
	return func(r *Ridge) {
		r.lambda = lambda
	}
}

// WithFitIntercept sets whether to calculate the intercept
func WithFitIntercept(fit bool) Option {
	return func(r *Ridge) {
		r.fitIntercept = fit
	}
}

// WithLogger sets the structured logger
func WithLogger(logger log.Logger) Option {
	return func(r *Ridge) {
		r.logger = logger
	}
}
