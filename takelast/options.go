package takelast

import (
	"log/slog"

	"github.com/c360/flowkit/metric"
	"github.com/c360/flowkit/pkg/clock"
)

// Option configures operator behavior using the functional options pattern.
type Option func(*operatorOptions)

// operatorOptions holds internal configuration for an operator instance.
type operatorOptions struct {
	clk    clock.Clock
	logger *slog.Logger

	// metricsReg is optional - if provided, operator counters are exposed
	// as Prometheus metrics under the given prefix
	metricsReg    *metric.MetricsRegistry
	metricsPrefix string
}

// WithClock sets the time source items are stamped with.
// Defaults to clock.SystemClock.
func WithClock(c clock.Clock) Option {
	return func(opts *operatorOptions) {
		if c != nil {
			opts.clk = c
		}
	}
}

// WithLogger sets the slog logger the operator logs through.
// Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(opts *operatorOptions) {
		if logger != nil {
			opts.logger = logger
		}
	}
}

// WithMetrics enables Prometheus metrics export for operator activity.
// If registry is nil or prefix is empty, this option is ignored.
func WithMetrics(registry *metric.MetricsRegistry, prefix string) Option {
	return func(opts *operatorOptions) {
		if registry != nil && prefix != "" {
			opts.metricsReg = registry
			opts.metricsPrefix = prefix
		}
	}
}

// applyOptions applies functional options to create final operator configuration.
func applyOptions(options ...Option) *operatorOptions {
	opts := &operatorOptions{
		clk:    clock.SystemClock,
		logger: slog.Default(),
	}

	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}

	return opts
}
