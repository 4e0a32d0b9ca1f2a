package engine

import (
	"runtime"

	"github.com/oneconcern/crane/pkg/metrics"
	"go.uber.org/zap"
)

var defaultConcurrency = 2 * runtime.NumCPU()

// Option configures the Engine
type Option func(*Engine)

// Concurrency sets the max number of components visited at once. It defaults to 2 x #cpus.
func Concurrency(concurrent int) Option {
	return func(e *Engine) {
		if concurrent > 0 {
			e.concurrency = concurrent
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics records visits
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}
