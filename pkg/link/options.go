package link

import (
	"github.com/rs/zerolog"

	"github.com/gwillem/roarm/pkg/protocol"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithMetrics records engine activity in m.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithQueryPolicy selects how concurrent status queries are handled.
// Defaults to SerializeQueries.
func WithQueryPolicy(p QueryPolicy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithOptimisticEcho makes successfully written moves update the stored
// pose immediately instead of waiting for a status report.
func WithOptimisticEcho() Option {
	return func(e *Engine) {
		e.optimistic = true
	}
}

// WithStatusCodes replaces the set of "T" codes treated as status reports.
func WithStatusCodes(codes ...int) Option {
	return func(e *Engine) {
		e.statusCodes = make(map[int]struct{}, len(codes))
		for _, c := range codes {
			e.statusCodes[c] = struct{}{}
		}
	}
}

// WithDefaultSpeed sets the speed used by clamp moves. Defaults to 0.25.
func WithDefaultSpeed(spd float64) Option {
	return func(e *Engine) {
		e.speed = spd
	}
}

// WithLimits bounds the reassembly buffer.
func WithLimits(l protocol.Limits) Option {
	return func(e *Engine) {
		e.limits = l
	}
}
