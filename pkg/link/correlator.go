package link

import (
	"context"
	"sync"

	"github.com/gwillem/roarm/pkg/protocol"
)

// QueryPolicy selects what happens when a status query is issued while
// another is outstanding.
type QueryPolicy int

const (
	// SerializeQueries queues concurrent queries behind the outstanding one.
	SerializeQueries QueryPolicy = iota
	// RejectConcurrentQueries fails concurrent queries with ErrQueryPending.
	RejectConcurrentQueries
)

func (p QueryPolicy) String() string {
	switch p {
	case SerializeQueries:
		return "serialize"
	case RejectConcurrentQueries:
		return "reject"
	default:
		return "unknown"
	}
}

// correlator pairs a status query with the next status report. slot admits
// one query at a time; waiter is the completion handle of that query.
type correlator struct {
	policy QueryPolicy
	slot   chan struct{}

	mu     sync.Mutex
	waiter chan protocol.TelemetryFrame
}

func newCorrelator(policy QueryPolicy) *correlator {
	return &correlator{
		policy: policy,
		slot:   make(chan struct{}, 1),
	}
}

// acquire takes the query slot, waiting under SerializeQueries.
func (c *correlator) acquire(ctx context.Context) error {
	if c.policy == RejectConcurrentQueries {
		select {
		case c.slot <- struct{}{}:
			return nil
		default:
			return ErrQueryPending
		}
	}
	select {
	case c.slot <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *correlator) release() {
	<-c.slot
}

// register installs a new waiter. Must be called with the slot held.
func (c *correlator) register() chan protocol.TelemetryFrame {
	ch := make(chan protocol.TelemetryFrame, 1)
	c.mu.Lock()
	c.waiter = ch
	c.mu.Unlock()
	return ch
}

// deregister removes ch if it is still the active waiter.
func (c *correlator) deregister(ch chan protocol.TelemetryFrame) {
	c.mu.Lock()
	if c.waiter == ch {
		c.waiter = nil
	}
	c.mu.Unlock()
}

// resolve hands f to the active waiter and clears it. It reports false
// when nothing was waiting.
func (c *correlator) resolve(f protocol.TelemetryFrame) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.waiter == nil {
		return false
	}
	c.waiter <- f
	c.waiter = nil
	return true
}

// pending reports whether a waiter is registered.
func (c *correlator) pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.waiter != nil
}
