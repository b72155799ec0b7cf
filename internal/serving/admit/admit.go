// Package admit bounds the work the scoring core will hold: a queued count
// (admitted, not yet dispatched) and an in-flight count (dispatched, not yet
// completed). The controller is the single authority over both counters;
// the batcher reports transitions and every admitted request releases its
// slot exactly once, on success, scorer failure, and timeout alike.
package admit

import (
	"sync"

	perr "vibecheck/internal/platform/errors"
)

// Controller tracks queued and in-flight work against configured limits
type Controller struct {
	mu       sync.Mutex
	queued   int
	inflight int

	queueLimit    int
	inFlightLimit int
}

// New constructs a Controller. Both limits must be positive
func New(queueLimit, inFlightLimit int) *Controller {
	if queueLimit <= 0 || inFlightLimit <= 0 {
		panic("admit: limits must be positive")
	}
	return &Controller{queueLimit: queueLimit, inFlightLimit: inFlightLimit}
}

// Admit reserves a queue slot or rejects immediately. Overloaded means the
// pending queue is full; saturated means queued plus in-flight work is at
// the combined ceiling. The controller never queues beyond its bounds
func (c *Controller) Admit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.queued >= c.queueLimit {
		return perr.Overloadedf("scoring queue full (%d pending)", c.queued)
	}
	if c.queued+c.inflight >= c.queueLimit+c.inFlightLimit {
		return perr.Saturatedf("scoring at capacity (%d pending, %d in flight)", c.queued, c.inflight)
	}
	c.queued++
	return nil
}

// Dispatched moves n requests from queued to in-flight
func (c *Controller) Dispatched(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queued -= n
	c.inflight += n
	c.check()
}

// Completed releases n in-flight slots once their outcomes are delivered
func (c *Controller) Completed(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight -= n
	c.check()
}

// Cancelled releases n queued slots for requests that expired or were
// cancelled before dispatch
func (c *Controller) Cancelled(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queued -= n
	c.check()
}

// Queued returns the current queued count
func (c *Controller) Queued() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queued
}

// InFlight returns the current in-flight count
func (c *Controller) InFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight
}

// check must be called with the lock held
// a negative counter means a request released its slot twice, which is a
// programming contract violation, not a runtime condition
func (c *Controller) check() {
	if c.queued < 0 || c.inflight < 0 {
		panic("admit: counter underflow")
	}
}
