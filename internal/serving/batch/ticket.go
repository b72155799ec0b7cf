package batch

import (
	"context"
	"sync/atomic"
	"time"

	"vibecheck/internal/serving"
)

// item states; a request moves queued -> dispatched -> fulfilled, or
// queued -> cancelled when its deadline fires before dispatch
const (
	stateQueued int32 = iota
	stateDispatched
	stateCancelled
)

// item pairs a request with its completion handle while the batcher owns it
type item struct {
	req   serving.Request
	t     *Ticket
	state atomic.Int32
	timer *time.Timer // deadline timer, nil when the request has none
}

// Ticket is the single-fulfillment completion handle for one submitted
// request. Exactly one terminal outcome is ever delivered through it;
// a second delivery is a programming contract violation and panics
type Ticket struct {
	b    *Batcher
	it   *item
	done chan struct{}

	filled    atomic.Bool
	res       serving.Result
	err       error
	batchSize int
}

// Wait blocks until the outcome is delivered. If ctx ends first and the
// request has not been dispatched yet, it is cancelled and completed with
// a timeout; once dispatched it runs to completion and Wait returns that
// outcome (cancellation has no effect on work already handed to the scorer)
func (t *Ticket) Wait(ctx context.Context) (serving.Result, error) {
	select {
	case <-t.done:
	case <-ctx.Done():
		t.b.cancel(t.it)
		<-t.done
	}
	return t.res, t.err
}

// BatchSize reports how many requests shared the ticket's batch
// valid only after Wait returns a nil error
func (t *Ticket) BatchSize() int { return t.batchSize }

// deliver records the terminal outcome and wakes the waiter
func (t *Ticket) deliver(res serving.Result, err error, batchSize int) {
	if !t.filled.CompareAndSwap(false, true) {
		panic("batch: completion handle fulfilled twice")
	}
	t.res = res
	t.err = err
	t.batchSize = batchSize
	close(t.done)
}
