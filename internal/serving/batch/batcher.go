// Package batch groups individual scoring requests into bounded batches and
// dispatches them to the model on a fixed-width worker pool.
//
// All open-batch state is owned by a single assembly goroutine; submitters
// only send on a channel and wait on their own ticket, so the hot path takes
// no locks. A batch seals when it reaches MaxBatchSize or when MaxBatchWait
// has elapsed since its first item joined, whichever comes first; sealed
// batches dispatch FIFO by seal time. Within a batch, input order is
// preserved into result order.
package batch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	perr "vibecheck/internal/platform/errors"
	"vibecheck/internal/platform/logger"
	"vibecheck/internal/serving"
	"vibecheck/internal/serving/admit"
)

// Config sizes the batcher
type Config struct {
	// MaxBatchSize caps items per scorer call, must be > 0
	MaxBatchSize int
	// MaxBatchWait bounds how long the first item of a batch waits before
	// dispatch. 0 means batches seal as soon as they have an item
	MaxBatchWait time.Duration
	// Workers is the scorer pool width, must be > 0; it bounds concurrent
	// scorer invocations together with the admission in-flight limit
	Workers int
	// Backlog is the sealed-batch buffer; size it so admission limits, not
	// this buffer, are what push back (queue_limit is a safe value)
	Backlog int
	// DispatchTimeout bounds one scorer call, 0 means none
	DispatchTimeout time.Duration
}

// Batcher assembles requests into batches and runs them on the scorer pool
type Batcher struct {
	cfg    Config
	scorer serving.Scorer
	ctrl   *admit.Controller
	log    *logger.Logger

	submitCh chan *item
	sealedCh chan []*item
	stopCh   chan struct{}
	closed   atomic.Bool
	wg       sync.WaitGroup
}

// New constructs a Batcher and starts its assembly loop and worker pool
func New(cfg Config, scorer serving.Scorer, ctrl *admit.Controller) *Batcher {
	if cfg.MaxBatchSize <= 0 {
		panic("batch: MaxBatchSize must be positive")
	}
	if cfg.MaxBatchWait < 0 {
		panic("batch: MaxBatchWait must not be negative")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Backlog <= 0 {
		cfg.Backlog = 64
	}
	b := &Batcher{
		cfg:      cfg,
		scorer:   scorer,
		ctrl:     ctrl,
		log:      logger.Named("batcher"),
		submitCh: make(chan *item, cfg.Backlog),
		sealedCh: make(chan []*item, cfg.Backlog),
		stopCh:   make(chan struct{}),
	}
	b.wg.Add(1)
	go b.assemble()
	for i := 0; i < cfg.Workers; i++ {
		b.wg.Add(1)
		go b.worker()
	}
	return b
}

// Submit places the request into the current open batch and returns its
// completion handle. The caller must already hold an admission slot; Submit
// errors only while shutting down, and then the caller releases the slot
func (b *Batcher) Submit(req serving.Request) (*Ticket, error) {
	if b.closed.Load() {
		return nil, perr.Unavailablef("scoring core shutting down")
	}
	it := &item{req: req}
	it.t = &Ticket{b: b, it: it, done: make(chan struct{})}
	// arm the deadline before handing the item over so the field is
	// published by the channel send, not raced with dispatch
	if !req.Deadline.IsZero() {
		it.timer = time.AfterFunc(time.Until(req.Deadline), func() { b.cancel(it) })
	}

	select {
	case b.submitCh <- it:
		// the buffered send can still win after shutdown began; if the
		// assembly loop has already drained, reclaim the item so the
		// waiter is never orphaned
		if b.closed.Load() && it.state.CompareAndSwap(stateQueued, stateCancelled) {
			if it.timer != nil {
				it.timer.Stop()
			}
			return nil, perr.Unavailablef("scoring core shutting down")
		}
		return it.t, nil
	case <-b.stopCh:
	}
	if it.state.CompareAndSwap(stateQueued, stateCancelled) {
		if it.timer != nil {
			it.timer.Stop()
		}
		return nil, perr.Unavailablef("scoring core shutting down")
	}
	// deadline fired while we raced shutdown; the ticket already
	// carries the timeout and the slot is released
	return it.t, nil
}

// Close seals the open batch, runs out the dispatch queue, and waits for the
// workers, honoring ctx as the drain budget
func (b *Batcher) Close(ctx context.Context) error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(b.stopCh)
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	// fail any submission that won the buffered send after the assembly
	// loop drained, releasing its queued slot
	for {
		select {
		case it := <-b.submitCh:
			if !it.state.CompareAndSwap(stateQueued, stateCancelled) {
				continue
			}
			if it.timer != nil {
				it.timer.Stop()
			}
			b.ctrl.Cancelled(1)
			it.t.deliver(serving.Result{}, perr.Unavailablef("scoring core shutting down"), 0)
		default:
			return nil
		}
	}
}

// cancel completes an un-dispatched item with a timeout and releases its
// queued slot. It loses the race against dispatch by design: work already
// handed to the scorer runs to completion
func (b *Batcher) cancel(it *item) {
	if !it.state.CompareAndSwap(stateQueued, stateCancelled) {
		return
	}
	if it.timer != nil {
		it.timer.Stop()
	}
	b.ctrl.Cancelled(1)
	it.t.deliver(serving.Result{}, perr.Timeoutf("request expired before scoring"), 0)
}

// assemble is the single owner of open-batch state
func (b *Batcher) assemble() {
	defer b.wg.Done()

	var cur []*item
	waitT := time.NewTimer(time.Hour)
	if !waitT.Stop() {
		<-waitT.C
	}
	armed := false

	disarm := func() {
		if !armed {
			return
		}
		if !waitT.Stop() {
			select {
			case <-waitT.C:
			default:
			}
		}
		armed = false
	}
	seal := func() {
		disarm()
		if len(cur) == 0 {
			return
		}
		b.sealedCh <- cur
		cur = nil
	}
	add := func(it *item) {
		cur = append(cur, it)
		if len(cur) == 1 && b.cfg.MaxBatchWait > 0 {
			waitT.Reset(b.cfg.MaxBatchWait)
			armed = true
		}
		if len(cur) >= b.cfg.MaxBatchSize || b.cfg.MaxBatchWait == 0 {
			seal()
		}
	}

	for {
		select {
		case it := <-b.submitCh:
			add(it)
		case <-waitT.C:
			armed = false
			seal()
		case <-b.stopCh:
			// drain submissions that raced with shutdown, then flush
			for {
				select {
				case it := <-b.submitCh:
					add(it)
					continue
				default:
				}
				break
			}
			seal()
			close(b.sealedCh)
			return
		}
	}
}

func (b *Batcher) worker() {
	defer b.wg.Done()
	for items := range b.sealedCh {
		b.dispatch(items)
	}
}

// dispatch runs one sealed batch through the scorer and fans results back to
// the tickets in input order. Items cancelled while the batch sat sealed are
// skipped; a scorer failure fails every remaining member, never a subset
func (b *Batcher) dispatch(items []*item) {
	live := items[:0]
	for _, it := range items {
		if it.state.CompareAndSwap(stateQueued, stateDispatched) {
			if it.timer != nil {
				it.timer.Stop()
			}
			live = append(live, it)
		}
	}
	if len(live) == 0 {
		return
	}
	b.ctrl.Dispatched(len(live))
	defer b.ctrl.Completed(len(live))

	texts := make([]string, len(live))
	for i, it := range live {
		texts[i] = it.req.Text
	}

	ctx := context.Background()
	if b.cfg.DispatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.DispatchTimeout)
		defer cancel()
	}

	start := time.Now()
	out, err := b.scorer.Score(ctx, texts)
	switch {
	case err != nil:
		b.log.Error().Err(err).Int("batch_size", len(live)).Msg("batch scoring failed")
		ferr := perr.ScorerWrap(err, "batch scoring failed")
		for _, it := range live {
			it.t.deliver(serving.Result{}, ferr, 0)
		}
	case len(out) != len(live):
		b.log.Error().Int("got", len(out)).Int("want", len(live)).Msg("scorer broke the length contract")
		ferr := perr.Scorerf("scorer returned %d results for %d inputs", len(out), len(live))
		for _, it := range live {
			it.t.deliver(serving.Result{}, ferr, 0)
		}
	default:
		for i, it := range live {
			it.t.deliver(out[i], nil, len(live))
		}
		b.log.Debug().
			Int("batch_size", len(live)).
			Dur("elapsed", time.Since(start)).
			Msg("batch scored")
	}
}
