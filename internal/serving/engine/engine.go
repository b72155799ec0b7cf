// Package engine composes the scoring core: normalization, the result
// cache, admission control, and the batcher, behind one Score call.
// The gateway talks to this package and nothing below it.
package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"vibecheck/internal/platform/config"
	perr "vibecheck/internal/platform/errors"
	"vibecheck/internal/platform/logger"
	ptime "vibecheck/internal/platform/time"
	"vibecheck/internal/serving"
	"vibecheck/internal/serving/admit"
	"vibecheck/internal/serving/batch"
	"vibecheck/internal/serving/cache"
)

// Options configures an Engine
type Options struct {
	// Scorer runs the model; required
	Scorer serving.Scorer
	// Normalizer cleans text and resolves the language; required
	Normalizer serving.Normalizer
	// Journal receives scored events off the hot path; optional
	Journal serving.Journal

	// ModelVersion is the version embedded in cache keys and results
	ModelVersion string
	// EagerInvalidate purges stale cache entries on SetModelVersion in
	// addition to the lazy key-based invalidation that always applies
	EagerInvalidate bool

	// MaxBatchSize and MaxBatchWait shape batches, see batch.Config
	MaxBatchSize int
	MaxBatchWait time.Duration
	// Workers is the scorer pool width
	Workers int
	// DispatchTimeout bounds one scorer call, 0 means none
	DispatchTimeout time.Duration

	// QueueLimit and InFlightLimit bound admitted work, see admit.New
	QueueLimit    int
	InFlightLimit int

	// CacheCapacity is the cache cost budget in normalized bytes;
	// 0 disables the cache entirely
	CacheCapacity int64
	CacheTTL      time.Duration
	CacheSweep    time.Duration

	// RequestTimeout is the deadline applied to requests whose context
	// carries none, 0 means requests without a deadline never expire
	RequestTimeout time.Duration
}

// Engine is the scoring core. Safe for concurrent use
type Engine struct {
	log     *logger.Logger
	norm    serving.Normalizer
	journal serving.Journal
	cache   *cache.Cache // nil when disabled
	ctrl    *admit.Controller
	batcher *batch.Batcher

	model  atomic.Value // string
	rolled atomic.Int64 // unix nanos of the last rollover, 0 before any
	eager  bool

	reqTimeout time.Duration
	now        func() time.Time // test seam
}

// New constructs and starts an Engine
func New(opt Options) *Engine {
	if opt.Scorer == nil {
		panic("engine: Scorer is required")
	}
	if opt.Normalizer == nil {
		panic("engine: Normalizer is required")
	}
	e := &Engine{
		log:        logger.Named("engine"),
		norm:       opt.Normalizer,
		journal:    opt.Journal,
		eager:      opt.EagerInvalidate,
		reqTimeout: opt.RequestTimeout,
		now:        time.Now,
	}
	e.model.Store(opt.ModelVersion)
	if opt.CacheCapacity > 0 {
		e.cache = cache.New(cache.Options{
			Capacity:   opt.CacheCapacity,
			TTL:        opt.CacheTTL,
			SweepEvery: opt.CacheSweep,
		})
	}
	e.ctrl = admit.New(opt.QueueLimit, opt.InFlightLimit)
	e.batcher = batch.New(batch.Config{
		MaxBatchSize:    opt.MaxBatchSize,
		MaxBatchWait:    opt.MaxBatchWait,
		Workers:         opt.Workers,
		Backlog:         opt.QueueLimit,
		DispatchTimeout: opt.DispatchTimeout,
	}, opt.Scorer, e.ctrl)
	return e
}

// FromConfig builds Options from the environment under the SERVING_ prefix
func FromConfig(cfg config.Conf, scorer serving.Scorer, norm serving.Normalizer, journal serving.Journal) Options {
	c := cfg.Prefix("SERVING_")
	return Options{
		Scorer:          scorer,
		Normalizer:      norm,
		Journal:         journal,
		ModelVersion:    c.MayString("MODEL_VERSION", "lexicon-v1"),
		EagerInvalidate: c.MayBool("EAGER_INVALIDATE", false),
		MaxBatchSize:    c.MayInt("MAX_BATCH_SIZE", 16),
		MaxBatchWait:    c.MayDuration("MAX_BATCH_WAIT", 25*time.Millisecond),
		Workers:         c.MayInt("WORKERS", 2),
		DispatchTimeout: c.MayDuration("DISPATCH_TIMEOUT", 5*time.Second),
		QueueLimit:      c.MayInt("QUEUE_LIMIT", 256),
		InFlightLimit:   c.MayInt("IN_FLIGHT_LIMIT", 64),
		CacheCapacity:   int64(c.MayInt("CACHE_CAPACITY", 1<<20)),
		CacheTTL:        c.MayDuration("CACHE_TTL", 10*time.Minute),
		CacheSweep:      c.MayDuration("CACHE_SWEEP", 0),
		RequestTimeout:  c.MayDuration("REQUEST_TIMEOUT", 10*time.Second),
	}
}

// Score runs one text through the core and returns its sentiment.
// Failures are one of overloaded, saturated, timeout, or scorer error;
// everything else is a programming bug surfaced by panic
func (e *Engine) Score(ctx context.Context, raw, langHint string) (serving.Result, error) {
	start := e.now()
	text, lang := e.norm.Normalize(raw, langHint)
	mv := e.ModelVersion()

	if text == "" {
		// nothing left to score; neutral with full confidence
		res := serving.Result{
			Label:      serving.LabelNeutral,
			Confidence: 1,
			Scores: map[serving.Label]float64{
				serving.LabelNegative: 0,
				serving.LabelNeutral:  1,
				serving.LabelPositive: 0,
			},
			ModelVersion: mv,
			ComputedAt:   start,
		}
		e.record(uuid.NewString(), lang, res, false, 0, start)
		return res, nil
	}

	key := serving.KeyFor(text, lang, mv)
	if e.cache != nil {
		if res, ok := e.cache.Get(key); ok {
			e.record(uuid.NewString(), lang, res, true, 0, start)
			return res, nil
		}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline && e.reqTimeout > 0 {
		deadline = start.Add(e.reqTimeout)
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, deadline)
		defer cancel()
		hasDeadline = true
	}
	if hasDeadline && !start.Before(deadline) {
		return serving.Result{}, perr.Timeoutf("request deadline already passed")
	}

	if err := e.ctrl.Admit(); err != nil {
		return serving.Result{}, err
	}
	req := serving.Request{
		ID:          uuid.NewString(),
		Text:        text,
		Lang:        lang,
		SubmittedAt: start,
	}
	if hasDeadline {
		req.Deadline = deadline
	}
	t, err := e.batcher.Submit(req)
	if err != nil {
		e.ctrl.Cancelled(1)
		return serving.Result{}, err
	}
	res, err := t.Wait(ctx)
	if err != nil {
		return serving.Result{}, err
	}
	if res.ModelVersion == "" {
		res.ModelVersion = mv
	}
	if res.ComputedAt.IsZero() {
		res.ComputedAt = e.now()
	}

	if e.cache != nil {
		cost := int64(len(text))
		if cost <= 0 {
			cost = 1
		}
		e.cache.Put(key, res, cost)
	}
	e.record(req.ID, lang, res, false, t.BatchSize(), start)
	return res, nil
}

// BatchItem is one input of ScoreBatch
type BatchItem struct {
	Text string
	Lang string
}

// BatchOutcome is one per-item result of ScoreBatch; items fail
// independently, a rejected or expired item does not affect its neighbors
type BatchOutcome struct {
	Result serving.Result
	Err    error
}

// ScoreBatch fans items through Score concurrently and preserves order
func (e *Engine) ScoreBatch(ctx context.Context, items []BatchItem) []BatchOutcome {
	out := make([]BatchOutcome, len(items))
	var wg sync.WaitGroup
	for i, it := range items {
		wg.Add(1)
		go func(i int, it BatchItem) {
			defer wg.Done()
			out[i].Result, out[i].Err = e.Score(ctx, it.Text, it.Lang)
		}(i, it)
	}
	wg.Wait()
	return out
}

// ModelVersion returns the active model version
func (e *Engine) ModelVersion() string {
	return e.model.Load().(string)
}

// SetModelVersion rolls the core over to version v. Old-version cache
// entries become unreachable immediately because the version is part of
// the key; with EagerInvalidate their memory is reclaimed now instead of
// by eviction pressure
func (e *Engine) SetModelVersion(v string) {
	old := e.ModelVersion()
	if v == old {
		return
	}
	e.model.Store(v)
	e.rolled.Store(e.now().UnixNano())
	if e.eager && e.cache != nil {
		n := e.cache.Invalidate(func(_ serving.CacheKey, res serving.Result) bool {
			return res.ModelVersion != v
		})
		e.log.Info().
			Str("from", old).
			Str("to", v).
			Int("invalidated", n).
			Msg("model version rollover")
		return
	}
	e.log.Info().Str("from", old).Str("to", v).Msg("model version rollover")
}

// LastRollover reports when the serving model version last changed,
// nil before the first rollover
func (e *Engine) LastRollover() *time.Time {
	var t time.Time
	if n := e.rolled.Load(); n != 0 {
		t = time.Unix(0, n).UTC()
	}
	return ptime.Ptr(t)
}

// Stats is a point-in-time view of the core, for health and stats surfaces
type Stats struct {
	Queued       int    `json:"queued"`
	InFlight     int    `json:"in_flight"`
	CacheEntries int    `json:"cache_entries"`
	CacheCost    int64  `json:"cache_cost"`
	ModelVersion string `json:"model_version"`
}

// Stats snapshots the core counters
func (e *Engine) Stats() Stats {
	s := Stats{
		Queued:       e.ctrl.Queued(),
		InFlight:     e.ctrl.InFlight(),
		ModelVersion: e.ModelVersion(),
	}
	if e.cache != nil {
		s.CacheEntries = e.cache.Len()
		s.CacheCost = e.cache.Cost()
	}
	return s
}

// ResolveLang reports the language Score would resolve for raw and hint,
// for surfaces that echo the language back to the caller
func (e *Engine) ResolveLang(raw, langHint string) string {
	_, lang := e.norm.Normalize(raw, langHint)
	return lang
}

// Close drains in-flight batches within the ctx budget and stops the cache
func (e *Engine) Close(ctx context.Context) error {
	err := e.batcher.Close(ctx)
	if e.cache != nil {
		e.cache.Close()
	}
	return err
}

func (e *Engine) record(id, lang string, res serving.Result, hit bool, batchSize int, start time.Time) {
	if e.journal == nil {
		return
	}
	e.journal.Record(serving.Event{
		At:           start,
		RequestID:    id,
		Lang:         lang,
		Label:        res.Label,
		Confidence:   res.Confidence,
		ModelVersion: res.ModelVersion,
		CacheHit:     hit,
		BatchSize:    batchSize,
		LatencyMS:    e.now().Sub(start).Milliseconds(),
	})
}
