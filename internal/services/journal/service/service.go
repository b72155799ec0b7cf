// Package service implements the async journal writer.
//
// Events arrive off the scoring hot path through a buffered channel;
// a single flusher goroutine batches them into ClickHouse. Under
// pressure Record sheds events and counts the drops rather than
// blocking the engine.
package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"vibecheck/internal/platform/config"
	perr "vibecheck/internal/platform/errors"
	"vibecheck/internal/platform/logger"
	"vibecheck/internal/services/journal/domain"
	"vibecheck/internal/services/journal/repo"
	"vibecheck/internal/serving"
)

// Config controls journal buffering and flush cadence
type Config struct {
	Buffer     int           // channel capacity, default 1024
	FlushEvery time.Duration // ticker interval, default 2s
	FlushSize  int           // flush when this many events are pending, default 128
}

// FromConfig builds Config from the environment under the JOURNAL_ prefix
func FromConfig(cfg config.Conf) Config {
	c := cfg.Prefix("JOURNAL_")
	return Config{
		Buffer:     c.MayInt("BUFFER", 1024),
		FlushEvery: c.MayDuration("FLUSH_EVERY", 2*time.Second),
		FlushSize:  c.MayInt("FLUSH_SIZE", 128),
	}
}

func (c Config) withDefaults() Config {
	if c.Buffer <= 0 {
		c.Buffer = 1024
	}
	if c.FlushEvery <= 0 {
		c.FlushEvery = 2 * time.Second
	}
	if c.FlushSize <= 0 {
		c.FlushSize = 128
	}
	return c
}

// Svc implements domain.WriterPort over a Storage repo
type Svc struct {
	cfg     Config
	store   repo.Storage
	events  chan serving.Event
	dropped atomic.Uint64

	mu   sync.RWMutex // guards shut against the tail drain in Close
	shut bool

	stop   chan struct{}
	done   chan struct{}
	closed sync.Once
}

var (
	_ domain.WriterPort = (*Svc)(nil)
	_ domain.ReaderPort = (*Svc)(nil)
)

// New constructs the journal writer and starts its flusher
func New(store repo.Storage, cfg Config) *Svc {
	if store == nil {
		panic("journal: nil storage")
	}
	cfg = cfg.withDefaults()
	s := &Svc{
		cfg:    cfg,
		store:  store,
		events: make(chan serving.Event, cfg.Buffer),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

// Record implements domain.WriterPort and serving.Journal.
// It never waits on storage; events are shed and counted when the buffer
// is full or once shutdown has begun
func (s *Svc) Record(ev serving.Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.shut {
		s.dropped.Add(1)
		return
	}
	select {
	case s.events <- ev:
	default:
		s.dropped.Add(1)
	}
}

// Dropped implements domain.ReaderPort
func (s *Svc) Dropped() uint64 { return s.dropped.Load() }

// Close stops the flusher and drains whatever is still buffered.
// The ctx bounds the final flush
func (s *Svc) Close(ctx context.Context) error {
	s.closed.Do(func() {
		// taking the write lock fences every in-flight Record; later
		// ones shed and count, so the drain below misses nothing
		s.mu.Lock()
		s.shut = true
		s.mu.Unlock()
		close(s.stop)
	})
	select {
	case <-s.done:
	case <-ctx.Done():
		return perr.Unavailablef("journal: close interrupted: %v", ctx.Err())
	}

	// drain the channel; the flusher has exited so nobody else reads it
	var tail []serving.Event
	for {
		select {
		case ev := <-s.events:
			tail = append(tail, ev)
			continue
		default:
		}
		break
	}
	if len(tail) == 0 {
		return nil
	}
	return s.store.WriteBatch(ctx, tail)
}

func (s *Svc) run() {
	defer close(s.done)
	log := logger.Named("journal")

	t := time.NewTicker(s.cfg.FlushEvery)
	defer t.Stop()

	pending := make([]serving.Event, 0, s.cfg.FlushSize)
	var reported uint64
	flush := func() {
		if len(pending) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.store.WriteBatch(ctx, pending); err != nil {
			log.Error().Err(err).Int("events", len(pending)).Msg("journal flush failed")
		}
		cancel()
		pending = pending[:0]
	}

	for {
		select {
		case <-s.stop:
			flush()
			return
		case ev := <-s.events:
			pending = append(pending, ev)
			if len(pending) >= s.cfg.FlushSize {
				flush()
			}
		case <-t.C:
			flush()
			if n := s.dropped.Load(); n > reported {
				log.Warn().Uint64("dropped", n-reported).Msg("journal shed events under pressure")
				reported = n
			}
		}
	}
}
