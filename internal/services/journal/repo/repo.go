// Package repo provides the journal repository implementation
package repo

import (
	"context"

	"vibecheck/internal/platform/store"
	"vibecheck/internal/serving"
)

// Storage defines the journal repository
type Storage interface {
	WriteBatch(ctx context.Context, evs []serving.Event) error
}

// NewCH constructs a ClickHouse backed journal repo
func NewCH(ch store.Clickhouse) Storage { return &chStore{ch: ch} }

type chStore struct{ ch store.Clickhouse }

// WriteBatch implements Storage
func (s *chStore) WriteBatch(ctx context.Context, evs []serving.Event) error {
	if len(evs) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(evs))
	for _, ev := range evs {
		rows = append(rows, []any{
			ev.At.UTC(),
			ev.RequestID,
			ev.Lang,
			string(ev.Label),
			ev.Confidence,
			ev.ModelVersion,
			ev.CacheHit,
			uint32(ev.BatchSize), // #nosec G115 bounded by batcher config
			ev.LatencyMS,
		})
	}
	return s.ch.Insert(ctx, "scoring_events", rows)
}
