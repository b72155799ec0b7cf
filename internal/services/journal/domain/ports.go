// Package domain holds the journal contracts
package domain

import (
	"context"

	"vibecheck/internal/serving"
)

// WriterPort accepts scored events off the hot path. Record never blocks;
// under pressure events are shed and counted instead
type WriterPort interface {
	Record(ev serving.Event)
	Close(ctx context.Context) error
}

// ReaderPort exposes journal health counters
type ReaderPort interface {
	Dropped() uint64
}
