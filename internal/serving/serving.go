// Package serving holds the shared types and seams of the scoring core:
// requests, results, cache keys, and the ports the engine composes
// (scorer, normalizer, journal). The moving parts live in the subpackages
// cache, batch, admit, and engine.
package serving

import (
	"context"
	"time"
)

// Label is a sentiment class emitted by the model
type Label string

// Labels emitted by every scorer, fixed for wire stability
const (
	LabelNegative Label = "negative"
	LabelNeutral  Label = "neutral"
	LabelPositive Label = "positive"
)

// Result is the outcome of scoring one normalized text
// immutable once produced; shared between the cache and all waiters
type Result struct {
	Label        Label             `json:"label"`
	Confidence   float64           `json:"confidence"`
	Scores       map[Label]float64 `json:"scores"`
	ModelVersion string            `json:"model_version"`
	ComputedAt   time.Time         `json:"computed_at"`
}

// Request is one scoring request after normalization and admission
// immutable; destroyed once its result is delivered or it times out
type Request struct {
	ID          string
	Text        string // normalized
	Lang        string // caller hint or detected, may be empty
	SubmittedAt time.Time
	Deadline    time.Time // zero means none
}

// Expired reports whether the request deadline has passed at now
func (r Request) Expired(now time.Time) bool {
	return !r.Deadline.IsZero() && now.After(r.Deadline)
}

// Scorer is the model seam. Score must return exactly one result per input,
// in input order, or fail atomically for the whole batch. Implementations are
// assumed potentially blocking (CPU/GPU bound) and are invoked from a bounded
// worker pool, never from the caller's goroutine.
type Scorer interface {
	Score(ctx context.Context, texts []string) ([]Result, error)
}

// ScorerFunc adapts a function to the Scorer seam
type ScorerFunc func(ctx context.Context, texts []string) ([]Result, error)

// Score implements Scorer
func (f ScorerFunc) Score(ctx context.Context, texts []string) ([]Result, error) {
	return f(ctx, texts)
}

// Normalizer is the preprocessing seam: cleans raw text and resolves the
// language (the caller hint wins over detection when present)
type Normalizer interface {
	Normalize(raw, langHint string) (text, lang string)
}

// NormalizerFunc adapts a function to the Normalizer seam
type NormalizerFunc func(raw, langHint string) (text, lang string)

// Normalize implements Normalizer
func (f NormalizerFunc) Normalize(raw, langHint string) (string, string) {
	return f(raw, langHint)
}

// Event is one scored request as recorded by the journal
type Event struct {
	At           time.Time
	RequestID    string
	Lang         string
	Label        Label
	Confidence   float64
	ModelVersion string
	CacheHit     bool
	BatchSize    int
	LatencyMS    int64
}

// Journal receives events off the scoring path. Record must not block;
// implementations buffer and shed rather than stall the caller
type Journal interface {
	Record(ev Event)
}
