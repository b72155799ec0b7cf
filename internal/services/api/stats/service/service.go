// Package service contains stats workflows
package service

import (
	"context"
	"sort"
	"time"

	"vibecheck/internal/core/lexicon"
	perr "vibecheck/internal/platform/errors"
	"vibecheck/internal/services/api/stats/domain"
	"vibecheck/internal/services/api/stats/repo"
	"vibecheck/internal/serving"
	"vibecheck/internal/serving/engine"
)

// timeNow is a test seam
var timeNow = time.Now

// Service defines the stats service contract
type Service interface {
	domain.ServicePort
}

// Svc implements the stats service
type Svc struct {
	repo repo.Storage // nil when the journal store is not configured
	eng  *engine.Engine
	pack *lexicon.Pack
}

// New constructs a stats service. repo may be nil; the aggregate
// endpoints then refuse with unavailable instead of failing at mount
func New(st repo.Storage, eng *engine.Engine, pack *lexicon.Pack) *Svc {
	if eng == nil {
		panic("stats.Service requires a non nil engine")
	}
	if pack == nil {
		panic("stats.Service requires a non nil lexicon pack")
	}
	return &Svc{repo: st, eng: eng, pack: pack}
}

// ByLabel buckets scored traffic by day and sentiment label
func (s *Svc) ByLabel(ctx context.Context, in domain.WindowInput) ([]domain.ByLabelRow, error) {
	if s.repo == nil {
		return nil, perr.Unavailablef("scoring journal is not configured")
	}
	return s.repo.ByLabel(ctx, in.SinceOrDefault(timeNow()))
}

// ByLang buckets scored traffic by day and language
func (s *Svc) ByLang(ctx context.Context, in domain.WindowInput) ([]domain.ByLangRow, error) {
	if s.repo == nil {
		return nil, perr.Unavailablef("scoring journal is not configured")
	}
	return s.repo.ByLang(ctx, in.SinceOrDefault(timeNow()))
}

// Live snapshots the scoring core counters
func (s *Svc) Live(context.Context) (domain.LiveRow, error) {
	st := s.eng.Stats()
	return domain.LiveRow{
		Queued:       st.Queued,
		InFlight:     st.InFlight,
		CacheEntries: st.CacheEntries,
		CacheCost:    st.CacheCost,
		ModelVersion: st.ModelVersion,
	}, nil
}

// Languages lists the language codes the lexicon knows
func (s *Svc) Languages(context.Context) ([]string, error) {
	codes := s.pack.Codes()
	sort.Strings(codes)
	return codes, nil
}

// Labels lists the sentiment labels the core emits
func (s *Svc) Labels(context.Context) ([]string, error) {
	return []string{
		string(serving.LabelNegative),
		string(serving.LabelNeutral),
		string(serving.LabelPositive),
	}, nil
}
