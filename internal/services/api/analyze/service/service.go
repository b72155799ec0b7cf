// Package service contains analyze workflows over the scoring core
package service

import (
	"context"
	"time"

	perr "vibecheck/internal/platform/errors"
	"vibecheck/internal/services/api/analyze/domain"
	"vibecheck/internal/serving/engine"
)

// Service defines the analyze service contract
type Service interface {
	domain.ServicePort
}

// Svc implements the analyze service
type Svc struct {
	eng *engine.Engine
}

// New constructs an analyze service
func New(eng *engine.Engine) *Svc {
	if eng == nil {
		panic("analyze.Service requires a non nil engine")
	}
	return &Svc{eng: eng}
}

// withDeadline narrows ctx when the caller asked for a per call bound
func withDeadline(ctx context.Context, ms int) (context.Context, context.CancelFunc) {
	if ms <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, time.Duration(ms)*time.Millisecond)
}

// Analyze scores one text
func (s *Svc) Analyze(ctx context.Context, in domain.AnalyzeInput) (domain.AnalyzeRow, error) {
	ctx, cancel := withDeadline(ctx, in.DeadlineMS)
	defer cancel()

	res, err := s.eng.Score(ctx, in.Text, in.Lang)
	if err != nil {
		return domain.AnalyzeRow{}, err
	}
	return domain.AnalyzeRow{
		Label:        res.Label,
		Confidence:   res.Confidence,
		Scores:       res.Scores,
		Language:     s.eng.ResolveLang(in.Text, in.Lang),
		ModelVersion: res.ModelVersion,
		ComputedAt:   res.ComputedAt,
	}, nil
}

// AnalyzeBatch scores up to 64 texts; items fail independently and the
// output preserves input order
func (s *Svc) AnalyzeBatch(ctx context.Context, in domain.BatchInput) (domain.BatchOutput, error) {
	if len(in.Items) == 0 {
		return domain.BatchOutput{}, perr.InvalidArgf("items must not be empty")
	}
	ctx, cancel := withDeadline(ctx, in.DeadlineMS)
	defer cancel()

	items := make([]engine.BatchItem, len(in.Items))
	for i, it := range in.Items {
		items[i] = engine.BatchItem{Text: it.Text, Lang: it.Lang}
	}

	outcomes := s.eng.ScoreBatch(ctx, items)
	out := domain.BatchOutput{
		Items: make([]domain.BatchRow, len(outcomes)),
		Count: len(outcomes),
	}
	for i, oc := range outcomes {
		if oc.Err != nil {
			out.Items[i] = domain.BatchRow{Error: oc.Err.Error()}
			continue
		}
		out.Items[i] = domain.BatchRow{Result: &domain.AnalyzeRow{
			Label:        oc.Result.Label,
			Confidence:   oc.Result.Confidence,
			Scores:       oc.Result.Scores,
			Language:     s.eng.ResolveLang(in.Items[i].Text, in.Items[i].Lang),
			ModelVersion: oc.Result.ModelVersion,
			ComputedAt:   oc.Result.ComputedAt,
		}}
	}
	return out, nil
}
