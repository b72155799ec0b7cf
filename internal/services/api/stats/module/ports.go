package module

import (
	"context"

	"vibecheck/internal/services/api/stats/domain"
	statssvc "vibecheck/internal/services/api/stats/service"
)

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

type adaptStatsPort struct{ svc statssvc.Service }

// ByLabel returns scored traffic buckets by label and day
func (a adaptStatsPort) ByLabel(ctx context.Context, in domain.WindowInput) ([]domain.ByLabelRow, error) {
	return a.svc.ByLabel(ctx, in)
}

// ByLang returns scored traffic buckets by language and day
func (a adaptStatsPort) ByLang(ctx context.Context, in domain.WindowInput) ([]domain.ByLangRow, error) {
	return a.svc.ByLang(ctx, in)
}

// Live returns the core counters snapshot
func (a adaptStatsPort) Live(ctx context.Context) (domain.LiveRow, error) {
	return a.svc.Live(ctx)
}
