package module

import (
	"context"

	"vibecheck/internal/services/api/analyze/domain"
	asvc "vibecheck/internal/services/api/analyze/service"
)

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// adaptAnalyzePort exposes service methods as module ports for cross-module usage
type adaptAnalyzePort struct{ svc asvc.Service }

// Analyze scores one text
func (a adaptAnalyzePort) Analyze(ctx context.Context, in domain.AnalyzeInput) (domain.AnalyzeRow, error) {
	return a.svc.Analyze(ctx, in)
}

// AnalyzeBatch scores a batch of texts
func (a adaptAnalyzePort) AnalyzeBatch(ctx context.Context, in domain.BatchInput) (domain.BatchOutput, error) {
	return a.svc.AnalyzeBatch(ctx, in)
}
